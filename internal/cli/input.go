package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"
)

// Input answers the operator prompts.
type Input interface {
	Ask(message string) (string, error)
}

// NewInput uses survey prompts on a terminal and plain line reads otherwise
// (piped stdin).
func NewInput() Input {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return SurveyInput{}
	}
	return NewLineInput(os.Stdin, os.Stdout)
}

type SurveyInput struct{}

func (SurveyInput) Ask(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: promptStyle.Render(message)}, &answer)
	return strings.TrimSpace(answer), err
}

type LineInput struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLineInput(r io.Reader, w io.Writer) *LineInput {
	return &LineInput{in: bufio.NewReader(r), out: w}
}

func (l *LineInput) Ask(message string) (string, error) {
	fmt.Fprint(l.out, message+" ")
	text, err := l.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && text != "") {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ScriptedInput replays fixed answers in order.
type ScriptedInput struct {
	answers []string
}

func NewScriptedInput(answers ...string) *ScriptedInput {
	return &ScriptedInput{answers: answers}
}

func (s *ScriptedInput) Ask(message string) (string, error) {
	if len(s.answers) == 0 {
		return "", fmt.Errorf("no scripted answer for %q", message)
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}
