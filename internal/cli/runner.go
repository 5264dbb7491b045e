package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	figure "github.com/common-nighthawk/go-figure"
	"go.uber.org/zap"

	"WalletReg/internal/batch"
	"WalletReg/internal/httpx"
	"WalletReg/internal/logsink"
	"WalletReg/internal/proxy"
	"WalletReg/internal/referral"
	"WalletReg/internal/store"
	"WalletReg/internal/wallet"
	"WalletReg/pkg/appcfg"
	"WalletReg/pkg/i18n"
)

type Runner struct {
	Conf   *appcfg.Config
	In     Input
	Out    io.Writer
	Log    *zap.SugaredLogger
	RunDir string // results.jsonl goes here when set

	// Preset answers skip the matching prompt.
	Count    string
	Code     string
	KeysPath string // import mode: register these keys instead of generating

	msg i18n.Messages
}

func NewRunner(conf *appcfg.Config, in Input, log *zap.SugaredLogger) *Runner {
	return &Runner{Conf: conf, In: in, Out: os.Stdout, Log: log}
}

// Run asks for the batch parameters and registers the wallets. Bad operator
// input is returned before any wallet is created.
func (r *Runner) Run(ctx context.Context) error {
	r.msg = i18n.Get(r.Conf.Language)
	r.banner()

	proxies, err := proxy.LoadList(r.Conf.Files.Proxies)
	if err != nil {
		r.Log.Warnw("proxy list not loaded, going direct", "path", r.Conf.Files.Proxies, "err", err)
	}
	if len(proxies) == 0 {
		fmt.Fprintln(r.Out, promptStyle.Render(r.msg.NoProxies))
	} else {
		fmt.Fprintf(r.Out, r.msg.ProxiesLoaded, len(proxies))
	}

	source, n, code, err := r.askBatch()
	if err != nil {
		fmt.Fprintln(r.Out, warningStyle.Render(err.Error()))
		r.Log.Errorw("invalid input, nothing to do", "err", err)
		return err
	}

	client := httpx.New(r.Conf.HTTP.MaxAttempts, r.Conf.HTTP.RetryDelay, r.Conf.HTTP.Timeout, r.Log.Named("http"))
	svc := &referral.Service{
		Client:      client,
		VerifyURL:   r.Conf.Service.VerifyURL,
		RegisterURL: r.Conf.Service.RegisterURL,
		Headers:     r.Conf.Service.Headers,
		Log:         r.Log.Named("referral"),
	}
	d := &batch.Driver{
		Workflow: svc,
		Store:    store.NewJSONStore(r.Conf.Files.Wallets),
		Proxies:  proxies,
		Wallets:  source,
		Pace:     r.Conf.Batch.Pace,
		Log:      r.Log.Named("batch"),
		OnResult: r.printResult,
	}
	if r.RunDir != "" {
		d.Audit = logsink.NewAudit(r.RunDir)
	}

	r.Log.Infow("batch started", "wallets", n, "code", code, "proxies", len(proxies))
	sum := d.Run(ctx, n, code)

	fmt.Fprintf(r.Out, r.msg.Summary, sum.Total, sum.Registered, sum.Failed)
	if sum.Registered > 0 {
		fmt.Fprintf(r.Out, r.msg.SavedTo, r.Conf.Files.Wallets)
	}
	if ctx.Err() != nil {
		fmt.Fprintln(r.Out, warningStyle.Render(r.msg.Interrupted))
	}
	return nil
}

func (r *Runner) askBatch() (batch.WalletSource, int, string, error) {
	var (
		source    = batch.Generated()
		countText = r.Count
	)
	if r.KeysPath != "" {
		keys, err := wallet.LoadPrivateKeys(r.KeysPath)
		if err != nil {
			return nil, 0, "", err
		}
		fmt.Fprintf(r.Out, r.msg.KeysLoaded, len(keys))
		source = batch.Imported(keys)
		countText = fmt.Sprint(len(keys))
	}

	if countText == "" {
		a, err := r.In.Ask(r.msg.AskCount)
		if err != nil {
			return nil, 0, "", err
		}
		countText = a
	}
	code := r.Code
	if code == "" {
		a, err := r.In.Ask(r.msg.AskCode)
		if err != nil {
			return nil, 0, "", err
		}
		code = a
	}

	n, code, err := batch.ValidateInput(countText, code)
	switch {
	case err == nil:
		return source, n, code, nil
	case errors.Is(err, batch.ErrEmptyCode):
		return nil, 0, "", &InputError{Msg: r.msg.EmptyCode, Err: err}
	default:
		return nil, 0, "", &InputError{Msg: r.msg.BadCount, Err: err}
	}
}

// InputError is an operator answer that cannot start a batch. Msg is localized.
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string { return e.Msg }
func (e *InputError) Unwrap() error { return e.Err }

func (r *Runner) banner() {
	fig := figure.NewFigure(r.msg.AppTitle, "standard", true)
	fmt.Fprintln(r.Out, titleStyle.Render(fig.String()))
	fmt.Fprintln(r.Out, promptStyle.Render(r.msg.Subtitle))
}

func (r *Runner) printResult(i, n int, w wallet.Identity, err error) {
	head := fmt.Sprintf(r.msg.WalletHeader, i+1, n)
	if err != nil {
		fmt.Fprintln(r.Out, warningStyle.Render(head+"  "+fmt.Sprintf(r.msg.WalletFailed, w.Address, err)))
		return
	}
	fmt.Fprintln(r.Out, okStyle.Render(head+"  "+fmt.Sprintf(r.msg.WalletOK, w.Address)))
}

// WithInterrupt cancels the returned context on SIGINT/SIGTERM.
func WithInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
