// Package referral runs the two-call registration workflow for one wallet:
// invite-code verification, then wallet registration.
package referral

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"WalletReg/internal/httpx"
	"WalletReg/internal/proxy"
	"WalletReg/internal/wallet"
)

var (
	ErrInviteInvalid        = errors.New("invite code is not valid")
	ErrRegistrationRejected = errors.New("wallet registration rejected")
)

// Session binds one wallet to its proxy and referral code for the duration of Run.
type Session struct {
	ID     string
	Wallet wallet.Identity
	Agent  *proxy.Agent
	Code   string
}

func NewSession(w wallet.Identity, agent *proxy.Agent, code string) *Session {
	return &Session{ID: uuid.NewString(), Wallet: w, Agent: agent, Code: code}
}

// Doer is satisfied by *httpx.Client.
type Doer interface {
	Do(ctx context.Context, req httpx.Request) (*httpx.Response, error)
}

type Service struct {
	Client      Doer
	VerifyURL   string
	RegisterURL string // contains {code}
	Headers     map[string]string
	Log         *zap.SugaredLogger
}

type verifyResponse struct {
	Data struct {
		Valid *bool `json:"valid"`
	} `json:"data"`
}

// Run verifies the invite code and then registers the wallet. The first
// failing step ends the workflow.
func (s *Service) Run(ctx context.Context, sess *Session) error {
	if err := s.VerifyInvite(ctx, sess); err != nil {
		return fmt.Errorf("verify invite: %w", err)
	}
	if err := s.RegisterWallet(ctx, sess); err != nil {
		return fmt.Errorf("register wallet: %w", err)
	}
	return nil
}

// VerifyInvite succeeds only when the service answers data.valid == true.
func (s *Service) VerifyInvite(ctx context.Context, sess *Session) error {
	log := s.Log.With("session", sess.ID, "step", "verify")
	resp, err := s.Client.Do(ctx, httpx.Request{
		Method:  http.MethodPost,
		URL:     s.VerifyURL,
		Body:    map[string]string{"invite_code": sess.Code},
		Headers: s.Headers,
		Agent:   sess.Agent,
	})
	if err != nil {
		return err
	}

	var vr verifyResponse
	if err := resp.JSON(&vr); err != nil {
		log.Warnw("verify response is not json", "err", err)
		return fmt.Errorf("%w: %v", ErrInviteInvalid, err)
	}
	if vr.Data.Valid == nil || !*vr.Data.Valid {
		log.Warnw("invite code rejected", "code", sess.Code)
		return ErrInviteInvalid
	}
	log.Debugw("invite code accepted", "code", sess.Code)
	return nil
}

// RegisterWallet treats any non-null body as success.
func (s *Service) RegisterWallet(ctx context.Context, sess *Session) error {
	log := s.Log.With("session", sess.ID, "step", "register")
	resp, err := s.Client.Do(ctx, httpx.Request{
		Method:  http.MethodPost,
		URL:     s.registerURL(sess.Code),
		Body:    map[string]string{"walletAddress": sess.Wallet.Address},
		Headers: s.Headers,
		Agent:   sess.Agent,
	})
	if err != nil {
		return err
	}
	if isNullBody(resp.Body) {
		log.Warnw("registration returned empty body", "address", sess.Wallet.Address)
		return ErrRegistrationRejected
	}
	log.Debugw("wallet registered", "address", sess.Wallet.Address, "status", resp.Status)
	return nil
}

func (s *Service) registerURL(code string) string {
	return strings.ReplaceAll(s.RegisterURL, "{code}", url.PathEscape(code))
}

func isNullBody(b []byte) bool {
	t := bytes.TrimSpace(b)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
