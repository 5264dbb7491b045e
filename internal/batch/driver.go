// Package batch registers wallets one after another.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"WalletReg/internal/logsink"
	"WalletReg/internal/proxy"
	"WalletReg/internal/referral"
	"WalletReg/internal/wallet"
)

const DefaultPace = 2 * time.Second

var (
	ErrBadCount  = errors.New("number of wallets must be a positive integer")
	ErrEmptyCode = errors.New("referral code must not be empty")
)

// Workflow is satisfied by *referral.Service.
type Workflow interface {
	Run(ctx context.Context, sess *referral.Session) error
}

// Store is satisfied by *store.JSONStore.
type Store interface {
	Append(w wallet.Identity) error
}

// Recorder is satisfied by *logsink.Audit.
type Recorder interface {
	Record(r logsink.Result) error
}

// WalletSource returns the identity for the i-th wallet of the batch.
type WalletSource func(i int) (wallet.Identity, error)

// Generated creates a fresh wallet for every index.
func Generated() WalletSource {
	return func(int) (wallet.Identity, error) { return wallet.Generate() }
}

// Imported wraps keys[i]; invalid keys fail that wallet only.
func Imported(keys []string) WalletSource {
	return func(i int) (wallet.Identity, error) {
		if i < 0 || i >= len(keys) {
			return wallet.Identity{}, fmt.Errorf("no key for wallet %d", i)
		}
		return wallet.FromPrivateKey(keys[i])
	}
}

type Driver struct {
	Workflow Workflow
	Store    Store
	Proxies  []string
	Wallets  WalletSource
	Audit    Recorder // optional
	Pace     time.Duration
	Log      *zap.SugaredLogger

	// OnResult, when set, is called after every wallet (console progress).
	OnResult func(i, n int, w wallet.Identity, err error)

	agents map[string]*proxy.Agent
}

type Summary struct {
	Total      int
	Registered int
	Failed     int
}

// ValidateInput parses the operator's answers. Any error means the run must not start.
func ValidateInput(countText, code string) (int, string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(countText))
	if err != nil || n <= 0 {
		return 0, "", fmt.Errorf("%w: %q", ErrBadCount, countText)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, "", ErrEmptyCode
	}
	return n, code, nil
}

// Run processes n wallets in order. A failing wallet never stops the batch;
// only ctx cancellation does.
func (d *Driver) Run(ctx context.Context, n int, code string) Summary {
	sum := Summary{}
	defer d.closeAgents()
	pace := d.Pace
	if pace < 0 {
		pace = DefaultPace
	}

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			d.Log.Warnw("batch interrupted", "done", i, "total", n)
			break
		}
		sum.Total++

		w, err := d.processOne(ctx, i, code)
		if err != nil {
			sum.Failed++
		} else {
			sum.Registered++
		}
		if d.OnResult != nil {
			d.OnResult(i, n, w, err)
		}

		select {
		case <-ctx.Done():
		case <-time.After(pace):
		}
	}

	d.Log.Infow("batch finished", "total", sum.Total, "registered", sum.Registered, "failed", sum.Failed)
	return sum
}

func (d *Driver) processOne(ctx context.Context, i int, code string) (w wallet.Identity, err error) {
	var sess *referral.Session
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			d.Log.Errorw("wallet processing panicked", "index", i, "panic", r)
		}
		d.record(i, sess, w, err)
	}()

	w, err = d.Wallets(i)
	if err != nil {
		d.Log.Errorw("wallet create failed", "index", i, "err", err)
		return w, err
	}

	agent := d.agent(proxy.Pick(d.Proxies, i))
	sess = referral.NewSession(w, agent, code)
	log := d.Log.With("index", i, "session", sess.ID, "address", w.Address, "proxy", agent.String())
	log.Infow("wallet created", "private_key", w.PrivateKey, "mnemonic", w.Mnemonic)

	if err = d.Workflow.Run(ctx, sess); err != nil {
		log.Errorw("registration failed", "err", err)
		return w, err
	}

	if err = d.Store.Append(w); err != nil {
		log.Errorw("save wallet failed", "err", err)
		return w, fmt.Errorf("save wallet: %w", err)
	}
	log.Infow("wallet registered and saved")
	return w, nil
}

// agent returns one shared agent per proxy URI; a rejected URI is remembered as nil.
func (d *Driver) agent(uri string) *proxy.Agent {
	if a, ok := d.agents[uri]; ok {
		return a
	}
	if d.agents == nil {
		d.agents = make(map[string]*proxy.Agent)
	}
	a := proxy.SelectAgent(uri, d.Log)
	d.agents[uri] = a
	return a
}

func (d *Driver) closeAgents() {
	for uri, a := range d.agents {
		a.Close()
		delete(d.agents, uri)
	}
}

func (d *Driver) record(i int, sess *referral.Session, w wallet.Identity, err error) {
	if d.Audit == nil {
		return
	}
	r := logsink.Result{Index: i, Address: w.Address, OK: err == nil}
	if sess != nil {
		r.Session = sess.ID
		r.Proxy = sess.Agent.String()
	}
	if err != nil {
		r.Error = err.Error()
	}
	if aerr := d.Audit.Record(r); aerr != nil {
		d.Log.Warnw("audit write failed", "index", i, "err", aerr)
	}
}
