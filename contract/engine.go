// Package contract is the token-gated governance engine: admin registry, proposal store,
// voting, lifecycle and treasury, all serialized behind one lock.
package contract

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"okinoko_vote/sdk"
	"okinoko_vote/store"
)

// Config wires the engine to its backends. State, Membership, Payer and at least one admin are required.
type Config struct {
	Admins     []sdk.Address
	NFTAddress string
	QueueDelay int64 // seconds, 0 disables the post-queue timelock

	State      store.State
	Membership Membership
	Payer      Payer
	Sinks      []Sink

	Logger  *slog.Logger
	Metrics *Metrics
}

// Engine processes one call at a time. Every call runs against a write overlay which is
// committed in a single batch on success and dropped on any rejection.
type Engine struct {
	mu sync.Mutex

	state      store.State
	membership Membership
	payer      Payer
	sinks      []Sink
	log        *slog.Logger
	metrics    *Metrics

	cfg ContractConfig
}

// NewEngine validates cfg and seeds the admin set. Seeding is idempotent, so restarting on
// a populated store keeps existing admins and adds any new seeds.
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	if len(cfg.Admins) == 0 {
		return nil, reject(ErrInvalidConfig, "at least one admin is required")
	}
	if cfg.State == nil {
		return nil, reject(ErrInvalidConfig, "state backend is required")
	}
	if cfg.Membership == nil {
		return nil, reject(ErrInvalidConfig, "membership oracle is required")
	}
	if cfg.Payer == nil {
		return nil, reject(ErrInvalidConfig, "payer is required")
	}
	if cfg.QueueDelay < 0 {
		return nil, reject(ErrInvalidConfig, "queue delay must not be negative")
	}
	for _, a := range cfg.Admins {
		if a == "" {
			return nil, reject(ErrInvalidConfig, "empty admin address")
		}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		state:      cfg.State,
		membership: cfg.Membership,
		payer:      cfg.Payer,
		sinks:      cfg.Sinks,
		log:        log,
		metrics:    cfg.Metrics,
		cfg:        ContractConfig{NFTAddress: cfg.NFTAddress, QueueDelay: cfg.QueueDelay},
	}

	c := e.newCall(ctx, sdk.Env{TxID: "init", Sender: cfg.Admins[0]}, "init")
	if err := e.seed(c, cfg.Admins); err != nil {
		return nil, fmt.Errorf("seed engine state: %w", err)
	}
	if err := c.st.commit(); err != nil {
		return nil, fmt.Errorf("seed engine state: %w", err)
	}
	e.log.Info("Engine ready", "admins", len(cfg.Admins), "nft", cfg.NFTAddress, "queue_delay", cfg.QueueDelay)
	return e, nil
}

func (e *Engine) seed(c *call, admins []sdk.Address) error {
	prev, err := loadContractConfig(c.st)
	if err != nil {
		return err
	}
	if prev != nil && *prev != e.cfg {
		e.log.Warn("Contract config changed since last start",
			"nft", prev.NFTAddress, "new_nft", e.cfg.NFTAddress,
			"queue_delay", prev.QueueDelay, "new_queue_delay", e.cfg.QueueDelay)
	}
	if err := saveContractConfig(c.st, &e.cfg); err != nil {
		return err
	}
	added, err := addAdminEntries(c.st, admins)
	if err != nil {
		return err
	}
	for _, a := range added {
		e.log.Debug("Seeded admin", "admin", a)
	}
	return e.refreshGauges(c)
}

// run serializes fn behind the engine lock, commits its overlay and publishes its events.
// A rejection leaves the backend untouched.
func (e *Engine) run(ctx context.Context, env sdk.Env, op string, fn func(c *call) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.newCall(ctx, env, op)
	log := e.log.With("op", op, "caller", env.Sender, "tx", env.TxID)
	log.Debug("Call")

	err := fn(c)
	if err == nil {
		err = c.st.commit()
		if err != nil {
			log.Error("Commit failed", "err", err)
		}
	}
	// committed work is not undone by a caller that stopped waiting
	c.st.ctx = context.WithoutCancel(ctx)
	if err == nil && c.afterCommit != nil {
		err = c.afterCommit()
	}
	if err != nil {
		e.metrics.observe(op, Kind(err))
		if Kind(err) == "Internal" {
			log.Error("Call failed", "err", err)
		} else {
			log.Info("Call rejected", "kind", Kind(err), "err", err)
		}
		return err
	}
	e.metrics.observe(op, "ok")
	if err := e.refreshGauges(c); err != nil {
		log.Warn("Refresh gauges", "err", err)
	}
	e.publish(c)
	return nil
}

// publish fans buffered events out to the sinks. Sinks cannot undo a committed call, so
// their failures are only logged.
func (e *Engine) publish(c *call) {
	for _, ev := range c.events {
		e.log.Info(ev.String(), "event", ev.Kind(), "tx", c.env.TxID)
		for _, s := range e.sinks {
			if err := s.Publish(c.st.ctx, ev); err != nil {
				e.log.Warn("Event sink failed", "event", ev.Kind(), "err", err)
			}
		}
	}
}

func (e *Engine) refreshGauges(c *call) error {
	if e.metrics == nil {
		return nil
	}
	bal, err := getTreasuryBalance(c.st)
	if err != nil {
		return err
	}
	n, err := getCount(c.st, ProposalsCount)
	if err != nil {
		return err
	}
	e.metrics.setTreasury(bal)
	e.metrics.setProposals(n)
	return nil
}

// NFTAddress returns the membership token contract this engine was configured with.
func (e *Engine) NFTAddress() string {
	return e.cfg.NFTAddress
}

// QueueDelay returns the configured post-queue timelock in seconds.
func (e *Engine) QueueDelay() int64 {
	return e.cfg.QueueDelay
}
