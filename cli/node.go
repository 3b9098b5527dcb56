package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"okinoko_vote/config"
	"okinoko_vote/contract"
	"okinoko_vote/events"
	"okinoko_vote/membership"
	"okinoko_vote/payout"
	"okinoko_vote/sdk"
	"okinoko_vote/store"
)

// node is a fully wired engine plus everything that has to be closed with it.
type node struct {
	Engine   *contract.Engine
	Events   *contract.EventLog
	Registry *prometheus.Registry

	closers []func() error
}

// Close releases backends in reverse order of creation.
func (n *node) Close() error {
	var errs []error
	for i := len(n.closers) - 1; i >= 0; i-- {
		if err := n.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	n.closers = nil
	return errors.Join(errs...)
}

func (n *node) onClose(fn func() error) {
	n.closers = append(n.closers, fn)
}

// buildNode opens every backend named by cfg and starts the engine on top of them.
// On error everything opened so far is closed again.
func buildNode(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *node, err error) {
	n := &node{
		Events:   contract.NewEventLog(cfg.Events.LogLimit),
		Registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			_ = n.Close()
		}
	}()

	n.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := contract.NewMetrics(n.Registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	st, err := openStore(ctx, n, cfg.Store)
	if err != nil {
		return nil, err
	}
	members, err := openMembership(ctx, n, cfg)
	if err != nil {
		return nil, err
	}
	payer, err := openPayer(ctx, n, cfg, log)
	if err != nil {
		return nil, err
	}

	sinks := []contract.Sink{n.Events}
	if cfg.Events.NATSURL != "" {
		sink, conn, err := events.Connect(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			return nil, err
		}
		n.onClose(func() error {
			conn.Close()
			return nil
		})
		sinks = append(sinks, sink)
		log.Info("Publishing events to NATS", "url", cfg.Events.NATSURL, "prefix", cfg.Events.SubjectPrefix)
	}

	n.Engine, err = contract.NewEngine(ctx, contract.Config{
		Admins:     cfg.AdminAddresses(),
		NFTAddress: cfg.NFTAddress,
		QueueDelay: cfg.QueueDelaySeconds(),
		State:      st,
		Membership: members,
		Payer:      payer,
		Sinks:      sinks,
		Logger:     log,
		Metrics:    metrics,
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func openStore(ctx context.Context, n *node, cfg config.StoreConfig) (store.State, error) {
	switch cfg.Kind {
	case config.StoreMemory:
		return store.NewMemoryState(), nil
	case config.StoreFile:
		return store.OpenFileState(cfg.Path)
	case config.StoreSQLite:
		s, err := store.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		n.onClose(s.Close)
		return s, nil
	case config.StorePostgres:
		s, err := store.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		n.onClose(s.Close)
		return s, nil
	case config.StoreRedis:
		s := store.NewRedisState(cfg.Addr, cfg.Password, cfg.DB, cfg.Prefix)
		n.onClose(s.Close)
		if err := s.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown store kind %q", contract.ErrInvalidConfig, cfg.Kind)
	}
}

func openMembership(ctx context.Context, n *node, cfg *config.Config) (contract.Membership, error) {
	switch cfg.Membership.Kind {
	case config.MembershipStatic:
		s := membership.NewStatic()
		for id, owner := range cfg.Membership.Owners {
			if err := s.Mint(id, sdk.NewAddress(owner)); err != nil {
				return nil, err
			}
		}
		// explicit balances win over minted counts
		for addr, bal := range cfg.Membership.Balances {
			s.SetBalance(sdk.NewAddress(addr), bal)
		}
		return s, nil
	case config.MembershipERC721:
		o, client, err := membership.DialERC721(ctx, cfg.Membership.RPCURL, cfg.NFTAddress)
		if err != nil {
			return nil, err
		}
		n.onClose(func() error {
			client.Close()
			return nil
		})
		return o, nil
	default:
		return nil, fmt.Errorf("%w: unknown membership kind %q", contract.ErrInvalidConfig, cfg.Membership.Kind)
	}
}

func openPayer(ctx context.Context, n *node, cfg *config.Config, log *slog.Logger) (contract.Payer, error) {
	switch cfg.Payout.Kind {
	case config.PayoutLedger:
		return payout.NewLedger(), nil
	case config.PayoutEth:
		wei, err := cfg.WeiPerUnit()
		if err != nil {
			return nil, err
		}
		p, client, err := payout.DialEth(ctx, cfg.Payout.RPCURL, payout.EthConfig{
			PrivateKeyHex: cfg.PayoutKey(),
			ChainID:       cfg.Payout.ChainID,
			WeiPerUnit:    wei,
		}, log)
		if err != nil {
			return nil, err
		}
		n.onClose(func() error {
			client.Close()
			return nil
		})
		log.Info("Treasury payouts enabled", "from", p.From().Hex(), "chain_id", cfg.Payout.ChainID)
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown payout kind %q", contract.ErrInvalidConfig, cfg.Payout.Kind)
	}
}

// newLogger builds a text logger for level; unknown levels fall back to info.
func newLogger(w io.Writer, level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
