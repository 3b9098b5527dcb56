package contract

import (
	"context"
	"fmt"

	"okinoko_vote/contract/dao"
	"okinoko_vote/sdk"
)

// call is scoped to the currently executing operation. It carries the env snapshot,
// the write overlay, buffered events and memoized oracle answers so every helper in
// one call sees the same view.
type call struct {
	ctx      context.Context
	e        *Engine
	env      sdk.Env
	op       string
	st       *txState
	events   []dao.Event
	balances map[sdk.Address]uint64

	// afterCommit runs once the overlay is on disk; Execute uses it to deliver the payout.
	afterCommit func() error
}

func (e *Engine) newCall(ctx context.Context, env sdk.Env, op string) *call {
	return &call{
		ctx:      ctx,
		e:        e,
		env:      env,
		op:       op,
		st:       newTxState(ctx, e.state),
		balances: map[sdk.Address]uint64{},
	}
}

// sender returns the address of the current caller.
func (c *call) sender() sdk.Address {
	return c.env.Sender
}

// now is the call's timestamp; the engine never reads the wall clock.
func (c *call) now() int64 {
	return c.env.Timestamp
}

func (c *call) emit(ev dao.Event) {
	c.events = append(c.events, ev)
}

// balanceOf asks the oracle once per address per call.
func (c *call) balanceOf(addr sdk.Address) (uint64, error) {
	if b, ok := c.balances[addr]; ok {
		return b, nil
	}
	b, err := c.e.membership.BalanceOf(c.ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("membership balance of %s: %w", addr, err)
	}
	c.balances[addr] = b
	return b, nil
}

func (c *call) requireAdmin() error {
	ok, err := isAdminEntry(c.st, c.sender())
	if err != nil {
		return err
	}
	if !ok {
		return reject(ErrUnauthorized, "%s is not an admin", c.sender())
	}
	return nil
}

// requireMember rejects callers without at least one membership token.
func (c *call) requireMember() (uint64, error) {
	b, err := c.balanceOf(c.sender())
	if err != nil {
		return 0, err
	}
	if b == 0 {
		return 0, reject(ErrUnauthorized, "%s holds no membership token", c.sender())
	}
	return b, nil
}
