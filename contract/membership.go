package contract

import (
	"context"
	"fmt"

	"okinoko_vote/sdk"
)

// Membership is the read-only view of the membership token.
type Membership interface {
	BalanceOf(ctx context.Context, addr sdk.Address) (uint64, error)
	OwnerOf(ctx context.Context, tokenID uint64) (sdk.Address, error)
}

// CheckBalance returns the caller-independent token count of addr.
// Example payload: CheckBalance(ctx, env, "hive:alice")
func (e *Engine) CheckBalance(ctx context.Context, env sdk.Env, addr sdk.Address) (uint64, error) {
	var out uint64
	err := e.run(ctx, env, "balance_check", func(c *call) error {
		b, err := c.balanceOf(addr)
		out = b
		return err
	})
	return out, err
}

// CanVote reports whether addr holds at least one membership token.
func (e *Engine) CanVote(ctx context.Context, env sdk.Env, addr sdk.Address) (bool, error) {
	b, err := e.CheckBalance(ctx, env, addr)
	return b > 0, err
}

// OwnerOf passes a token owner lookup through to the oracle.
func (e *Engine) OwnerOf(ctx context.Context, env sdk.Env, tokenID uint64) (sdk.Address, error) {
	var out sdk.Address
	err := e.run(ctx, env, "owner_of", func(c *call) error {
		owner, err := e.membership.OwnerOf(c.ctx, tokenID)
		if err != nil {
			return fmt.Errorf("membership owner of %d: %w", tokenID, err)
		}
		out = owner
		return nil
	})
	return out, err
}
