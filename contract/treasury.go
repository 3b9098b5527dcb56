package contract

import (
	"context"

	"okinoko_vote/contract/dao"
	"okinoko_vote/sdk"
)

// Payer delivers native value to a proposal target. ref is unique per execution attempt.
type Payer interface {
	Pay(ctx context.Context, to sdk.Address, amount uint64, ref string) error
}

// Deposit credits the treasury. Anyone may deposit; zero is accepted as a no-op.
// Example payload: Deposit(ctx, env, 1000)
func (e *Engine) Deposit(ctx context.Context, env sdk.Env, amount uint64) error {
	return e.run(ctx, env, "treasury_deposit", func(c *call) error {
		if amount == 0 {
			return nil
		}
		if _, err := addTreasuryFunds(c.st, amount); err != nil {
			return err
		}
		c.emit(dao.EventFundsReceived{From: c.sender(), Amount: amount})
		return nil
	})
}

// TreasuryBalance returns the current treasury balance.
func (e *Engine) TreasuryBalance(ctx context.Context) (uint64, error) {
	var out uint64
	err := e.run(ctx, sdk.Env{}, "treasury_balance", func(c *call) error {
		b, err := getTreasuryBalance(c.st)
		out = b
		return err
	})
	return out, err
}
