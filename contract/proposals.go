package contract

import (
	"context"
	"errors"
	"fmt"

	"okinoko_vote/contract/dao"
	"okinoko_vote/sdk"
)

// -----------------------------------------------------------------------------
// Create Proposal
// -----------------------------------------------------------------------------

// NewProposalArgs describes a requested treasury transfer.
type NewProposalArgs struct {
	Description string
	StartTime   int64
	Deadline    int64
	Target      sdk.Address
	Amount      uint64
}

// NewProposal registers an Active proposal and returns its id. Ids start at 1.
// Example payload: NewProposal(ctx, env, NewProposalArgs{"fund infra", 100, 200, "hive:dev", 50})
func (e *Engine) NewProposal(ctx context.Context, env sdk.Env, args NewProposalArgs) (uint64, error) {
	var id uint64
	err := e.run(ctx, env, "proposal_create", func(c *call) error {
		if _, err := c.requireMember(); err != nil {
			return err
		}
		if args.StartTime >= args.Deadline {
			return reject(ErrInvalidTimeWindow, "start %d is not before deadline %d", args.StartTime, args.Deadline)
		}
		if args.Target == "" {
			return reject(ErrInvalidInput, "target address required")
		}
		if len(args.Description) > MaxDescriptionLength {
			return reject(ErrInvalidInput, "description exceeds %d bytes", MaxDescriptionLength)
		}

		count, err := getCount(c.st, ProposalsCount)
		if err != nil {
			return err
		}
		id = count + 1
		prpsl := &dao.Proposal{
			ID:          id,
			Creator:     c.sender(),
			Description: args.Description,
			StartTime:   args.StartTime,
			Deadline:    args.Deadline,
			Target:      args.Target,
			Amount:      args.Amount,
			State:       dao.ProposalActive,
			CreatedAt:   c.now(),
			Tx:          c.env.TxID,
		}
		saveProposal(c.st, prpsl)
		setCount(c.st, ProposalsCount, id)
		c.emit(dao.EventProposalCreated{
			ID:          id,
			Creator:     prpsl.Creator,
			Description: prpsl.Description,
			StartTime:   prpsl.StartTime,
			Deadline:    prpsl.Deadline,
			Target:      prpsl.Target,
			Amount:      prpsl.Amount,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DelistProposal lets the creator withdraw a proposal that is still Active.
func (e *Engine) DelistProposal(ctx context.Context, env sdk.Env, id uint64) error {
	return e.run(ctx, env, "proposal_delist", func(c *call) error {
		prpsl, err := loadProposal(c.st, id)
		if err != nil {
			return err
		}
		if prpsl.Creator != c.sender() {
			return reject(ErrUnauthorized, "only the creator can delist proposal %d", id)
		}
		if prpsl.State != dao.ProposalActive {
			return reject(ErrInvalidState, "proposal %d is %s", id, prpsl.State)
		}
		prpsl.State = dao.ProposalCancelled
		saveProposal(c.st, prpsl)
		c.emit(dao.EventProposalCancelled{ID: id, By: c.sender()})
		return nil
	})
}

// -----------------------------------------------------------------------------
// Evaluate / Queue / Execute
// -----------------------------------------------------------------------------

// loadForAdmin loads the proposal and then checks the caller is an admin.
func loadForAdmin(c *call, id uint64) (*dao.Proposal, error) {
	prpsl, err := loadProposal(c.st, id)
	if err != nil {
		return nil, err
	}
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	return prpsl, nil
}

// IsPassed finalizes an Active proposal after its deadline and reports the decision.
// Before the deadline it is always TooEarly, whatever the state.
// The proposal moves to Passed or Failed; only Passed emits an event.
func (e *Engine) IsPassed(ctx context.Context, env sdk.Env, id uint64) (bool, error) {
	var passed bool
	err := e.run(ctx, env, "proposal_tally", func(c *call) error {
		prpsl, err := loadForAdmin(c, id)
		if err != nil {
			return err
		}
		if c.now() < prpsl.Deadline {
			return reject(ErrTooEarly, "voting on proposal %d ends at %d", id, prpsl.Deadline)
		}
		if prpsl.State != dao.ProposalActive {
			return reject(ErrInvalidState, "proposal %d is %s", id, prpsl.State)
		}
		passed = prpsl.Decided()
		if passed {
			prpsl.State = dao.ProposalPassed
			c.emit(dao.EventProposalPassed{ID: id, VotesFor: prpsl.VotesFor, VotesAgainst: prpsl.VotesAgainst})
		} else {
			prpsl.State = dao.ProposalFailed
		}
		saveProposal(c.st, prpsl)
		return nil
	})
	return passed, err
}

// AddToQueue moves a Passed proposal into the execution queue.
func (e *Engine) AddToQueue(ctx context.Context, env sdk.Env, id uint64) error {
	return e.run(ctx, env, "proposal_queue", func(c *call) error {
		prpsl, err := loadForAdmin(c, id)
		if err != nil {
			return err
		}
		if prpsl.State != dao.ProposalPassed {
			return reject(ErrInvalidState, "proposal %d is %s", id, prpsl.State)
		}
		prpsl.State = dao.ProposalQueued
		prpsl.QueuedAt = c.now()
		saveProposal(c.st, prpsl)
		c.emit(dao.EventProposalQueued{ID: id, ReadyAt: prpsl.QueuedAt + e.cfg.QueueDelay})
		return nil
	})
}

// Execute pays a Queued proposal out of the treasury.
// The debit and the Executed flip are committed before the transfer is attempted, so a
// proposal can never pay twice. A failed transfer is compensated: the proposal returns to
// Queued, the balance is restored and the call fails with ErrPayoutFailed.
func (e *Engine) Execute(ctx context.Context, env sdk.Env, id uint64) error {
	return e.run(ctx, env, "proposal_execute", func(c *call) error {
		prpsl, err := loadForAdmin(c, id)
		if err != nil {
			return err
		}
		if prpsl.State != dao.ProposalQueued {
			return reject(ErrInvalidState, "proposal %d is %s", id, prpsl.State)
		}
		if readyAt := prpsl.QueuedAt + e.cfg.QueueDelay; c.now() < readyAt {
			return reject(ErrTooEarly, "proposal %d executable at %d", id, readyAt)
		}
		if _, err := removeTreasuryFunds(c.st, prpsl.Amount); err != nil {
			return err
		}
		prpsl.State = dao.ProposalExecuted
		prpsl.ExecutedAt = c.now()
		saveProposal(c.st, prpsl)

		c.afterCommit = func() error {
			ref := fmt.Sprintf("proposal:%d:%s", id, c.env.TxID)
			payErr := e.payer.Pay(c.ctx, prpsl.Target, prpsl.Amount, ref)
			if payErr == nil {
				c.emit(dao.EventProposalExecuted{ID: id, Target: prpsl.Target, Amount: prpsl.Amount})
				return nil
			}
			if err := compensateExecute(c, prpsl); err != nil {
				e.log.Error("Compensation failed, proposal left Executed without payout",
					"id", id, "pay_err", payErr, "err", err)
				return errors.Join(fmt.Errorf("%w: %w", ErrPayoutFailed, payErr), err)
			}
			return fmt.Errorf("%w: proposal %d to %s: %w", ErrPayoutFailed, id, prpsl.Target, payErr)
		}
		return nil
	})
}

// compensateExecute undoes the committed debit after a failed transfer. It runs detached
// from the caller's context: a client that gave up must not leave the debit in place.
func compensateExecute(c *call, prpsl *dao.Proposal) error {
	st := newTxState(context.WithoutCancel(c.ctx), c.e.state)
	prpsl.State = dao.ProposalQueued
	prpsl.ExecutedAt = 0
	saveProposal(st, prpsl)
	if _, err := addTreasuryFunds(st, prpsl.Amount); err != nil {
		return err
	}
	return st.commit()
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

// GetProposal returns a copy of the stored proposal.
func (e *Engine) GetProposal(ctx context.Context, id uint64) (*dao.Proposal, error) {
	var out *dao.Proposal
	err := e.run(ctx, sdk.Env{}, "proposal_get", func(c *call) error {
		p, err := loadProposal(c.st, id)
		out = p
		return err
	})
	return out, err
}

// GetLength is the number of proposals ever created, including cancelled ones.
func (e *Engine) GetLength(ctx context.Context) (uint64, error) {
	var n uint64
	err := e.run(ctx, sdk.Env{}, "proposal_count", func(c *call) error {
		v, err := getCount(c.st, ProposalsCount)
		n = v
		return err
	})
	return n, err
}
