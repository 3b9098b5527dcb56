package contract

import (
	"context"

	"okinoko_vote/contract/dao"
	"okinoko_vote/sdk"
)

// -----------------------------------------------------------------------------
// Voting
// -----------------------------------------------------------------------------

// CastVote records the caller's weighted support or opposition. The weight is the caller's
// token balance at the moment of casting and stays fixed until the vote is removed.
// Example payload: CastVote(ctx, env, 1, true)
func (e *Engine) CastVote(ctx context.Context, env sdk.Env, id uint64, support bool) error {
	return e.run(ctx, env, "proposals_vote", func(c *call) error {
		prpsl, err := loadProposal(c.st, id)
		if err != nil {
			return err
		}
		if prpsl.State != dao.ProposalActive {
			return reject(ErrInvalidState, "proposal %d is %s", id, prpsl.State)
		}
		if !prpsl.VotingOpen(c.now()) {
			return reject(ErrInvalidState, "proposal %d accepts votes in [%d, %d)", id, prpsl.StartTime, prpsl.Deadline)
		}
		weight, err := c.requireMember()
		if err != nil {
			return err
		}
		voter := c.sender()
		prev, err := loadVoteRecord(c.st, id, voter)
		if err != nil {
			return err
		}
		if prev != nil {
			return reject(ErrDuplicateVote, "%s already voted on proposal %d", voter, id)
		}

		if support {
			if prpsl.VotesFor+weight < prpsl.VotesFor {
				return reject(ErrInvalidInput, "tally overflow")
			}
			prpsl.VotesFor += weight
		} else {
			if prpsl.VotesAgainst+weight < prpsl.VotesAgainst {
				return reject(ErrInvalidInput, "tally overflow")
			}
			prpsl.VotesAgainst += weight
		}
		prpsl.VoterCount++
		saveProposal(c.st, prpsl)
		saveVote(c.st, id, voter, &dao.VoteRecord{Support: support, Weight: weight, CastAt: c.now()})
		c.emit(dao.EventVoteCast{ProposalID: id, Voter: voter, Support: support, Weight: weight})
		return nil
	})
}

// RemoveVote withdraws the caller's outstanding vote and subtracts exactly the recorded weight.
// Without an outstanding vote the call is rejected with ErrNotFound.
func (e *Engine) RemoveVote(ctx context.Context, env sdk.Env, id uint64) error {
	return e.run(ctx, env, "proposal_vote_remove", func(c *call) error {
		prpsl, err := loadProposal(c.st, id)
		if err != nil {
			return err
		}
		voter := c.sender()
		rec, err := loadVoteRecord(c.st, id, voter)
		if err != nil {
			return err
		}
		if rec == nil {
			return reject(ErrNotFound, "%s has no vote on proposal %d", voter, id)
		}
		// finished tallies are immutable
		if prpsl.State != dao.ProposalActive || !prpsl.VotingOpen(c.now()) {
			return reject(ErrInvalidState, "proposal %d no longer accepts vote changes", id)
		}

		if rec.Support {
			prpsl.VotesFor -= min(rec.Weight, prpsl.VotesFor)
		} else {
			prpsl.VotesAgainst -= min(rec.Weight, prpsl.VotesAgainst)
		}
		if prpsl.VoterCount > 0 {
			prpsl.VoterCount--
		}
		saveProposal(c.st, prpsl)
		deleteVote(c.st, id, voter)
		c.emit(dao.EventVoteRemoved{ProposalID: id, Voter: voter})
		return nil
	})
}

// GetVote returns the outstanding receipt of voter, or ErrNotFound.
func (e *Engine) GetVote(ctx context.Context, id uint64, voter sdk.Address) (*dao.VoteRecord, error) {
	var out *dao.VoteRecord
	err := e.run(ctx, sdk.Env{}, "vote_get", func(c *call) error {
		if _, err := loadProposal(c.st, id); err != nil {
			return err
		}
		rec, err := loadVoteRecord(c.st, id, voter)
		if err != nil {
			return err
		}
		if rec == nil {
			return reject(ErrNotFound, "%s has no vote on proposal %d", voter, id)
		}
		out = rec
		return nil
	})
	return out, err
}
