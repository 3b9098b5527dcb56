package dao

import (
	"fmt"
	"strconv"

	"github.com/CosmWasm/tinyjson/jwriter"

	"okinoko_vote/sdk"
)

// Event is a typed notification emitted after a call commits.
// String keeps the terse pipe format the indexers already grep for.
type Event interface {
	Kind() string
	String() string
	MarshalTinyJSON(w *jwriter.Writer)
}

type EventProposalCreated struct {
	ID          uint64
	Creator     sdk.Address
	Description string
	StartTime   int64
	Deadline    int64
	Target      sdk.Address
	Amount      uint64
}

func (e EventProposalCreated) Kind() string { return "proposal_created" }

// String gives explorers a neat pc line without scanning full storage diffs.
func (e EventProposalCreated) String() string {
	return fmt.Sprintf("pc|id:%d|by:%s|to:%s|am:%d|s:%d|d:%d",
		e.ID, e.Creator, e.Target, e.Amount, e.StartTime, e.Deadline)
}

type EventProposalCancelled struct {
	ID uint64
	By sdk.Address
}

func (e EventProposalCancelled) Kind() string { return "proposal_cancelled" }

func (e EventProposalCancelled) String() string {
	return fmt.Sprintf("ps|id:%d|s:%s|by:%s", e.ID, ProposalCancelled.String(), e.By)
}

type EventProposalPassed struct {
	ID           uint64
	VotesFor     uint64
	VotesAgainst uint64
}

func (e EventProposalPassed) Kind() string { return "proposal_passed" }

func (e EventProposalPassed) String() string {
	return fmt.Sprintf("ps|id:%d|s:%s|f:%d|a:%d", e.ID, ProposalPassed.String(), e.VotesFor, e.VotesAgainst)
}

type EventProposalQueued struct {
	ID      uint64
	ReadyAt int64
}

func (e EventProposalQueued) Kind() string { return "proposal_queued" }

// String logs when a passed proposal becomes executable so runners can schedule it.
func (e EventProposalQueued) String() string {
	return fmt.Sprintf("px|id:%d|ready:%s", e.ID, strconv.FormatInt(e.ReadyAt, 10))
}

type EventProposalExecuted struct {
	ID     uint64
	Target sdk.Address
	Amount uint64
}

func (e EventProposalExecuted) Kind() string { return "proposal_executed" }

func (e EventProposalExecuted) String() string {
	return fmt.Sprintf("pr|id:%d|to:%s|am:%d", e.ID, e.Target, e.Amount)
}

type EventVoteCast struct {
	ProposalID uint64
	Voter      sdk.Address
	Support    bool
	Weight     uint64
}

func (e EventVoteCast) Kind() string { return "vote_cast" }

// String includes the weight so tallies can be replayed from logs only.
func (e EventVoteCast) String() string {
	return fmt.Sprintf("v|id:%d|by:%s|s:%s|w:%d", e.ProposalID, e.Voter, strconv.FormatBool(e.Support), e.Weight)
}

type EventVoteRemoved struct {
	ProposalID uint64
	Voter      sdk.Address
}

func (e EventVoteRemoved) Kind() string { return "vote_removed" }

func (e EventVoteRemoved) String() string {
	return fmt.Sprintf("vr|id:%d|by:%s", e.ProposalID, e.Voter)
}

type EventAdminAdded struct {
	Admin sdk.Address
	By    sdk.Address
}

func (e EventAdminAdded) Kind() string { return "admin_added" }

func (e EventAdminAdded) String() string {
	return fmt.Sprintf("aa|a:%s|by:%s", e.Admin, e.By)
}

type EventFundsReceived struct {
	From   sdk.Address
	Amount uint64
}

func (e EventFundsReceived) Kind() string { return "funds_received" }

func (e EventFundsReceived) String() string {
	return fmt.Sprintf("af|by:%s|am:%d", e.From, e.Amount)
}
