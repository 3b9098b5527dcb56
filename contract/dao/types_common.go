package dao

import "okinoko_vote/sdk"

// ProposalState captures a proposal's lifecycle.
type ProposalState uint8

const (
	ProposalStateUnspecified ProposalState = 0
	ProposalActive           ProposalState = 1
	ProposalCancelled        ProposalState = 2
	ProposalFailed           ProposalState = 3
	ProposalPassed           ProposalState = 4
	ProposalQueued           ProposalState = 5
	ProposalExecuted         ProposalState = 6
)

// String prints the proposal state as lower-case text for events and logs.
// Example payload: dao.ProposalPassed.String()
func (ps ProposalState) String() string {
	switch ps {
	case ProposalActive:
		return "active"
	case ProposalCancelled:
		return "cancelled"
	case ProposalFailed:
		return "failed"
	case ProposalPassed:
		return "passed"
	case ProposalQueued:
		return "queued"
	case ProposalExecuted:
		return "executed"
	default:
		return "unspecified"
	}
}

// Terminal reports whether no further transition can leave this state.
func (ps ProposalState) Terminal() bool {
	return ps == ProposalCancelled || ps == ProposalFailed || ps == ProposalExecuted
}

// MarshalText lets json encoders print the readable state.
func (ps ProposalState) MarshalText() ([]byte, error) {
	return []byte(ps.String()), nil
}

// Proposal is a request to move Amount native units from the treasury to Target.
type Proposal struct {
	ID           uint64
	Creator      sdk.Address
	Description  string
	StartTime    int64
	Deadline     int64
	Target       sdk.Address
	Amount       uint64
	State        ProposalState
	VotesFor     uint64
	VotesAgainst uint64
	VoterCount   uint64
	CreatedAt    int64
	QueuedAt     int64
	ExecutedAt   int64
	Tx           string
}

// VotingOpen reports whether now falls inside [StartTime, Deadline).
func (p *Proposal) VotingOpen(now int64) bool {
	return p.StartTime <= now && now < p.Deadline
}

// Decided applies the pass rule: strictly more support than opposition and at least some support.
func (p *Proposal) Decided() bool {
	return p.VotesFor > p.VotesAgainst && p.VotesFor > 0
}

// VoteRecord is the receipt kept per (proposal, voter) so removal can reverse the tally exactly.
type VoteRecord struct {
	Support bool
	Weight  uint64
	CastAt  int64
}

// Signed returns +weight for support and -weight against.
// Weights above MaxInt64 cannot come out of a real token balance and are clamped.
func (v VoteRecord) Signed() int64 {
	w := int64(v.Weight)
	if v.Weight > 1<<63-1 {
		w = 1<<63 - 1
	}
	if v.Support {
		return w
	}
	return -w
}
