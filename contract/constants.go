package contract

// -----------------------------------------------------------------------------
// Actions
// -----------------------------------------------------------------------------

// Action names accepted by Call.
const (
	ActionAdminAdd        = "admin_add"
	ActionProposalCreate  = "proposal_create"
	ActionProposalDelist  = "proposal_delist"
	ActionVote            = "proposals_vote"
	ActionVoteRemove      = "proposal_vote_remove"
	ActionProposalTally   = "proposal_tally"
	ActionProposalQueue   = "proposal_queue"
	ActionProposalExecute = "proposal_execute"
	ActionDeposit         = "treasury_deposit"
	ActionBalanceCheck    = "balance_check"
	ActionCanVote         = "can_vote"
	ActionProposalCount   = "proposal_count"
)

// -----------------------------------------------------------------------------
// Defaults
// -----------------------------------------------------------------------------

const (
	// MaxDescriptionLength limits the size of proposal descriptions.
	MaxDescriptionLength = 4096
)
