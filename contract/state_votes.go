package contract

import (
	"fmt"

	"okinoko_vote/contract/dao"
	"okinoko_vote/sdk"
)

// saveVote persists a voter's receipt for a specific proposal.
func saveVote(st *txState, id uint64, voter sdk.Address, rec *dao.VoteRecord) {
	st.Set(proposalVoteKey(id, voter), string(dao.EncodeVoteRecord(rec)))
}

// loadVoteRecord returns nil when the voter has no outstanding vote.
func loadVoteRecord(st *txState, id uint64, voter sdk.Address) (*dao.VoteRecord, error) {
	ptr, err := st.Get(proposalVoteKey(id, voter))
	if err != nil {
		return nil, err
	}
	if ptr == nil || *ptr == "" {
		return nil, nil
	}
	rec, err := dao.DecodeVoteRecord([]byte(*ptr))
	if err != nil {
		return nil, fmt.Errorf("decode vote %d/%s: %w", id, voter, err)
	}
	return rec, nil
}

func deleteVote(st *txState, id uint64, voter sdk.Address) {
	st.Delete(proposalVoteKey(id, voter))
}
