package contract

import (
	"fmt"

	"okinoko_vote/contract/dao"
)

// loadProposal fetches a proposal or wraps ErrNotFound.
func loadProposal(st *txState, id uint64) (*dao.Proposal, error) {
	ptr, err := st.Get(proposalKey(id))
	if err != nil {
		return nil, err
	}
	if ptr == nil || *ptr == "" {
		return nil, reject(ErrNotFound, "proposal %d", id)
	}
	prpsl, err := dao.DecodeProposal([]byte(*ptr))
	if err != nil {
		return nil, fmt.Errorf("decode proposal %d: %w", id, err)
	}
	return prpsl, nil
}

func saveProposal(st *txState, prpsl *dao.Proposal) {
	st.Set(proposalKey(prpsl.ID), string(dao.EncodeProposal(prpsl)))
}
