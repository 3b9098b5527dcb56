package contract

import (
	"fmt"
	"strconv"
)

const (
	// ProposalsCount holds an integer counter for proposals (used for generating IDs).
	ProposalsCount = "count:props"
	// TreasuryBalanceKey holds the treasury balance in native units.
	TreasuryBalanceKey = "treasury"
)

// getCount reads the string counter under the key and defaults to zero.
func getCount(st *txState, key string) (uint64, error) {
	ptr, err := st.Get(key)
	if err != nil {
		return 0, err
	}
	if ptr == nil || *ptr == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(*ptr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt counter %q: %w", key, err)
	}
	return n, nil
}

// setCount stores uint64 counters back as decimal strings for the kv.
func setCount(st *txState, key string, n uint64) {
	st.Set(key, strconv.FormatUint(n, 10))
}

// UInt64ToString turns an id back into decimal text for logs or payload building.
// Example payload: UInt64ToString(9001)
func UInt64ToString(val uint64) string {
	return strconv.FormatUint(val, 10)
}
