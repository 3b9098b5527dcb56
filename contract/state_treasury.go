package contract

import (
	"fmt"
	"strconv"
)

// getTreasuryBalance retrieves the treasury balance in native units.
func getTreasuryBalance(st *txState) (uint64, error) {
	ptr, err := st.Get(TreasuryBalanceKey)
	if err != nil {
		return 0, err
	}
	if ptr == nil || *ptr == "" {
		return 0, nil
	}
	balance, err := strconv.ParseUint(*ptr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt treasury balance: %w", err)
	}
	return balance, nil
}

// setTreasuryBalance sets the treasury balance.
func setTreasuryBalance(st *txState, amount uint64) {
	st.Set(TreasuryBalanceKey, strconv.FormatUint(amount, 10))
}

// addTreasuryFunds adds funds to the treasury. Overflow is rejected, never wrapped.
func addTreasuryFunds(st *txState, amount uint64) (uint64, error) {
	current, err := getTreasuryBalance(st)
	if err != nil {
		return 0, err
	}
	next := current + amount
	if next < current {
		return 0, reject(ErrInvalidInput, "treasury balance overflow")
	}
	setTreasuryBalance(st, next)
	return next, nil
}

// removeTreasuryFunds removes funds from the treasury.
// Returns ErrInsufficientFunds and leaves the balance untouched if it does not cover amount.
func removeTreasuryFunds(st *txState, amount uint64) (uint64, error) {
	current, err := getTreasuryBalance(st)
	if err != nil {
		return 0, err
	}
	if current < amount {
		return 0, reject(ErrInsufficientFunds, "treasury holds %d, need %d", current, amount)
	}
	setTreasuryBalance(st, current-amount)
	return current - amount, nil
}
