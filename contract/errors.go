package contract

import (
	"errors"
	"fmt"
)

// Rejection kinds. Every failed call wraps exactly one of these so callers can branch with errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidTimeWindow = errors.New("invalid time window")
	ErrTooEarly          = errors.New("too early")
	ErrDuplicateVote     = errors.New("duplicate vote")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidConfig     = errors.New("invalid config")
	ErrInvalidInput      = errors.New("invalid input")
	ErrPayoutFailed      = errors.New("payout failed")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrUnauthorized, "Unauthorized"},
	{ErrInvalidState, "InvalidState"},
	{ErrInvalidTimeWindow, "InvalidTimeWindow"},
	{ErrTooEarly, "TooEarly"},
	{ErrDuplicateVote, "DuplicateVote"},
	{ErrNotFound, "NotFound"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrInvalidConfig, "InvalidConfig"},
	{ErrInvalidInput, "InvalidInput"},
	{ErrPayoutFailed, "PayoutFailed"},
}

// Kind names the rejection kind of err, "Internal" for store or oracle failures and "" for nil.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}

func reject(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
