package sdk

import (
	"strconv"
	"time"
)

// Env is the per-call context handed to the engine. The caller identity is already
// authenticated by whatever transport produced it.
type Env struct {
	TxID      string
	Sender    Address
	Timestamp int64 // unix seconds
}

// NewEnv builds an Env and normalizes the sender.
// Example payload: sdk.NewEnv("tx-1", "hive:alice", 1756857600)
func NewEnv(txID string, sender string, ts int64) Env {
	return Env{TxID: txID, Sender: NewAddress(sender), Timestamp: ts}
}

// ParseTimestamp accepts unix seconds or iso-ish strings since callers flip formats sometimes.
// Example payload: sdk.ParseTimestamp("2025-09-03T00:00:00")
func ParseTimestamp(val string) (int64, bool) {
	if v, err := strconv.ParseInt(val, 10, 64); err == nil {
		return v, true
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.Unix(), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", val, time.UTC); err == nil {
		return t.Unix(), true
	}
	return 0, false
}
