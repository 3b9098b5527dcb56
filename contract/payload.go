package contract

import (
	"strconv"
	"strings"

	"okinoko_vote/sdk"
)

// splitPayload splits a pipe-delimited payload and returns an accessor that yields "" past the end.
func splitPayload(raw string) (int, func(i int) string) {
	parts := strings.Split(raw, "|")
	return len(parts), func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
}

func parseUintField(v, field string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, reject(ErrInvalidInput, "invalid %s %q", field, v)
	}
	return n, nil
}

func parseTimeField(v, field string) (int64, error) {
	ts, ok := sdk.ParseTimestamp(strings.TrimSpace(v))
	if !ok {
		return 0, reject(ErrInvalidInput, "invalid %s %q", field, v)
	}
	return ts, nil
}

// decodeCreateProposalArgs unpacks the proposal_create payload.
// Example payload: "upgrade node infra|2025-09-03T00:00:00|2025-09-05T00:00:00|hive:dev|250"
func decodeCreateProposalArgs(raw string) (NewProposalArgs, error) {
	n, get := splitPayload(raw)
	if n < 5 {
		return NewProposalArgs{}, reject(ErrInvalidInput, "proposal payload needs desc|start|deadline|target|amount")
	}
	start, err := parseTimeField(get(1), "start")
	if err != nil {
		return NewProposalArgs{}, err
	}
	deadline, err := parseTimeField(get(2), "deadline")
	if err != nil {
		return NewProposalArgs{}, err
	}
	amount, err := parseUintField(get(4), "amount")
	if err != nil {
		return NewProposalArgs{}, err
	}
	return NewProposalArgs{
		Description: get(0),
		StartTime:   start,
		Deadline:    deadline,
		Target:      sdk.NewAddress(get(3)),
		Amount:      amount,
	}, nil
}

// decodeVoteArgs unpacks "id|1" (support) or "id|0" (against).
func decodeVoteArgs(raw string) (uint64, bool, error) {
	n, get := splitPayload(raw)
	if n != 2 {
		return 0, false, reject(ErrInvalidInput, "vote payload needs id|choice")
	}
	id, err := parseUintField(get(0), "proposal id")
	if err != nil {
		return 0, false, err
	}
	switch strings.ToLower(get(1)) {
	case "1", "yes", "true", "for":
		return id, true, nil
	case "0", "no", "false", "against":
		return id, false, nil
	default:
		return 0, false, reject(ErrInvalidInput, "invalid vote choice %q", get(1))
	}
}

func decodeAddressArg(raw string) (sdk.Address, error) {
	addr := sdk.NewAddress(raw)
	if addr == "" {
		return "", reject(ErrInvalidInput, "address required")
	}
	return addr, nil
}
