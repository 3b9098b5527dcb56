package contract

import (
	"context"
	"sort"
	"strconv"

	"okinoko_vote/sdk"
)

type action func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error)

var actions = map[string]action{
	ActionAdminAdd: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		addr, err := decodeAddressArg(payload)
		if err != nil {
			return "", err
		}
		if err := e.AddAdmin(ctx, env, addr); err != nil {
			return "", err
		}
		return "admin added", nil
	},
	ActionProposalCreate: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		args, err := decodeCreateProposalArgs(payload)
		if err != nil {
			return "", err
		}
		id, err := e.NewProposal(ctx, env, args)
		if err != nil {
			return "", err
		}
		return UInt64ToString(id), nil
	},
	ActionProposalDelist: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		id, err := parseUintField(payload, "proposal id")
		if err != nil {
			return "", err
		}
		if err := e.DelistProposal(ctx, env, id); err != nil {
			return "", err
		}
		return "delisted", nil
	},
	ActionVote: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		id, support, err := decodeVoteArgs(payload)
		if err != nil {
			return "", err
		}
		if err := e.CastVote(ctx, env, id, support); err != nil {
			return "", err
		}
		return "voted", nil
	},
	ActionVoteRemove: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		id, err := parseUintField(payload, "proposal id")
		if err != nil {
			return "", err
		}
		if err := e.RemoveVote(ctx, env, id); err != nil {
			return "", err
		}
		return "vote removed", nil
	},
	ActionProposalTally: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		id, err := parseUintField(payload, "proposal id")
		if err != nil {
			return "", err
		}
		passed, err := e.IsPassed(ctx, env, id)
		if err != nil {
			return "", err
		}
		if passed {
			return "passed", nil
		}
		return "failed", nil
	},
	ActionProposalQueue: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		id, err := parseUintField(payload, "proposal id")
		if err != nil {
			return "", err
		}
		if err := e.AddToQueue(ctx, env, id); err != nil {
			return "", err
		}
		return "queued", nil
	},
	ActionProposalExecute: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		id, err := parseUintField(payload, "proposal id")
		if err != nil {
			return "", err
		}
		if err := e.Execute(ctx, env, id); err != nil {
			return "", err
		}
		return "executed", nil
	},
	ActionDeposit: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		amount, err := parseUintField(payload, "amount")
		if err != nil {
			return "", err
		}
		if err := e.Deposit(ctx, env, amount); err != nil {
			return "", err
		}
		return "deposited", nil
	},
	ActionBalanceCheck: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		addr, err := decodeAddressArg(payload)
		if err != nil {
			return "", err
		}
		b, err := e.CheckBalance(ctx, env, addr)
		if err != nil {
			return "", err
		}
		return UInt64ToString(b), nil
	},
	ActionCanVote: func(e *Engine, ctx context.Context, env sdk.Env, payload string) (string, error) {
		addr, err := decodeAddressArg(payload)
		if err != nil {
			return "", err
		}
		ok, err := e.CanVote(ctx, env, addr)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(ok), nil
	},
	ActionProposalCount: func(e *Engine, ctx context.Context, _ sdk.Env, _ string) (string, error) {
		n, err := e.GetLength(ctx)
		if err != nil {
			return "", err
		}
		return UInt64ToString(n), nil
	},
}

// Call dispatches a named action with a pipe-delimited payload, the way clients that only
// speak strings talk to the engine.
// Example payload: Call(ctx, env, "proposals_vote", "12|1")
func (e *Engine) Call(ctx context.Context, env sdk.Env, name, payload string) (string, error) {
	fn, ok := actions[name]
	if !ok {
		return "", reject(ErrInvalidInput, "unknown action %q", name)
	}
	return fn(e, ctx, env, payload)
}

// Actions lists the action names Call accepts.
func Actions() []string {
	out := make([]string, 0, len(actions))
	for k := range actions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
