package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"okinoko_vote/contract"
	"okinoko_vote/sdk"
)

func newCallCmd(root *rootOptions) *cobra.Command {
	var (
		caller string
		at     string
		txID   string
	)

	cmd := &cobra.Command{
		Use:   "call <action> [payload]",
		Short: "Dispatch a single action against the configured store",
		Long: `Runs one action through the engine and prints its result.

The payload is pipe-delimited, for example:
  okinoko-vote call proposal_create 'fund infra|2025-09-03T00:00:00|2025-09-05T00:00:00|hive:dev|250' --as hive:alice
  okinoko-vote call proposals_vote '1|1' --as hive:alice

Use a persistent store (file, sqlite, postgres, redis) so state survives between calls.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load(cmd)
			if err != nil {
				return err
			}
			ts := time.Now().Unix()
			if at != "" {
				v, ok := sdk.ParseTimestamp(strings.TrimSpace(at))
				if !ok {
					return fmt.Errorf("%w: --at %q is not a timestamp", contract.ErrInvalidInput, at)
				}
				ts = v
			}
			if txID == "" {
				txID = uuid.NewString()
			}
			payload := ""
			if len(args) > 1 {
				payload = args[1]
			}

			n, err := buildNode(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := n.Close(); err != nil {
					log.Warn("Failed to close backends", "err", err)
				}
			}()

			res, err := n.Engine.Call(cmd.Context(), sdk.NewEnv(txID, caller, ts), args[0], payload)
			if err != nil {
				return fmt.Errorf("%s (%s): %w", args[0], contract.Kind(err), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&caller, "as", "", "Caller address")
	cmd.Flags().StringVar(&at, "at", "", "Call time as unix seconds or RFC3339, defaults to now")
	cmd.Flags().StringVar(&txID, "tx", "", "Transaction id, defaults to a fresh UUID")
	return cmd
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the actions accepted by call",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, a := range contract.Actions() {
				fmt.Fprintln(cmd.OutOrStdout(), a)
			}
		},
	}
}
