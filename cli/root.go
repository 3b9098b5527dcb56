// Package cli is the okinoko-vote command line: run the HTTP node or dispatch single actions.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"okinoko_vote/config"
)

const (
	Version = "0.1.0"
	appName = "okinoko-vote"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// Execute runs the command line with args against ctx.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "okinoko-vote",
		Short: "Token-gated governance node",
		Long: `okinoko-vote runs a governance engine for an NFT-gated community:
members holding the membership token create proposals and vote with
their token balance, admins finalize, queue and execute passed proposals
against the community treasury.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides log_level")

	cmd.AddCommand(
		newServeCmd(opts),
		newCallCmd(opts),
		newActionsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

// load reads the config file and applies the global flag overrides.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if o.configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	return cfg, newLogger(cmd.ErrOrStderr(), level), nil
}
