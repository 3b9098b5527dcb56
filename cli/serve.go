package cli

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"okinoko_vote/api"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load(cmd)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.HTTP.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			n, err := buildNode(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := n.Close(); err != nil {
					log.Warn("Failed to close backends", "err", err)
				}
			}()

			ln, err := net.Listen("tcp", cfg.HTTP.Listen)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.HTTP.Listen, err)
			}
			log.Info("okinoko-vote ready",
				"version", Version,
				"addr", ln.Addr().String(),
				"store", cfg.Store.Kind,
				"membership", cfg.Membership.Kind,
				"payout", cfg.Payout.Kind)

			srv := api.NewHTTPServer(ctx, log, api.HTTPServerConfig{
				Listener:             ln,
				Engine:               n.Engine,
				Events:               n.Events,
				Gatherer:             n.Registry,
				TrustTimestampHeader: cfg.HTTP.TrustTimestampHeader,
			})
			srv.Wait()
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address, overrides http.listen")
	return cmd
}
