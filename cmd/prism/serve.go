package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prismhq/prism/internal/config"
	"github.com/prismhq/prism/internal/history"
	"github.com/prismhq/prism/internal/httpapi"
	"github.com/prismhq/prism/internal/providers"
	"github.com/prismhq/prism/internal/store"
)

func newServeCommand(cfg config.Config) *cobra.Command {
	var addr string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the integrations HTTP API",
		RunE: func(_ *cobra.Command, _ []string) error {
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if verbose {
				cfg.Server.Verbose = true
			}

			st, err := store.Open(cfg.DataDir)
			if err != nil {
				return err
			}
			defer st.Close()

			hist, err := history.OpenStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer hist.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			server := httpapi.New(
				httpapi.Config{Addr: cfg.Server.Addr, Verbose: cfg.Server.Verbose},
				providers.ByID(),
				st,
				hist,
				aggregateOptions(cfg),
			)
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log requests to stderr")
	return cmd
}
