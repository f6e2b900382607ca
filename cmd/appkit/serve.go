package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/username/appkit/internal/httpapi"
	"github.com/username/appkit/pkg/dateutil"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar converter over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			res, err := newResolver()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := httpapi.NewServer(dateutil.RealClock{}, res, logger)
			defer server.Close()

			return httpapi.ListenAndServe(ctx, cfg.HTTP, server.Router(cfg.HTTP, cfg.Metrics), logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides http.addr)")

	return cmd
}
