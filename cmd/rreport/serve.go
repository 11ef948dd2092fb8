package main

import (
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/rreport/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return web.Run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "interface to bind (overrides SERVER_HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides SERVER_PORT)")
	return cmd
}
