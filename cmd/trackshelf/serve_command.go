package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trackshelf/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog screens as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if port != "" {
				ctx.config.Server.Port = port
			}

			vs, err := server.NewViewServer(ctx.config, ctx.configPath(), a.store, a.client, a.logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = vs.Start(runCtx)
			if err == nil && runCtx.Err() != nil {
				a.logger.Info("Received shutdown signal")
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Override server.port")
	return cmd
}
