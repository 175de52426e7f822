package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/coderag-go/internal/domain/usecases"
	"github.com/0xcro3dile/coderag-go/internal/infrastructure/http"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat page and the websocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.startWatcher(ctx); err != nil {
				return err
			}

			if addr == "" {
				addr = opts.cfg.Server.Addr
			}
			registry := usecases.NewSessionRegistry(a.newSession, opts.logger)
			return http.NewServer(registry, addr, opts.logger).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
