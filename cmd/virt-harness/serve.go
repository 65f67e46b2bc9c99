package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/config"
	"github.com/kubev2v/virt-harness/internal/handlers"
	"github.com/kubev2v/virt-harness/internal/server"
	"github.com/kubev2v/virt-harness/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(cfg *config.Configuration) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the run history over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if cfg.Harness.DataFolder == "" {
				zap.S().Warn("no data folder configured, serving an empty in-memory history")
			}

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx)) //nolint:errcheck

			h := handlers.New(services.NewReportsService(a.store), a.registry)
			srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
				handlers.RegisterHandlers(router, h)
			})
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(ctx)
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			zap.S().Info("shutting down http server")
			return srv.Stop(stopCtx)
		},
	}
}
