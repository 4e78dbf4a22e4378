package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/mcassets/internal/logger"
	"github.com/Faultbox/mcassets/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-index project roots on change and optionally serve metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Data.Roots) == 0 {
				return errors.New("no project roots configured (use --root)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if addr := a.cfg.Metrics.Listen; addr != "" {
				srv := &http.Server{Addr: addr, Handler: a.metrics.Handler()}
				go func() {
					logger.Info("metrics endpoint listening", zap.String("addr", addr))
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics endpoint failed", zap.Error(err))
					}
				}()
				defer srv.Shutdown(context.Background())
			}

			w, err := watch.New(a.cfg.Data.Roots, a.cfg.Watch.Debounce, func() {
				a.service.InvalidateProject()
				sess, err := a.service.Session(ctx)
				if err != nil {
					return
				}
				logger.Info("project re-indexed", zap.Stringer("stats", sess.Catalog().Project().Stats()))
			})
			if err != nil {
				return err
			}
			defer w.Close()

			if _, err := a.service.Session(ctx); err != nil {
				return err
			}
			fmt.Printf("Watching %d root(s); press Ctrl+C to stop\n", len(a.cfg.Data.Roots))

			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
