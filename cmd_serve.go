package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gravity-cluster/pkg/stream"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a configuration and stream snapshots over websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = a.cfg.Stream.Addr
			}

			d := a.newDriver()
			if err := d.Prepare(a.scenarioName(cmd)); err != nil {
				return err
			}
			if paused, _ := cmd.Flags().GetBool("paused"); !paused {
				if err := d.Start(); err != nil {
					return err
				}
			}

			hub := stream.NewHub(d, a.cfg.Stream.FrameRate, a.log)
			mux := http.NewServeMux()
			mux.Handle("/", hub.Handler())
			mux.Handle("/metrics", a.metrics.Handler())
			srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			updates, unsubscribe := d.Subscribe()
			defer unsubscribe()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return d.Run(ctx) })
			g.Go(func() error {
				hub.Run(ctx, updates)
				return nil
			})
			g.Go(func() error {
				a.log.Info("serving", "addr", addr, "configuration", d.Current())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().String("scenario", "", "Configuration to run")
	cmd.Flags().String("addr", "", "Listen address (default stream.addr)")
	cmd.Flags().Bool("paused", false, "Start paused; clients send {\"action\":\"start\"}")
	return cmd
}
