package main

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"gravity-cluster/pkg/render"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the simulator window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			d := a.newDriver()
			if err := d.Prepare(a.scenarioName(cmd)); err != nil {
				return err
			}
			if start, _ := cmd.Flags().GetBool("start"); start {
				if err := d.Start(); err != nil {
					return err
				}
			}

			if addr := a.cfg.Metrics.Addr; addr != "" {
				srv := &http.Server{Addr: addr, Handler: a.metrics.Handler()}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.log.Error("metrics server failed", "addr", addr, "error", err)
					}
				}()
				defer srv.Close()
				a.log.Info("serving metrics", "addr", addr)
			}

			w := a.cfg.Window
			game := render.New(d, render.Options{
				Width:  w.Width,
				Height: w.Height,
				Title:  w.Title,
			}, a.log)
			return render.Run(game)
		},
	}
	cmd.Flags().String("scenario", "", "Configuration to load at startup")
	cmd.Flags().Bool("start", false, "Start running immediately instead of paused")
	return cmd
}
