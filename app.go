package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"gravity-cluster/pkg/config"
	"gravity-cluster/pkg/driver"
	"gravity-cluster/pkg/logging"
	"gravity-cluster/pkg/metrics"
	"gravity-cluster/pkg/scenario"
	"gravity-cluster/pkg/simulation"
)

// app bundles what every command needs.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	scenarios *scenario.File
	metrics   *metrics.Collector
}

// loadApp resolves config file, environment and global flags, in that
// order of increasing precedence.
func loadApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("scenarios"); v != "" {
		cfg.Scenarios.File = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())

	var file *scenario.File
	if cfg.Scenarios.File != "" {
		file, err = scenario.Load(cfg.Scenarios.File)
	} else {
		file, err = scenario.Default()
	}
	if err != nil {
		return nil, err
	}
	log.Debug("scenarios loaded", "file", cfg.Scenarios.File, "count", len(file.Configurations))

	return &app{
		cfg:       cfg,
		log:       log,
		scenarios: file,
		metrics:   metrics.NewCollector(),
	}, nil
}

// loader builds clusters from the scenario file with the configured
// physics options.
func (a *app) loader() driver.Loader {
	return func(name string) (driver.Prepared, error) {
		c, err := a.scenarios.Lookup(name)
		if err != nil {
			return driver.Prepared{}, err
		}
		cl, err := c.Cluster(a.cfg.Physics.G,
			simulation.WithSoftening(a.cfg.Physics.Softening),
			simulation.WithWorkers(a.cfg.Physics.Workers),
			simulation.WithLogger(a.log.With("configuration", name)),
			simulation.WithObserver(a.metrics.For(name)),
		)
		if err != nil {
			return driver.Prepared{}, err
		}
		return driver.Prepared{Cluster: cl, TimeStep: c.Dt}, nil
	}
}

func (a *app) newDriver() *driver.Driver {
	d := a.cfg.Driver
	return driver.New(a.loader(), a.scenarios.Names(), driver.Config{
		TimeStep:       d.TimeStep,
		TickInterval:   d.TickInterval,
		StepsPerFrame:  d.StepsPerFrame,
		MaxTracePoints: d.MaxTracePoints,
		ShowPaths:      d.ShowPaths,
	}, a.log)
}

// scenarioName picks the --scenario flag, then the configured default,
// then the first configuration in the file.
func (a *app) scenarioName(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetString("scenario"); v != "" {
		return v
	}
	if a.cfg.Scenarios.Default != "" {
		return a.cfg.Scenarios.Default
	}
	return a.scenarios.Names()[0]
}

// effectiveG is the constant a configuration runs with.
func (a *app) effectiveG(name string) float64 {
	c, err := a.scenarios.Lookup(name)
	if err == nil && c.G != 0 {
		return c.G
	}
	return a.cfg.Physics.G
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// signalContext is cancelled on the first interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	notifySignals(ch)
	go func() {
		defer signal.Stop(ch)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
