package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gravity-cluster/pkg/store"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Integrate a configuration and store its trajectory in SQLite",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("steps")
			every, _ := cmd.Flags().GetInt("every")
			if every < 1 {
				every = a.cfg.Driver.StepsPerFrame
			}
			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = a.cfg.Store.Path
			}

			rec, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer rec.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			d := a.newDriver()
			name := a.scenarioName(cmd)
			if err := d.Prepare(name); err != nil {
				return err
			}
			runID, err := rec.BeginRun(ctx, name, a.effectiveG(name), d.TimeStep())
			if err != nil {
				return err
			}
			snap, _ := d.Snapshot()
			if err := rec.Append(ctx, runID, snap); err != nil {
				return err
			}
			if err := d.Start(); err != nil {
				return err
			}

			samples := 1
			for i := 1; i <= steps; i++ {
				if ctx.Err() != nil {
					a.log.Warn("recording interrupted", "step", i-1)
					break
				}
				if err := d.Tick(); err != nil {
					return fmt.Errorf("step %d: %w", i, err)
				}
				if i%every != 0 {
					continue
				}
				snap, _ := d.Snapshot()
				if err := rec.Append(ctx, runID, snap); err != nil {
					return err
				}
				samples++
			}

			a.log.Info("recording finished", "run", runID, "configuration", name, "samples", samples, "db", dbPath)
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"run": runID, "samples": samples, "db": dbPath})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %d: %d samples of %q written to %s\n", runID, samples, name, dbPath)
			return nil
		},
	}
	cmd.Flags().String("scenario", "", "Configuration to integrate")
	cmd.Flags().Int("steps", 10000, "Number of steps")
	cmd.Flags().Int("every", 0, "Record every N steps (default driver.steps_per_frame)")
	cmd.Flags().String("db", "", "SQLite database path (default store.path)")
	return cmd
}
