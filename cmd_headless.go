package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"gravity-cluster/pkg/driver"
)

func newHeadlessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Integrate a configuration without a window and print the final state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 0 {
				return fmt.Errorf("--steps must not be negative, got %d", steps)
			}

			d := a.newDriver()
			name := a.scenarioName(cmd)
			if err := d.Prepare(name); err != nil {
				return err
			}
			initial, _ := d.Snapshot()
			if err := d.Start(); err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < steps; i++ {
				if err := d.Tick(); err != nil {
					return fmt.Errorf("step %d: %w", i+1, err)
				}
			}
			d.Pause()
			final, err := d.Snapshot()
			if err != nil {
				return err
			}
			a.log.Info("headless run finished", "configuration", name, "steps", final.Step, "elapsed", time.Since(start))

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), final)
			}
			printSummary(cmd.OutOrStdout(), initial, final)
			return nil
		},
	}
	cmd.Flags().String("scenario", "", "Configuration to integrate")
	cmd.Flags().Int("steps", 1000, "Number of steps")
	return cmd
}

func printSummary(w io.Writer, initial, final driver.Snapshot) {
	fmt.Fprintf(w, "%s: %d steps, t=%.4f, dt=%g\n", final.Configuration, final.Step, final.Time, final.TimeStep)
	if final.Finite && initial.Finite && initial.Energy != 0 {
		drift := (final.Energy - initial.Energy) / initial.Energy
		fmt.Fprintf(w, "energy %.6g -> %.6g (relative drift %.3e)\n", initial.Energy, final.Energy, drift)
	} else if !final.Finite {
		fmt.Fprintln(w, "state is no longer finite")
	}
	for _, b := range final.Bodies {
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("#%d", b.Index)
		}
		fmt.Fprintf(w, "  %-12s pos=(%.3f, %.3f) vel=(%.3f, %.3f)\n", name, b.X, b.Y, b.VX, b.VY)
	}
}
