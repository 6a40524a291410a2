package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gravity-cluster",
		Short: "Two-dimensional N-body gravity simulator",
		Long: `gravity-cluster integrates a cluster of bodies under Newtonian gravity
with the velocity Verlet method.

Without a subcommand it opens the simulator window.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "gravity.yaml", "Application config file (missing file uses defaults)")
	rootCmd.PersistentFlags().String("scenarios", "", "Scenario file (YAML or JSON); empty uses the built-in set")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	run := newRunCmd()
	rootCmd.RunE = run.RunE
	rootCmd.Flags().AddFlagSet(run.Flags())

	rootCmd.AddCommand(
		newVersionCmd(),
		run,
		newHeadlessCmd(),
		newRecordCmd(),
		newServeCmd(),
		newScenariosCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "gravity-cluster version %s\n", version)
			}
		},
	}
}
