package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type scenarioInfo struct {
	Name   string  `json:"name"`
	Bodies int     `json:"bodies"`
	G      float64 `json:"g"`
	Dt     float64 `json:"dt,omitempty"`
}

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the available configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			infos := make([]scenarioInfo, 0, len(a.scenarios.Configurations))
			for _, c := range a.scenarios.Configurations {
				infos = append(infos, scenarioInfo{
					Name:   c.Name,
					Bodies: len(c.Bodies),
					G:      a.effectiveG(c.Name),
					Dt:     c.Dt,
				})
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), infos)
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %3d bodies  G=%g\n", info.Name, info.Bodies, info.G)
			}
			return nil
		},
	}
}
