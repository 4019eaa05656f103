package main

import (
	"context"
	"fmt"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured models and whether their provider is ready",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithComponents(cmd, func(ctx context.Context, c *components) error {
			ready := make(map[string]bool)
			for _, name := range c.router.ListModels() {
				ready[name] = true
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(tableBorder).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return tableHeader
					}
					return tableCell
				}).
				Headers("Model", "Provider", "Role", "Ready")

			for _, entry := range c.cfg.Models.Registry {
				role := ""
				switch entry.Name {
				case c.cfg.Models.Default:
					role = "completion"
				case c.cfg.Models.Embedding:
					role = "embedding"
				}
				status := "no"
				if ready[entry.Name] {
					status = "yes"
				}
				t.Row(entry.Name, entry.Provider, role, status)
			}

			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
