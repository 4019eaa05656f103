package main

import (
	"fmt"
	"strings"

	"github.com/harunnryd/ragent/internal/tool"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools offered to the tool-calling agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfigForCommand(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		options, err := tool.BuiltinOptionsFromConfig(loaded.Tools)
		if err != nil {
			return err
		}
		registry, err := tool.NewBuiltinRegistry(options, loaded.Tools.Enabled)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), formatTools(registry.Descriptors()))
		return nil
	},
}

var (
	tableAccent = lipgloss.Color("99")
	tableHeader = lipgloss.NewStyle().Foreground(tableAccent).Bold(true).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Padding(0, 1)
	tableBorder = lipgloss.NewStyle().Foreground(tableAccent)
)

func formatTools(descriptors []tool.ToolDescriptor) string {
	if len(descriptors) == 0 {
		return "No tools enabled"
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
		Headers("Name", "Description", "Risk", "Capabilities")

	for _, d := range descriptors {
		t.Row(
			d.Definition.Name,
			truncateString(d.Definition.Description, 48),
			string(d.Metadata.Risk),
			strings.Join(d.Metadata.Capabilities, ", "),
		)
	}

	return t.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
