package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentName, _ := cmd.Flags().GetString("agent")
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return fmt.Errorf("query is empty")
		}

		return executeWithComponents(cmd, func(ctx context.Context, c *components) error {
			answerer, err := c.agent(agentName)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), answerer.Answer(ctx, query))
			return nil
		})
	},
}

func init() {
	askCmd.Flags().StringP("agent", "a", agentRAG, "agent to answer with (rag, tools)")
	rootCmd.AddCommand(askCmd)
}
