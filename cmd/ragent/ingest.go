package main

import (
	"context"
	"fmt"

	"github.com/harunnryd/ragent/internal/config"
	"github.com/harunnryd/ragent/internal/retrieval"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Index text and markdown files into the local vector store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithComponents(cmd, func(ctx context.Context, c *components) error {
			rc := c.cfg.Retrieval
			if rc.Backend != "" && rc.Backend != config.RetrievalBackendChromem {
				return fmt.Errorf("ingest writes to the %s backend only, configured backend is %s", config.RetrievalBackendChromem, rc.Backend)
			}

			lockTimeout, err := config.DurationOrDefault(rc.LockTimeout, config.DefaultRetrievalLockTimeout)
			if err != nil {
				return fmt.Errorf("retrieval.lock_timeout: %w", err)
			}

			store, err := retrieval.OpenChromemStore(rc.Path, rc.Collection)
			if err != nil {
				return err
			}

			indexer := retrieval.NewIndexer(store, c.router, retrieval.IndexerOptions{
				Dir:         rc.Path,
				ChunkSize:   rc.ChunkSize,
				LockTimeout: lockTimeout,
			})

			report, err := indexer.Ingest(ctx, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range report.Indexed {
				fmt.Fprintf(out, "indexed  %s\n", path)
			}
			for _, path := range report.Skipped {
				fmt.Fprintf(out, "skipped  %s (unchanged)\n", path)
			}
			fmt.Fprintf(out, "%d files indexed, %d skipped, %d chunks written to %s\n",
				len(report.Indexed), len(report.Skipped), report.Chunks, store.Collection())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
