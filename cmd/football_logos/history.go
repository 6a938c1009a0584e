package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/italolelis/football_logos/internal/config"
	"github.com/italolelis/football_logos/internal/downloader"
	"github.com/italolelis/football_logos/internal/storage/sqlite"
)

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show per-run outcome counts recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.JournalPath == "" {
				return fmt.Errorf("no journal configured: pass --journal or set JOURNAL_PATH")
			}

			database, err := sqlite.InitDB(cfg.JournalPath)
			if err != nil {
				return fmt.Errorf("failed to open journal: %w", err)
			}
			defer database.Close()

			runs, err := sqlite.NewInstrumentedJournalRepository(database, nil).ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			downloader.PrintHistory(cmd.OutOrStdout(), runs)

			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "journal SQLite file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")

	return cmd
}
