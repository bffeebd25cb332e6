package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"omzet/internal/state"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently committed workflow runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			store, err := state.Open(cfg.Paths.StateDir)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			records, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.CompletedAt.Local().Format(time.DateTime),
					displayTitle(record.Library),
					record.SourcePath,
					displayTitle(record.Workflow),
					strconv.Itoa(record.TasksRun),
					strconv.Itoa(record.TasksSkipped),
					truncate(record.Fingerprint, 12),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Completed", "Library", "File", "Workflow", "Run", "Skipped", "Fingerprint"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
