package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"omzet/internal/monitor"
)

func newLibrariesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "libraries",
		Short: "List watched libraries and their pending matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(cfg.Libraries))
			for _, name := range sortedKeys(cfg.Libraries) {
				library := cfg.Libraries[name]
				wf, err := cfg.ResolveWorkflow(library.Workflow)
				if err != nil {
					return err
				}
				matchCount := "-"
				if matches, err := monitor.Discover(library.Directory, wf); err == nil {
					matchCount = strconv.Itoa(len(matches))
				}
				rows = append(rows, []string{
					displayTitle(name),
					library.Directory,
					displayTitle(library.Workflow),
					matchCount,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Library", "Directory", "Workflow", "Matching Files"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
}
