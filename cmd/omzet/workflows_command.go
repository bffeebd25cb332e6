package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newWorkflowsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List configured workflows and their tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(cfg.Workflows))
			for _, name := range sortedKeys(cfg.Workflows) {
				wf, err := cfg.ResolveWorkflow(name)
				if err != nil {
					return err
				}
				labels := make([]string, 0, len(wf.Tasks))
				for _, task := range wf.Tasks {
					labels = append(labels, task.Label())
				}
				rows = append(rows, []string{
					displayTitle(name),
					joinOrDash(wf.IncludedExtensions),
					strconv.Itoa(len(wf.Tasks)),
					joinOrDash(labels),
					wf.ScratchpadDir,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Workflow", "Extensions", "Tasks", "Task Labels", "Scratchpad"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
			return nil
		},
	}
}
