package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"omzet/internal/config"
	"omzet/internal/logging"
	"omzet/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run <workflow> <file>",
		Short: "Run a workflow against a single file without the daemon",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			wf, err := cfg.ResolveWorkflow(args[0])
			if err != nil {
				return err
			}
			sourcePath, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}

			level := logLevel
			if level == "" {
				level = cfg.Logging.Level
			}
			logger, err := logging.New(logging.Options{
				Level:  level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return err
			}

			run := runner.New(logger,
				runner.WithShell(cfg.ShellBinary()),
				runner.WithFFprobe(cfg.FFprobeBinary()),
				runner.WithFFmpeg(cfg.FFmpegBinary()))

			report, err := run.RunWorkflow(cmd.Context(), wf, sourcePath)
			if err != nil {
				return fmt.Errorf("run workflow %q: %w", wf.Name, err)
			}

			rows := make([][]string, 0, len(report.Tasks)+len(report.SkippedTasks))
			for _, task := range report.Tasks {
				exit := ""
				if task.ExitCode != nil {
					exit = strconv.Itoa(*task.ExitCode)
				}
				outcome := "ok"
				if task.Failed() {
					outcome = "failed"
				} else if !task.Produced {
					outcome = "no output"
				}
				rows = append(rows, []string{task.TaskLabel, outcome, exit, task.Duration.Round(timeRounding).String()})
			}
			for _, label := range report.SkippedTasks {
				rows = append(rows, []string{label, "skipped", "", ""})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Committed %s (%s)\n", report.SourcePath, report.Duration().Round(timeRounding))
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"Task", "Outcome", "Exit", "Duration"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}
