package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aristath/projplan/internal/orchestrator"
	"github.com/aristath/projplan/internal/report"
)

func sensitivityCmd(a *app) *cobra.Command {
	var (
		scenario string
		taskID   string
		hours    float64
		factor   float64
		top      int
	)

	cmd := &cobra.Command{
		Use:   "sensitivity FILE|PROJECT",
		Short: "Show how the makespan reacts to changed durations",
		Long: `With --task and --hours, re-solve with one task's duration replaced.
With --factor, scale every task's duration in turn and rank tasks by the
makespan increase they cause.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			s, err := a.scenario(scenario)
			if err != nil {
				return err
			}
			p, err := a.loadProject(ctx, args[0])
			if err != nil {
				return err
			}
			prep, err := a.runner.Prepare(ctx, p)
			if err != nil {
				return err
			}

			var results []orchestrator.SensitivityResult
			switch {
			case factor > 0:
				results, err = a.runner.Sweep(ctx, prep, string(s), factor)
				if err != nil {
					return err
				}
				if top > 0 && len(results) > top {
					results = results[:top]
				}
			case taskID != "":
				res, err := a.runner.Sensitivity(ctx, prep, taskID, string(s), hours)
				if err != nil {
					return err
				}
				results = []orchestrator.SensitivityResult{res}
			default:
				return errors.New("either --task with --hours or --factor is required")
			}

			if a.opts.jsonOut {
				return outputJSON(out, results)
			}
			fmt.Fprint(out, report.Sensitivity(results))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "Scenario to analyse: best, expected or worst")
	cmd.Flags().StringVarP(&taskID, "task", "t", "", "Task whose duration is replaced")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Replacement duration in hours")
	cmd.Flags().Float64Var(&factor, "factor", 0, "Scale each task's duration by this factor in turn")
	cmd.Flags().IntVar(&top, "top", 0, "Show only the N most sensitive tasks (with --factor)")
	cmd.MarkFlagsMutuallyExclusive("task", "factor")
	cmd.MarkFlagsRequiredTogether("task", "hours")
	return cmd
}
