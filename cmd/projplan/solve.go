package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aristath/projplan/internal/orchestrator"
	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/report"
	"github.com/aristath/projplan/internal/scheduler"
)

// scheduleJSON is the machine-readable form of one solved scenario.
type scheduleJSON struct {
	Project      string      `json:"project"`
	Scenario     string      `json:"scenario"`
	Status       string      `json:"status"`
	Makespan     float64     `json:"makespan"`
	CriticalPath []string    `json:"critical_path"`
	RunID        string      `json:"run_id,omitempty"`
	Error        string      `json:"error,omitempty"`
	Tasks        []entryJSON `json:"tasks,omitempty"`
}

type entryJSON struct {
	ID          string  `json:"id"`
	Description string  `json:"description,omitempty"`
	Start       float64 `json:"start"`
	Finish      float64 `json:"finish"`
	Duration    float64 `json:"duration"`
	Slack       float64 `json:"slack"`
	Critical    bool    `json:"critical"`
}

func toScheduleJSON(name string, o orchestrator.Outcome) scheduleJSON {
	s := scheduleJSON{Project: name, Scenario: o.Scenario, RunID: o.RunID}
	if o.Err != nil {
		s.Status = "Error"
		s.Error = o.Err.Error()
		return s
	}
	r := o.Result
	s.Status = r.Status().String()
	s.Makespan = r.Makespan()
	s.CriticalPath = r.CriticalPath()
	for _, e := range r.ByID() {
		s.Tasks = append(s.Tasks, entryJSON{
			ID:          e.TaskID,
			Description: e.Description,
			Start:       e.Start,
			Finish:      e.Finish,
			Duration:    e.Duration,
			Slack:       e.Slack,
			Critical:    e.Critical,
		})
	}
	return s
}

// solveScenario loads ref and solves one scenario.
func (a *app) solveScenario(ctx context.Context, ref, scenarioFlag string) (*project.Project, orchestrator.Outcome, error) {
	s, err := a.scenario(scenarioFlag)
	if err != nil {
		return nil, orchestrator.Outcome{}, err
	}
	p, err := a.loadProject(ctx, ref)
	if err != nil {
		return nil, orchestrator.Outcome{}, err
	}
	outcomes, err := a.runner.Run(ctx, p, []string{string(s)})
	if err != nil {
		return nil, orchestrator.Outcome{}, err
	}
	return p, outcomes[0], outcomes[0].Err
}

func solveCmd(a *app) *cobra.Command {
	var scenario string
	var withCosts bool

	cmd := &cobra.Command{
		Use:   "solve FILE|PROJECT",
		Short: "Compute the schedule of one scenario",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			p, o, err := a.solveScenario(ctx, args[0], scenario)
			if err != nil {
				return err
			}

			if a.opts.jsonOut {
				return outputJSON(out, toScheduleJSON(p.Name, o))
			}

			var costs *project.CostSummary
			if withCosts {
				c := project.Costs(p, a.cfg.Rates())
				costs = &c
			}
			// Table opens with the summary
			fmt.Fprint(out, report.Table(o.Result, costs))
			if o.Persist != nil {
				a.logger.Warn("run was not recorded", "error", o.Persist)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "Scenario to solve: best, expected or worst")
	cmd.Flags().BoolVar(&withCosts, "costs", false, "Add a cost column")
	return cmd
}

func compareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare FILE|PROJECT",
		Short: "Solve all three scenarios and compare their makespans",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			p, err := a.loadProject(ctx, args[0])
			if err != nil {
				return err
			}
			outcomes, err := a.runner.Run(ctx, p, nil)
			if err != nil {
				return err
			}

			if a.opts.jsonOut {
				all := make([]scheduleJSON, 0, len(outcomes))
				for _, o := range outcomes {
					all = append(all, toScheduleJSON(p.Name, o))
				}
				return outputJSON(out, all)
			}

			fmt.Fprint(out, report.Comparison(outcomes))
			// Exit non-zero when any scenario failed
			return orchestrator.FirstError(outcomes)
		}),
	}
}

func ganttCmd(a *app) *cobra.Command {
	var scenario string
	var width int

	cmd := &cobra.Command{
		Use:   "gantt FILE|PROJECT",
		Short: "Draw the schedule of one scenario as Gantt bars",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			_, o, err := a.solveScenario(ctx, args[0], scenario)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, report.Summary(o.Result))
			fmt.Fprintln(out)
			fmt.Fprint(out, report.Gantt(o.Result, width))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "Scenario to draw: best, expected or worst")
	cmd.Flags().IntVarP(&width, "width", "w", report.DefaultGanttWidth, "Chart width in characters")
	return cmd
}

func costsCmd(a *app) *cobra.Command {
	var scenario string

	cmd := &cobra.Command{
		Use:   "costs FILE|PROJECT",
		Short: "Price resource hours and relate the total to the makespan",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			p, o, err := a.solveScenario(ctx, args[0], scenario)
			if err != nil {
				return err
			}
			summary := project.Costs(p, a.cfg.Rates())

			if a.opts.jsonOut {
				return outputJSON(out, map[string]any{
					"project":           p.Name,
					"scenario":          o.Scenario,
					"makespan":          o.Result.Makespan(),
					"hours_by_resource": summary.HoursByResource,
					"cost_by_resource":  summary.CostByResource,
					"total":             summary.Total,
					"per_hour":          summary.PerHour(o.Result.Makespan()),
					"unpriced":          summary.Unpriced,
				})
			}
			fmt.Fprint(out, report.Costs(summary, o.Result.Makespan(), a.labels()))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "Scenario whose makespan the cost per hour uses")
	return cmd
}

func demoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Solve the built-in product launch project",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			p := project.Sample()
			outcomes, err := a.runner.Run(ctx, p, nil)
			if err != nil {
				return err
			}
			if err := orchestrator.FirstError(outcomes); err != nil {
				return err
			}

			var expected *scheduler.ScheduleResult
			for _, o := range outcomes {
				if o.Result.Scenario() == scheduler.ScenarioExpected {
					expected = o.Result
				}
			}
			costs := project.Costs(p, a.cfg.Rates())

			fmt.Fprint(out, report.Comparison(outcomes))
			fmt.Fprintln(out)
			fmt.Fprint(out, report.Table(expected, &costs))
			fmt.Fprintln(out)
			fmt.Fprint(out, report.Gantt(expected, report.DefaultGanttWidth))
			fmt.Fprintln(out)
			fmt.Fprint(out, report.Costs(costs, expected.Makespan(), a.labels()))
			return nil
		}),
	}
}
