package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/report"
)

func importCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store a project document so it can be solved by name",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			store, err := a.requireStore()
			if err != nil {
				return err
			}
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			if name != "" {
				p.Name = name
			}
			if err := store.SaveProject(ctx, p); err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			hash, err := p.HashString()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Imported %s: %d tasks (snapshot %s)\n", p.Name, len(p.Tasks), hash)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Store under this name instead of the document's")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export PROJECT",
		Short: "Write a stored project as a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			store, err := a.requireStore()
			if err != nil {
				return err
			}
			p, err := store.LoadProject(ctx, args[0])
			if err != nil {
				return fmt.Errorf("export %s: %w", args[0], err)
			}
			return project.Encode(out, p)
		}),
	}
}

func sampleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Write the built-in product launch project as a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return project.Encode(cmd.OutOrStdout(), project.Sample())
		},
	}
}

func projectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			store, err := a.requireStore()
			if err != nil {
				return err
			}
			projects, err := store.ListProjects(ctx)
			if err != nil {
				return err
			}
			if a.opts.jsonOut {
				return outputJSON(out, projects)
			}
			fmt.Fprint(out, report.Projects(projects))
			return nil
		}),
	}
}

func historyCmd(a *app) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history [PROJECT]",
		Short: "Show recorded schedule runs",
		Long: `Without --run, list the runs of PROJECT newest first. Runs computed from
an older snapshot of the project are marked stale. With --run, show the
schedule recorded by one run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			store, err := a.requireStore()
			if err != nil {
				return err
			}

			if runID != "" {
				run, err := store.GetRun(ctx, runID)
				if err != nil {
					return fmt.Errorf("run %s: %w", runID, err)
				}
				if a.opts.jsonOut {
					return outputJSON(out, run)
				}
				fmt.Fprint(out, report.Run(run))
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("a project name or --run is required")
			}
			p, err := store.LoadProject(ctx, args[0])
			if err != nil {
				return fmt.Errorf("history %s: %w", args[0], err)
			}
			hash, err := p.HashString()
			if err != nil {
				return err
			}
			runs, err := store.ListRuns(ctx, p.Name, limit)
			if err != nil {
				return err
			}
			if a.opts.jsonOut {
				return outputJSON(out, runs)
			}
			fmt.Fprint(out, report.Runs(runs, hash))
			return nil
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs (0 = all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show the schedule of one run")
	return cmd
}
