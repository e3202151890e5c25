package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/projplan/internal/config"
	"github.com/aristath/projplan/internal/events"
	"github.com/aristath/projplan/internal/logging"
	"github.com/aristath/projplan/internal/orchestrator"
	"github.com/aristath/projplan/internal/persistence"
	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/scheduler"
)

func main() {
	// Create signal-aware context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// options holds the global flags.
type options struct {
	configPath string
	dbPath     string
	noStore    bool
	jsonOut    bool
	verbose    bool
}

// app is the per-invocation environment shared by all commands.
type app struct {
	opts   options
	cfg    *config.PlanConfig
	logger *logging.Logger
	bus    *events.EventBus
	store  *persistence.SQLiteStore // nil when disabled or unavailable
	runner *orchestrator.ScenarioRunner

	// quietLog routes logs away from the terminal (used by the TUI)
	quietLog bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "projplan",
		Short: "Schedule project tasks under best, expected and worst case durations",
		Long: `projplan reads a task graph with three duration estimates per task,
computes the earliest schedule that respects every precedence, and reports
the makespan, slack and critical path of each scenario.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.opts.configPath, "config", "", "Project config file (default .projplan/config.json)")
	rootCmd.PersistentFlags().StringVar(&a.opts.dbPath, "db", "", "SQLite database path (default from config)")
	rootCmd.PersistentFlags().BoolVar(&a.opts.noStore, "no-store", false, "Do not record projects and runs")
	rootCmd.PersistentFlags().BoolVar(&a.opts.jsonOut, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVarP(&a.opts.verbose, "verbose", "v", false, "Log solver activity to stderr")

	rootCmd.AddCommand(solveCmd(a))
	rootCmd.AddCommand(compareCmd(a))
	rootCmd.AddCommand(ganttCmd(a))
	rootCmd.AddCommand(costsCmd(a))
	rootCmd.AddCommand(demoCmd(a))
	rootCmd.AddCommand(sensitivityCmd(a))
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(sampleCmd(a))
	rootCmd.AddCommand(projectsCmd(a))
	rootCmd.AddCommand(historyCmd(a))
	rootCmd.AddCommand(tuiCmd(a))
	rootCmd.AddCommand(configCmd(a))

	return rootCmd
}

// run wraps a command body with environment setup and teardown.
func (a *app) run(fn func(ctx context.Context, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.start(cmd.Context()); err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), cmd.OutOrStdout(), args)
	}
}

// start loads configuration and creates the logger, bus, store and runner.
func (a *app) start(ctx context.Context) error {
	globalPath, projectPath := config.DefaultPaths()
	if a.opts.configPath != "" {
		projectPath = a.opts.configPath
	}
	cfg, err := config.Load(globalPath, projectPath)
	if err != nil {
		return err
	}
	if a.opts.dbPath != "" {
		cfg.Store.Path = a.opts.dbPath
	}
	a.cfg = cfg

	switch {
	case cfg.Logging.File != "":
		logger, err := logging.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
		if err != nil {
			return err
		}
		a.logger = logger
	case a.quietLog:
		a.logger = logging.NopLogger()
	case a.opts.verbose:
		a.logger = logging.NewLogger(os.Stderr, logging.LevelDebug, cfg.Logging.Format)
	default:
		a.logger = logging.NewLogger(os.Stderr, logging.LevelWarn, cfg.Logging.Format)
	}

	a.bus = events.NewEventBus()

	if !a.opts.noStore && cfg.Store.Path != "" {
		store, err := persistence.NewSQLiteStore(ctx, cfg.Store.Path)
		if err != nil {
			a.logger.Warn("run history disabled", "path", cfg.Store.Path, "error", err)
		} else {
			a.store = store
		}
	}

	rc := orchestrator.RunnerConfig{
		Concurrency:        cfg.Solver.Concurrency,
		MaxSteps:           cfg.Solver.MaxSteps,
		EscalationAttempts: uint64(cfg.Solver.EscalationAttempts),
		Timeout:            time.Duration(cfg.Solver.TimeoutSeconds) * time.Second,
		Bus:                a.bus,
		Logger:             a.logger,
	}
	// Assigned only when open so the interface is never a typed nil
	if a.store != nil {
		rc.Store = a.store
	}
	a.runner = orchestrator.NewScenarioRunner(rc)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", "error", err)
		}
		a.store = nil
	}
	a.bus.Close()
	_ = a.logger.Close()
}

// requireStore returns the store or an error explaining why there is none.
func (a *app) requireStore() (*persistence.SQLiteStore, error) {
	if a.store == nil {
		if a.opts.noStore {
			return nil, errors.New("this command needs the project store; drop --no-store")
		}
		return nil, fmt.Errorf("project store %s is unavailable", a.cfg.Store.Path)
	}
	return a.store, nil
}

// loadProject reads a project document, or a stored project when no file
// with that name exists.
func (a *app) loadProject(ctx context.Context, ref string) (*project.Project, error) {
	if _, err := os.Stat(ref); err == nil {
		return project.Load(ref)
	}
	if a.store != nil {
		p, err := a.store.LoadProject(ctx, ref)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, persistence.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: no such project file or stored project", ref)
}

// scenario resolves the --scenario flag, falling back to the configured default.
func (a *app) scenario(flag string) (scheduler.Scenario, error) {
	if flag == "" {
		flag = a.cfg.Solver.DefaultScenario
	}
	return scheduler.ParseScenario(flag)
}

// labels returns resource name -> display label.
func (a *app) labels() map[string]string {
	labels := make(map[string]string, len(a.cfg.Resources))
	for name, r := range a.cfg.Resources {
		labels[name] = r.Label
	}
	return labels
}

func outputJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
