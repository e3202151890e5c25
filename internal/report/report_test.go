package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aristath/projplan/internal/orchestrator"
	"github.com/aristath/projplan/internal/persistence"
	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/scheduler"
)

func solve(t *testing.T, p *project.Project, scenario string) *scheduler.ScheduleResult {
	t.Helper()
	g, ds, err := p.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	r, err := scheduler.Solve(g, ds, scenario)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	return r
}

func lineFor(t *testing.T, out, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	t.Fatalf("no line starting with %q in:\n%s", prefix, out)
	return ""
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Hours(8), "8"},
		{Hours(8.5), "8.5"},
		{Hours(1.234), "1.23"},
		{Money(23290), "$23,290"},
		{Money(204.2982), "$204.3"},
		{Money(-5), "-$5"},
		{TaskList([]string{"A", "B"}), "A, B"},
		{TaskList(nil), "-"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTable(t *testing.T) {
	p := project.Sample()
	r := solve(t, p, "expected")
	costs := project.Costs(p, map[string]float64{"projectManager": 150})

	out := Table(r, &costs)

	if !strings.Contains(out, "Expected scenario: Optimal, makespan 114 hours") {
		t.Errorf("missing headline:\n%s", out)
	}
	if !strings.Contains(out, "A, D1, D2, D3, D4, D6, D7, D8, F, G, H") {
		t.Errorf("missing critical path:\n%s", out)
	}

	a := lineFor(t, out, "A ")
	if !strings.Contains(a, "critical") || !strings.Contains(a, "$1,200") {
		t.Errorf("row A = %q", a)
	}
	d5 := lineFor(t, out, "D5 ")
	if strings.Contains(d5, "critical") || !strings.Contains(d5, "24") {
		t.Errorf("row D5 = %q", d5)
	}

	// Rows follow task ID order
	if strings.Index(out, "\nD8 ") > strings.Index(out, "\nE ") {
		t.Error("rows are not ordered by task ID")
	}

	if strings.Contains(Table(r, nil), "Cost") {
		t.Error("cost column rendered without costs")
	}
}

func TestSummary_ParallelCriticalChains(t *testing.T) {
	p, err := project.Parse([]byte(`{"name": "fork", "tasks": [
		{"id": "X", "expected": 4},
		{"id": "Y", "expected": 4},
		{"id": "Z", "expected": 2}
	], "predecessors": {"X": [], "Y": [], "Z": ["X", "Y"]}}`), project.FormatJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	out := Summary(solve(t, p, "expected"))
	if !strings.Contains(out, "X, Y, Z") {
		t.Errorf("critical tasks not listed:\n%s", out)
	}
	// X and Y are not linked, so no arrow may join them
	if strings.Contains(out, "->") {
		t.Errorf("summary implies edges:\n%s", out)
	}
}

func TestGantt(t *testing.T) {
	r := solve(t, project.Sample(), "expected")

	// One cell per hour
	out := Gantt(r, 114)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 17 {
		t.Fatalf("expected 17 lines (title, 15 tasks, axis), got %d:\n%s", len(lines), out)
	}

	if a := lineFor(t, out, "A "); !strings.Contains(a, "|"+strings.Repeat("#", 8)+" ") {
		t.Errorf("bar for A = %q", a)
	}
	if d6 := lineFor(t, out, "D6 "); !strings.Contains(d6, strings.Repeat(" ", 54)+strings.Repeat("#", 24)+" ") {
		t.Errorf("bar for D6 = %q", d6)
	}
	if b := lineFor(t, out, "B "); !strings.Contains(b, "|"+strings.Repeat("=", 6)+" ") || strings.Contains(b, "#") {
		t.Errorf("bar for B = %q", b)
	}
	if h := lineFor(t, out, "H "); !strings.HasSuffix(h, "106-114") {
		t.Errorf("bar for H = %q", h)
	}

	// Ordered by start: A (0) before C (8) before D4 (30)
	if !(strings.Index(out, "\nA ") < strings.Index(out, "\nC ") && strings.Index(out, "\nC ") < strings.Index(out, "\nD4 ")) {
		t.Error("bars are not ordered by start")
	}
}

func TestGantt_Milestone(t *testing.T) {
	p := &project.Project{
		Name: "milestone",
		Tasks: []scheduler.Task{
			{ID: "A", Durations: map[scheduler.Scenario]float64{scheduler.ScenarioExpected: 4}},
			{ID: "M", Durations: map[scheduler.Scenario]float64{scheduler.ScenarioExpected: 0}},
		},
		Predecessors: scheduler.PrecedenceMap{"M": {"A"}},
	}
	out := Gantt(solve(t, p, "expected"), 10)
	if m := lineFor(t, out, "M "); !strings.Contains(m, strings.Repeat(" ", 10)+"|") {
		t.Errorf("milestone line = %q", m)
	}
}

func TestGantt_Empty(t *testing.T) {
	out := Gantt(solve(t, &project.Project{Name: "empty"}, "best"), 0)
	if !strings.Contains(out, "(no tasks)") {
		t.Errorf("empty gantt = %q", out)
	}
}

func TestBarSpan(t *testing.T) {
	tests := []struct {
		start, finish, makespan float64
		width                   int
		from, to                int
	}{
		{0, 0, 0, 10, 0, 0},
		{0, 50, 100, 10, 0, 5},
		{5, 5.01, 100, 10, 1, 2},   // widened to one cell
		{99.9, 100, 100, 10, 9, 10}, // widened leftwards at the edge
	}
	for _, tt := range tests {
		from, to := barSpan(tt.start, tt.finish, tt.makespan, tt.width)
		if from != tt.from || to != tt.to {
			t.Errorf("barSpan(%g, %g, %g, %d) = %d, %d; want %d, %d", tt.start, tt.finish, tt.makespan, tt.width, from, to, tt.from, tt.to)
		}
	}
}

func TestCosts(t *testing.T) {
	rates := map[string]float64{
		"projectManager": 150,
		"fullStackDev1":  125,
		"fullStackDev2":  125,
		"cloudDevops":    140,
	}
	summary := project.Costs(project.Sample(), rates)

	out := Costs(summary, 114, map[string]string{"projectManager": "Project Manager"})
	for _, want := range []string{"Project Manager", "fullStackDev1", "$20,320", "dataEngineer"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestComparison(t *testing.T) {
	runner := orchestrator.NewScenarioRunner(orchestrator.RunnerConfig{})
	outcomes, err := runner.Run(context.Background(), project.Sample(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	outcomes = append(outcomes, orchestrator.Outcome{Scenario: "someday", Err: errors.New("unknown scenario")})

	out := Comparison(outcomes)
	if !strings.Contains(lineFor(t, out, "Expected"), "+54") {
		t.Errorf("expected row missing delta:\n%s", out)
	}
	if !strings.Contains(lineFor(t, out, "Worst"), "+121") {
		t.Errorf("worst row missing delta:\n%s", out)
	}
	if !strings.Contains(lineFor(t, out, "someday"), "unknown scenario") {
		t.Errorf("error row missing:\n%s", out)
	}
}

func TestSensitivity(t *testing.T) {
	out := Sensitivity([]orchestrator.SensitivityResult{
		{TaskID: "D6", Scenario: "expected", OldHours: 24, NewHours: 36, Baseline: 114, Adjusted: 126, WasCritical: true},
		{TaskID: "E", Scenario: "expected", OldHours: 12, NewHours: 18, Baseline: 114, Adjusted: 114},
	})
	if !strings.Contains(out, "baseline makespan 114 hours") {
		t.Errorf("missing title:\n%s", out)
	}
	if d6 := lineFor(t, out, "D6"); !strings.Contains(d6, "+12") || !strings.Contains(d6, "critical") {
		t.Errorf("D6 row = %q", d6)
	}
	if e := lineFor(t, out, "E "); !strings.Contains(e, "+0") {
		t.Errorf("E row = %q", e)
	}
}

func TestRuns_MarksStale(t *testing.T) {
	now := time.Now()
	out := Runs([]*persistence.Run{
		{ID: "run-new", Scenario: "expected", Status: "Optimal", Makespan: 124, SnapshotHash: "bbb", CreatedAt: now},
		{ID: "run-old", Scenario: "expected", Status: "Optimal", Makespan: 114, SnapshotHash: "aaa", CreatedAt: now.Add(-time.Hour)},
	}, "bbb")

	if strings.Contains(lineFor(t, out, "run-new"), "stale") {
		t.Errorf("current run marked stale:\n%s", out)
	}
	if !strings.Contains(lineFor(t, out, "run-old"), "stale") {
		t.Errorf("old run not marked stale:\n%s", out)
	}
	if got := Runs(nil, ""); !strings.Contains(got, "No runs") {
		t.Errorf("empty runs = %q", got)
	}
}

func TestRun(t *testing.T) {
	out := Run(&persistence.Run{
		ID: "r1", Project: "launch", Scenario: "best", Status: "Optimal", Makespan: 6, CreatedAt: time.Now(),
		Entries: []persistence.RunEntry{
			{TaskID: "A", Start: 0, Finish: 4, Critical: true},
			{TaskID: "B", Start: 0, Finish: 2, Slack: 2},
		},
	})
	if !strings.Contains(out, "makespan 6 hours") {
		t.Errorf("missing summary:\n%s", out)
	}
	if !strings.Contains(lineFor(t, out, "A "), "critical") {
		t.Errorf("A should be critical:\n%s", out)
	}
}

func TestProjects(t *testing.T) {
	out := Projects([]persistence.ProjectSummary{{Name: "launch", Tasks: 3, Runs: 2, UpdatedAt: time.Now()}})
	if line := lineFor(t, out, "launch"); !strings.Contains(line, "3") || !strings.Contains(line, "2") {
		t.Errorf("row = %q", line)
	}
}
