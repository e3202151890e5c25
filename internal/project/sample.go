package project

import "github.com/aristath/projplan/internal/scheduler"

type sampleRow struct {
	id, description       string
	best, expected, worst float64
	resources             map[string]float64
}

var sampleRows = []sampleRow{
	{"A", "Describe product", 4, 8, 12, map[string]float64{"projectManager": 8}},
	{"B", "Develop marketing strategy", 2, 6, 10, map[string]float64{"projectManager": 4, "dataEngineer": 4}},
	{"C", "Design brochure", 6, 10, 16, map[string]float64{"fullStackDev1": 8}},
	{"D1", "Requirements analysis", 6, 10, 15, map[string]float64{"fullStackDev1": 6, "dataEngineer": 6}},
	{"D2", "Software design", 8, 12, 18, map[string]float64{"fullStackDev1": 12}},
	{"D3", "System design", 8, 12, 18, map[string]float64{"dataEngineer": 12}},
	{"D4", "Coding", 16, 24, 40, map[string]float64{"fullStackDev1": 16, "fullStackDev2": 16}},
	{"D5", "Write documentation", 4, 12, 18, map[string]float64{"fullStackDev2": 8}},
	{"D6", "Unit testing", 6, 24, 40, map[string]float64{"cloudDevops": 20}},
	{"D7", "System testing", 8, 12, 20, map[string]float64{"cloudDevops": 12}},
	{"D8", "Package deliverables", 4, 8, 12, map[string]float64{"fullStackDev1": 4, "fullStackDev2": 4}},
	{"E", "Survey potential market", 6, 12, 18, map[string]float64{"fullStackDev2": 10}},
	{"F", "Develop pricing plan", 4, 8, 12, map[string]float64{"cloudDevops": 4, "projectManager": 4}},
	{"G", "Develop implementation plan", 4, 8, 12, map[string]float64{"projectManager": 6}},
	{"H", "Write client proposal", 4, 8, 12, map[string]float64{"projectManager": 8, "cloudDevops": 2}},
}

// Sample returns the built-in product launch project. It solves to a
// makespan of 60 (best), 114 (expected) and 181 (worst) hours.
func Sample() *Project {
	p := &Project{
		Name:  "product-launch",
		Tasks: make([]scheduler.Task, 0, len(sampleRows)),
		Predecessors: scheduler.PrecedenceMap{
			"A": {}, "B": {},
			"C": {"A"}, "D1": {"A"},
			"D2": {"D1"}, "D3": {"D1"},
			"D4": {"D2", "D3"}, "D5": {"D4"}, "D6": {"D4"},
			"D7": {"D6"}, "D8": {"D5", "D7"},
			"E": {"B", "C"}, "F": {"D8", "E"},
			"G": {"A", "D8"}, "H": {"F", "G"},
		},
	}

	for _, row := range sampleRows {
		resources := make(map[string]float64, len(row.resources))
		for k, v := range row.resources {
			resources[k] = v
		}
		p.Tasks = append(p.Tasks, scheduler.Task{
			ID:          row.id,
			Description: row.description,
			Durations: map[scheduler.Scenario]float64{
				scheduler.ScenarioBest:     row.best,
				scheduler.ScenarioExpected: row.expected,
				scheduler.ScenarioWorst:    row.worst,
			},
			Resources: resources,
		})
	}
	return p
}
