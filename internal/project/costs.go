package project

import "sort"

// TaskCost is the labour cost of one task.
type TaskCost struct {
	TaskID string
	Hours  float64 // priced resource hours
	Cost   float64
}

// CostSummary prices resource hours at hourly rates. Costs do not depend on
// the scenario: resource hours are recorded once per task.
type CostSummary struct {
	Tasks           []TaskCost         // sorted by task ID
	HoursByResource map[string]float64 // priced resources only
	CostByResource  map[string]float64
	Total           float64
	Unpriced        []string // resources that have hours but no rate
}

// Costs computes the cost summary of p under rates.
func Costs(p *Project, rates map[string]float64) CostSummary {
	summary := CostSummary{
		Tasks:           make([]TaskCost, 0, len(p.Tasks)),
		HoursByResource: make(map[string]float64),
		CostByResource:  make(map[string]float64),
	}
	unpriced := make(map[string]bool)

	for _, t := range p.Tasks {
		tc := TaskCost{TaskID: t.ID}
		for name, hours := range t.Resources {
			rate, ok := rates[name]
			if !ok {
				if hours != 0 {
					unpriced[name] = true
				}
				continue
			}
			tc.Hours += hours
			tc.Cost += hours * rate
			summary.HoursByResource[name] += hours
			summary.CostByResource[name] += hours * rate
		}
		summary.Total += tc.Cost
		summary.Tasks = append(summary.Tasks, tc)
	}

	sort.Slice(summary.Tasks, func(i, j int) bool { return summary.Tasks[i].TaskID < summary.Tasks[j].TaskID })
	for name := range unpriced {
		summary.Unpriced = append(summary.Unpriced, name)
	}
	sort.Strings(summary.Unpriced)
	return summary
}

// Task returns the cost entry for taskID.
func (c CostSummary) Task(taskID string) (TaskCost, bool) {
	i := sort.Search(len(c.Tasks), func(i int) bool { return c.Tasks[i].TaskID >= taskID })
	if i < len(c.Tasks) && c.Tasks[i].TaskID == taskID {
		return c.Tasks[i], true
	}
	return TaskCost{}, false
}

// PerHour returns the total cost spread over makespan hours, or 0 for an
// empty schedule.
func (c CostSummary) PerHour(makespan float64) float64 {
	if makespan <= 0 {
		return 0
	}
	return c.Total / makespan
}
