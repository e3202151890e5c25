package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aristath/projplan/internal/scheduler"
)

// Format is the encoding of an input document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrInvalidDocument is returned for documents that cannot be interpreted.
var ErrInvalidDocument = errors.New("invalid project document")

// reserved task keys; anything else numeric is a resource-hour field
var reservedKeys = map[string]bool{
	"id": true, "description": true, "durations": true, "resources": true,
	"best": true, "expected": true, "worst": true,
}

type rawDocument struct {
	Name         string              `json:"name" yaml:"name"`
	Tasks        []map[string]any    `json:"tasks" yaml:"tasks"`
	Predecessors map[string][]string `json:"predecessors" yaml:"predecessors"`
}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unsupported file extension %q", ErrInvalidDocument, filepath.Ext(path))
}

// Load reads a project document from path. The project name defaults to
// the file name without extension.
func Load(path string) (*Project, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	p, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Parse decodes a document in the given format.
func Parse(data []byte, format Format) (*Project, error) {
	var raw rawDocument
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidDocument, format)
	}

	p := &Project{
		Name:         raw.Name,
		Tasks:        make([]scheduler.Task, 0, len(raw.Tasks)),
		Predecessors: make(scheduler.PrecedenceMap, len(raw.Predecessors)),
	}
	for i, fields := range raw.Tasks {
		task, err := parseTask(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: task #%d: %v", ErrInvalidDocument, i+1, err)
		}
		p.Tasks = append(p.Tasks, task)
	}
	for id, preds := range raw.Predecessors {
		p.Predecessors[id] = append([]string{}, preds...)
	}
	return p, nil
}

func parseTask(fields map[string]any) (scheduler.Task, error) {
	task := scheduler.Task{
		Durations: make(map[scheduler.Scenario]float64),
		Resources: make(map[string]float64),
	}

	id, ok := fields["id"]
	if !ok || id == nil {
		return task, fmt.Errorf("missing id")
	}
	task.ID = strings.TrimSpace(fmt.Sprint(id))
	if task.ID == "" {
		return task, fmt.Errorf("empty id")
	}
	if d, ok := fields["description"]; ok && d != nil {
		task.Description = fmt.Sprint(d)
	}

	for _, s := range scheduler.Scenarios {
		if v, ok := fields[string(s)]; ok {
			h, present, err := number(v)
			if err != nil {
				return task, fmt.Errorf("task %q field %q: %v", task.ID, s, err)
			}
			if present {
				task.Durations[s] = h
			}
		}
	}

	if nested, ok := fields["durations"]; ok {
		m, err := object(nested)
		if err != nil {
			return task, fmt.Errorf("task %q durations: %v", task.ID, err)
		}
		for name, v := range m {
			s, err := scheduler.ParseScenario(name)
			if err != nil {
				return task, fmt.Errorf("task %q durations: %v", task.ID, err)
			}
			h, present, err := number(v)
			if err != nil {
				return task, fmt.Errorf("task %q durations.%s: %v", task.ID, name, err)
			}
			if present {
				task.Durations[s] = h
			}
		}
	}

	if nested, ok := fields["resources"]; ok {
		m, err := object(nested)
		if err != nil {
			return task, fmt.Errorf("task %q resources: %v", task.ID, err)
		}
		for name, v := range m {
			h, present, err := number(v)
			if err != nil {
				return task, fmt.Errorf("task %q resources.%s: %v", task.ID, name, err)
			}
			if present {
				task.Resources[name] = h
			}
		}
	}

	// Remaining numeric keys are resource hours
	for key, v := range fields {
		if reservedKeys[key] {
			continue
		}
		h, present, err := number(v)
		if err != nil || !present {
			continue
		}
		task.Resources[key] = h
	}

	return task, nil
}

// number converts a decoded scalar to float64. Empty strings and nulls are
// reported as absent.
func number(v any) (float64, bool, error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return n, true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case uint64:
		return float64(n), true, nil
	case json.Number:
		f, err := n.Float64()
		return f, err == nil, err
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("not a number: %q", n)
		}
		return f, true, nil
	}
	return 0, false, fmt.Errorf("unsupported value %v (%T)", v, v)
}

func object(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("expected an object, got %T", v)
}

// Encode writes the project as a JSON document using flat task keys.
func Encode(w io.Writer, p *Project) error {
	type outDoc struct {
		Name         string                  `json:"name,omitempty"`
		Tasks        []map[string]any        `json:"tasks"`
		Predecessors scheduler.PrecedenceMap `json:"predecessors"`
	}

	doc := outDoc{Name: p.Name, Tasks: make([]map[string]any, 0, len(p.Tasks)), Predecessors: make(scheduler.PrecedenceMap)}
	for _, t := range p.Tasks {
		m := map[string]any{"id": t.ID, "description": t.Description}
		for s, h := range t.Durations {
			m[string(s)] = h
		}
		if len(t.Resources) > 0 {
			m["resources"] = t.Resources
		}
		doc.Tasks = append(doc.Tasks, m)
		doc.Predecessors[t.ID] = append([]string{}, p.Predecessors[t.ID]...)
	}
	for id, preds := range p.Predecessors {
		if _, ok := doc.Predecessors[id]; !ok && len(preds) > 0 {
			doc.Predecessors[id] = append([]string{}, preds...)
		}
	}
	for id := range doc.Predecessors {
		sort.Strings(doc.Predecessors[id])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
