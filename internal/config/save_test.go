package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".projplan", "config.json")

	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Fatal("Parent directory was not created")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Solver.DefaultScenario = "best"
	cfg.Solver.MaxSteps = 500
	cfg.Store.Path = "/tmp/plans.db"
	cfg.Logging.Format = "json"
	cfg.Resources["qaEngineer"] = ResourceConfig{Label: "QA", HourlyRate: 90}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Solver.DefaultScenario != "best" {
		t.Errorf("Scenario mismatch: got '%s'", loaded.Solver.DefaultScenario)
	}
	if loaded.Solver.MaxSteps != 500 {
		t.Errorf("MaxSteps mismatch: got %d", loaded.Solver.MaxSteps)
	}
	if loaded.Store.Path != "/tmp/plans.db" {
		t.Errorf("Store path mismatch: got '%s'", loaded.Store.Path)
	}
	if loaded.Logging.Format != "json" {
		t.Errorf("Log format mismatch: got '%s'", loaded.Logging.Format)
	}
	if loaded.Resources["qaEngineer"].HourlyRate != 90 {
		t.Errorf("Resource rate mismatch: got %g", loaded.Resources["qaEngineer"].HourlyRate)
	}
}

func TestSaveOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg1 := DefaultConfig()
	cfg1.Solver.Concurrency = 1
	if err := Save(cfg1, path); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	cfg2 := DefaultConfig()
	cfg2.Solver.Concurrency = 7
	if err := Save(cfg2, path); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var loaded PlanConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if loaded.Solver.Concurrency != 7 {
		t.Errorf("Expected 7, got %d", loaded.Solver.Concurrency)
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	cfg.Solver.DefaultScenario = "someday"
	if err := Save(cfg, path); err == nil {
		t.Fatal("expected an error for an unknown default scenario")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid config should not be written")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	for i := 0; i < 2; i++ {
		if err := Save(DefaultConfig(), path); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.json" {
		t.Errorf("directory holds %v, want only config.json", entries)
	}
}
