package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitVerbose(t *testing.T) {
	// Smoke test: should not panic.
	Init(true, false)
}

func TestInitQuiet(t *testing.T) {
	Init(false, true)
}

func TestNewFiltersDebugUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no debug output, got %q", buf.String())
	}

	New(&buf, true, false).Debug("shown", "scenario", "scenario-1k")
	if !strings.Contains(buf.String(), "scenario=scenario-1k") {
		t.Fatalf("expected debug record, got %q", buf.String())
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false, true).Info("scenario added", "scenario_id", "scenario-1k")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "scenario added" || record["scenario_id"] != "scenario-1k" {
		t.Fatalf("unexpected record: %v", record)
	}
}
