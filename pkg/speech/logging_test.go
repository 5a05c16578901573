package speech

import (
	"errors"
	"strings"
	"testing"
)

func TestQueryMetrics(t *testing.T) {
	ResetQueryStats()
	defer ResetQueryStats()

	if got := QueryStats(); got != "No query metrics available" {
		t.Errorf("Expected empty stats, got %q", got)
	}

	StartQuery("doc", ReasonCaret, UnitLine).EndQuery(3, true, nil)
	m := StartQuery("doc", ReasonCaret, UnitLine)
	m.EndQuery(0, false, errors.New("boom"))

	if !m.Failed || m.Error != "boom" {
		t.Errorf("Expected failed metrics, got %+v", m)
	}

	stats := QueryStats()
	for _, want := range []string{"Total: 2", "Tokens: 3", "Cache Commits: 1", "Failures: 1"} {
		if !strings.Contains(stats, want) {
			t.Errorf("Expected stats to contain %q, got %q", want, stats)
		}
	}
}

func TestInitializeLogging(t *testing.T) {
	if err := InitializeLogging(true, false); err != nil {
		t.Fatalf("InitializeLogging failed: %v", err)
	}
	defer DisableDebugLogging()

	if metricsLogger == nil || !metricsLogger.enabled {
		t.Error("Expected metrics logging to be enabled in debug mode")
	}
	DisableDebugLogging()
	if metricsLogger.enabled {
		t.Error("Expected metrics logging to be disabled")
	}
}
