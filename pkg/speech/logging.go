package speech

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// MetricsLogger tracks and logs per-query metrics
type MetricsLogger struct {
	enabled bool
	logger  *log.Logger
}

// Metrics holds the metrics of one SpeakPosition call
type Metrics struct {
	Document  string
	Reason    Reason
	Unit      Unit
	Start     time.Time
	End       time.Time
	Duration  time.Duration
	Tokens    int
	Committed bool
	Failed    bool
	Error     string
}

var (
	// Global metrics logger
	metricsLogger *MetricsLogger

	metricsMu    sync.Mutex
	queryMetrics []Metrics
)

// maxKeptMetrics bounds the metrics history.
const maxKeptMetrics = 4096

// InitializeLogging sets up speech logging
func InitializeLogging(debugMode bool, traceMode bool) error {
	if traceMode {
		log.SetLevel(log.DebugLevel) // Trace maps to Debug in charmbracelet/log
		log.Debug("speech logging initialized", "level", "TRACE")
	} else if debugMode {
		log.SetLevel(log.DebugLevel)
		log.Debug("speech logging initialized", "level", "DEBUG")
	} else {
		log.SetLevel(log.InfoLevel)
	}

	metricsLogger = &MetricsLogger{
		enabled: debugMode || traceMode,
		logger:  log.Default(),
	}

	if traceMode {
		if err := setupTraceLogFile(); err != nil {
			log.Warn("Failed to setup trace log file", "error", err)
		}
	}

	return nil
}

// setupTraceLogFile sends query metrics to their own file
func setupTraceLogFile() error {
	dir, err := os.UserCacheDir()
	if err != nil {
		return err
	}

	logDir := filepath.Join(dir, "fieldspeech")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	logPath := filepath.Join(logDir, "queries.log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	// The file stays open for the life of the process.
	log.Debug("speech trace log file created", "path", logPath)

	metricsLogger.logger = log.NewWithOptions(file, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           log.DebugLevel,
	})

	return nil
}

// StartQuery starts tracking a query
func StartQuery(document string, reason Reason, unit Unit) *Metrics {
	return &Metrics{
		Document: document,
		Reason:   reason,
		Unit:     unit,
		Start:    time.Now(),
	}
}

// EndQuery completes tracking a query
func (m *Metrics) EndQuery(tokens int, committed bool, err error) {
	m.End = time.Now()
	m.Duration = m.End.Sub(m.Start)
	m.Tokens = tokens
	m.Committed = committed
	if err != nil {
		m.Failed = true
		m.Error = err.Error()
	}

	metricsMu.Lock()
	if len(queryMetrics) >= maxKeptMetrics {
		queryMetrics = queryMetrics[1:]
	}
	queryMetrics = append(queryMetrics, *m)
	metricsMu.Unlock()

	if metricsLogger == nil || !metricsLogger.enabled {
		return
	}
	if m.Failed {
		metricsLogger.logger.Error("Query failed",
			"document", m.Document,
			"reason", m.Reason,
			"duration", m.Duration,
			"error", m.Error)
		return
	}
	metricsLogger.logger.Debug("Query completed",
		"document", m.Document,
		"reason", m.Reason,
		"unit", m.Unit,
		"tokens", m.Tokens,
		"committed", m.Committed,
		"duration", m.Duration)
}

// QueryStats summarises the recorded queries
func QueryStats() string {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	if len(queryMetrics) == 0 {
		return "No query metrics available"
	}

	var total time.Duration
	var tokens, failures, commits int
	for _, m := range queryMetrics {
		total += m.Duration
		tokens += m.Tokens
		if m.Failed {
			failures++
		}
		if m.Committed {
			commits++
		}
	}

	return fmt.Sprintf(
		"Query Stats:\n"+
			"  Total: %d\n"+
			"  Avg Duration: %v\n"+
			"  Tokens: %d\n"+
			"  Cache Commits: %d\n"+
			"  Failures: %d",
		len(queryMetrics),
		total/time.Duration(len(queryMetrics)),
		tokens,
		commits,
		failures,
	)
}

// ResetQueryStats drops the recorded metrics
func ResetQueryStats() {
	metricsMu.Lock()
	queryMetrics = nil
	metricsMu.Unlock()
}

// EnableDebugLogging enables debug logging at runtime
func EnableDebugLogging() {
	log.SetLevel(log.DebugLevel)
	if metricsLogger != nil {
		metricsLogger.enabled = true
	}
	log.Debug("Debug logging enabled")
}

// DisableDebugLogging disables debug logging at runtime
func DisableDebugLogging() {
	log.SetLevel(log.InfoLevel)
	if metricsLogger != nil {
		metricsLogger.enabled = false
	}
}
