package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tool metrics
	activeOperations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tts_mcp_active_operations",
		Help: "Number of tool operations currently in flight",
	})

	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_mcp_tool_calls_total",
		Help: "Total number of tool calls processed",
	}, []string{"tool", "status"})

	// Synthesis metrics
	synthesisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tts_mcp_synthesis_latency_seconds",
		Help:    "Time from synthesis request to relay completion in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
	})

	// Relay metrics
	relayedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_mcp_relayed_bytes_total",
		Help: "Total audio bytes relayed to sinks",
	}, []string{"sink"}) // sink: "player" or "file"

	// Player metrics
	playerExits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_mcp_player_exits_total",
		Help: "Total player process exits",
	}, []string{"status"}) // status: "ok", "failed", "spawn_error"

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_mcp_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})
)

// Metrics tracks metrics for a single tool operation
type Metrics struct {
	tool      string
	startTime time.Time
	mu        sync.Mutex
}

// NewOperationMetrics creates a new metrics tracker for a tool call
func NewOperationMetrics(tool string) *Metrics {
	return &Metrics{
		tool:      tool,
		startTime: time.Now(),
	}
}

// RecordStart records the start of a tool operation
func (m *Metrics) RecordStart() {
	activeOperations.Inc()
}

// RecordEnd records the end of a tool operation
func (m *Metrics) RecordEnd(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	activeOperations.Dec()
	if m.tool == "generate_audio" && !m.startTime.IsZero() {
		synthesisLatency.Observe(time.Since(m.startTime).Seconds())
	}

	status := "success"
	if !success {
		status = "error"
	}
	toolCalls.WithLabelValues(m.tool, status).Inc()
}

// RecordError records an error
func (m *Metrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordRelayedBytes records audio bytes delivered to a sink
func RecordRelayedBytes(sink string, bytes int64) {
	relayedBytes.WithLabelValues(sink).Add(float64(bytes))
}

// RecordPlayerExit records a player process exit by status
func RecordPlayerExit(status string) {
	playerExits.WithLabelValues(status).Inc()
}
