package server

import (
	"sync/atomic"
	"time"
)

// Metrics holds process-lifetime counters for the event loop. Every field
// is an atomic, so a snapshot can be read from any goroutine; the counters
// themselves are only updated on the loop's own goroutine (the CGI reap
// goroutine just reports an exit status back to the loop).
type Metrics struct {
	RequestsTotal     atomic.Int64
	ActiveConnections atomic.Int64
	ErrorsTotal       atomic.Int64
	Errors4xx         atomic.Int64
	Errors5xx         atomic.Int64
	CGILaunched       atomic.Int64
	CGITimedOut       atomic.Int64
	TotalLatencyNs    atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest records one completed request/response exchange.
func (m *Metrics) RecordRequest(statusCode int, duration time.Duration) {
	m.RequestsTotal.Add(1)
	m.TotalLatencyNs.Add(duration.Nanoseconds())

	switch {
	case statusCode >= 500:
		m.Errors5xx.Add(1)
		m.ErrorsTotal.Add(1)
	case statusCode >= 400:
		m.Errors4xx.Add(1)
		m.ErrorsTotal.Add(1)
	}
}

func (m *Metrics) AverageLatency() time.Duration {
	total := m.RequestsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.TotalLatencyNs.Load() / total)
}

// Snapshot is a point-in-time, JSON-serializable copy of Metrics, used by
// the optional /__stats introspection location.
type Snapshot struct {
	RequestsTotal     int64 `json:"requests_total"`
	ActiveConnections int64 `json:"active_connections"`
	ErrorsTotal       int64 `json:"errors_total"`
	Errors4xx         int64 `json:"errors_4xx"`
	Errors5xx         int64 `json:"errors_5xx"`
	CGILaunched       int64 `json:"cgi_launched"`
	CGITimedOut       int64 `json:"cgi_timed_out"`
	AverageLatencyMs  int64 `json:"average_latency_ms"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RequestsTotal:     m.RequestsTotal.Load(),
		ActiveConnections: m.ActiveConnections.Load(),
		ErrorsTotal:       m.ErrorsTotal.Load(),
		Errors4xx:         m.Errors4xx.Load(),
		Errors5xx:         m.Errors5xx.Load(),
		CGILaunched:       m.CGILaunched.Load(),
		CGITimedOut:       m.CGITimedOut.Load(),
		AverageLatencyMs:  m.AverageLatency().Milliseconds(),
	}
}
