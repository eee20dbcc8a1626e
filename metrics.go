package serialcom

import (
	"time"

	"go.uber.org/atomic"
)

// Metrics tracks link health statistics for a Conn.
type Metrics struct {
	// Connection Statistics
	ConnectionAttempts atomic.Int64 // Total Connect calls that reached the transport
	SuccessfulConnects atomic.Int64 // Connects that completed every step
	ConnectionFailures atomic.Int64 // Connects that failed at some step
	Disconnections     atomic.Int64 // Handles released
	LastConnectTime    atomic.Int64 // Unix timestamp of last connect
	LastDisconnectTime atomic.Int64 // Unix timestamp of last disconnect

	// Read Operations
	ReadOperations   atomic.Int64 // ReadLine/ReadUntil/ReadBytes calls
	SuccessfulReads  atomic.Int64
	ReadErrors       atomic.Int64 // Fatal OS errors
	ReadOverflows    atomic.Int64 // Frame filled before the terminator
	TransientRetries atomic.Int64 // Same-slot retries after a transient code or empty read
	BytesRead        atomic.Int64

	// Write Operations
	WriteOperations  atomic.Int64
	SuccessfulWrites atomic.Int64
	WriteErrors      atomic.Int64 // Fatal OS errors
	IncompleteWrites atomic.Int64 // Short writes
	PendingWrites    atomic.Int64 // Writes accepted as IO_PENDING
	BytesWritten     atomic.Int64

	// Discovery
	PortsProbed atomic.Int64
	PortsFound  atomic.Int64
}

// HealthStatus represents the overall health of the link
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDown      HealthStatus = "down"
)

// MetricsSnapshot is a point-in-time view of Metrics.
type MetricsSnapshot struct {
	Timestamp         time.Time
	IsConnected       bool
	ConnectionSuccess float64 // percent
	ReadSuccessRate   float64 // percent
	WriteSuccessRate  float64 // percent
	TotalReads        int64
	TotalWrites       int64
	TotalBytesRead    int64
	TotalBytesWritten int64
	TotalErrors       int64
	TransientRetries  int64
	PortsProbed       int64
	PortsFound        int64
	HealthStatus      HealthStatus
}

// Snapshot computes rates and a health status from the counters.
func (m *Metrics) Snapshot(isConnected bool) MetricsSnapshot {
	s := MetricsSnapshot{
		Timestamp:         time.Now(),
		IsConnected:       isConnected,
		ConnectionSuccess: rate(m.SuccessfulConnects.Load(), m.ConnectionAttempts.Load()),
		ReadSuccessRate:   rate(m.SuccessfulReads.Load(), m.ReadOperations.Load()),
		WriteSuccessRate:  rate(m.SuccessfulWrites.Load(), m.WriteOperations.Load()),
		TotalReads:        m.ReadOperations.Load(),
		TotalWrites:       m.WriteOperations.Load(),
		TotalBytesRead:    m.BytesRead.Load(),
		TotalBytesWritten: m.BytesWritten.Load(),
		TotalErrors:       m.ReadErrors.Load() + m.ReadOverflows.Load() + m.WriteErrors.Load() + m.IncompleteWrites.Load(),
		TransientRetries:  m.TransientRetries.Load(),
		PortsProbed:       m.PortsProbed.Load(),
		PortsFound:        m.PortsFound.Load(),
	}
	s.HealthStatus = assessHealthStatus(s)
	return s
}

func rate(ok, total int64) float64 {
	if total == 0 {
		return 100.0
	}
	return float64(ok) / float64(total) * 100
}

func assessHealthStatus(s MetricsSnapshot) HealthStatus {
	if !s.IsConnected {
		return HealthStatusDown
	}

	// Check for critical issues
	if s.ReadSuccessRate < 50.0 || s.WriteSuccessRate < 50.0 {
		return HealthStatusUnhealthy
	}

	// Check for degradation
	if s.ReadSuccessRate < 90.0 || s.WriteSuccessRate < 90.0 {
		return HealthStatusDegraded
	}

	return HealthStatusHealthy
}
