package health

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Monitor tracks the health of the pipeline's components. Safe for
// concurrent use; the driver loop writes while the gateway reads.
type Monitor struct {
	clock    clock.PassiveClock
	mu       sync.RWMutex
	statuses map[string]Status
}

// MonitorOption configures a monitor.
type MonitorOption func(*Monitor)

// WithClock substitutes the clock used for timestamps and staleness.
func WithClock(c clock.PassiveClock) MonitorOption {
	return func(m *Monitor) {
		if c != nil {
			m.clock = c
		}
	}
}

// NewMonitor creates an empty monitor.
func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{
		clock:    clock.RealClock{},
		statuses: make(map[string]Status),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Update records the status for a named component.
func (m *Monitor) Update(name string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = m.clock.Now()
	}
	m.statuses[name] = status
}

// UpdateHealthy records a healthy status for a named component. The
// timestamp comes from the monitor's clock.
func (m *Monitor) UpdateHealthy(name, message string) {
	m.Update(name, Status{Healthy: true, Status: "healthy", Message: message})
}

// UpdateUnhealthy records an unhealthy status for a named component.
func (m *Monitor) UpdateUnhealthy(name, message string) {
	m.Update(name, Status{Status: "unhealthy", Message: sanitizeMessage(message)})
}

// UpdateDegraded records a degraded status for a named component.
func (m *Monitor) UpdateDegraded(name, message string) {
	m.Update(name, Status{Status: "degraded", Message: sanitizeMessage(message)})
}

// Get retrieves the status for a named component.
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[name]
	return status, exists
}

// GetAll returns a copy of all current statuses.
func (m *Monitor) GetAll() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]Status, len(m.statuses))
	for name, status := range m.statuses {
		result[name] = status
	}
	return result
}

// Remove forgets a component.
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.statuses, name)
}

// Count returns the number of tracked components.
func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.statuses)
}

// AggregateHealth folds all tracked components into one system status.
func (m *Monitor) AggregateHealth(systemName string) Status {
	return m.AggregateWithMaxAge(systemName, 0)
}

// AggregateWithMaxAge folds all tracked components into one system status,
// demoting any healthy status older than maxAge to degraded. A maxAge of
// zero disables the staleness check.
func (m *Monitor) AggregateWithMaxAge(systemName string, maxAge time.Duration) Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.clock.Now()
	subStatuses := make([]Status, 0, len(m.statuses))
	for _, status := range m.statuses {
		if maxAge > 0 && status.IsHealthy() && now.Sub(status.Timestamp) > maxAge {
			status = NewDegraded(status.Component, "No heartbeat since "+status.Timestamp.UTC().Format(time.RFC3339))
			status.Timestamp = now
		}
		subStatuses = append(subStatuses, status)
	}

	return Aggregate(systemName, subStatuses)
}
