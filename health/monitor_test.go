package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

var monitorEpoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMonitorUpdateAndGet(t *testing.T) {
	m := NewMonitor()

	m.UpdateHealthy("loop", "cycling")
	m.UpdateDegraded("publisher", "reconnecting")

	status, ok := m.Get("loop")
	require.True(t, ok)
	assert.True(t, status.IsHealthy())
	assert.Equal(t, "cycling", status.Message)

	_, ok = m.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, m.Count())
	assert.Len(t, m.GetAll(), 2)
}

func TestMonitorUpdateStampsTimestamp(t *testing.T) {
	fake := testingclock.NewFakeClock(monitorEpoch)
	m := NewMonitor(WithClock(fake))

	m.Update("loop", Status{Healthy: true, Status: "healthy"})

	status, ok := m.Get("loop")
	require.True(t, ok)
	assert.Equal(t, monitorEpoch, status.Timestamp)
}

func TestMonitorRemove(t *testing.T) {
	m := NewMonitor()
	m.UpdateHealthy("loop", "ok")

	m.Remove("loop")

	_, ok := m.Get("loop")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())
}

func TestMonitorAggregateHealth(t *testing.T) {
	m := NewMonitor()
	m.UpdateHealthy("loop", "ok")
	m.UpdateHealthy("publisher", "ok")

	agg := m.AggregateHealth("telemetrix")
	assert.True(t, agg.IsHealthy())
	assert.Equal(t, "telemetrix", agg.Component)

	m.UpdateUnhealthy("publisher", "broker gone")

	agg = m.AggregateHealth("telemetrix")
	assert.True(t, agg.IsUnhealthy())
}

func TestMonitorStaleHeartbeatDemotesToDegraded(t *testing.T) {
	fake := testingclock.NewFakeClock(monitorEpoch)
	m := NewMonitor(WithClock(fake))

	m.UpdateHealthy("loop", "cycling")
	fake.Step(30 * time.Second)
	m.UpdateHealthy("publisher", "publishing")

	agg := m.AggregateWithMaxAge("telemetrix", time.Minute)
	assert.True(t, agg.IsHealthy())

	fake.Step(45 * time.Second)

	agg = m.AggregateWithMaxAge("telemetrix", time.Minute)
	assert.True(t, agg.IsDegraded())

	var stale Status
	for _, sub := range agg.SubStatuses {
		if sub.Component == "loop" {
			stale = sub
		}
	}
	assert.True(t, stale.IsDegraded())
	assert.Contains(t, stale.Message, "No heartbeat since")
}

func TestMonitorStaleSkipsAlreadyUnhealthy(t *testing.T) {
	fake := testingclock.NewFakeClock(monitorEpoch)
	m := NewMonitor(WithClock(fake))

	m.UpdateUnhealthy("publisher", "broker gone")
	fake.Step(time.Hour)

	agg := m.AggregateWithMaxAge("telemetrix", time.Minute)
	assert.True(t, agg.IsUnhealthy())

	for _, sub := range agg.SubStatuses {
		if sub.Component == "publisher" {
			assert.True(t, sub.IsUnhealthy())
		}
	}
}
