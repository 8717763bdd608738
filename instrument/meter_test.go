package instrument

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/snapshot"
)

func TestMeter_MarksPerUpdateShape(t *testing.T) {
	fc := testingclock.NewFakeClock(testInstant)
	m := NewMeter("throughput", WithClock(fc))

	many := observation.Occurrences(5, testInstant)
	assert.Equal(t, 1, m.Update(&many))

	one := observation.Occurrence(testInstant)
	assert.Equal(t, 1, m.Update(&one))

	valued := observation.OccurrenceValue(observation.SignedValue(1000), testInstant)
	assert.Equal(t, 1, m.Update(&valued))

	assert.Equal(t, uint64(7), m.Count(), "a value payload marks exactly one event")
}

func TestMeter_RatesAfterTick(t *testing.T) {
	fc := testingclock.NewFakeClock(testInstant)
	m := NewMeter("throughput", WithClock(fc))

	u := observation.Occurrences(10, testInstant)
	m.Update(&u)
	fc.Step(5 * time.Second)

	rates := m.Rates()
	assert.InDelta(t, 2.0, rates.OneMinute, 1e-9)
}

func TestMeter_PutSnapshotShape(t *testing.T) {
	fc := testingclock.NewFakeClock(testInstant)
	m := NewMeter("throughput", WithClock(fc))
	m.SetTitle("Request throughput")

	u := observation.Occurrences(10, testInstant)
	m.Update(&u)
	fc.Step(5 * time.Second)

	tree := snapshot.NewTree()
	m.PutSnapshot(tree, false)

	count, ok := tree.At("throughput", "count")
	require.True(t, ok)
	c, _ := count.AsUint()
	assert.Equal(t, uint64(10), c)

	for _, window := range []string{"one_minute", "five_minutes", "fifteen_minutes"} {
		rate, ok := tree.At("throughput", window, "rate")
		require.True(t, ok, "window %s should be present", window)
		r, _ := rate.AsFloat()
		assert.InDelta(t, 2.0, r, 1e-9)
	}

	_, ok = tree.At("throughput", "title")
	assert.False(t, ok, "title only appears in descriptive mode")

	descriptive := snapshot.NewTree()
	m.PutSnapshot(descriptive, true)
	title, ok := descriptive.At("throughput", "title")
	require.True(t, ok)
	text, _ := title.AsText()
	assert.Equal(t, "Request throughput", text)
}
