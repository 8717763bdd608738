package instrument

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/pkg/timeunit"
	"github.com/c360/telemetrix/snapshot"
)

func newTestHistogram(t *testing.T) (*Histogram, *testingclock.FakeClock) {
	t.Helper()
	fc := testingclock.NewFakeClock(testInstant)
	return NewHistogram("latency", WithClock(fc)), fc
}

func feedValues(h *Histogram, at time.Time, values ...int64) {
	for _, v := range values {
		u := observation.OccurrenceValue(observation.SignedValue(v), at)
		h.Update(&u)
	}
}

func TestHistogram_OnlyValueUpdatesCount(t *testing.T) {
	h, _ := newTestHistogram(t)

	one := observation.Occurrence(testInstant)
	assert.Equal(t, 0, h.Update(&one))

	many := observation.Occurrences(5, testInstant)
	assert.Equal(t, 0, h.Update(&many))

	valued := observation.OccurrenceValue(observation.SignedValue(10), testInstant)
	assert.Equal(t, 1, h.Update(&valued))

	assert.Equal(t, uint64(1), h.Count())
}

func TestHistogram_SnapshotStatistics(t *testing.T) {
	h, _ := newTestHistogram(t)

	values := make([]int64, 100)
	for i := range values {
		values[i] = int64(i + 1)
	}
	feedValues(h, testInstant, values...)

	tree := snapshot.NewTree()
	h.PutSnapshot(tree, false)

	count, ok := tree.At("latency", "count")
	require.True(t, ok)
	c, _ := count.AsUint()
	assert.Equal(t, uint64(100), c)

	minItem, _ := tree.At("latency", "min")
	minV, _ := minItem.AsInt()
	assert.Equal(t, int64(1), minV)

	maxItem, _ := tree.At("latency", "max")
	maxV, _ := maxItem.AsInt()
	assert.Equal(t, int64(100), maxV)

	mean, _ := tree.At("latency", "mean")
	m, _ := mean.AsFloat()
	assert.InDelta(t, 50.5, m, 1e-9, "equal timestamps weigh every sample the same")

	// With uniform weights the quantile is the smallest value whose
	// cumulative share reaches q
	tests := []struct {
		key      string
		expected float64
	}{
		{"p50", 50},
		{"p75", 75},
		{"p95", 95},
		{"p98", 98},
		{"p99", 99},
		{"p999", 100},
	}
	for _, tt := range tests {
		q, ok := tree.At("latency", "quantiles", tt.key)
		require.True(t, ok, "quantile %s should be present", tt.key)
		v, _ := q.AsFloat()
		assert.Equal(t, tt.expected, v, "quantile %s", tt.key)
	}
}

func TestHistogram_EmptySnapshotHasOnlyCount(t *testing.T) {
	h, _ := newTestHistogram(t)

	tree := snapshot.NewTree()
	h.PutSnapshot(tree, false)

	count, ok := tree.At("latency", "count")
	require.True(t, ok)
	c, _ := count.AsUint()
	assert.Zero(t, c)

	_, ok = tree.At("latency", "mean")
	assert.False(t, ok, "no statistics without samples")
}

func TestHistogram_ValueKinds(t *testing.T) {
	h, _ := newTestHistogram(t)

	float := observation.OccurrenceValue(observation.FloatValue(2.4), testInstant)
	assert.Equal(t, 1, h.Update(&float))

	boolean := observation.OccurrenceValue(observation.BoolValue(true), testInstant)
	assert.Equal(t, 0, h.Update(&boolean))

	duration := observation.OccurrenceValue(observation.DurationValue(5, timeunit.Milliseconds), testInstant)
	assert.Equal(t, 0, h.Update(&duration), "durations need a display unit")

	h.SetDisplayUnit(timeunit.Microseconds)
	assert.Equal(t, 1, h.Update(&duration))

	tree := snapshot.NewTree()
	h.PutSnapshot(tree, false)
	maxItem, _ := tree.At("latency", "max")
	maxV, _ := maxItem.AsInt()
	assert.Equal(t, int64(5000), maxV, "5ms displayed in microseconds")
}

func TestHistogram_InactivityFlagPair(t *testing.T) {
	h, fc := newTestHistogram(t)
	h.SetInactivityLimit(60 * time.Second)

	// Never updated: inactive from the start
	tree := snapshot.NewTree()
	h.PutSnapshot(tree, false)
	active, ok := tree.At("latency", "active")
	require.True(t, ok)
	a, _ := active.AsBool()
	assert.False(t, a)
	inactive, _ := tree.At("latency", "inactive")
	i, _ := inactive.AsBool()
	assert.True(t, i)
	_, ok = tree.At("latency", "count")
	assert.False(t, ok, "statistics are suppressed while inactive")

	// An update activates it
	feedValues(h, fc.Now(), 10)
	tree = snapshot.NewTree()
	h.PutSnapshot(tree, false)
	active, _ = tree.At("latency", "active")
	a, _ = active.AsBool()
	assert.True(t, a)
	_, ok = tree.At("latency", "count")
	assert.True(t, ok)

	// Quiet past the limit: inactive again
	fc.Step(61 * time.Second)
	tree = snapshot.NewTree()
	h.PutSnapshot(tree, false)
	active, _ = tree.At("latency", "active")
	a, _ = active.AsBool()
	assert.False(t, a)
}

func TestHistogram_ResetAfterInactivity(t *testing.T) {
	h, fc := newTestHistogram(t)
	h.SetInactivityLimit(60 * time.Second)
	h.ResetAfterInactivity(true)

	feedValues(h, fc.Now(), 100, 200, 300)
	assert.Equal(t, uint64(3), h.Count())

	// Returning after the quiet period starts a clean distribution
	fc.Step(2 * time.Minute)
	feedValues(h, fc.Now(), 7)

	assert.Equal(t, uint64(1), h.Count())

	tree := snapshot.NewTree()
	h.PutSnapshot(tree, false)
	maxItem, _ := tree.At("latency", "max")
	maxV, _ := maxItem.AsInt()
	assert.Equal(t, int64(7), maxV, "pre-gap samples are gone")
}

func TestHistogram_WithoutResetKeepsSamplesAcrossGap(t *testing.T) {
	h, fc := newTestHistogram(t)
	h.SetInactivityLimit(60 * time.Second)

	feedValues(h, fc.Now(), 100)
	fc.Step(2 * time.Minute)
	feedValues(h, fc.Now(), 7)

	assert.Equal(t, uint64(2), h.Count())
}
