package instrument

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/pkg/timeunit"
	"github.com/c360/telemetrix/snapshot"
)

func valueUpdate(v observation.Value) observation.Update {
	return observation.OccurrenceValue(v, testInstant)
}

func TestGauge_SetAndRead(t *testing.T) {
	g := NewGauge("level")

	_, ok := g.Get()
	assert.False(t, ok, "a fresh gauge is unset")

	u := valueUpdate(observation.SignedValue(42))
	assert.Equal(t, 1, g.Update(&u))

	v, ok := g.Get()
	require.True(t, ok)
	assert.Equal(t, int64(42), v)
}

func TestGauge_IgnoresPlainOccurrences(t *testing.T) {
	g := NewGauge("level")

	u := observation.Occurrence(testInstant)
	assert.Equal(t, 0, g.Update(&u))

	many := observation.Occurrences(5, testInstant)
	assert.Equal(t, 0, g.Update(&many))

	_, ok := g.Get()
	assert.False(t, ok)
}

func TestGauge_ChangedByNeedsBaseline(t *testing.T) {
	g := NewGauge("level")

	u := valueUpdate(observation.ChangedBy(5))
	assert.Equal(t, 0, g.Update(&u), "no baseline to change")
	_, ok := g.Get()
	assert.False(t, ok)

	set := valueUpdate(observation.SignedValue(10))
	g.Update(&set)

	up := valueUpdate(observation.ChangedBy(5))
	assert.Equal(t, 1, g.Update(&up))
	down := valueUpdate(observation.ChangedBy(-3))
	assert.Equal(t, 1, g.Update(&down))

	v, _ := g.Get()
	assert.Equal(t, int64(12), v)
}

func TestGauge_LegacySentinelsMapToDeltas(t *testing.T) {
	g := NewGauge("level")

	inc := valueUpdate(observation.SignedValue(math.MaxInt64))
	assert.Equal(t, 0, g.Update(&inc), "sentinel increment needs a baseline too")

	set := valueUpdate(observation.SignedValue(100))
	g.Update(&set)

	g.Update(&inc)
	g.Update(&inc)
	dec := valueUpdate(observation.SignedValue(math.MinInt64))
	g.Update(&dec)

	v, _ := g.Get()
	assert.Equal(t, int64(101), v)
}

func TestGauge_ValueKinds(t *testing.T) {
	tests := []struct {
		name     string
		value    observation.Value
		expected int64
		applied  bool
	}{
		{"unsigned in range", observation.UnsignedValue(7), 7, true},
		{"unsigned too large", observation.UnsignedValue(math.MaxUint64), 0, false},
		{"float rounds", observation.FloatValue(2.6), 3, true},
		{"bool ignored", observation.BoolValue(true), 0, false},
		{"duration ignored without display unit", observation.DurationValue(5, timeunit.Seconds), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGauge("level")
			u := valueUpdate(tt.value)
			n := g.Update(&u)

			if !tt.applied {
				assert.Equal(t, 0, n)
				_, ok := g.Get()
				assert.False(t, ok)
				return
			}

			assert.Equal(t, 1, n)
			v, ok := g.Get()
			require.True(t, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestGauge_DisplayUnitConvertsDurations(t *testing.T) {
	g := NewGauge("latency")
	g.SetDisplayUnit(timeunit.Microseconds)

	u := valueUpdate(observation.DurationValue(5, timeunit.Milliseconds))
	assert.Equal(t, 1, g.Update(&u))

	v, _ := g.Get()
	assert.Equal(t, int64(5000), v)
}

func TestGauge_TrackRejectsZeroWindow(t *testing.T) {
	g := NewGauge("level")
	assert.Error(t, g.Track(0))
	assert.NoError(t, g.Track(30))
}

func TestGauge_TrackingPeakAndBottom(t *testing.T) {
	fc := testingclock.NewFakeClock(testInstant)
	g := NewGauge("level", WithClock(fc))
	require.NoError(t, g.Track(3))

	for _, v := range []int64{10, 50, 20} {
		u := valueUpdate(observation.SignedValue(v))
		g.Update(&u)
	}

	tree := snapshot.NewTree()
	g.PutSnapshot(tree, false)

	current, _ := tree.Get("level")
	v, _ := current.AsInt()
	assert.Equal(t, int64(20), v)

	peak, ok := tree.Get("level_peak")
	require.True(t, ok)
	pv, _ := peak.AsInt()
	assert.Equal(t, int64(50), pv)

	bottom, ok := tree.Get("level_bottom")
	require.True(t, ok)
	bv, _ := bottom.AsInt()
	assert.Equal(t, int64(10), bv)
}

func TestGauge_TrackingExtremaAgeOut(t *testing.T) {
	fc := testingclock.NewFakeClock(testInstant)
	g := NewGauge("level", WithClock(fc))
	require.NoError(t, g.Track(3))

	spike := valueUpdate(observation.SignedValue(100))
	g.Update(&spike)

	fc.Step(time.Second)
	settle := valueUpdate(observation.SignedValue(10))
	g.Update(&settle)

	tree := snapshot.NewTree()
	g.PutSnapshot(tree, false)
	peak, _ := tree.Get("level_peak")
	pv, _ := peak.AsInt()
	assert.Equal(t, int64(100), pv, "the spike is still inside the window")

	// Rotate the spike out of the window
	fc.Step(4 * time.Second)
	recent := valueUpdate(observation.SignedValue(10))
	g.Update(&recent)

	tree = snapshot.NewTree()
	g.PutSnapshot(tree, false)
	peak, _ = tree.Get("level_peak")
	pv, _ = peak.AsInt()
	assert.Equal(t, int64(10), pv, "the peak decays back toward recent values")
}

func TestGauge_TrackingFallsBackToCurrentWhenWindowEmpty(t *testing.T) {
	fc := testingclock.NewFakeClock(testInstant)
	g := NewGauge("level", WithClock(fc))
	require.NoError(t, g.Track(2))

	set := valueUpdate(observation.SignedValue(30))
	g.Update(&set)

	// Let every tracked sample age out without new updates
	fc.Step(10 * time.Second)

	tree := snapshot.NewTree()
	g.PutSnapshot(tree, false)

	peak, ok := tree.Get("level_peak")
	require.True(t, ok)
	pv, _ := peak.AsInt()
	assert.Equal(t, int64(30), pv)

	bottom, _ := tree.Get("level_bottom")
	bv, _ := bottom.AsInt()
	assert.Equal(t, int64(30), bv)
}

func TestGauge_UnsetAbsentFromSnapshot(t *testing.T) {
	g := NewGauge("level")

	tree := snapshot.NewTree()
	g.PutSnapshot(tree, true)

	assert.Zero(t, tree.Len())
}
