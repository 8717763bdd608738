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

func TestDataDisplay_StoresVerbatim(t *testing.T) {
	d := NewDataDisplay("current_job")

	_, ok := d.Get()
	assert.False(t, ok)

	u := observation.OccurrenceValue(observation.SignedValue(-5), testInstant)
	assert.Equal(t, 1, d.Update(&u))

	v, ok := d.Get()
	require.True(t, ok)
	assert.Equal(t, observation.KindSigned, v.Kind())
	i, _ := v.AsInt64()
	assert.Equal(t, int64(-5), i)
}

func TestDataDisplay_IgnoresDeltasAndPlainOccurrences(t *testing.T) {
	d := NewDataDisplay("current_job")

	delta := observation.OccurrenceValue(observation.ChangedBy(1), testInstant)
	assert.Equal(t, 0, d.Update(&delta))

	plain := observation.Occurrence(testInstant)
	assert.Equal(t, 0, d.Update(&plain))
}

func TestDataDisplay_QuietPeriodRevertsToDefault(t *testing.T) {
	fc := testingclock.NewFakeClock(testInstant)
	d := NewDataDisplay("current_job", WithClock(fc))
	d.SetDefault(observation.SignedValue(0))
	d.SetResetAfter(30 * time.Second)

	u := observation.OccurrenceValue(observation.SignedValue(42), testInstant)
	d.Update(&u)

	v, ok := d.Get()
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(42), i)

	fc.Step(31 * time.Second)

	v, ok = d.Get()
	require.True(t, ok)
	i, _ = v.AsInt64()
	assert.Equal(t, int64(0), i, "quiet period reverts to the default")
}

func TestDataDisplay_QuietPeriodWithoutDefaultUnsets(t *testing.T) {
	fc := testingclock.NewFakeClock(testInstant)
	d := NewDataDisplay("current_job", WithClock(fc))
	d.SetResetAfter(30 * time.Second)

	u := observation.OccurrenceValue(observation.SignedValue(42), testInstant)
	d.Update(&u)

	fc.Step(31 * time.Second)

	_, ok := d.Get()
	assert.False(t, ok)

	tree := snapshot.NewTree()
	d.PutSnapshot(tree, false)
	assert.Zero(t, tree.Len())
}

func TestDataDisplay_SnapshotKeepsKind(t *testing.T) {
	tests := []struct {
		name  string
		value observation.Value
		check func(t *testing.T, item snapshot.Item)
	}{
		{
			name:  "signed",
			value: observation.SignedValue(-3),
			check: func(t *testing.T, item snapshot.Item) {
				v, ok := item.AsInt()
				require.True(t, ok)
				assert.Equal(t, int64(-3), v)
			},
		},
		{
			name:  "unsigned",
			value: observation.UnsignedValue(9),
			check: func(t *testing.T, item snapshot.Item) {
				v, ok := item.AsUint()
				require.True(t, ok)
				assert.Equal(t, uint64(9), v)
			},
		},
		{
			name:  "float",
			value: observation.FloatValue(1.5),
			check: func(t *testing.T, item snapshot.Item) {
				v, ok := item.AsFloat()
				require.True(t, ok)
				assert.Equal(t, 1.5, v)
			},
		},
		{
			name:  "bool",
			value: observation.BoolValue(true),
			check: func(t *testing.T, item snapshot.Item) {
				v, ok := item.AsBool()
				require.True(t, ok)
				assert.True(t, v)
			},
		},
		{
			name:  "duration renders as text",
			value: observation.DurationValue(250, timeunit.Milliseconds),
			check: func(t *testing.T, item snapshot.Item) {
				v, ok := item.AsText()
				require.True(t, ok)
				assert.Equal(t, "250ms", v)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDataDisplay("display")
			u := observation.OccurrenceValue(tt.value, testInstant)
			require.Equal(t, 1, d.Update(&u))

			tree := snapshot.NewTree()
			d.PutSnapshot(tree, false)

			item, ok := tree.Get("display")
			require.True(t, ok)
			tt.check(t, item)
		})
	}
}
