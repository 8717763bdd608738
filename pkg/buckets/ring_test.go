package buckets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/c360/telemetrix/errors"
)

var ringEpoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestRing(t *testing.T, length int) (*Ring[int64], *testingclock.FakeClock) {
	t.Helper()
	fc := testingclock.NewFakeClock(ringEpoch)
	r, err := NewRing[int64](length, WithClock[int64](fc))
	require.NoError(t, err)
	return r, fc
}

func TestNewRing_RejectsNonPositiveLength(t *testing.T) {
	for _, length := range []int{0, -1} {
		_, err := NewRing[int64](length)
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err), "expected invalid classification for length %d", length)
	}
}

func TestRing_CurrentFoldsIntoSameSlot(t *testing.T) {
	r, _ := newTestRing(t, 5)

	*r.Current() += 3
	*r.Current() += 4

	assert.Equal(t, int64(7), *r.Current())
}

func TestRing_SlotAgesOutAfterWindow(t *testing.T) {
	r, fc := newTestRing(t, 3)

	*r.Current() = 42

	// Advancing by exactly the window length resets every slot
	fc.Step(3 * time.Second)
	assert.Equal(t, int64(0), *r.Current())
	count := 0
	r.Each(func(v *int64) {
		if *v != 0 {
			count++
		}
	})
	assert.Zero(t, count, "no slot should survive a full-window advance")
}

func TestRing_OldestSlotSurvivesWindowMinusOne(t *testing.T) {
	r, fc := newTestRing(t, 3)

	*r.Current() = 42

	fc.Step(2 * time.Second)

	slot, ok := r.At(ringEpoch)
	require.True(t, ok, "the original slot should still be reachable")
	assert.Equal(t, int64(42), *slot)

	// One more second pushes it out
	fc.Step(time.Second)
	_, ok = r.At(ringEpoch)
	assert.False(t, ok)
}

func TestRing_SubSecondAdvancesDoNotDrift(t *testing.T) {
	single, sfc := newTestRing(t, 4)
	fractional, ffc := newTestRing(t, 4)

	*single.Current() = 1
	*fractional.Current() = 1

	// 2 whole seconds as one advance vs. eight 250ms advances
	sfc.Step(2 * time.Second)
	single.rotate()
	for i := 0; i < 8; i++ {
		ffc.Step(250 * time.Millisecond)
		fractional.rotate()
	}

	assert.Equal(t, single.idx, fractional.idx)
	assert.Equal(t, single.slots, fractional.slots)
}

func TestRing_AtCurrentInstant(t *testing.T) {
	r, fc := newTestRing(t, 5)

	*r.Current() = 9

	slot, ok := r.At(fc.Now())
	require.True(t, ok)
	assert.Equal(t, int64(9), *slot)

	// Sub-second later the same slot still covers "now"
	fc.Step(400 * time.Millisecond)
	slot, ok = r.At(fc.Now())
	require.True(t, ok)
	assert.Equal(t, int64(9), *slot)
}

func TestRing_AtRejectsFutureAndTooOld(t *testing.T) {
	r, fc := newTestRing(t, 3)

	_, ok := r.At(fc.Now().Add(time.Second))
	assert.False(t, ok, "future instants are absent")

	_, ok = r.At(fc.Now().Add(-10 * time.Second))
	assert.False(t, ok, "instants older than the window are absent")
}

func TestRing_AtReachesEachSecondOfWindow(t *testing.T) {
	r, fc := newTestRing(t, 4)

	// Write a distinct value into four consecutive seconds
	for i := int64(0); i < 4; i++ {
		*r.Current() = i + 1
		if i < 3 {
			fc.Step(time.Second)
		}
	}

	for age := int64(0); age < 4; age++ {
		slot, ok := r.At(fc.Now().Add(-time.Duration(age) * time.Second))
		require.True(t, ok, "age %d should be reachable", age)
		assert.Equal(t, int64(4-age), *slot)
	}
}

func TestRing_EachWalksBackwardInTime(t *testing.T) {
	r, fc := newTestRing(t, 3)

	*r.Current() = 1
	fc.Step(time.Second)
	*r.Current() = 2
	fc.Step(time.Second)
	*r.Current() = 3

	var got []int64
	r.Each(func(v *int64) {
		got = append(got, *v)
	})
	assert.Equal(t, []int64{3, 2, 1}, got)

	// Each is restartable and yields the same sequence again
	got = got[:0]
	r.Each(func(v *int64) {
		got = append(got, *v)
	})
	assert.Equal(t, []int64{3, 2, 1}, got)
}

func TestRing_PartialAdvanceClearsOnlyAgedSlots(t *testing.T) {
	r, fc := newTestRing(t, 5)

	*r.Current() = 10
	fc.Step(2 * time.Second)
	*r.Current() = 20

	slot, ok := r.At(fc.Now().Add(-2 * time.Second))
	require.True(t, ok)
	assert.Equal(t, int64(10), *slot)

	// The second between the two writes aged in as zero
	slot, ok = r.At(fc.Now().Add(-time.Second))
	require.True(t, ok)
	assert.Equal(t, int64(0), *slot)

	assert.Equal(t, int64(20), *r.Current())
}
