package cockpit

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/instrument"
	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/snapshot"
)

func TestCockpitScalesValuesBeforeDispatch(t *testing.T) {
	gauge := instrument.NewGauge("elapsed_us")

	panel := NewPanel[string]("")
	panel.SetGauge(gauge)

	cp := New[string]("timings")
	cp.SetValueScaling(observation.ScaleNanosToMicros)
	require.NoError(t, cp.AddPanel(panel))

	obs := observation.ObservedOneValue("done", observation.SignedValue(5_000_000), dispatchEpoch)
	assert.Equal(t, 1, cp.HandleObservation(&obs))

	v, ok := gauge.Get()
	require.True(t, ok)
	assert.Equal(t, int64(5000), v, "nanoseconds must arrive as microseconds")
}

func TestCockpitScalingLeavesOccurrencesAlone(t *testing.T) {
	counter := instrument.NewCounter("hits")

	panel := NewPanel[string]("")
	panel.SetCounter(counter)

	cp := New[string]("")
	cp.SetValueScaling(observation.ScaleNanosToMillis)
	require.NoError(t, cp.AddPanel(panel))

	obs := observation.Observed("done", 7, dispatchEpoch)
	cp.HandleObservation(&obs)

	assert.Equal(t, uint64(7), counter.Count())
}

func TestCockpitHasNoOwnFilter(t *testing.T) {
	acceptedHits := instrument.NewCounter("hits")
	rejectedHits := instrument.NewCounter("hits")

	accepting := NewPanel[string]("accepting")
	accepting.AcceptLabels("a")
	accepting.SetCounter(acceptedHits)

	rejecting := NewPanel[string]("rejecting")
	rejecting.AcceptLabels("b")
	rejecting.SetCounter(rejectedHits)

	cp := New[string]("cp")
	require.NoError(t, cp.AddPanel(accepting))
	require.NoError(t, cp.AddPanel(rejecting))

	obs := observation.ObservedOne("a", dispatchEpoch)
	assert.Equal(t, 1, cp.HandleObservation(&obs), "every panel judges the label itself")

	assert.Equal(t, uint64(1), acceptedHits.Count())
	assert.Equal(t, uint64(0), rejectedHits.Count())
}

func TestCockpitAddPanelRejectsDuplicateName(t *testing.T) {
	cp := New[string]("cp")

	require.NoError(t, cp.AddPanel(NewPanel[string]("twin")))

	err := cp.AddPanel(NewPanel[string]("twin"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrDuplicateName))
	assert.True(t, errors.IsInvalid(err))

	require.NoError(t, cp.AddPanel(NewPanel[string]("")))
	require.NoError(t, cp.AddPanel(NewPanel[string]("")))

	err = cp.AddPanel(nil)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNilComponent))
}

func TestCockpitSnapshotNesting(t *testing.T) {
	panel := NewPanel[string]("requests")
	panel.SetCounter(instrument.NewCounter("total"))

	named := New[string]("gateway")
	require.NoError(t, named.AddPanel(panel))

	obs := observation.ObservedOne("any", dispatchEpoch)
	named.HandleObservation(&obs)

	tree := snapshot.NewTree()
	named.PutSnapshot(tree, false)

	item, ok := tree.At("gateway", "requests", "total")
	require.True(t, ok)
	total, _ := item.AsUint()
	assert.Equal(t, uint64(1), total)

	flatPanel := NewPanel[string]("requests")
	flatPanel.SetCounter(instrument.NewCounter("total"))

	inline := New[string]("")
	require.NoError(t, inline.AddPanel(flatPanel))

	flat := snapshot.NewTree()
	inline.PutSnapshot(flat, false)
	if _, ok := flat.At("requests", "total"); !ok {
		t.Error("unnamed cockpit must write into its parent's object")
	}
}

func TestCockpitDescriptiveSnapshot(t *testing.T) {
	cp := New[string]("gateway")
	cp.SetTitle("Gateway")
	cp.SetDescription("Edge traffic.")

	tree := snapshot.NewTree()
	cp.PutSnapshot(tree, true)

	item, ok := tree.At("gateway", "title")
	require.True(t, ok)
	title, _ := item.AsText()
	assert.Equal(t, "Gateway", title)

	item, ok = tree.At("gateway", "description")
	require.True(t, ok)
	desc, _ := item.AsText()
	assert.Equal(t, "Edge traffic.", desc)
}
