package instrument

import (
	"math"

	"k8s.io/utils/clock"

	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/pkg/buckets"
	"github.com/c360/telemetrix/pkg/timeunit"
	"github.com/c360/telemetrix/snapshot"
)

// Legacy encoding used by older emitters that cannot send ChangedBy deltas:
// the extreme signed values mean "one up" and "one down".
const (
	legacyIncrement = math.MaxInt64
	legacyDecrement = math.MinInt64
)

var _ Instrument = (*Gauge)(nil)

// Gauge holds the last observed value. Until the first absolute value
// arrives the gauge is unset and absent from snapshots.
//
// With Track enabled the gauge also follows its peak and bottom over a
// sliding window of seconds: a new extremum registers immediately, and once
// the window has rotated past it the reported extremum falls back toward
// more recent values.
type Gauge struct {
	core
	value       int64
	set         bool
	displayUnit timeunit.Unit
	displaySet  bool
	tracking    *buckets.Ring[buckets.Bucket]
	clock       clock.PassiveClock
}

// NewGauge creates an unset gauge rendered under the given name.
func NewGauge(name string, opts ...Option) *Gauge {
	o := applyOptions(opts...)
	return &Gauge{core: core{name: name}, clock: o.clock}
}

// Track enables peak and bottom tracking over a window of the given seconds.
func (g *Gauge) Track(windowSeconds int) error {
	ring, err := buckets.NewRing[buckets.Bucket](windowSeconds, buckets.WithClock[buckets.Bucket](g.clock))
	if err != nil {
		return errors.WrapInvalid(err, "Gauge", "Track", "window creation")
	}
	g.tracking = ring
	return nil
}

// SetDisplayUnit makes the gauge accept duration values, converted into the
// given unit. Without it duration values are ignored.
func (g *Gauge) SetDisplayUnit(unit timeunit.Unit) {
	g.displayUnit = unit
	g.displaySet = true
}

// Update interprets a value payload. Plain numbers replace the current
// value, ChangedBy deltas adjust it, durations convert via the display unit.
// Updates without a value and deltas against an unset gauge change nothing.
func (g *Gauge) Update(u *observation.Update) int {
	v, ok := u.Value()
	if !ok {
		return 0
	}

	next, ok := g.nextValue(v)
	if !ok {
		return 0
	}

	g.value = next
	g.set = true
	if g.tracking != nil {
		g.tracking.Current().Update(next)
	}
	return 1
}

func (g *Gauge) nextValue(v observation.Value) (int64, bool) {
	switch v.Kind() {
	case observation.KindSigned:
		s, _ := v.AsInt64()
		switch s {
		case legacyIncrement:
			return g.applyDelta(1)
		case legacyDecrement:
			return g.applyDelta(-1)
		default:
			return s, true
		}
	case observation.KindUnsigned:
		if s, ok := v.AsInt64(); ok {
			return s, true
		}
		return 0, false
	case observation.KindFloat:
		f, _ := v.AsFloat64()
		return int64(math.Round(f)), true
	case observation.KindDuration:
		if !g.displaySet {
			return 0, false
		}
		d, _ := v.DurationIn(g.displayUnit)
		return d, true
	case observation.KindChangedBy:
		d, _ := v.Delta()
		return g.applyDelta(d)
	default:
		return 0, false
	}
}

// applyDelta adjusts the current value. A delta against an unset gauge has
// no baseline and is dropped.
func (g *Gauge) applyDelta(d int64) (int64, bool) {
	if !g.set {
		return 0, false
	}
	return g.value + d, true
}

// Get returns the current value, if the gauge has ever been set.
func (g *Gauge) Get() (int64, bool) {
	return g.value, g.set
}

// PutSnapshot writes the value under the gauge's name. With tracking enabled
// it adds `<name>_peak` and `<name>_bottom`; a window with no samples left
// reports the current value for both.
func (g *Gauge) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	if !g.set {
		return
	}
	tree.SetInt(g.name, g.value)

	if g.tracking != nil {
		peak, bottom := g.value, g.value
		if stats, ok := buckets.BucketStats(g.tracking); ok {
			peak, bottom = stats.Peak, stats.Bottom
		}
		tree.SetInt(g.name+"_peak", peak)
		tree.SetInt(g.name+"_bottom", bottom)
	}

	if descriptive {
		g.putDescriptiveSiblings(tree)
	}
}
