package instrument

import (
	"math"
	"time"

	"k8s.io/utils/clock"

	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/pkg/timeunit"
	"github.com/c360/telemetrix/snapshot"
)

var _ Instrument = (*Histogram)(nil)

// Histogram samples observed values into an exponentially decaying reservoir
// so recent values dominate the reported distribution.
//
// Only updates that carry a value touch the histogram. Each sample decays
// from the observation's own timestamp; an out-of-order timestamp falls back
// to the wall clock so late arrivals cannot corrupt the decay ordering.
type Histogram struct {
	core
	reservoir   *expDecayReservoir
	count       uint64
	lastUpdate  time.Time
	everUpdated bool

	displayUnit timeunit.Unit
	displaySet  bool

	inactivityLimit time.Duration
	limitSet        bool
	resetOnReturn   bool

	clock clock.PassiveClock
}

// NewHistogram creates an empty histogram rendered as a subtree under the
// given name.
func NewHistogram(name string, opts ...Option) *Histogram {
	o := applyOptions(opts...)
	return &Histogram{
		core:      core{name: name},
		reservoir: newExpDecayReservoir(o.clock),
		clock:     o.clock,
	}
}

// SetDisplayUnit makes the histogram accept duration values, converted into
// the given unit. Without it duration values are ignored.
func (h *Histogram) SetDisplayUnit(unit timeunit.Unit) {
	h.displayUnit = unit
	h.displaySet = true
}

// SetInactivityLimit makes the histogram report an active/inactive flag pair
// and suppress statistics once no update has arrived for the given duration.
func (h *Histogram) SetInactivityLimit(limit time.Duration) {
	h.inactivityLimit = limit
	h.limitSet = true
}

// ResetAfterInactivity makes the histogram drop its reservoir and count when
// an update arrives after the inactivity limit has elapsed, so the new
// activity period starts from a clean distribution.
func (h *Histogram) ResetAfterInactivity(reset bool) {
	h.resetOnReturn = reset
}

// Update folds a value payload into the reservoir.
func (h *Histogram) Update(u *observation.Update) int {
	v, ok := u.Value()
	if !ok {
		return 0
	}

	sample, ok := h.sampleValue(v)
	if !ok {
		return 0
	}

	now := h.clock.Now()
	if h.limitSet && h.resetOnReturn && h.everUpdated && now.Sub(h.lastUpdate) > h.inactivityLimit {
		h.reservoir.reset()
		h.count = 0
	}

	at := u.Timestamp()
	if h.everUpdated && !at.After(h.lastUpdate) {
		at = now
	}

	h.reservoir.update(sample, at)
	h.count++
	h.lastUpdate = at
	h.everUpdated = true
	return 1
}

func (h *Histogram) sampleValue(v observation.Value) (int64, bool) {
	switch v.Kind() {
	case observation.KindSigned, observation.KindUnsigned:
		return v.AsInt64()
	case observation.KindFloat:
		f, _ := v.AsFloat64()
		return int64(math.Round(f)), true
	case observation.KindDuration:
		if !h.displaySet {
			return 0, false
		}
		return v.DurationIn(h.displayUnit)
	default:
		return 0, false
	}
}

// Count returns how many samples have been recorded in the current activity
// period.
func (h *Histogram) Count() uint64 {
	return h.count
}

// PutSnapshot renders the histogram as a subtree with count, min, max, mean,
// stddev and a nested quantiles object. With an inactivity limit configured
// the subtree carries an active/inactive flag pair, and statistics are
// suppressed while inactive.
func (h *Histogram) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	sub := snapshot.NewTree()
	if descriptive {
		h.putDescriptiveMembers(sub)
	}

	if h.limitSet {
		inactive := !h.everUpdated || h.clock.Now().Sub(h.lastUpdate) > h.inactivityLimit
		sub.SetBool("active", !inactive)
		sub.SetBool("inactive", inactive)
		if inactive {
			tree.SetTree(h.name, sub)
			return
		}
	}

	sub.SetUint("count", h.count)
	if view, ok := h.reservoir.view(); ok {
		sub.SetInt("min", view.min)
		sub.SetInt("max", view.max)
		sub.SetFloat("mean", view.mean)
		sub.SetFloat("stddev", view.stddev)

		quantiles := snapshot.NewTree()
		quantiles.SetFloat("p50", view.quantile(0.50))
		quantiles.SetFloat("p75", view.quantile(0.75))
		quantiles.SetFloat("p95", view.quantile(0.95))
		quantiles.SetFloat("p98", view.quantile(0.98))
		quantiles.SetFloat("p99", view.quantile(0.99))
		quantiles.SetFloat("p999", view.quantile(0.999))
		sub.SetTree("quantiles", quantiles)
	}

	tree.SetTree(h.name, sub)
}
