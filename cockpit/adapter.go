package cockpit

import (
	"math"

	"github.com/c360/telemetrix/instrument"
	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/snapshot"
)

var (
	_ HandlesObservation[string] = (*InstrumentAdapter[string])(nil)
	_ HandlesObservation[string] = (*GaugeAdapter[string])(nil)
)

// UpdateTransform rewrites an update before it reaches the wrapped
// instrument. Returning false drops the update.
type UpdateTransform func(u observation.Update) (observation.Update, bool)

// InstrumentAdapter turns a label-agnostic instrument into a dispatch node:
// a label filter in front, an optional update transform in between. Attach
// it to a panel with AddHandler.
type InstrumentAdapter[L comparable] struct {
	filter     LabelFilter[L]
	transform  UpdateTransform
	instrument instrument.Instrument
}

// NewInstrumentAdapter wraps inst, accepting every label. A nil inst yields
// an adapter that never updates and renders nothing.
func NewInstrumentAdapter[L comparable](inst instrument.Instrument) *InstrumentAdapter[L] {
	return &InstrumentAdapter[L]{filter: AcceptAll[L](), instrument: inst}
}

// SetFilter replaces the adapter's label filter.
func (a *InstrumentAdapter[L]) SetFilter(f LabelFilter[L]) { a.filter = f }

// AcceptLabels narrows the adapter to exactly the given labels.
func (a *InstrumentAdapter[L]) AcceptLabels(labels ...L) {
	a.filter = AcceptLabels(labels...)
}

// AddLabel grows the adapter's filter by one accepted label.
func (a *InstrumentAdapter[L]) AddLabel(label L) {
	a.filter.AddLabel(label)
}

// SetTransform installs an update transform applied after the filter.
func (a *InstrumentAdapter[L]) SetTransform(t UpdateTransform) { a.transform = t }

// HandleObservation filters, transforms and forwards to the wrapped
// instrument.
func (a *InstrumentAdapter[L]) HandleObservation(obs *observation.Observation[L]) int {
	if a.instrument == nil || !a.filter.Accepts(obs.Label) {
		return 0
	}
	u := obs.Update
	if a.transform != nil {
		var ok bool
		if u, ok = a.transform(u); !ok {
			return 0
		}
	}
	return a.instrument.Update(&u)
}

// PutSnapshot renders the wrapped instrument.
func (a *InstrumentAdapter[L]) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	if a.instrument != nil {
		a.instrument.PutSnapshot(tree, descriptive)
	}
}

// GaugeAdapter routes observations to a gauge with a choice of update
// strategies.
//
// The default strategy forwards accepted updates unchanged, so absolute
// values set the gauge and explicit deltas adjust it. DeltasOnly ignores
// everything but explicit deltas. CountUpOn and CountDownOn switch the
// adapter to counting mode: occurrences of the up labels raise the gauge by
// their count, occurrences of the down labels lower it, which is the usual
// way to track in-flight work from start and finish observations.
type GaugeAdapter[L comparable] struct {
	filter     LabelFilter[L]
	upFilter   LabelFilter[L]
	downFilter LabelFilter[L]
	counting   bool
	deltasOnly bool
	gauge      *instrument.Gauge
}

// NewGaugeAdapter wraps g, accepting every label. A nil g yields an adapter
// that never updates and renders nothing.
func NewGaugeAdapter[L comparable](g *instrument.Gauge) *GaugeAdapter[L] {
	return &GaugeAdapter[L]{filter: AcceptAll[L](), gauge: g}
}

// SetFilter replaces the adapter's label filter.
func (a *GaugeAdapter[L]) SetFilter(f LabelFilter[L]) { a.filter = f }

// AcceptLabels narrows the adapter to exactly the given labels.
func (a *GaugeAdapter[L]) AcceptLabels(labels ...L) {
	a.filter = AcceptLabels(labels...)
}

// DeltasOnly restricts the adapter to explicit delta values. Absolute
// values no longer touch the gauge, so some other writer keeps the baseline.
func (a *GaugeAdapter[L]) DeltasOnly() { a.deltasOnly = true }

// CountUpOn switches to counting mode and raises the gauge by the
// occurrence count of the given labels.
func (a *GaugeAdapter[L]) CountUpOn(labels ...L) {
	a.counting = true
	a.upFilter = AcceptLabels(labels...)
}

// CountDownOn switches to counting mode and lowers the gauge by the
// occurrence count of the given labels.
func (a *GaugeAdapter[L]) CountDownOn(labels ...L) {
	a.counting = true
	a.downFilter = AcceptLabels(labels...)
}

// HandleObservation applies the configured strategy and forwards to the
// gauge.
func (a *GaugeAdapter[L]) HandleObservation(obs *observation.Observation[L]) int {
	if a.gauge == nil {
		return 0
	}

	if a.counting {
		delta, ok := a.countingDelta(obs)
		if !ok {
			return 0
		}
		u := observation.OccurrenceValue(observation.ChangedBy(delta), obs.Update.Timestamp())
		return a.gauge.Update(&u)
	}

	if !a.filter.Accepts(obs.Label) {
		return 0
	}
	u := obs.Update
	if a.deltasOnly {
		v, ok := u.Value()
		if !ok {
			return 0
		}
		if _, isDelta := v.Delta(); !isDelta {
			return 0
		}
	}
	return a.gauge.Update(&u)
}

func (a *GaugeAdapter[L]) countingDelta(obs *observation.Observation[L]) (int64, bool) {
	n := obs.Update.Count()
	if n > math.MaxInt64 {
		n = math.MaxInt64
	}
	switch {
	case a.upFilter.Accepts(obs.Label):
		return int64(n), true
	case a.downFilter.Accepts(obs.Label):
		return -int64(n), true
	default:
		return 0, false
	}
}

// PutSnapshot renders the wrapped gauge.
func (a *GaugeAdapter[L]) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	if a.gauge != nil {
		a.gauge.PutSnapshot(tree, descriptive)
	}
}
