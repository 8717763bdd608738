package instrument

import (
	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/pkg/ewma"
	"github.com/c360/telemetrix/snapshot"
)

var _ Instrument = (*Meter)(nil)

// Meter tracks how often something happens: a raw total plus 1, 5 and
// 15-minute moving average rates.
type Meter struct {
	core
	meter *ewma.Meter
}

// NewMeter creates a meter rendered as a subtree under the given name.
func NewMeter(name string, opts ...Option) *Meter {
	o := applyOptions(opts...)
	return &Meter{
		core:  core{name: name},
		meter: ewma.NewMeter(ewma.WithClock(o.clock)),
	}
}

// Update marks the update's occurrence count. A value payload marks exactly
// one event; the value is not weighted into the rate.
func (m *Meter) Update(u *observation.Update) int {
	switch u.Kind() {
	case observation.UpdateOccurrences:
		m.meter.Mark(u.Count())
	case observation.UpdateOccurrence, observation.UpdateValue:
		m.meter.Mark(1)
	default:
		return 0
	}
	return 1
}

// Count returns the total number of events ever marked.
func (m *Meter) Count() uint64 {
	return m.meter.Count()
}

// Rates returns the current per-second readings.
func (m *Meter) Rates() ewma.Rates {
	return m.meter.Rates()
}

// PutSnapshot renders the meter as a subtree holding the count and one
// nested `{rate}` object per window.
func (m *Meter) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	rates := m.meter.Rates()

	sub := snapshot.NewTree()
	if descriptive {
		m.putDescriptiveMembers(sub)
	}
	sub.SetUint("count", m.meter.Count())
	sub.SetTree("one_minute", rateTree(rates.OneMinute))
	sub.SetTree("five_minutes", rateTree(rates.FiveMinutes))
	sub.SetTree("fifteen_minutes", rateTree(rates.FifteenMinutes))

	tree.SetTree(m.name, sub)
}

func rateTree(rate float64) *snapshot.Tree {
	t := snapshot.NewTree()
	t.SetFloat("rate", rate)
	return t
}
