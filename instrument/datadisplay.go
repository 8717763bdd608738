package instrument

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/snapshot"
)

var _ Instrument = (*DataDisplay)(nil)

// DataDisplay holds the most recently observed value verbatim for direct
// display. An optional quiet period reverts the display to a configured
// default once no update has arrived for that long.
type DataDisplay struct {
	core
	value      observation.Value
	set        bool
	defaultVal observation.Value
	defaultSet bool
	resetAfter time.Duration
	resetSet   bool
	lastUpdate time.Time
	clock      clock.PassiveClock
}

// NewDataDisplay creates an unset display rendered under the given name.
func NewDataDisplay(name string, opts ...Option) *DataDisplay {
	o := applyOptions(opts...)
	return &DataDisplay{core: core{name: name}, clock: o.clock}
}

// SetDefault sets the value the display reverts to after the quiet period,
// and shows until the first update arrives.
func (d *DataDisplay) SetDefault(v observation.Value) {
	d.defaultVal = v
	d.defaultSet = true
}

// SetResetAfter reverts the display to its default once no update has
// arrived for the given duration.
func (d *DataDisplay) SetResetAfter(quiet time.Duration) {
	d.resetAfter = quiet
	d.resetSet = true
}

// Update stores a value payload verbatim. Deltas have nothing to display and
// are ignored.
func (d *DataDisplay) Update(u *observation.Update) int {
	v, ok := u.Value()
	if !ok {
		return 0
	}
	if v.Kind() == observation.KindChangedBy {
		return 0
	}
	d.value = v
	d.set = true
	d.lastUpdate = d.clock.Now()
	return 1
}

// catchUp applies the quiet-period reset before any read.
func (d *DataDisplay) catchUp() {
	if !d.set || !d.resetSet {
		return
	}
	if d.clock.Now().Sub(d.lastUpdate) > d.resetAfter {
		d.set = false
	}
}

// Get returns the displayed value: the last observed one, or the default
// after a reset or before any update.
func (d *DataDisplay) Get() (observation.Value, bool) {
	d.catchUp()
	if d.set {
		return d.value, true
	}
	if d.defaultSet {
		return d.defaultVal, true
	}
	return observation.Value{}, false
}

// PutSnapshot writes the displayed value under the display's name. Numeric
// and boolean values keep their kind; durations render as text with their
// unit.
func (d *DataDisplay) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	v, ok := d.Get()
	if !ok {
		return
	}

	switch v.Kind() {
	case observation.KindSigned:
		i, _ := v.AsInt64()
		tree.SetInt(d.name, i)
	case observation.KindUnsigned:
		u, _ := v.AsUint64()
		tree.SetUint(d.name, u)
	case observation.KindFloat:
		f, _ := v.AsFloat64()
		tree.SetFloat(d.name, f)
	case observation.KindBool:
		b, _ := v.AsBool()
		tree.SetBool(d.name, b)
	default:
		tree.SetText(d.name, v.String())
	}

	if descriptive {
		d.putDescriptiveSiblings(tree)
	}
}
