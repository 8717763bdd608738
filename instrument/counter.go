package instrument

import (
	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/snapshot"
)

var _ Instrument = (*Counter)(nil)

// Counter counts occurrences. It only ever goes up.
type Counter struct {
	core
	count uint64
}

// NewCounter creates a counter rendered under the given name.
func NewCounter(name string) *Counter {
	return &Counter{core: core{name: name}}
}

// Update adds the update's occurrence count. A value payload counts as one
// occurrence; the value itself is ignored.
func (c *Counter) Update(u *observation.Update) int {
	switch u.Kind() {
	case observation.UpdateOccurrences:
		c.count += u.Count()
	case observation.UpdateOccurrence, observation.UpdateValue:
		c.count++
	default:
		return 0
	}
	return 1
}

// Count returns the current total.
func (c *Counter) Count() uint64 {
	return c.count
}

// PutSnapshot writes the count under the counter's name.
func (c *Counter) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	tree.SetUint(c.name, c.count)
	if descriptive {
		c.putDescriptiveSiblings(tree)
	}
}
