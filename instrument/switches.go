package instrument

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/snapshot"
)

var (
	_ Instrument = (*Flag)(nil)
	_ Instrument = (*OccurrenceIndicator)(nil)
	_ Instrument = (*NonOccurrenceIndicator)(nil)
	_ Instrument = (*StaircaseTimer)(nil)
)

// Flag renders a single boolean set directly by observed-value truthiness.
// Until the first convertible value arrives the flag is unset and absent
// from snapshots.
type Flag struct {
	core
	state bool
	set   bool
}

// NewFlag creates an unset flag rendered under the given name.
func NewFlag(name string) *Flag {
	return &Flag{core: core{name: name}}
}

// Update sets the state from a value payload's truthiness.
func (f *Flag) Update(u *observation.Update) int {
	v, ok := u.Value()
	if !ok {
		return 0
	}
	state, ok := v.AsBool()
	if !ok {
		return 0
	}
	f.state = state
	f.set = true
	return 1
}

// State returns the flag state, if it has ever been set.
func (f *Flag) State() (bool, bool) {
	return f.state, f.set
}

// PutSnapshot writes the state under the flag's name.
func (f *Flag) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	if !f.set {
		return
	}
	tree.SetBool(f.name, f.state)
	if descriptive {
		f.putDescriptiveSiblings(tree)
	}
}

// OccurrenceIndicator reads true while the last update lies within a
// configured duration of now.
type OccurrenceIndicator struct {
	core
	within   time.Duration
	lastSeen time.Time
	seen     bool
	inverted bool
	altName  string
	clock    clock.PassiveClock
}

// NewOccurrenceIndicator creates an indicator that stays on for the given
// duration after each update.
func NewOccurrenceIndicator(name string, within time.Duration, opts ...Option) *OccurrenceIndicator {
	o := applyOptions(opts...)
	return &OccurrenceIndicator{
		core:   core{name: name},
		within: within,
		clock:  o.clock,
	}
}

// SetInverted flips the reported state.
func (i *OccurrenceIndicator) SetInverted(inverted bool) {
	i.inverted = inverted
}

// ShowInvertedAs additionally emits the opposite of the reported state under
// the given name.
func (i *OccurrenceIndicator) ShowInvertedAs(name string) {
	i.altName = name
}

// Update marks an occurrence; every update shape counts.
func (i *OccurrenceIndicator) Update(u *observation.Update) int {
	if !u.Kind().Valid() {
		return 0
	}
	i.lastSeen = i.clock.Now()
	i.seen = true
	return 1
}

// State reads true while the last occurrence is recent enough, flipped when
// inverted.
func (i *OccurrenceIndicator) State() bool {
	state := i.seen && i.clock.Now().Sub(i.lastSeen) <= i.within
	if i.inverted {
		return !state
	}
	return state
}

// PutSnapshot writes the state under the indicator's name, plus the opposite
// state under the alternate name when configured.
func (i *OccurrenceIndicator) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	state := i.State()
	tree.SetBool(i.name, state)
	if i.altName != "" {
		tree.SetBool(i.altName, !state)
	}
	if descriptive {
		i.putDescriptiveSiblings(tree)
	}
}

// NonOccurrenceIndicator reads true once more than the configured duration
// has elapsed since the last update, signalling absence. Construction counts
// as the first sighting, so a freshly wired indicator does not fire before
// anything had a chance to happen.
type NonOccurrenceIndicator struct {
	core
	after    time.Duration
	lastSeen time.Time
	clock    clock.PassiveClock
}

// NewNonOccurrenceIndicator creates an indicator that fires after the given
// duration without updates.
func NewNonOccurrenceIndicator(name string, after time.Duration, opts ...Option) *NonOccurrenceIndicator {
	o := applyOptions(opts...)
	return &NonOccurrenceIndicator{
		core:     core{name: name},
		after:    after,
		lastSeen: o.clock.Now(),
		clock:    o.clock,
	}
}

// Update marks a sighting; every update shape counts.
func (n *NonOccurrenceIndicator) Update(u *observation.Update) int {
	if !u.Kind().Valid() {
		return 0
	}
	n.lastSeen = n.clock.Now()
	return 1
}

// State reads true once the quiet period has been exceeded.
func (n *NonOccurrenceIndicator) State() bool {
	return n.clock.Now().Sub(n.lastSeen) > n.after
}

// PutSnapshot writes the state under the indicator's name.
func (n *NonOccurrenceIndicator) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	tree.SetBool(n.name, n.State())
	if descriptive {
		n.putDescriptiveSiblings(tree)
	}
}

// StaircaseTimer reads true until a deadline that every update pushes out to
// now plus the configured duration. Re-triggering before expiry prolongs the
// on-state rather than restarting it.
type StaircaseTimer struct {
	core
	switchOffAfter time.Duration
	deadline       time.Time
	clock          clock.PassiveClock
}

// NewStaircaseTimer creates a timer that switches off the given duration
// after the last trigger.
func NewStaircaseTimer(name string, switchOffAfter time.Duration, opts ...Option) *StaircaseTimer {
	o := applyOptions(opts...)
	return &StaircaseTimer{
		core:           core{name: name},
		switchOffAfter: switchOffAfter,
		clock:          o.clock,
	}
}

// Update extends the deadline; every update shape counts.
func (s *StaircaseTimer) Update(u *observation.Update) int {
	if !u.Kind().Valid() {
		return 0
	}
	deadline := s.clock.Now().Add(s.switchOffAfter)
	if deadline.After(s.deadline) {
		s.deadline = deadline
	}
	return 1
}

// State reads true while the deadline lies in the future.
func (s *StaircaseTimer) State() bool {
	return s.deadline.After(s.clock.Now())
}

// PutSnapshot writes the state under the timer's name.
func (s *StaircaseTimer) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	tree.SetBool(s.name, s.State())
	if descriptive {
		s.putDescriptiveSiblings(tree)
	}
}
