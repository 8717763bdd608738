package instrument

import (
	"k8s.io/utils/clock"

	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/snapshot"
)

// Updates is implemented by anything that consumes label-erased updates.
type Updates interface {
	// Update applies u and returns how many instruments changed state,
	// 1 or 0 for a leaf.
	Update(u *observation.Update) int
}

// PutsSnapshot is implemented by anything that renders state into a snapshot
// tree.
type PutsSnapshot interface {
	// PutSnapshot writes the current state into tree. With descriptive set,
	// optional title and description metadata are written too.
	PutSnapshot(tree *snapshot.Tree, descriptive bool)
}

// Instrument is a leaf that both consumes updates and renders snapshots.
type Instrument interface {
	Updates
	PutsSnapshot
}

// Option configures instrument construction.
type Option func(*options)

type options struct {
	clock clock.PassiveClock
}

// WithClock sets the clock time-based instruments read. Tests use a fake
// clock; production code leaves the default.
func WithClock(c clock.PassiveClock) Option {
	return func(opts *options) {
		if c != nil {
			opts.clock = c
		}
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{clock: clock.RealClock{}}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// core holds what every instrument shares: the snapshot key plus optional
// descriptive metadata.
type core struct {
	name        string
	title       string
	description string
}

// Name returns the snapshot key.
func (c *core) Name() string { return c.name }

// Title returns the optional human-readable title.
func (c *core) Title() string { return c.title }

// SetTitle sets the title emitted in descriptive snapshots.
func (c *core) SetTitle(title string) { c.title = title }

// Description returns the optional long-form description.
func (c *core) Description() string { return c.description }

// SetDescription sets the description emitted in descriptive snapshots.
func (c *core) SetDescription(description string) { c.description = description }

// putDescriptiveSiblings writes `<name>_title` and `<name>_description` next
// to a scalar instrument's value keys.
func (c *core) putDescriptiveSiblings(tree *snapshot.Tree) {
	if c.title != "" {
		tree.SetText(c.name+"_title", c.title)
	}
	if c.description != "" {
		tree.SetText(c.name+"_description", c.description)
	}
}

// putDescriptiveMembers writes `title` and `description` inside a
// tree-rendering instrument's own subtree.
func (c *core) putDescriptiveMembers(tree *snapshot.Tree) {
	if c.title != "" {
		tree.SetText("title", c.title)
	}
	if c.description != "" {
		tree.SetText("description", c.description)
	}
}
