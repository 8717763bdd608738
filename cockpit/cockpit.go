package cockpit

import (
	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/snapshot"
)

var _ HandlesObservation[string] = (*Cockpit[string])(nil)

// Cockpit groups panels under one snapshot key and optionally rescales
// observed values before any panel sees them.
//
// A cockpit has no filter of its own. Routing is the panels' job: each panel
// judges the label independently, so one observation may update several
// panels or none.
type Cockpit[L comparable] struct {
	name        string
	title       string
	description string
	scaling     observation.Scaling
	panels      []*Panel[L]
}

// New creates a cockpit. The name may be empty for a cockpit that renders
// inline into its parent.
func New[L comparable](name string) *Cockpit[L] {
	return &Cockpit[L]{name: name}
}

// Name returns the cockpit's snapshot key, empty for inline cockpits.
func (c *Cockpit[L]) Name() string { return c.name }

// SetTitle sets the title emitted in descriptive snapshots.
func (c *Cockpit[L]) SetTitle(title string) { c.title = title }

// SetDescription sets the description emitted in descriptive snapshots.
func (c *Cockpit[L]) SetDescription(description string) { c.description = description }

// SetValueScaling configures a rescaling applied to every observed value
// before dispatch, typically nanosecond durations down to millis or micros.
func (c *Cockpit[L]) SetValueScaling(s observation.Scaling) { c.scaling = s }

// AddPanel attaches a panel. A named panel whose name collides with an
// existing panel is rejected; the caller decides whether that is fatal.
func (c *Cockpit[L]) AddPanel(p *Panel[L]) error {
	if p == nil {
		return errors.WrapInvalid(errors.ErrNilComponent, "Cockpit", "AddPanel", "panel check")
	}
	if p.name != "" {
		for _, existing := range c.panels {
			if existing.name == p.name {
				return errors.WrapInvalid(errors.ErrDuplicateName, "Cockpit", "AddPanel", "name "+p.name)
			}
		}
	}
	c.panels = append(c.panels, p)
	return nil
}

// Panels returns the attached panels for further wiring.
func (c *Cockpit[L]) Panels() []*Panel[L] { return c.panels }

// HandleObservation rescales the observed value if configured and offers the
// observation to every panel.
func (c *Cockpit[L]) HandleObservation(obs *observation.Observation[L]) int {
	if len(c.panels) == 0 {
		return 0
	}

	scaled := *obs
	scaled.Update = obs.Update.Scaled(c.scaling)

	updated := 0
	for _, p := range c.panels {
		updated += p.HandleObservation(&scaled)
	}
	return updated
}

// PutSnapshot renders the cockpit: into a nested object when named, directly
// into tree when not.
func (c *Cockpit[L]) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	if c.name == "" {
		c.putMembers(tree, descriptive)
		return
	}
	sub := snapshot.NewTree()
	c.putMembers(sub, descriptive)
	tree.SetTree(c.name, sub)
}

func (c *Cockpit[L]) putMembers(tree *snapshot.Tree, descriptive bool) {
	if descriptive && c.name != "" {
		if c.title != "" {
			tree.SetText("title", c.title)
		}
		if c.description != "" {
			tree.SetText("description", c.description)
		}
	}
	for _, p := range c.panels {
		p.PutSnapshot(tree, descriptive)
	}
}
