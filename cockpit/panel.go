package cockpit

import (
	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/instrument"
	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/snapshot"
)

// HandlesObservation is implemented by every dispatch node: it consumes
// labeled observations and renders snapshot state.
type HandlesObservation[L comparable] interface {
	// HandleObservation delivers obs and returns how many instruments
	// changed state.
	HandleObservation(obs *observation.Observation[L]) int
	instrument.PutsSnapshot
}

var _ HandlesObservation[string] = (*Panel[string])(nil)

// Panel is one dispatch node: a label filter in front of instrument slots,
// nested panels and auxiliary handlers.
//
// A panel with a name renders as a nested object under that name; an
// unnamed panel writes its fields directly into the parent's object.
type Panel[L comparable] struct {
	name        string
	title       string
	description string
	filter      LabelFilter[L]

	counter   *instrument.Counter
	gauge     *instrument.Gauge
	meter     *instrument.Meter
	histogram *instrument.Histogram

	instruments  []instrument.Instrument
	snapshooters []instrument.PutsSnapshot
	panels       []*Panel[L]
	handlers     []HandlesObservation[L]
}

// NewPanel creates a panel accepting every label. The name may be empty for
// a structural panel that renders inline.
func NewPanel[L comparable](name string) *Panel[L] {
	return &Panel[L]{name: name, filter: AcceptAll[L]()}
}

// Name returns the panel's snapshot key, empty for inline panels.
func (p *Panel[L]) Name() string { return p.name }

// SetTitle sets the title emitted in descriptive snapshots.
func (p *Panel[L]) SetTitle(title string) { p.title = title }

// SetDescription sets the description emitted in descriptive snapshots.
func (p *Panel[L]) SetDescription(description string) { p.description = description }

// SetFilter replaces the panel's label filter.
func (p *Panel[L]) SetFilter(f LabelFilter[L]) { p.filter = f }

// AcceptLabels narrows the panel to exactly the given labels.
func (p *Panel[L]) AcceptLabels(labels ...L) {
	p.filter = AcceptLabels(labels...)
}

// AddLabel grows the panel's filter by one accepted label.
func (p *Panel[L]) AddLabel(label L) {
	p.filter.AddLabel(label)
}

// SetCounter fills the panel's counter slot.
func (p *Panel[L]) SetCounter(c *instrument.Counter) { p.counter = c }

// SetGauge fills the panel's gauge slot.
func (p *Panel[L]) SetGauge(g *instrument.Gauge) { p.gauge = g }

// SetMeter fills the panel's meter slot.
func (p *Panel[L]) SetMeter(m *instrument.Meter) { p.meter = m }

// SetHistogram fills the panel's histogram slot.
func (p *Panel[L]) SetHistogram(h *instrument.Histogram) { p.histogram = h }

// AddInstrument attaches a further leaf instrument, typically a switch or a
// data display.
func (p *Panel[L]) AddInstrument(i instrument.Instrument) {
	if i != nil {
		p.instruments = append(p.instruments, i)
	}
}

// AddSnapshooter attaches a snapshot-only contributor that consumes no
// updates.
func (p *Panel[L]) AddSnapshooter(s instrument.PutsSnapshot) {
	if s != nil {
		p.snapshooters = append(p.snapshooters, s)
	}
}

// AddPanel nests a child panel. A named child whose name collides with an
// existing child is rejected; the caller decides whether that is fatal.
func (p *Panel[L]) AddPanel(child *Panel[L]) error {
	if child == nil {
		return errors.WrapInvalid(errors.ErrNilComponent, "Panel", "AddPanel", "child check")
	}
	if child.name != "" {
		for _, existing := range p.panels {
			if existing.name == child.name {
				return errors.WrapInvalid(errors.ErrDuplicateName, "Panel", "AddPanel", "name "+child.name)
			}
		}
	}
	p.panels = append(p.panels, child)
	return nil
}

// AddHandler attaches an auxiliary handler, delivered to after instrument
// slots and nested panels.
func (p *Panel[L]) AddHandler(h HandlesObservation[L]) {
	if h != nil {
		p.handlers = append(p.handlers, h)
	}
}

// HandleObservation delivers obs below this panel if its filter accepts the
// label. A rejected label prunes the whole subtree.
func (p *Panel[L]) HandleObservation(obs *observation.Observation[L]) int {
	if !p.filter.Accepts(obs.Label) {
		return 0
	}

	updated := 0
	u := obs.Update

	if p.counter != nil {
		updated += p.counter.Update(&u)
	}
	if p.gauge != nil {
		updated += p.gauge.Update(&u)
	}
	if p.meter != nil {
		updated += p.meter.Update(&u)
	}
	if p.histogram != nil {
		updated += p.histogram.Update(&u)
	}
	for _, i := range p.instruments {
		updated += i.Update(&u)
	}
	for _, child := range p.panels {
		updated += child.HandleObservation(obs)
	}
	for _, h := range p.handlers {
		updated += h.HandleObservation(obs)
	}
	return updated
}

// PutSnapshot renders the panel: into a nested object when named, directly
// into tree when not.
func (p *Panel[L]) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	if p.name == "" {
		p.putMembers(tree, descriptive)
		return
	}
	sub := snapshot.NewTree()
	p.putMembers(sub, descriptive)
	tree.SetTree(p.name, sub)
}

func (p *Panel[L]) putMembers(tree *snapshot.Tree, descriptive bool) {
	if descriptive && p.name != "" {
		if p.title != "" {
			tree.SetText("title", p.title)
		}
		if p.description != "" {
			tree.SetText("description", p.description)
		}
	}

	if p.counter != nil {
		p.counter.PutSnapshot(tree, descriptive)
	}
	if p.gauge != nil {
		p.gauge.PutSnapshot(tree, descriptive)
	}
	if p.meter != nil {
		p.meter.PutSnapshot(tree, descriptive)
	}
	if p.histogram != nil {
		p.histogram.PutSnapshot(tree, descriptive)
	}
	for _, i := range p.instruments {
		i.PutSnapshot(tree, descriptive)
	}
	for _, child := range p.panels {
		child.PutSnapshot(tree, descriptive)
	}
	for _, s := range p.snapshooters {
		s.PutSnapshot(tree, descriptive)
	}
	for _, h := range p.handlers {
		h.PutSnapshot(tree, descriptive)
	}
}
