package processor

import (
	"k8s.io/utils/clock"

	"github.com/c360/telemetrix/cockpit"
	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/instrument"
	"github.com/c360/telemetrix/snapshot"
)

// defaultBuffer is the channel capacity between transmitter and processor.
// Sized for bursty producers between two drain cycles.
const defaultBuffer = 16384

// MessageProcessor is a drainable node in the processor tree: it applies
// queued messages in bounded batches and renders its state. Processors and
// mounts implement it; a driver loop consumes it.
type MessageProcessor interface {
	// ProcessPending drains and applies up to max queued messages,
	// returning how many it processed. It never blocks waiting for more.
	ProcessPending(max int) int
	// Name returns the node's snapshot key, empty for inline nodes.
	Name() string
	// Snapshot renders the node's members into a fresh tree. The node's
	// own name is applied by the parent, not here.
	Snapshot(descriptive bool) *snapshot.Tree
	instrument.PutsSnapshot
}

var _ MessageProcessor = (*Processor[string])(nil)

type options struct {
	clock  clock.PassiveClock
	buffer int
}

// Option configures a transmitter/processor pair.
type Option func(*options)

// WithClock substitutes the clock behind the transmitter's Now variants.
func WithClock(c clock.PassiveClock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithBufferSize sets the channel capacity between the two ends.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

func applyOptions(opts ...Option) options {
	o := options{clock: clock.RealClock{}, buffer: defaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Processor drains one telemetry stream into its cockpits and handlers and
// renders them as a named snapshot subtree.
//
// ProcessPending, the wiring methods and Snapshot all belong to a single
// goroutine. Concurrency ends at the channel.
type Processor[L comparable] struct {
	name        string
	title       string
	description string
	inbox       chan message[L]
	cockpits    []*cockpit.Cockpit[L]
	handlers    []cockpit.HandlesObservation[L]
}

// NewPair creates a connected transmitter and processor.
func NewPair[L comparable](name string, opts ...Option) (*Transmitter[L], *Processor[L]) {
	o := applyOptions(opts...)
	ch := make(chan message[L], o.buffer)
	tx := &Transmitter[L]{ch: ch, clock: o.clock}
	p := &Processor[L]{name: name, inbox: ch}
	return tx, p
}

// Name returns the processor's snapshot key, empty for inline processors.
func (p *Processor[L]) Name() string { return p.name }

// SetTitle sets the title emitted in descriptive snapshots.
func (p *Processor[L]) SetTitle(title string) { p.title = title }

// SetDescription sets the description emitted in descriptive snapshots.
func (p *Processor[L]) SetDescription(description string) { p.description = description }

// AddCockpit attaches a cockpit. A named cockpit whose name collides with
// an existing one is rejected; the caller decides whether that is fatal.
func (p *Processor[L]) AddCockpit(c *cockpit.Cockpit[L]) error {
	if c == nil {
		return errors.WrapInvalid(errors.ErrNilComponent, "Processor", "AddCockpit", "cockpit check")
	}
	if name := c.Name(); name != "" {
		if _, exists := p.FindCockpit(name); exists {
			return errors.WrapInvalid(errors.ErrDuplicateName, "Processor", "AddCockpit", "name "+name)
		}
	}
	p.cockpits = append(p.cockpits, c)
	return nil
}

// FindCockpit returns the attached cockpit with the given name.
func (p *Processor[L]) FindCockpit(name string) (*cockpit.Cockpit[L], bool) {
	for _, c := range p.cockpits {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// AddHandler attaches an auxiliary handler, delivered to after cockpits.
func (p *Processor[L]) AddHandler(h cockpit.HandlesObservation[L]) {
	if h != nil {
		p.handlers = append(p.handlers, h)
	}
}

// ProcessPending drains and applies up to max queued messages in arrival
// order. It returns as soon as the queue is empty or closed; a closed
// channel only means no more messages will ever arrive.
func (p *Processor[L]) ProcessPending(max int) int {
	processed := 0
	for processed < max {
		select {
		case msg, ok := <-p.inbox:
			if !ok {
				return processed
			}
			p.apply(&msg)
			processed++
		default:
			return processed
		}
	}
	return processed
}

func (p *Processor[L]) apply(msg *message[L]) {
	switch msg.kind {
	case messageObservation:
		for _, c := range p.cockpits {
			c.HandleObservation(&msg.observation)
		}
		for _, h := range p.handlers {
			h.HandleObservation(&msg.observation)
		}
	case messageAddCockpit:
		// Queued wiring cannot report back; collisions drop silently.
		_ = p.AddCockpit(msg.cockpit)
	case messageAddHandler:
		p.AddHandler(msg.handler)
	case messageAddPanel:
		if c, ok := p.FindCockpit(msg.cockpitName); ok {
			_ = c.AddPanel(msg.panel)
		}
	}
}

// Snapshot renders the processor's members into a fresh tree.
func (p *Processor[L]) Snapshot(descriptive bool) *snapshot.Tree {
	tree := snapshot.NewTree()
	p.putMembers(tree, descriptive)
	return tree
}

// PutSnapshot renders the processor: into a nested object when named,
// directly into tree when not.
func (p *Processor[L]) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	if p.name == "" {
		p.putMembers(tree, descriptive)
		return
	}
	tree.SetTree(p.name, p.Snapshot(descriptive))
}

func (p *Processor[L]) putMembers(tree *snapshot.Tree, descriptive bool) {
	if descriptive && p.name != "" {
		if p.title != "" {
			tree.SetText("title", p.title)
		}
		if p.description != "" {
			tree.SetText("description", p.description)
		}
	}
	for _, c := range p.cockpits {
		c.PutSnapshot(tree, descriptive)
	}
	for _, h := range p.handlers {
		h.PutSnapshot(tree, descriptive)
	}
}
