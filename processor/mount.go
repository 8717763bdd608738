package processor

import (
	"sync"

	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/snapshot"
)

var _ MessageProcessor = (*Mount)(nil)

// Mount groups processors and other mounts into one drainable, snapshotable
// node.
//
// Attachment is the one structural change allowed while running. Attach may
// be called from any goroutine; attachments wait in an inbox until the
// draining goroutine folds them in at the start of its next cycle. The
// child list itself is only ever mutated by that goroutine.
type Mount struct {
	name        string
	title       string
	description string

	mu       sync.Mutex
	pending  []MessageProcessor
	children []MessageProcessor
}

// NewMount creates a mount. The name may be empty for a mount that renders
// inline into its parent.
func NewMount(name string) *Mount {
	return &Mount{name: name}
}

// Name returns the mount's snapshot key, empty for inline mounts.
func (m *Mount) Name() string { return m.name }

// SetTitle sets the title emitted in descriptive snapshots.
func (m *Mount) SetTitle(title string) { m.title = title }

// SetDescription sets the description emitted in descriptive snapshots.
func (m *Mount) SetDescription(description string) { m.description = description }

// Attach queues mp for attachment; it joins the tree at the start of the
// next processing cycle and shows up in snapshots from then on. A named
// node colliding with an already attached or queued node is rejected; the
// caller decides whether that is fatal.
func (m *Mount) Attach(mp MessageProcessor) error {
	if mp == nil {
		return errors.WrapInvalid(errors.ErrNilComponent, "Mount", "Attach", "node check")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if name := mp.Name(); name != "" {
		for _, c := range m.children {
			if c.Name() == name {
				return errors.WrapInvalid(errors.ErrDuplicateName, "Mount", "Attach", "name "+name)
			}
		}
		for _, p := range m.pending {
			if p.Name() == name {
				return errors.WrapInvalid(errors.ErrDuplicateName, "Mount", "Attach", "name "+name)
			}
		}
	}

	m.pending = append(m.pending, mp)
	return nil
}

// fold moves queued attachments into the child list. Only the draining
// goroutine calls this.
func (m *Mount) fold() {
	m.mu.Lock()
	if len(m.pending) > 0 {
		m.children = append(m.children, m.pending...)
		m.pending = nil
	}
	m.mu.Unlock()
}

// ProcessPending folds queued attachments, then drains every child with the
// same per-node budget, returning the summed message count.
func (m *Mount) ProcessPending(max int) int {
	m.fold()

	processed := 0
	for _, c := range m.children {
		processed += c.ProcessPending(max)
	}
	return processed
}

// Snapshot renders the mount's members into a fresh tree.
func (m *Mount) Snapshot(descriptive bool) *snapshot.Tree {
	tree := snapshot.NewTree()
	m.putMembers(tree, descriptive)
	return tree
}

// PutSnapshot renders the mount: into a nested object when named, directly
// into tree when not.
func (m *Mount) PutSnapshot(tree *snapshot.Tree, descriptive bool) {
	if m.name == "" {
		m.putMembers(tree, descriptive)
		return
	}
	tree.SetTree(m.name, m.Snapshot(descriptive))
}

func (m *Mount) putMembers(tree *snapshot.Tree, descriptive bool) {
	if descriptive && m.name != "" {
		if m.title != "" {
			tree.SetText("title", m.title)
		}
		if m.description != "" {
			tree.SetText("description", m.description)
		}
	}
	for _, c := range m.children {
		c.PutSnapshot(tree, descriptive)
	}
}
