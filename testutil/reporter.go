package testutil

import (
	"context"
	"sync"

	"github.com/c360/telemetrix/snapshot"
)

// MockReporter records every snapshot tree it receives.
type MockReporter struct {
	// ReportFunc, when set, decides the outcome of each Report call
	// after the tree has been recorded.
	ReportFunc func(ctx context.Context, tree *snapshot.Tree) error

	name string

	mu    sync.Mutex
	trees []*snapshot.Tree
}

// NewMockReporter creates a reporter that accepts everything.
func NewMockReporter(name string) *MockReporter {
	return &MockReporter{name: name}
}

// Name returns the reporter name.
func (m *MockReporter) Name() string { return m.name }

// Report records the tree and returns ReportFunc's verdict, or nil.
func (m *MockReporter) Report(ctx context.Context, tree *snapshot.Tree) error {
	m.mu.Lock()
	m.trees = append(m.trees, tree)
	m.mu.Unlock()

	if m.ReportFunc != nil {
		return m.ReportFunc(ctx, tree)
	}
	return nil
}

// Calls returns how many reports arrived.
func (m *MockReporter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trees)
}

// Trees returns a copy of all reported trees.
func (m *MockReporter) Trees() []*snapshot.Tree {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*snapshot.Tree, len(m.trees))
	copy(out, m.trees)
	return out
}

// LastTree returns the most recently reported tree, or nil.
func (m *MockReporter) LastTree() *snapshot.Tree {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.trees) == 0 {
		return nil
	}
	return m.trees[len(m.trees)-1]
}
