package driver

import (
	"context"

	"github.com/c360/telemetrix/snapshot"
)

// Reporter receives completed snapshot trees. Implementations must be
// safe for concurrent use; Report runs on a worker pool goroutine and
// should honor ctx cancellation.
type Reporter interface {
	Name() string
	Report(ctx context.Context, tree *snapshot.Tree) error
}

// reportTask carries one snapshot to one reporter through the pool.
type reportTask struct {
	reporter Reporter
	tree     *snapshot.Tree
}
