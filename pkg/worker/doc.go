// Package worker provides a small generic worker pool.
//
// The driver uses it to fan snapshots out to reporters without the
// aggregation loop ever waiting on a slow sink: Submit is non-blocking and
// drops work when the queue is full, which for telemetry delivery is the
// right failure mode.
//
//	pool := worker.NewPool(2, 64, deliver)
//	pool.Start(ctx)
//	defer pool.Stop(5 * time.Second)
//
//	if err := pool.Submit(item); err != nil {
//		// queue full, item dropped
//	}
//
// Pool statistics are always tracked and can additionally be exported as
// Prometheus metrics with WithPrometheus.
package worker
