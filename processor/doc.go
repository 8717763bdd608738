// Package processor carries observations from producer goroutines to the
// dispatch tree and drains them in bounded batches.
//
// # Overview
//
// NewPair splits one telemetry stream into its two ends. The Transmitter is
// the producer handle: cheap, shareable, never blocking. The Processor is
// the consumer: it owns cockpits and handlers and applies queued messages
// when [Processor.ProcessPending] is called, typically by a driver loop.
//
//	tx, proc := processor.NewPair[metricKey]("ingest")
//	proc.AddCockpit(cp)
//
//	// producers, any goroutine
//	tx.ObservedOneNow(keyAccepted)
//	tx.MeasureTime(keyLatency, start)
//
//	// collector, one goroutine
//	proc.ProcessPending(1000)
//	tree := proc.Snapshot(false)
//
// # Delivery
//
// Messages from one producer arrive in send order. Nothing is ordered
// across producers. The channel between the two ends is buffered; when the
// buffer is full the transmitter drops the message and counts it rather
// than block the producer. Wiring messages and observations share the one
// channel, so a cockpit added through the transmitter is in place for every
// observation sent after it.
//
// # Mounts
//
// A Mount groups processors and other mounts into larger trees. Attach is
// safe from any goroutine: attachments queue in an inbox and fold into the
// tree at the start of the next processing cycle, so the tree itself is
// only ever touched by the draining goroutine.
package processor
