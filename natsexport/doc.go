// Package natsexport publishes snapshot trees to a NATS subject.
//
// # Overview
//
// The publisher implements the driver's Reporter interface, so every
// snapshot the driver assembles is serialized into a JSON envelope and
// published best-effort:
//
//	pub, err := natsexport.New("nats://localhost:4222", "telemetrix.snapshots",
//	    natsexport.WithName("telemetrix-publisher"),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := pub.Connect(ctx); err != nil {
//	    return err
//	}
//	defer pub.Close(context.Background())
//	drv.AddReporter(pub)
//
// # Delivery semantics
//
// Publishing is telemetry, not data transport. Failures are retried
// briefly, counted, and reported as transient errors to the driver's
// report pool, which logs and moves on. Nothing here ever stalls the
// processing loop or escalates into the instrumented application.
//
// # Envelope
//
// Each message is a JSON object with the publisher name, the publish
// time in UTC, and the snapshot tree:
//
//	{"source":"telemetrix-publisher","published":"2026-01-02T15:04:05Z","snapshot":{...}}
package natsexport
