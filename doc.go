// Package telemetrix provides in-process metrics instrumentation: application
// code emits labeled observations into a channel, a background aggregation
// stage routes each observation through a label-filtered instrument tree, and
// the accumulated state renders on demand into a nested snapshot that can be
// served as JSON or exported to external systems.
//
// # Architecture
//
// Telemetrix is built from small composable layers:
//
//	┌─────────────────────────────────────┐
//	│       Driver                        │  background drain + snapshot loop,
//	│  (registry, reporters, health)      │  processor registry
//	└─────────────────────────────────────┘
//	           ↓ drains
//	┌─────────────────────────────────────┐
//	│       Processors / Mounts           │  bounded channel drain,
//	│  (message application, grouping)    │  recursive composition
//	└─────────────────────────────────────┘
//	           ↓ dispatch via
//	┌─────────────────────────────────────┐
//	│       Cockpits / Panels             │  label-filtered fan-out,
//	│  (filters, adapters, scaling)       │  value rescaling
//	└─────────────────────────────────────┘
//	           ↓ update
//	┌─────────────────────────────────────┐
//	│       Instruments                   │  counters, gauges, meters,
//	│  (EWMA rates, decaying reservoirs)  │  histograms, switches
//	└─────────────────────────────────────┘
//
// Producer threads never touch instrument state directly. They call
// Transmitter methods, which place immutable Observations on a channel. A
// single aggregation goroutine (owned by the Driver) drains that channel in
// bounded batches and walks each observation down the cockpit → panel →
// instrument tree. Filtering happens at each level, so the cost of an
// observation is proportional to the subtrees whose label filter matches.
//
// # Labels
//
// A label is any comparable application-defined type, typically a small enum:
//
//	type metricKey int
//
//	const (
//	    requestsHandled metricKey = iota
//	    requestFailed
//	    responseTime
//	)
//
// Panels select the labels they react to. Because dispatch uses the label
// type's own equality, label types need no hashing or registration.
//
// # Wiring
//
// Trees are wired once during startup and then only fed through the channel:
//
//	panel := cockpit.NewPanel[metricKey]("handled")
//	panel.AcceptLabels(requestsHandled)
//	panel.SetCounter(instrument.NewCounter("count"))
//	panel.SetMeter(instrument.NewMeter("per_second"))
//
//	cp := cockpit.New[metricKey]("requests")
//	cp.AddPanel(panel)
//
//	tx, proc := processor.NewPair[metricKey]("web")
//	proc.AddCockpit(cp)
//
//	drv := driver.New("app")
//	drv.Register(proc)
//	drv.Start(ctx)
//
// Producers then report through the transmitter from any goroutine:
//
//	tx.ObservedOneNow(requestsHandled)
//	tx.ObservedOneValueNow(responseTime, observation.DurationValue(3, timeunit.Milliseconds))
//
// # Error philosophy
//
// Telemetry must never take the host application down. Transmission to a
// full or torn-down channel is silently dropped (and counted), value
// conversions that do not fit are no-ops, and a disconnected channel simply
// ends the drain cycle. Only construction-time misconfiguration (zero-length
// bucket rings, duplicate processor names) fails fast, during wiring.
//
// # Out-of-process surfaces
//
// The gateway package serves the latest snapshot over HTTP and WebSocket;
// promexport flattens snapshots into a Prometheus collector; natsexport
// publishes snapshot JSON to a NATS subject. All three consume rendered
// snapshots only; aggregation itself stays in-process.
package telemetrix
