// Package health tracks the liveness of the telemetry pipeline's moving
// parts: the driver loop, reporters and exporters.
//
// The driver heartbeats its monitor once per cycle; sinks report their own
// state after each delivery attempt. The gateway serves the aggregate. Each
// component owns one named Status; aggregation follows worst-of: any
// unhealthy member makes the system unhealthy, otherwise any degraded
// member makes it degraded.
//
// A component that stops reporting is as dead as one reporting unhealthy,
// so aggregation can treat statuses older than a maximum age as degraded.
package health
