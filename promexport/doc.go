// Package promexport bridges snapshot trees into a Prometheus registry.
//
// # Overview
//
// The exporter walks the driver's latest snapshot on every scrape and
// emits one gauge per numeric leaf. Metric names are the tree path
// joined with underscores under a configurable namespace, so the leaf
// at web/requests/per_second becomes telemetrix_web_requests_per_second.
//
//	exporter, err := promexport.New(drv)
//	if err != nil {
//	    return err
//	}
//	mux.Handle("/metrics", exporter.Handler())
//
// # Value mapping
//
// Snapshot values are point-in-time observations, so everything is
// exported as a gauge, including monotonically increasing counts.
// Booleans become 0 or 1. Text leaves have no Prometheus representation
// and are skipped.
//
// # Name hygiene
//
// Path segments are sanitized to the Prometheus name alphabet. When two
// paths collapse to the same metric name only the first is exported;
// the rest are dropped so a scrape never fails on duplicates.
package promexport
