// Package cockpit provides the label-routed dispatch tree between incoming
// observations and leaf instruments.
//
// # Overview
//
// A Panel filters observations by label and delivers the surviving updates
// to its instrument slots, nested panels and auxiliary handlers, in that
// order. Filtering prunes whole subtrees: a rejected label costs one filter
// check, not a walk over every leaf below it.
//
// A Cockpit groups panels under a name and optionally rescales plain numeric
// values (typically raw nanoseconds) before any panel sees them.
//
//	cp := cockpit.New[metricKey]("requests")
//	panel := cockpit.NewPanel[metricKey]("accepted")
//	panel.AcceptLabels(requestAccepted)
//	panel.SetCounter(instrument.NewCounter("hits"))
//	panel.SetMeter(instrument.NewMeter("per_second"))
//	cp.AddPanel(panel)
//
// # Filters
//
// A LabelFilter compares with the label type's own equality. Up to five
// labels are held inline without allocation; larger sets spill into a
// dynamic list, and arbitrary selection logic plugs in as a predicate.
// AddLabel grows a filter one step up that ladder.
//
// # Adapters
//
// InstrumentAdapter turns a single instrument into a handler with its own
// filter, for wiring a leaf directly into a processor without a panel around
// it. GaugeAdapter does the same for gauges with a choice of update
// strategy: absolute values or deltas only.
//
// # Snapshots
//
// PutSnapshot mirrors dispatch structurally: a named node opens a nested
// object keyed by its name, an unnamed one writes into its parent's object.
package cockpit
