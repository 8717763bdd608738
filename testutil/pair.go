package testutil

import (
	"github.com/c360/telemetrix/cockpit"
	"github.com/c360/telemetrix/instrument"
	"github.com/c360/telemetrix/processor"
)

// CountingPair builds a transmitter/processor pair with a single counter
// listening for the "hit" label, preloaded with queued observations. After
// draining, the count appears at <name>/requests/hits in the snapshot.
func CountingPair(name string, queued int) (*processor.Transmitter[string], *processor.Processor[string]) {
	panel := cockpit.NewPanel[string]("requests")
	panel.AcceptLabels("hit")
	panel.SetCounter(instrument.NewCounter("hits"))

	ck := cockpit.New[string]("")
	_ = ck.AddPanel(panel)

	tm, proc := processor.NewPair[string](name)
	_ = proc.AddCockpit(ck)

	for i := 0; i < queued; i++ {
		tm.ObservedOneNow("hit")
	}
	return tm, proc
}
