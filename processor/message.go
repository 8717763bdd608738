package processor

import (
	"github.com/c360/telemetrix/cockpit"
	"github.com/c360/telemetrix/observation"
)

type messageKind uint8

const (
	messageObservation messageKind = iota + 1
	messageAddCockpit
	messageAddHandler
	messageAddPanel
)

// message is what crosses the channel from transmitter to processor. One
// tagged variant per thing a producer may ask for: deliver an observation,
// or splice new structure into the tree.
type message[L comparable] struct {
	kind        messageKind
	observation observation.Observation[L]
	cockpit     *cockpit.Cockpit[L]
	handler     cockpit.HandlesObservation[L]
	cockpitName string
	panel       *cockpit.Panel[L]
}
