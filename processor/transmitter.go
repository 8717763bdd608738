package processor

import (
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/c360/telemetrix/cockpit"
	"github.com/c360/telemetrix/observation"
)

// Transmitter is the producer end of a telemetry stream. It is safe for
// concurrent use and never blocks: when the channel buffer is full the
// message is dropped and counted instead.
type Transmitter[L comparable] struct {
	ch      chan message[L]
	clock   clock.PassiveClock
	dropped atomic.Uint64

	closeOnce sync.Once
	closed    atomic.Bool
}

// Transmit sends a single observation.
func (t *Transmitter[L]) Transmit(obs observation.Observation[L]) {
	t.send(message[L]{kind: messageObservation, observation: obs})
}

// Observed reports n occurrences of label at the given time.
func (t *Transmitter[L]) Observed(label L, n uint64, at time.Time) {
	t.Transmit(observation.Observed(label, n, at))
}

// ObservedNow reports n occurrences of label at the current time.
func (t *Transmitter[L]) ObservedNow(label L, n uint64) {
	t.Observed(label, n, t.clock.Now())
}

// ObservedOne reports a single occurrence of label at the given time.
func (t *Transmitter[L]) ObservedOne(label L, at time.Time) {
	t.Transmit(observation.ObservedOne(label, at))
}

// ObservedOneNow reports a single occurrence of label at the current time.
func (t *Transmitter[L]) ObservedOneNow(label L) {
	t.ObservedOne(label, t.clock.Now())
}

// ObservedOneValue reports a single occurrence of label carrying a value at
// the given time.
func (t *Transmitter[L]) ObservedOneValue(label L, v observation.Value, at time.Time) {
	t.Transmit(observation.ObservedOneValue(label, v, at))
}

// ObservedOneValueNow reports a single occurrence of label carrying a value
// at the current time.
func (t *Transmitter[L]) ObservedOneValueNow(label L, v observation.Value) {
	t.ObservedOneValue(label, v, t.clock.Now())
}

// ObservedDuration reports the elapsed time between start and at for label,
// recorded in nanoseconds.
func (t *Transmitter[L]) ObservedDuration(label L, start, at time.Time) {
	t.Transmit(observation.ObservedDuration(label, start, at))
}

// MeasureTime reports the elapsed time since start for label, recorded in
// nanoseconds.
func (t *Transmitter[L]) MeasureTime(label L, start time.Time) {
	t.ObservedDuration(label, start, t.clock.Now())
}

// AddCockpit asks the processor to attach c during its next drain. A name
// collision on the processor side drops the cockpit silently.
func (t *Transmitter[L]) AddCockpit(c *cockpit.Cockpit[L]) {
	if c == nil {
		return
	}
	t.send(message[L]{kind: messageAddCockpit, cockpit: c})
}

// AddHandler asks the processor to attach h during its next drain.
func (t *Transmitter[L]) AddHandler(h cockpit.HandlesObservation[L]) {
	if h == nil {
		return
	}
	t.send(message[L]{kind: messageAddHandler, handler: h})
}

// AddPanelToCockpit asks the processor to attach p to the named cockpit
// during its next drain. An unknown cockpit or a name collision drops the
// panel silently.
func (t *Transmitter[L]) AddPanelToCockpit(cockpitName string, p *cockpit.Panel[L]) {
	if p == nil {
		return
	}
	t.send(message[L]{kind: messageAddPanel, cockpitName: cockpitName, panel: p})
}

// Dropped returns how many messages were discarded because the buffer was
// full or the transmitter was closed.
func (t *Transmitter[L]) Dropped() uint64 {
	return t.dropped.Load()
}

// Close ends the stream; the processor finishes whatever is queued and then
// sees no more messages. Close must not run concurrently with transmit
// calls. Closing twice is harmless.
func (t *Transmitter[L]) Close() {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		close(t.ch)
	})
}

func (t *Transmitter[L]) send(msg message[L]) {
	if t.closed.Load() {
		t.dropped.Add(1)
		return
	}
	select {
	case t.ch <- msg:
	default:
		t.dropped.Add(1)
	}
}
