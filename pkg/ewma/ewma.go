package ewma

import (
	"math"
	"sync/atomic"
	"time"
)

// TickPeriod is the fixed interval between ticks. Alphas are derived from it,
// so ticking at any other cadence skews the decay.
const TickPeriod = 5 * time.Second

const nanosPerTick = float64(TickPeriod) // time.Duration is nanoseconds

// EWMA tracks an exponentially weighted moving average of an event rate.
//
// Update is safe to call concurrently with itself and with Tick; Tick and
// Rate must be called from a single goroutine.
type EWMA struct {
	uncounted atomic.Int64
	alpha     float64
	rate      float64 // events per nanosecond
	init      bool
}

// New creates an EWMA decaying over a window of the given minutes.
func New(windowMinutes int) *EWMA {
	tickSeconds := TickPeriod.Seconds()
	return &EWMA{
		alpha: 1 - math.Exp(-tickSeconds/60/float64(windowMinutes)),
	}
}

// Update adds n events to the pending count folded in by the next Tick.
func (e *EWMA) Update(n int64) {
	e.uncounted.Add(n)
}

// Tick folds the pending count into the rate. The first tick initializes the
// rate to the instantaneous value; later ticks decay toward it.
func (e *EWMA) Tick() {
	count := e.uncounted.Swap(0)
	instantRate := float64(count) / nanosPerTick
	if !e.init {
		e.rate = instantRate
		e.init = true
		return
	}
	e.rate += e.alpha * (instantRate - e.rate)
}

// Rate returns the decayed rate in events per second.
func (e *EWMA) Rate() float64 {
	return e.rate * float64(time.Second)
}
