package ewma

import (
	"time"

	"k8s.io/utils/clock"
)

// Rates is one reading of the decayed per-second rates over the three
// standard windows.
type Rates struct {
	OneMinute      float64
	FiveMinutes    float64
	FifteenMinutes float64
}

// Meter tracks a raw event count plus 1, 5 and 15-minute moving average
// rates sharing one tick cadence.
//
// Mark, Count and Rates must be called from a single goroutine.
type Meter struct {
	count      uint64
	oneMin     *EWMA
	fiveMin    *EWMA
	fifteenMin *EWMA
	lastTick   time.Time
	clock      clock.PassiveClock
}

// Option configures meter behavior.
type Option func(*meterOptions)

type meterOptions struct {
	clock clock.PassiveClock
}

// WithClock sets the clock the meter ticks against. Tests use a fake clock;
// production code leaves the default.
func WithClock(c clock.PassiveClock) Option {
	return func(opts *meterOptions) {
		if c != nil {
			opts.clock = c
		}
	}
}

// NewMeter creates a meter with freshly initialized windows.
func NewMeter(options ...Option) *Meter {
	opts := &meterOptions{clock: clock.RealClock{}}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return &Meter{
		oneMin:     New(1),
		fiveMin:    New(5),
		fifteenMin: New(15),
		lastTick:   opts.clock.Now(),
		clock:      opts.clock,
	}
}

// tickIfNeeded applies every whole tick period that has elapsed since the
// last tick. Catch-up runs as a loop of fixed-size ticks so each window's
// alpha stays valid.
func (m *Meter) tickIfNeeded() {
	elapsed := m.clock.Now().Sub(m.lastTick)
	for elapsed >= TickPeriod {
		m.oneMin.Tick()
		m.fiveMin.Tick()
		m.fifteenMin.Tick()
		m.lastTick = m.lastTick.Add(TickPeriod)
		elapsed -= TickPeriod
	}
}

// Mark records n events.
func (m *Meter) Mark(n uint64) {
	m.tickIfNeeded()
	m.count += n
	m.oneMin.Update(int64(n))
	m.fiveMin.Update(int64(n))
	m.fifteenMin.Update(int64(n))
}

// Count returns the total number of events ever marked.
func (m *Meter) Count() uint64 {
	return m.count
}

// Rates catches up on pending ticks and returns the current readings.
func (m *Meter) Rates() Rates {
	m.tickIfNeeded()
	return Rates{
		OneMinute:      m.oneMin.Rate(),
		FiveMinutes:    m.fiveMin.Rate(),
		FifteenMinutes: m.fifteenMin.Rate(),
	}
}
