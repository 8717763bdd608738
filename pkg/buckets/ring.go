package buckets

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/c360/telemetrix/errors"
)

// Ring is a per-second rotating buffer of T. The slot at the current index
// represents the current second; older slots age out as the clock advances
// and are reset to T's zero value when their position is reused.
type Ring[T any] struct {
	slots []T
	now   time.Time
	idx   int
	clock clock.PassiveClock
}

// Option configures ring behavior using the functional options pattern.
type Option[T any] func(*ringOptions)

type ringOptions struct {
	clock clock.PassiveClock
}

// WithClock sets the clock the ring rotates against. Tests use a fake clock;
// production code leaves the default.
func WithClock[T any](c clock.PassiveClock) Option[T] {
	return func(opts *ringOptions) {
		if c != nil {
			opts.clock = c
		}
	}
}

// NewRing creates a ring with one slot per second of the window. A length of
// zero or less is a wiring mistake and fails construction.
func NewRing[T any](length int, options ...Option[T]) (*Ring[T], error) {
	if length <= 0 {
		return nil, errors.WrapInvalid(errors.ErrZeroCapacity, "Ring", "NewRing", "length check")
	}

	opts := &ringOptions{clock: clock.RealClock{}}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return &Ring[T]{
		slots: make([]T, length),
		now:   opts.clock.Now(),
		clock: opts.clock,
	}, nil
}

// Len returns the window length in seconds.
func (r *Ring[T]) Len() int {
	return len(r.slots)
}

// rotate consumes the whole seconds elapsed since the stored now, resetting
// slots that age out. The sub-second remainder stays unconsumed so fractional
// advances never accumulate into extra rotations.
func (r *Ring[T]) rotate() {
	elapsed := r.clock.Now().Sub(r.now)
	whole := int(elapsed / time.Second)
	if whole <= 0 {
		return
	}

	var zero T
	if whole >= len(r.slots) {
		// The whole window aged out; reset everything in one pass
		for i := range r.slots {
			r.slots[i] = zero
		}
		r.idx = 0
	} else {
		for i := 0; i < whole; i++ {
			r.idx = (r.idx + 1) % len(r.slots)
			r.slots[r.idx] = zero
		}
	}

	r.now = r.now.Add(time.Duration(whole) * time.Second)
}

// Current rotates, then returns the slot for the current second. Callers fold
// new samples into the returned value.
func (r *Ring[T]) Current() *T {
	r.rotate()
	return &r.slots[r.idx]
}

// At rotates, then returns the slot covering instant t. Instants in the
// future or older than the window are absent.
func (r *Ring[T]) At(t time.Time) (*T, bool) {
	r.rotate()

	if t.After(r.clock.Now()) {
		return nil, false
	}

	age := int(r.now.Sub(t) / time.Second)
	if age < 0 {
		// t falls into the unconsumed sub-second remainder of the current slot
		age = 0
	}
	if age >= len(r.slots) {
		return nil, false
	}

	i := ((r.idx-age)%len(r.slots) + len(r.slots)) % len(r.slots)
	return &r.slots[i], true
}

// Each rotates, then visits every slot starting at the current second and
// walking backward in time. Exactly Len slots are visited.
func (r *Ring[T]) Each(fn func(v *T)) {
	r.rotate()
	for age := 0; age < len(r.slots); age++ {
		i := ((r.idx-age)%len(r.slots) + len(r.slots)) % len(r.slots)
		fn(&r.slots[i])
	}
}
