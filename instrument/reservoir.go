package instrument

import (
	"container/heap"
	"math"
	"math/rand"
	"sort"
	"time"

	"k8s.io/utils/clock"
)

const (
	reservoirSize   = 1028
	reservoirAlpha  = 0.015
	rescaleInterval = time.Hour
)

type weightedSample struct {
	value    int64
	weight   float64
	priority float64
}

// sampleHeap is a min-heap on priority, so the sample cheapest to evict sits
// at the root.
type sampleHeap []weightedSample

func (h sampleHeap) Len() int            { return len(h) }
func (h sampleHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h sampleHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *sampleHeap) Push(x any)         { *h = append(*h, x.(weightedSample)) }
func (h *sampleHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	*h = old[:n-1]
	return s
}

// expDecayReservoir keeps a bounded weighted sample of values in which
// recent values dominate (forward decay with periodic rescaling, so weights
// stay representable over long uptimes).
//
// Not safe for concurrent use; the owning instrument serializes access.
type expDecayReservoir struct {
	samples     sampleHeap
	landmark    time.Time
	nextRescale time.Time
	rnd         *rand.Rand
	clock       clock.PassiveClock
}

func newExpDecayReservoir(c clock.PassiveClock) *expDecayReservoir {
	now := c.Now()
	return &expDecayReservoir{
		samples:     make(sampleHeap, 0, reservoirSize),
		landmark:    now,
		nextRescale: now.Add(rescaleInterval),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:       c,
	}
}

// update folds one value in, weighted by how far at lies past the landmark.
func (r *expDecayReservoir) update(v int64, at time.Time) {
	r.rescaleIfNeeded(at)

	w := math.Exp(reservoirAlpha * at.Sub(r.landmark).Seconds())
	u := r.rnd.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64
	}
	s := weightedSample{value: v, weight: w, priority: w / u}

	if len(r.samples) < reservoirSize {
		heap.Push(&r.samples, s)
		return
	}
	if s.priority > r.samples[0].priority {
		r.samples[0] = s
		heap.Fix(&r.samples, 0)
	}
}

// rescaleIfNeeded moves the landmark forward and scales every retained
// weight down by the same factor. Relative priorities are unchanged, so the
// heap order survives.
func (r *expDecayReservoir) rescaleIfNeeded(at time.Time) {
	if at.Before(r.nextRescale) {
		return
	}
	factor := math.Exp(-reservoirAlpha * at.Sub(r.landmark).Seconds())
	for i := range r.samples {
		r.samples[i].weight *= factor
		r.samples[i].priority *= factor
	}
	r.landmark = at
	r.nextRescale = at.Add(rescaleInterval)
}

// reset drops every sample and restarts the decay landmark at now.
func (r *expDecayReservoir) reset() {
	now := r.clock.Now()
	r.samples = r.samples[:0]
	r.landmark = now
	r.nextRescale = now.Add(rescaleInterval)
}

func (r *expDecayReservoir) size() int {
	return len(r.samples)
}

// reservoirView is one consistent reading of the reservoir: samples sorted
// by value with weighted aggregates precomputed.
type reservoirView struct {
	sorted      []weightedSample
	totalWeight float64
	min         int64
	max         int64
	mean        float64
	stddev      float64
}

// view builds a reading over the retained samples. It returns false when the
// reservoir is empty.
func (r *expDecayReservoir) view() (reservoirView, bool) {
	if len(r.samples) == 0 {
		return reservoirView{}, false
	}

	sorted := make([]weightedSample, len(r.samples))
	copy(sorted, r.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].value < sorted[j].value })

	var totalWeight float64
	for _, s := range sorted {
		totalWeight += s.weight
	}

	var mean float64
	for _, s := range sorted {
		mean += s.weight * float64(s.value)
	}
	mean /= totalWeight

	var variance float64
	for _, s := range sorted {
		d := float64(s.value) - mean
		variance += s.weight * d * d
	}
	variance /= totalWeight

	return reservoirView{
		sorted:      sorted,
		totalWeight: totalWeight,
		min:         sorted[0].value,
		max:         sorted[len(sorted)-1].value,
		mean:        mean,
		stddev:      math.Sqrt(variance),
	}, true
}

// quantile returns the smallest retained value whose cumulative normalized
// weight reaches q.
func (v reservoirView) quantile(q float64) float64 {
	var cum float64
	for _, s := range v.sorted {
		cum += s.weight / v.totalWeight
		if cum >= q {
			return float64(s.value)
		}
	}
	return float64(v.sorted[len(v.sorted)-1].value)
}
