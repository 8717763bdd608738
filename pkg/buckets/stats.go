package buckets

// Stats reduces a window of buckets into a single view of the extremes and
// the average.
//
// Peak is the largest per-second maximum, PeakMin the smallest one (the
// worst-case smallest peak) and PeakAvg the mean of per-second maxima over
// the whole window. Bottom, BottomMax and BottomAvg mirror that for the
// per-second minima. Avg is the plain mean over every sample.
type Stats struct {
	Peak      int64
	PeakMin   int64
	PeakAvg   float64
	Bottom    int64
	BottomMax int64
	BottomAvg float64
	Avg       float64
}

// BucketStats computes window statistics over a ring of buckets. It returns
// false when every bucket is empty.
//
// The averaged extremes divide by the total slot count, not just the
// non-empty slots: a quiet second contributes nothing to the numerator but
// still widens the denominator, so sparse windows read lower.
func BucketStats(r *Ring[Bucket]) (Stats, bool) {
	var (
		stats       Stats
		maximaSum   int64
		minimaSum   int64
		sampleSum   int64
		sampleCount uint64
		seen        bool
	)

	r.Each(func(b *Bucket) {
		if b.Empty() {
			return
		}
		if !seen {
			stats.Peak = b.Max
			stats.PeakMin = b.Max
			stats.Bottom = b.Min
			stats.BottomMax = b.Min
			seen = true
		} else {
			if b.Max > stats.Peak {
				stats.Peak = b.Max
			}
			if b.Max < stats.PeakMin {
				stats.PeakMin = b.Max
			}
			if b.Min < stats.Bottom {
				stats.Bottom = b.Min
			}
			if b.Min > stats.BottomMax {
				stats.BottomMax = b.Min
			}
		}
		maximaSum += b.Max
		minimaSum += b.Min
		sampleSum += b.Sum
		sampleCount += b.Count
	})

	if !seen {
		return Stats{}, false
	}

	slots := float64(r.Len())
	stats.PeakAvg = float64(maximaSum) / slots
	stats.BottomAvg = float64(minimaSum) / slots
	stats.Avg = float64(sampleSum) / float64(sampleCount)
	return stats, true
}
