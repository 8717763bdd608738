package buckets

// Bucket accumulates the samples that landed within one second: a running
// sum, a count and the min/max pair. The zero Bucket is empty.
type Bucket struct {
	Sum   int64
	Count uint64
	Min   int64
	Max   int64
}

// Update folds one sample into the bucket.
func (b *Bucket) Update(v int64) {
	if b.Count == 0 {
		b.Min = v
		b.Max = v
	} else {
		if v < b.Min {
			b.Min = v
		}
		if v > b.Max {
			b.Max = v
		}
	}
	b.Sum += v
	b.Count++
}

// Empty reports whether the bucket has received no samples.
func (b *Bucket) Empty() bool {
	return b.Count == 0
}
