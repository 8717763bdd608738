package cockpit

const inlineLabels = 5

type filterKind uint8

const (
	filterNone filterKind = iota
	filterInline
	filterMany
	filterAll
	filterPredicate
)

// LabelFilter decides which observations a dispatch node accepts. The zero
// filter accepts nothing.
//
// Comparison uses the label type's own equality, so label types stay simple
// enums. Up to five labels are stored inline without allocation.
type LabelFilter[L comparable] struct {
	kind      filterKind
	inline    [inlineLabels]L
	n         int
	many      []L
	predicate func(L) bool
}

// AcceptAll builds a filter that accepts every label.
func AcceptAll[L comparable]() LabelFilter[L] {
	return LabelFilter[L]{kind: filterAll}
}

// AcceptNone builds a filter that accepts no label.
func AcceptNone[L comparable]() LabelFilter[L] {
	return LabelFilter[L]{kind: filterNone}
}

// AcceptLabels builds a filter accepting exactly the given labels. Small
// sets stay inline; larger ones go to a dynamic list.
func AcceptLabels[L comparable](labels ...L) LabelFilter[L] {
	f := LabelFilter[L]{kind: filterNone}
	for _, label := range labels {
		f.AddLabel(label)
	}
	return f
}

// AcceptPredicate builds a filter delegating to an arbitrary function, for
// selection logic equality cannot express.
func AcceptPredicate[L comparable](fn func(L) bool) LabelFilter[L] {
	if fn == nil {
		return AcceptNone[L]()
	}
	return LabelFilter[L]{kind: filterPredicate, predicate: fn}
}

// Accepts reports whether the filter lets label through.
func (f *LabelFilter[L]) Accepts(label L) bool {
	switch f.kind {
	case filterAll:
		return true
	case filterInline:
		return f.containsInline(label)
	case filterMany:
		return f.containsMany(label)
	case filterPredicate:
		if f.predicate(label) {
			return true
		}
		return f.containsInline(label) || f.containsMany(label)
	default:
		return false
	}
}

func (f *LabelFilter[L]) containsInline(label L) bool {
	for i := 0; i < f.n; i++ {
		if f.inline[i] == label {
			return true
		}
	}
	return false
}

func (f *LabelFilter[L]) containsMany(label L) bool {
	for _, l := range f.many {
		if l == label {
			return true
		}
	}
	return false
}

// AddLabel grows the filter by one accepted label. An accept-all filter
// stays accept-all; a predicate filter gains the label as an equality
// alternative alongside its function.
func (f *LabelFilter[L]) AddLabel(label L) {
	switch f.kind {
	case filterAll:
		return
	case filterNone:
		f.kind = filterInline
		f.inline[0] = label
		f.n = 1
	case filterInline:
		if f.n < inlineLabels {
			f.inline[f.n] = label
			f.n++
			return
		}
		f.kind = filterMany
		f.many = append(f.many, f.inline[:]...)
		f.many = append(f.many, label)
		f.n = 0
	case filterMany:
		f.many = append(f.many, label)
	case filterPredicate:
		if f.n < inlineLabels {
			f.inline[f.n] = label
			f.n++
			return
		}
		f.many = append(f.many, label)
	}
}
