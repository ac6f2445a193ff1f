package diag

import (
	"sort"
)

// Bag collects diagnostics in emission order.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a Bag that keeps at most max diagnostics; max <= 0 means no
// limit.
func NewBag(max int) *Bag {
	capacity := max
	if capacity <= 0 {
		capacity = 8
	}
	return &Bag{
		items: make([]Diagnostic, 0, capacity),
		max:   max,
	}
}

// Add appends d unless the limit is reached. It reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether at least one diagnostic has Severity >= SevError.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the collected diagnostics.
// The slice aliases the Bag's storage and must not be modified.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends the diagnostics of other, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.max > 0 && len(b.items)+len(other.items) > b.max {
		b.max = len(b.items) + len(other.items)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by line, then severity (desc), keeping emission
// order for ties.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		return di.Severity > dj.Severity
	})
}

// Errors returns a copy of the collected diagnostics as an error value, or
// nil if the Bag is empty.
func (b *Bag) Errors() error {
	if len(b.items) == 0 {
		return nil
	}
	return Errors(append([]Diagnostic(nil), b.items...))
}
