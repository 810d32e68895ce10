package folio

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

type line struct {
	id  PositionIdentifier
	qty Quantity
}

// PositionSet maps position identifiers to held quantities.
//
// Lines are bucketed by PositionIdentifier.Hash and resolved by equality
// within a bucket.
type PositionSet struct {
	buckets map[string][]line
}

// NewPositionSet returns an empty set.
func NewPositionSet() *PositionSet {
	return &PositionSet{buckets: make(map[string][]line)}
}

func (s *PositionSet) find(id PositionIdentifier) (bucket []line, i int) {
	bucket = s.buckets[id.Hash()]
	return bucket, slices.IndexFunc(bucket, func(l line) bool { return l.id.Equal(id) })
}

// Get returns the quantity held for id, and false if the line was never held.
func (s *PositionSet) Get(id PositionIdentifier) (Quantity, bool) {
	bucket, i := s.find(id)
	if i < 0 {
		return Quantity{}, false
	}
	return bucket[i].qty, true
}

// Quantity is like Get but fails with ErrUnknownPosition for a line never held.
func (s *PositionSet) Quantity(id PositionIdentifier) (Quantity, error) {
	q, ok := s.Get(id)
	if !ok {
		return Quantity{}, fmt.Errorf("%w: %s", ErrUnknownPosition, id)
	}
	return q, nil
}

// Apply applies a transaction to the set.
//
// A Sell fails with ErrInsufficientPosition, leaving the set unchanged, unless
// the held quantity covers it.
func (s *PositionSet) Apply(tx Transaction) error {
	id, q := tx.Position(), tx.Quantity()
	bucket, i := s.find(id)
	switch tx.Direction() {
	case Buy:
		if i < 0 {
			s.buckets[id.Hash()] = append(bucket, line{id: id, qty: q})
			return nil
		}
		bucket[i].qty = bucket[i].qty.Add(q)
	case Sell:
		if i < 0 {
			return fmt.Errorf("%w: cannot sell %s %s never held", ErrInsufficientPosition, q, id)
		}
		if bucket[i].qty.LessThan(q) {
			return fmt.Errorf("%w: cannot sell %s %s, only %s held", ErrInsufficientPosition, q, id, bucket[i].qty)
		}
		bucket[i].qty = bucket[i].qty.Sub(q)
	default:
		panic(fmt.Sprintf("unknown direction %d", int(tx.Direction())))
	}
	return nil
}

// only returns a set holding just the line id of s, if it was ever held.
func (s *PositionSet) only(id PositionIdentifier) *PositionSet {
	o := NewPositionSet()
	if bucket, i := s.find(id); i >= 0 {
		o.buckets[id.Hash()] = []line{bucket[i]}
	}
	return o
}

// Len returns the number of lines, including lines sold down to zero.
func (s *PositionSet) Len() int {
	n := 0
	for _, b := range s.buckets {
		n += len(b)
	}
	return n
}

// All iterates over every line ordered by identity, kind and tags.
func (s *PositionSet) All() iter.Seq2[PositionIdentifier, Quantity] {
	var lines []line
	for _, b := range s.buckets {
		lines = append(lines, b...)
	}
	slices.SortFunc(lines, func(a, b line) int { return a.id.compare(b.id) })
	return func(yield func(PositionIdentifier, Quantity) bool) {
		for _, l := range lines {
			if !yield(l.id, l.qty) {
				return
			}
		}
	}
}

// Projected returns a new set with the lines carrying any of tags.
func (s *PositionSet) Projected(tags Tags) *PositionSet {
	p := NewPositionSet()
	for h, b := range s.buckets {
		for _, l := range b {
			if l.id.HasOneTag(tags) {
				p.buckets[h] = append(p.buckets[h], l)
			}
		}
	}
	return p
}

// Copy returns a deep copy: mutating one never affects the other.
func (s *PositionSet) Copy() *PositionSet {
	c := maps.Clone(s.buckets)
	for h, b := range c {
		c[h] = slices.Clone(b)
	}
	return &PositionSet{buckets: c}
}
