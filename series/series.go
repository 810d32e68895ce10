// Package series implements Dense, a calendar-day indexed series of floats.
//
// A Dense series carries exactly one value per calendar day between its start
// and end dates. The value 0 is the sentinel for a missing observation: Fill
// and Rebase treat it as such, arithmetic does not.
package series

import (
	"errors"
	"fmt"
	"iter"

	"github.com/etnz/folio/date"
	"gonum.org/v1/gonum/floats"
)

// ErrSizeMismatch is returned when values do not cover the requested span or
// when two series are not aligned.
var ErrSizeMismatch = errors.New("series size mismatch")

// Dense is an immutable, calendar-day indexed series.
type Dense struct {
	values     []float64
	start, end date.Date
}

// New returns a series over [start, end]. values must hold at least one value
// per day of the span, extra values are ignored.
func New(values []float64, start, end date.Date) (*Dense, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrSizeMismatch, end, start)
	}
	n := end.Sub(start) + 1
	if len(values) < n {
		return nil, fmt.Errorf("%w: %d values for %d days in %s..%s", ErrSizeMismatch, len(values), n, start, end)
	}
	return &Dense{values: append([]float64(nil), values[:n]...), start: start, end: end}, nil
}

// Zero returns a series of sentinel values over r.
func Zero(r date.Range) (*Dense, error) {
	return New(make([]float64, r.Len()), r.From, r.To)
}

// Start returns the first day of the series.
func (s *Dense) Start() date.Date { return s.start }

// End returns the last day of the series.
func (s *Dense) End() date.Date { return s.end }

// Range returns the span of the series.
func (s *Dense) Range() date.Range { return date.Range{From: s.start, To: s.end} }

// Len returns the number of days in the series.
func (s *Dense) Len() int { return len(s.values) }

// Values returns a copy of the values.
func (s *Dense) Values() []float64 { return append([]float64(nil), s.values...) }

// At returns the value on day, or false if day is outside the series.
func (s *Dense) At(day date.Date) (float64, bool) {
	if day.Before(s.start) || day.After(s.end) {
		return 0, false
	}
	return s.values[day.Sub(s.start)], true
}

// Points iterates over each day and its value.
func (s *Dense) Points() iter.Seq2[date.Date, float64] {
	return func(yield func(date.Date, float64) bool) {
		for i, v := range s.values {
			if !yield(s.start.Add(i), v) {
				return
			}
		}
	}
}

// Sample iterates over the last day of each period in the series, and its value.
func (s *Dense) Sample(p date.Period) iter.Seq2[date.Date, float64] {
	return func(yield func(date.Date, float64) bool) {
		for day := range s.Range().Ends(p) {
			if !yield(day, s.values[day.Sub(s.start)]) {
				return
			}
		}
	}
}

// Cut returns the sub series over [from, to], which must be within the series.
func (s *Dense) Cut(from, to date.Date) (*Dense, error) {
	if from.Before(s.start) || to.After(s.end) {
		return nil, fmt.Errorf("%w: cannot cut %s..%s out of %s", ErrSizeMismatch, from, to, s.Range())
	}
	i := from.Sub(s.start)
	return New(s.values[i:], from, to)
}

// Extend returns s padded with missing values over r, which must contain s.
func (s *Dense) Extend(r date.Range) (*Dense, error) {
	if s.start.Before(r.From) || s.end.After(r.To) {
		return nil, fmt.Errorf("%w: cannot extend %s to %s", ErrSizeMismatch, s.Range(), r)
	}
	v := make([]float64, r.Len())
	copy(v[s.start.Sub(r.From):], s.values)
	return &Dense{values: v, start: r.From, end: r.To}, nil
}

// Direction of a Fill.
type Direction int

const (
	ForwardFill Direction = iota
	BackFill
)

// Fill returns a copy of s where every missing value is replaced by the
// nearest non missing one in the given direction. Values with no such
// neighbour remain missing.
func (s *Dense) Fill(d Direction) *Dense {
	v := s.Values()
	switch d {
	case ForwardFill:
		for i := 1; i < len(v); i++ {
			if v[i] == 0 {
				v[i] = v[i-1]
			}
		}
	case BackFill:
		for i := len(v) - 2; i >= 0; i-- {
			if v[i] == 0 {
				v[i] = v[i+1]
			}
		}
	default:
		panic(fmt.Sprintf("unknown fill direction %d", d))
	}
	return &Dense{values: v, start: s.start, end: s.end}
}

// Chain computes a chained return index of x starting at level: each level is
// the previous one times the ratio between the value and the last non missing
// value before it. Missing values carry the level.
func Chain(x []float64, level float64) []float64 {
	out := make([]float64, len(x))
	ref := 0.0
	for i, v := range x {
		if v != 0 {
			if ref != 0 {
				level *= v / ref
			}
			ref = v
		}
		out[i] = level
	}
	return out
}

// Rebase turns s into a chained return index that equals value on base. The
// result spans base..End. A zero base means the start of the series.
func (s *Dense) Rebase(base date.Date, value float64) (*Dense, error) {
	if base.IsZero() {
		base = s.start
	}
	cut, err := s.Cut(base, s.end)
	if err != nil {
		return nil, fmt.Errorf("cannot rebase on %s: %w", base, err)
	}
	return &Dense{values: Chain(cut.values, value), start: base, end: s.end}, nil
}

// Scale returns s multiplied by f.
func (s *Dense) Scale(f float64) *Dense {
	v := s.Values()
	floats.Scale(f, v)
	return &Dense{values: v, start: s.start, end: s.end}
}

func (s *Dense) combine(o *Dense, op func(dst, s, t []float64) []float64) (*Dense, error) {
	if s.start != o.start || s.end != o.end {
		return nil, fmt.Errorf("%w: %s and %s are not aligned", ErrSizeMismatch, s.Range(), o.Range())
	}
	v := make([]float64, len(s.values))
	op(v, s.values, o.values)
	return &Dense{values: v, start: s.start, end: s.end}, nil
}

// Add returns s+o element-wise. Both series must be aligned.
func (s *Dense) Add(o *Dense) (*Dense, error) { return s.combine(o, floats.AddTo) }

// Sub returns s-o element-wise. Both series must be aligned.
func (s *Dense) Sub(o *Dense) (*Dense, error) { return s.combine(o, floats.SubTo) }

// Mul returns s*o element-wise. Both series must be aligned.
func (s *Dense) Mul(o *Dense) (*Dense, error) { return s.combine(o, floats.MulTo) }

// Div returns s/o element-wise. Both series must be aligned.
func (s *Dense) Div(o *Dense) (*Dense, error) { return s.combine(o, floats.DivTo) }

func (s *Dense) String() string {
	return fmt.Sprintf("Dense(%s, %d values)", s.Range(), len(s.values))
}
