package folio

import (
	"fmt"

	"github.com/etnz/folio/date"
	"github.com/etnz/folio/series"
)

// Group is a named collection of ledgers, valued as a whole.
type Group struct {
	name    string
	ledgers []*Ledger
}

func NewGroup(name string) *Group { return &Group{name: name} }

func (g *Group) Name() string { return g.name }
func (g *Group) Len() int     { return len(g.ledgers) }

// Ledgers returns the ledgers in insertion order.
func (g *Group) Ledgers() []*Ledger { return append([]*Ledger(nil), g.ledgers...) }

// Get returns the ledger called name.
func (g *Group) Get(name string) (*Ledger, bool) {
	for _, l := range g.ledgers {
		if l.Name() == name {
			return l, true
		}
	}
	return nil, false
}

// Add adds l to the group. Names are unique within a group.
func (g *Group) Add(l *Ledger) error {
	if _, exists := g.Get(l.Name()); exists {
		return fmt.Errorf("%w: %q in group %q", ErrDuplicatePortfolio, l.Name(), g.name)
	}
	g.ledgers = append(g.ledgers, l)
	return nil
}

// GroupValuator sums the valuations of the ledgers of a group.
type GroupValuator struct {
	Group  *Group
	Market Market
}

func NewGroupValuator(g *Group, m Market) *GroupValuator {
	return &GroupValuator{Group: g, Market: m}
}

// ValueAt returns the sum of the ledger values on day. A ledger whose origin
// is after day holds nothing yet; an empty group is worth 0.
func (v *GroupValuator) ValueAt(day date.Date, opts ValueOptions) (float64, error) {
	total := 0.0
	for _, l := range v.Group.ledgers {
		if day.Before(l.Origin()) {
			continue
		}
		x, err := NewPortfolioValuator(l, v.Market).ValueAt(day, opts)
		if err != nil {
			return 0, fmt.Errorf("cannot value %q of group %q: %w", l.Name(), v.Group.name, err)
		}
		total += x
	}
	return total, nil
}

// memberOptions returns the options that value l within opts, with opts.From
// clipped at the origin of l. It is false when l is created after opts.To.
func memberOptions(l *Ledger, opts ValueOptions) (ValueOptions, bool) {
	if !opts.To.IsZero() && opts.To.Before(l.Origin()) {
		return opts, false
	}
	if !opts.From.IsZero() && opts.From.Before(l.Origin()) {
		opts.From = l.Origin()
	}
	return opts, true
}

// Window returns the intersection of the windows of every ledger. An explicit
// opts.From may precede the origin of some ledgers, they are worth 0 until
// then.
func (v *GroupValuator) Window(opts ValueOptions) (date.Range, error) {
	bounds := date.Range{From: opts.From, To: opts.To}
	var w date.Range
	n := 0
	for _, l := range v.Group.ledgers {
		lo, ok := memberOptions(l, opts)
		if !ok {
			continue
		}
		lw, err := NewPortfolioValuator(l, v.Market).Window(lo)
		if err != nil {
			return date.Range{}, fmt.Errorf("cannot value %q of group %q: %w", l.Name(), v.Group.name, err)
		}
		if n == 0 {
			w = lw
		} else {
			w = w.Intersect(lw)
		}
		n++
	}
	if n == 0 {
		if bounds.From.IsZero() || bounds.To.IsZero() || bounds.IsEmpty() {
			return date.Range{}, fmt.Errorf("%w: group %q is empty, bounds are required", ErrValuationUnavailable, v.Group.name)
		}
		return bounds, nil
	}
	if !opts.From.IsZero() {
		w.From = opts.From
	}
	if w.IsEmpty() {
		return date.Range{}, fmt.Errorf("%w: group %q has no common window", ErrValuationUnavailable, v.Group.name)
	}
	return w, nil
}

// Series sums the series of every ledger over the common window. Days before
// the origin of a ledger count it as 0.
func (v *GroupValuator) Series(opts ValueOptions) (*series.Dense, error) {
	w, err := v.Window(opts)
	if err != nil {
		return nil, err
	}
	opts.From, opts.To = w.From, w.To
	total, err := series.Zero(w)
	if err != nil {
		return nil, err
	}
	for _, l := range v.Group.ledgers {
		lo, ok := memberOptions(l, opts)
		if !ok {
			continue
		}
		s, err := NewPortfolioValuator(l, v.Market).Series(lo)
		if err != nil {
			return nil, fmt.Errorf("cannot value %q of group %q: %w", l.Name(), v.Group.name, err)
		}
		if s, err = s.Extend(w); err != nil {
			return nil, err
		}
		if total, err = total.Add(s); err != nil {
			return nil, err
		}
	}
	return total, nil
}
