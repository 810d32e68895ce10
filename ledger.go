package folio

import (
	"fmt"
	"slices"
	"time"

	"github.com/etnz/folio/date"
)

// DefaultOrigin is the origin of a ledger created without one.
var DefaultOrigin = date.New(2000, time.January, 1)

// entry holds the transactions recorded on a day and the snapshot of the
// positions once they are applied.
type entry struct {
	snapshot     *PositionSet
	transactions []Transaction
}

// Ledger is a dated log of transactions with lazily recomputed position
// snapshots.
//
// Every calendar day from the origin is either fresh, its snapshot lookup is
// valid, or stale. Inserting a transaction on day d marks every day from d
// stale; querying a stale day replays the entries in chronological order from
// the last fresh day. Snapshots are never mutated once computed, a replay
// replaces them.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	name     string
	origin   date.Date
	resolver InstrumentResolver

	entries map[date.Date]*entry
	days    []date.Date // sorted keys of entries
	fresh   []bool      // indexed by days since origin
}

// NewLedger returns an empty ledger. A zero origin means DefaultOrigin.
//
// resolver is used to resolve tickers of Buy and Sell, it can be nil for a
// cash only ledger.
func NewLedger(name string, origin date.Date, resolver InstrumentResolver) *Ledger {
	if origin.IsZero() {
		origin = DefaultOrigin
	}
	l := &Ledger{
		name:     name,
		origin:   origin,
		resolver: resolver,
		entries:  map[date.Date]*entry{origin: {snapshot: NewPositionSet()}},
		days:     []date.Date{origin},
		fresh:    []bool{true},
	}
	l.extend(date.Today())
	return l
}

func (l *Ledger) Name() string                 { return l.name }
func (l *Ledger) Origin() date.Date            { return l.origin }
func (l *Ledger) Resolver() InstrumentResolver { return l.resolver }

// Latest returns the most recent day with transactions, or the origin.
func (l *Ledger) Latest() date.Date { return l.days[len(l.days)-1] }

// Dates returns the days with transactions, in chronological order.
func (l *Ledger) Dates() []date.Date {
	var days []date.Date
	for _, d := range l.days {
		if len(l.entries[d].transactions) > 0 {
			days = append(days, d)
		}
	}
	return days
}

// Transactions returns every transaction in chronological order, and in
// insertion order within a day.
func (l *Ledger) Transactions() []Transaction {
	var txs []Transaction
	for _, d := range l.days {
		txs = append(txs, l.entries[d].transactions...)
	}
	return txs
}

// Option of a ledger operation.
type Option func(*options)

type options struct {
	day  date.Date
	tags []string
}

// On sets the day of the operation. Inserts default to the origin, queries to
// today.
func On(day date.Date) Option { return func(o *options) { o.day = day } }

// Tagged sets the tags of the position line.
func Tagged(tags ...string) Option { return func(o *options) { o.tags = append(o.tags, tags...) } }

func newOptions(day date.Date, opts []Option) options {
	o := options{day: day}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// equity resolves a ticker like "MSFT" or "IPRP.SW" into an equity position.
func (l *Ledger) equity(ticker string, tags []string) (PositionIdentifier, error) {
	code, venue := ParseTicker(ticker)
	full := code + "." + venue
	if l.resolver == nil {
		return PositionIdentifier{}, fmt.Errorf("%w: %q: no instrument resolver", ErrInstrumentResolutionFailed, full)
	}
	inst, err := l.resolver.Instrument(full)
	if err != nil {
		return PositionIdentifier{}, fmt.Errorf("%w: %q: %w", ErrInstrumentResolutionFailed, full, err)
	}
	return EquityPosition(inst, tags...), nil
}

// Resolve returns the equity position of ticker, resolved like Buy and Sell do.
func (l *Ledger) Resolve(ticker string, tags ...string) (PositionIdentifier, error) {
	return l.equity(ticker, tags)
}

func cash(code string, tags []string) (PositionIdentifier, error) {
	c, err := NewCurrency(code)
	if err != nil {
		return PositionIdentifier{}, err
	}
	return CashPosition(c, tags...), nil
}

func (l *Ledger) insert(dir Direction, id PositionIdentifier, qty Quantity, day date.Date) error {
	tx, err := NewTransaction(dir, id, qty, day)
	if err != nil {
		return err
	}
	return l.Apply(tx)
}

// Buy buys qty shares of ticker.
func (l *Ledger) Buy(ticker string, qty Quantity, opts ...Option) error {
	o := newOptions(l.origin, opts)
	id, err := l.equity(ticker, o.tags)
	if err != nil {
		return err
	}
	return l.insert(Buy, id, qty, o.day)
}

// Sell sells qty shares of ticker.
func (l *Ledger) Sell(ticker string, qty Quantity, opts ...Option) error {
	o := newOptions(l.origin, opts)
	id, err := l.equity(ticker, o.tags)
	if err != nil {
		return err
	}
	return l.insert(Sell, id, qty, o.day)
}

// Add deposits qty of currency.
func (l *Ledger) Add(currency string, qty Quantity, opts ...Option) error {
	o := newOptions(l.origin, opts)
	id, err := cash(currency, o.tags)
	if err != nil {
		return err
	}
	return l.insert(Buy, id, qty, o.day)
}

// Withdraw withdraws qty of currency.
func (l *Ledger) Withdraw(currency string, qty Quantity, opts ...Option) error {
	o := newOptions(l.origin, opts)
	id, err := cash(currency, o.tags)
	if err != nil {
		return err
	}
	return l.insert(Sell, id, qty, o.day)
}

// Apply records tx.
//
// tx is rejected, leaving the ledger unchanged, if it is dated before the
// origin, or if it makes any sell, on its day or later, exceed the held
// quantity.
func (l *Ledger) Apply(tx Transaction) error {
	d := tx.Date()
	if d.Before(l.origin) {
		return fmt.Errorf("%w: %s is before origin %s of %q", ErrPortfolioDateOutOfRange, d, l.origin, l.name)
	}
	if err := l.check(tx); err != nil {
		return err
	}

	e, ok := l.entries[d]
	if !ok {
		e = new(entry)
		l.entries[d] = e
		i, _ := slices.BinarySearchFunc(l.days, d, date.Date.Compare)
		l.days = slices.Insert(l.days, i, d)
	}
	e.transactions = append(e.transactions, tx)
	l.invalidate(d)
	logger.Debug().Str("ledger", l.name).Stringer("tx", tx).Msg("transaction recorded")
	return nil
}

// check replays the line of tx from tx's day, with tx appended to its day. A
// buy never lowers a held quantity, only sells are checked.
func (l *Ledger) check(tx Transaction) error {
	if tx.Direction() == Buy {
		return nil
	}
	d, id := tx.Date(), tx.Position()
	base := NewPositionSet()
	if d != l.origin {
		prev, err := l.at(d.Add(-1))
		if err != nil {
			return err
		}
		base = prev.only(id)
	}

	i, _ := slices.BinarySearchFunc(l.days, d, date.Date.Compare)
	if i == len(l.days) || l.days[i] != d {
		if err := base.Apply(tx); err != nil {
			return err
		}
	}
	for _, day := range l.days[i:] {
		for _, t := range l.entries[day].transactions {
			if !t.Position().Equal(id) {
				continue
			}
			if err := base.Apply(t); err != nil {
				return fmt.Errorf("%s would invalidate %s: %w", tx, t, err)
			}
		}
		if day == d {
			if err := base.Apply(tx); err != nil {
				return err
			}
		}
	}
	return nil
}

// extend grows the freshness horizon to cover day. New days inherit the
// freshness of the last known day.
func (l *Ledger) extend(day date.Date) {
	n := day.Sub(l.origin) + 1
	if n <= len(l.fresh) {
		return
	}
	last := l.fresh[len(l.fresh)-1]
	for len(l.fresh) < n {
		l.fresh = append(l.fresh, last)
	}
}

// invalidate marks every day from d stale.
func (l *Ledger) invalidate(d date.Date) {
	l.extend(d)
	for i := d.Sub(l.origin); i < len(l.fresh); i++ {
		l.fresh[i] = false
	}
}

// replay recomputes the snapshots of every entry from the first stale day.
func (l *Ledger) replay() error {
	first := slices.Index(l.fresh, false)
	if first < 0 {
		return nil
	}
	from := l.origin.Add(first)

	// snapshots strictly before the stale region are valid.
	i, _ := slices.BinarySearchFunc(l.days, from, date.Date.Compare)
	base := NewPositionSet()
	if i > 0 {
		base = l.entries[l.days[i-1]].snapshot
	}
	for _, day := range l.days[i:] {
		e := l.entries[day]
		snap := base.Copy()
		for _, tx := range e.transactions {
			if err := snap.Apply(tx); err != nil {
				return fmt.Errorf("cannot replay %q on %s: %w", l.name, day, err)
			}
		}
		e.snapshot = snap
		base = snap
	}
	for j := first; j < len(l.fresh); j++ {
		l.fresh[j] = true
	}
	logger.Debug().Str("ledger", l.name).Stringer("from", from).Int("entries", len(l.days)-i).Msg("replayed")
	return nil
}

// at returns the snapshot in effect on day d. It is shared and must not be
// mutated.
func (l *Ledger) at(d date.Date) (*PositionSet, error) {
	if d.Before(l.origin) {
		return nil, fmt.Errorf("%w: %s is before origin %s of %q", ErrPortfolioDateOutOfRange, d, l.origin, l.name)
	}
	l.extend(d)
	if !l.fresh[d.Sub(l.origin)] {
		if err := l.replay(); err != nil {
			return nil, err
		}
	}
	// last known state: the latest entry on or before d.
	i, found := slices.BinarySearchFunc(l.days, d, date.Date.Compare)
	if !found {
		i--
	}
	return l.entries[l.days[i]].snapshot, nil
}

// PositionsAt returns a copy of the positions held on day d.
func (l *Ledger) PositionsAt(d date.Date) (*PositionSet, error) {
	s, err := l.at(d)
	if err != nil {
		return nil, err
	}
	return s.Copy(), nil
}

// Amount returns the quantity of the line id held on day d.
//
// It fails with ErrUnknownPosition if the line was not held yet.
func (l *Ledger) Amount(id PositionIdentifier, d date.Date) (Quantity, error) {
	s, err := l.at(d)
	if err != nil {
		return Quantity{}, err
	}
	return s.Quantity(id)
}

// Shares returns the number of shares of ticker held, today by default.
func (l *Ledger) Shares(ticker string, opts ...Option) (Quantity, error) {
	o := newOptions(date.Today(), opts)
	id, err := l.equity(ticker, o.tags)
	if err != nil {
		return Quantity{}, err
	}
	return l.Amount(id, o.day)
}

// Cash returns the amount of currency held, today by default.
func (l *Ledger) Cash(currency string, opts ...Option) (Quantity, error) {
	o := newOptions(date.Today(), opts)
	id, err := cash(currency, o.tags)
	if err != nil {
		return Quantity{}, err
	}
	return l.Amount(id, o.day)
}

// Create extracts a new ledger named name, with origin at, holding the lines
// carrying any of tags on day at, or every line if no tags are given. The
// receiver is left unchanged.
func (l *Ledger) Create(name string, at date.Date, tags ...string) (*Ledger, error) {
	s, err := l.at(at)
	if err != nil {
		return nil, err
	}
	if t := NewTags(tags...); len(t) > 0 {
		s = s.Projected(t)
	}
	sub := NewLedger(name, at, l.resolver)
	for id, q := range s.All() {
		if q.IsZero() {
			continue
		}
		if err := sub.insert(Buy, id, q, at); err != nil {
			return nil, fmt.Errorf("cannot extract %q from %q: %w", name, l.name, err)
		}
	}
	return sub, nil
}
