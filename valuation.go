package folio

import (
	"fmt"

	"github.com/etnz/folio/date"
	"github.com/etnz/folio/series"
)

// ValueOptions parameterize a valuation.
type ValueOptions struct {
	// DataPoint of the equity prices, AdjustedClose by default.
	DataPoint DataPoint
	// Currency of the result, USD by default.
	Currency Currency
	// From and To bound a series. Zero values mean the fully covered window.
	From, To date.Date
}

func (o ValueOptions) withDefaults() ValueOptions {
	if o.DataPoint == "" {
		o.DataPoint = AdjustedClose
	}
	if o.Currency.IsZero() {
		o.Currency = USD
	}
	return o
}

// Convert converts value from one currency to another on a day, using USD
// as the pivot: value / FX(from) * FX(to). USD legs are never looked up.
func Convert(fx FXSource, value float64, from, to Currency, on date.Date) (float64, error) {
	if from == to {
		return value, nil
	}
	usd := value
	if from != USD {
		rate, err := rateOf(fx, from, on)
		if err != nil {
			return 0, err
		}
		usd = value / rate
	}
	if to == USD {
		return usd, nil
	}
	rate, err := rateOf(fx, to, on)
	if err != nil {
		return 0, err
	}
	return usd * rate, nil
}

func rateOf(fx FXSource, c Currency, on date.Date) (float64, error) {
	rate, err := fx.FX(c.Code(), on)
	if err != nil {
		return 0, err
	}
	if rate == 0 {
		return 0, fmt.Errorf("%w: no %s rate on %s", ErrFxUnavailable, c, on)
	}
	return rate, nil
}

// lineValuator values a quantity of a single line.
type lineValuator interface {
	value(qty float64, on date.Date) (float64, error)
}

// cashValuator converts cash into the target currency.
type cashValuator struct {
	id     PositionIdentifier
	target Currency
	fx     FXSource
}

func (v cashValuator) value(qty float64, on date.Date) (float64, error) {
	x, err := Convert(v.fx, qty, v.id.Currency(), v.target, on)
	if err != nil {
		return 0, &ValuationError{Position: v.id, Date: on, Err: err}
	}
	return x, nil
}

// equityValuator prices shares, then converts them into the target currency.
type equityValuator struct {
	id     PositionIdentifier
	point  DataPoint
	target Currency
	fx     FXSource
	prices *series.Dense
}

func (v equityValuator) value(qty float64, on date.Date) (float64, error) {
	price, ok := v.prices.At(on)
	if !ok || price == 0 {
		return 0, &ValuationError{Position: v.id, Date: on, DataPoint: v.point,
			Err: fmt.Errorf("no price on %s, prices cover %s", on, v.prices.Range())}
	}
	x, err := Convert(v.fx, qty*price, v.id.Currency(), v.target, on)
	if err != nil {
		return 0, &ValuationError{Position: v.id, Date: on, DataPoint: v.point, Err: err}
	}
	return x, nil
}

// valuation is a single valuation run: it keeps the line valuators, and the
// price series they hold, for the duration of a series.
type valuation struct {
	market     Market
	opts       ValueOptions
	valuators  map[string]lineValuator
	priceCache map[string]*series.Dense
}

func newValuation(m Market, opts ValueOptions) *valuation {
	return &valuation{
		market:     m,
		opts:       opts.withDefaults(),
		valuators:  make(map[string]lineValuator),
		priceCache: make(map[string]*series.Dense),
	}
}

func (r *valuation) prices(id PositionIdentifier) (*series.Dense, error) {
	inst, _ := id.Instrument()
	full := inst.FullIdentity()
	if p, ok := r.priceCache[full]; ok {
		return p, nil
	}
	p, err := r.market.Prices(full, r.opts.DataPoint)
	if err != nil {
		return nil, err
	}
	r.priceCache[full] = p
	return p, nil
}

// valuator returns the valuator of a line, by kind.
func (r *valuation) valuator(id PositionIdentifier, on date.Date) (lineValuator, error) {
	key := id.Kind().String() + ":" + id.String()
	if v, ok := r.valuators[key]; ok {
		return v, nil
	}
	var v lineValuator
	switch id.Kind() {
	case Cash:
		v = cashValuator{id: id, target: r.opts.Currency, fx: r.market}
	case Equity:
		p, err := r.prices(id)
		if err != nil {
			return nil, &ValuationError{Position: id, Date: on, DataPoint: r.opts.DataPoint, Err: err}
		}
		v = equityValuator{id: id, point: r.opts.DataPoint, target: r.opts.Currency, fx: r.market, prices: p}
	default:
		panic(fmt.Sprintf("unknown position kind %d", int(id.Kind())))
	}
	r.valuators[key] = v
	return v, nil
}

// line values a line. Lines sold down to zero are worth nothing and need no
// market data.
func (r *valuation) line(id PositionIdentifier, qty Quantity, on date.Date) (float64, error) {
	if qty.IsZero() {
		return 0, nil
	}
	v, err := r.valuator(id, on)
	if err != nil {
		return 0, err
	}
	return v.value(qty.Float64(), on)
}

// set values every line of s, aborting on the first failure.
func (r *valuation) set(s *PositionSet, on date.Date) (float64, error) {
	total := 0.0
	for id, qty := range s.All() {
		x, err := r.line(id, qty, on)
		if err != nil {
			return 0, err
		}
		total += x
	}
	return total, nil
}

// PortfolioValuator values a ledger against market data.
type PortfolioValuator struct {
	Ledger *Ledger
	Market Market
}

func NewPortfolioValuator(l *Ledger, m Market) *PortfolioValuator {
	return &PortfolioValuator{Ledger: l, Market: m}
}

// ValueAt returns the value of the positions held on day.
//
// Lines not held on day are worth nothing. A held equity without a price on
// day fails with a *ValuationError.
func (v *PortfolioValuator) ValueAt(day date.Date, opts ValueOptions) (float64, error) {
	s, err := v.Ledger.at(day)
	if err != nil {
		return 0, err
	}
	return newValuation(v.Market, opts).set(s, day)
}

// ValuePosition returns the value of a single line held on day, 0 if the line
// is not held.
func (v *PortfolioValuator) ValuePosition(id PositionIdentifier, day date.Date, opts ValueOptions) (float64, error) {
	s, err := v.Ledger.at(day)
	if err != nil {
		return 0, err
	}
	qty, ok := s.Get(id)
	if !ok {
		return 0, nil
	}
	return newValuation(v.Market, opts).line(id, qty, day)
}

// Window returns the days where every equity ever held is priced: from the
// latest first price, bounded by the origin, to the earliest last price. A
// cash only ledger is covered from its origin to today. opts.From and opts.To
// override each bound.
func (v *PortfolioValuator) Window(opts ValueOptions) (date.Range, error) {
	r := newValuation(v.Market, opts)
	w := date.Range{From: v.Ledger.Origin(), To: date.Today()}
	seen := make(map[string]bool)
	equities := false
	for _, tx := range v.Ledger.Transactions() {
		id := tx.Position()
		if id.Kind() != Equity || seen[id.Identity()] {
			continue
		}
		seen[id.Identity()] = true
		p, err := r.prices(id)
		if err != nil {
			return date.Range{}, &ValuationError{Position: id, Date: tx.Date(), DataPoint: r.opts.DataPoint, Err: err}
		}
		w.From = date.Max(w.From, p.Start())
		if !equities {
			w.To = p.End()
			equities = true
		}
		w.To = date.Min(w.To, p.End())
	}
	if !opts.From.IsZero() {
		w.From = opts.From
	}
	if !opts.To.IsZero() {
		w.To = opts.To
	}
	if w.From.Before(v.Ledger.Origin()) {
		return date.Range{}, fmt.Errorf("%w: %s is before origin %s of %q", ErrPortfolioDateOutOfRange, w.From, v.Ledger.Origin(), v.Ledger.Name())
	}
	if w.IsEmpty() {
		return date.Range{}, fmt.Errorf("%w: %q has no fully priced window (%s)", ErrValuationUnavailable, v.Ledger.Name(), w)
	}
	return w, nil
}

// Series values the ledger on every calendar day of its window.
func (v *PortfolioValuator) Series(opts ValueOptions) (*series.Dense, error) {
	w, err := v.Window(opts)
	if err != nil {
		return nil, err
	}
	r := newValuation(v.Market, opts)
	values := make([]float64, 0, w.Len())
	for day := range w.Days() {
		s, err := v.Ledger.at(day)
		if err != nil {
			return nil, err
		}
		x, err := r.set(s, day)
		if err != nil {
			return nil, err
		}
		values = append(values, x)
	}
	logger.Debug().Str("ledger", v.Ledger.Name()).Stringer("window", w).Msg("valued series")
	return series.New(values, w.From, w.To)
}

// IndexValuator values a ledger as a chained return index: BaseValue on Base,
// then each day the previous level times the day over day valuation ratio.
type IndexValuator struct {
	*PortfolioValuator
	Base      date.Date // zero means the start of the window
	BaseValue float64
}

func NewIndexValuator(v *PortfolioValuator, base date.Date, baseValue float64) *IndexValuator {
	return &IndexValuator{PortfolioValuator: v, Base: base, BaseValue: baseValue}
}

// Series returns the index from Base to opts.To, or the end of the window.
func (v *IndexValuator) Series(opts ValueOptions) (*series.Dense, error) {
	if !v.Base.IsZero() {
		opts.From = v.Base
	}
	raw, err := v.PortfolioValuator.Series(opts)
	if err != nil {
		return nil, err
	}
	return series.New(series.Chain(raw.Values(), v.BaseValue), raw.Start(), raw.End())
}
