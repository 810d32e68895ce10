package folio

import (
	"github.com/etnz/folio/date"
)

// Gain is the profit and loss of a position, or of the whole ledger, between
// two dates.
type Gain struct {
	Start, End float64
	// PnL is End-Start, or End if nothing was worth anything at Start.
	PnL float64
	// Percent is the relative PnL in percent, 0 if Start is 0.
	Percent float64
}

func newGain(start, end float64) Gain {
	if start == 0 {
		return Gain{Start: start, End: end, PnL: end}
	}
	return Gain{Start: start, End: end, PnL: end - start, Percent: (end/start - 1) * 100}
}

// PositionGain is the Gain of a single line.
type PositionGain struct {
	Position PositionIdentifier
	Gain
}

// ProfitAndLoss reports the gains of a ledger between two dates.
type ProfitAndLoss struct {
	From, To  date.Date
	Currency  Currency
	Positions []PositionGain
	Total     Gain
}

// ComputeProfitAndLoss values every line held on to, at from and at to.
//
// A line that did not exist at from, or an equity whose prices only start
// after from, contributes its whole value at to, with 0%. Dates are swapped if
// needed.
func ComputeProfitAndLoss(v *PortfolioValuator, from, to date.Date, opts ValueOptions) (*ProfitAndLoss, error) {
	if to.Before(from) {
		from, to = to, from
	}
	opts = opts.withDefaults()
	r := newValuation(v.Market, opts)

	before, err := v.Ledger.at(from)
	if err != nil {
		return nil, err
	}
	after, err := v.Ledger.at(to)
	if err != nil {
		return nil, err
	}

	report := &ProfitAndLoss{From: from, To: to, Currency: opts.Currency}
	var start, end float64
	for id, qty := range after.All() {
		vEnd, err := r.line(id, qty, to)
		if err != nil {
			return nil, err
		}
		vStart := 0.0
		if q, held := before.Get(id); held && r.priced(id, from) {
			if vStart, err = r.line(id, q, from); err != nil {
				return nil, err
			}
		}
		report.Positions = append(report.Positions, PositionGain{Position: id, Gain: newGain(vStart, vEnd)})
		start += vStart
		end += vEnd
	}
	report.Total = newGain(start, end)
	return report, nil
}

// priced reports whether id can be valued on day without price history
// missing before it.
func (r *valuation) priced(id PositionIdentifier, day date.Date) bool {
	if id.Kind() != Equity {
		return true
	}
	p, err := r.prices(id)
	if err != nil {
		return true // let line report the failure
	}
	return !day.Before(p.Start())
}
