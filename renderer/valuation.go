package renderer

import (
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// Valuation is the value of each ledger of a group on a day.
type Valuation struct {
	Name    string
	Date    date.Date
	Ledgers []LedgerValue
	Total   folio.Money
}

// LedgerValue is the value of a single ledger.
type LedgerValue struct {
	Name  string
	Value folio.Money
	// Share of the group total, in percent.
	Share float64
}

// NewValuation values every ledger of g on day. Ledgers that do not exist yet
// on day are worth 0.
func NewValuation(g *folio.Group, m folio.Market, day date.Date, opts folio.ValueOptions) (*Valuation, error) {
	cur := reporting(opts)
	v := &Valuation{Name: g.Name(), Date: day}
	total := 0.0
	values := make([]float64, 0, g.Len())
	for _, l := range g.Ledgers() {
		value := 0.0
		if !day.Before(l.Origin()) {
			var err error
			if value, err = folio.NewPortfolioValuator(l, m).ValueAt(day, opts); err != nil {
				return nil, err
			}
		}
		values = append(values, value)
		total += value
	}
	for i, l := range g.Ledgers() {
		lv := LedgerValue{Name: l.Name(), Value: folio.M(values[i], cur)}
		if total != 0 {
			lv.Share = values[i] / total * 100
		}
		v.Ledgers = append(v.Ledgers, lv)
	}
	v.Total = folio.M(total, cur)
	return v, nil
}
