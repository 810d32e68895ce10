package renderer

import (
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// Holding is the content of a ledger at a given date, with the value of each
// line in the reporting currency.
type Holding struct {
	// Name of the ledger.
	Name string
	// Date of the holding.
	Date date.Date
	// Total value of the ledger.
	Total folio.Money
	// Equities held, ordered by identity.
	Equities []HoldingEquity
	// Cash balances, ordered by currency.
	Cash []HoldingCash
}

// HoldingEquity is a single equity line.
type HoldingEquity struct {
	Ticker   string
	Name     string
	Tags     string
	Quantity folio.Quantity
	Value    folio.Money
}

// HoldingCash is a single cash line.
type HoldingCash struct {
	Currency string
	Tags     string
	Balance  folio.Money
	Value    folio.Money
}

// NewHolding values every non zero line held by v.Ledger on day.
func NewHolding(v *folio.PortfolioValuator, day date.Date, opts folio.ValueOptions) (*Holding, error) {
	positions, err := v.Ledger.PositionsAt(day)
	if err != nil {
		return nil, err
	}
	cur := reporting(opts)
	h := &Holding{Name: v.Ledger.Name(), Date: day, Total: folio.M(0, cur)}
	for id, qty := range positions.All() {
		if qty.IsZero() {
			continue
		}
		value, err := v.ValuePosition(id, day, opts)
		if err != nil {
			return nil, err
		}
		h.Total = h.Total.Add(folio.M(value, cur))

		switch id.Kind() {
		case folio.Cash:
			h.Cash = append(h.Cash, HoldingCash{
				Currency: id.Currency().Code(),
				Tags:     id.Tags().String(),
				Balance:  folio.M(qty.Float64(), id.Currency()),
				Value:    folio.M(value, cur),
			})
		case folio.Equity:
			inst, _ := id.Instrument()
			h.Equities = append(h.Equities, HoldingEquity{
				Ticker:   inst.FullIdentity(),
				Name:     inst.Name,
				Tags:     id.Tags().String(),
				Quantity: qty,
				Value:    folio.M(value, cur),
			})
		}
	}
	return h, nil
}

func reporting(opts folio.ValueOptions) folio.Currency {
	if opts.Currency.IsZero() {
		return folio.USD
	}
	return opts.Currency
}
