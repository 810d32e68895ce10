package renderer

import (
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// PnL is the rendering view of a folio.ProfitAndLoss.
type PnL struct {
	Name      string
	From, To  date.Date
	Positions []PnLLine
	Total     PnLLine
}

// PnLLine is the gain of one position, or the total.
type PnLLine struct {
	Position string
	Start    folio.Money
	End      folio.Money
	PnL      folio.Money
	Percent  float64
}

func newPnLLine(name string, g folio.Gain, cur folio.Currency) PnLLine {
	return PnLLine{
		Position: name,
		Start:    folio.M(g.Start, cur),
		End:      folio.M(g.End, cur),
		PnL:      folio.M(g.PnL, cur),
		Percent:  g.Percent,
	}
}

// NewPnL converts the report r of the ledger name.
func NewPnL(name string, r *folio.ProfitAndLoss) *PnL {
	p := &PnL{
		Name:  name,
		From:  r.From,
		To:    r.To,
		Total: newPnLLine("Total", r.Total, r.Currency),
	}
	for _, g := range r.Positions {
		p.Positions = append(p.Positions, newPnLLine(g.Position.String(), g.Gain, r.Currency))
	}
	return p
}
