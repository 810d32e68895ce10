package renderer

import (
	"fmt"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/series"
)

// History is a valuation series sampled at the end of each period.
type History struct {
	Name   string
	Range  date.Range
	Period date.Period
	// Index is true when the values are a rebased index rather than money.
	Index  bool
	Points []HistoryPoint
	Stats  *HistoryStats
}

// HistoryPoint is the value at the end of a period, and its change from the
// previous one.
type HistoryPoint struct {
	Date   date.Date
	Value  string
	Change float64
}

// HistoryStats summarizes the daily returns of the whole series.
type HistoryStats struct {
	Volatility  float64 // annualized, in percent
	MeanReturn  float64 // daily, in percent
	MaxDrawdown float64 // in percent
}

// NewHistory samples s every period. When index is true the values are
// printed as plain numbers, otherwise as money in cur.
func NewHistory(name string, s *series.Dense, p date.Period, cur folio.Currency, index bool) *History {
	h := &History{
		Name:   name,
		Range:  s.Range(),
		Period: p,
		Index:  index,
		Stats: &HistoryStats{
			Volatility:  s.Volatility() * 100,
			MeanReturn:  s.MeanReturn() * 100,
			MaxDrawdown: s.MaxDrawdown() * 100,
		},
	}
	prev := 0.0
	for day, v := range s.Sample(p) {
		pt := HistoryPoint{Date: day}
		if index {
			pt.Value = fmt.Sprintf("%.2f", v)
		} else {
			pt.Value = folio.M(v, cur).String()
		}
		if prev != 0 {
			pt.Change = (v/prev - 1) * 100
		}
		if v != 0 {
			prev = v
		}
		h.Points = append(h.Points, pt)
	}
	return h
}
