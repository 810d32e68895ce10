// Package market implements the market data consumed by the valuation
// engine: instrument metadata, daily price series and daily FX rates.
//
// Memory holds fixtures in memory, Store persists them in a SQLite database
// and Cache memoizes any folio.Market.
package market

import (
	"fmt"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/series"
)

// fullID normalizes a full code like "msft.nasdaq" into "MSFT.US".
func fullID(code string) string {
	c, v := folio.ParseTicker(code)
	return c + "." + v
}

// dense turns a sparse history into a forward filled series spanning it.
func dense(h *date.History[float64]) (*series.Dense, error) {
	span := h.Span()
	values := make([]float64, span.Len())
	for day, v := range h.Values() {
		values[day.Sub(span.From)] = v
	}
	s, err := series.New(values, span.From, span.To)
	if err != nil {
		return nil, err
	}
	return s.Fill(series.ForwardFill), nil
}

// checkRate validates a rate read from a history.
func checkRate(currency string, on date.Date, rate float64, ok bool) (float64, error) {
	if !ok {
		return 0, fmt.Errorf("%w: no %s rate on or before %s", folio.ErrFxUnavailable, currency, on)
	}
	return rate, nil
}
