package folio

import (
	"fmt"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/etnz/folio/series"
)

// DataPoint names a daily price series of an instrument.
type DataPoint string

const (
	Open          DataPoint = "open"
	High          DataPoint = "high"
	Low           DataPoint = "low"
	Close         DataPoint = "close"
	AdjustedClose DataPoint = "adjusted_close"
)

// DataPoints lists the known data points.
var DataPoints = []DataPoint{Open, High, Low, Close, AdjustedClose}

// ParseDataPoint parses a data point name, like "close" or "adjusted_close".
func ParseDataPoint(s string) (DataPoint, error) {
	p := DataPoint(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range DataPoints {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown data point %q", s)
}

// InstrumentResolver returns the metadata of an instrument by its full code
// ("CODE.VENUE").
type InstrumentResolver interface {
	Instrument(fullCode string) (Instrument, error)
}

// PriceSource returns the daily price series of an instrument. The series
// covers the instrument's available history, 0 marks a missing price.
//
// It fails with ErrPriceSeriesUnavailable for an unknown instrument or data
// point.
type PriceSource interface {
	Prices(fullID string, point DataPoint) (*series.Dense, error)
}

// FXSource returns the FX rate of currency on a day, as units of currency per
// USD, forward filled over non trading days.
//
// It fails with ErrFxUnavailable if the currency has no series.
type FXSource interface {
	FX(currency string, on date.Date) (float64, error)
}

// Market is the market data consumed by the valuation engine.
type Market interface {
	InstrumentResolver
	PriceSource
	FXSource
}
