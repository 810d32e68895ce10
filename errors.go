package folio

import (
	"errors"
	"fmt"

	"github.com/etnz/folio/date"
)

// Error kinds returned by the ledger and the valuation engine. Callers test
// them with errors.Is.
var (
	ErrInvalidCurrency            = errors.New("invalid currency")
	ErrInvalidQuantity            = errors.New("invalid quantity")
	ErrInsufficientPosition       = errors.New("insufficient position")
	ErrUnknownPosition            = errors.New("unknown position")
	ErrPortfolioDateOutOfRange    = errors.New("portfolio date out of range")
	ErrValuationUnavailable       = errors.New("valuation unavailable")
	ErrInstrumentResolutionFailed = errors.New("instrument resolution failed")
	ErrDuplicatePortfolio         = errors.New("duplicate portfolio")
)

// Error kinds of the market collaborators.
var (
	ErrPriceSeriesUnavailable = errors.New("price series unavailable")
	ErrFxUnavailable          = errors.New("fx unavailable")
)

// ValuationError reports a position that could not be valued on a given date.
//
// It matches ErrValuationUnavailable and the originating lookup error.
type ValuationError struct {
	Position  PositionIdentifier
	Date      date.Date
	DataPoint DataPoint
	Err       error
}

func (e *ValuationError) Error() string {
	if e.DataPoint == "" {
		return fmt.Sprintf("cannot value %s on %s: %v", e.Position, e.Date, e.Err)
	}
	return fmt.Sprintf("cannot value %s on %s using %s: %v", e.Position, e.Date, e.DataPoint, e.Err)
}

func (e *ValuationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValuationUnavailable}
	}
	return []error{ErrValuationUnavailable, e.Err}
}
