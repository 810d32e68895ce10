package folio_test

import (
	"testing"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/market"
	"github.com/stretchr/testify/require"
)

var (
	day1 = date.New(2022, time.September, 1)

	chf = folio.MustCurrency("CHF")
	eur = folio.MustCurrency("EUR")

	msft = folio.Instrument{Code: "MSFT", Venue: "NASDAQ", Type: "Common Stock", Name: "Microsoft", Country: "USA", Currency: folio.USD}
	iprp = folio.Instrument{Code: "IPRP", Venue: "SW", Type: "ETF", Name: "iShares European Property Yield", Country: "Switzerland", Currency: chf}
)

// on returns the n-th day of the test month, day(1) being day1.
func on(n int) date.Date { return day1.Add(n - 1) }

// newMarket returns MSFT priced on days 1 to 20 and IPRP on days 3 to 15,
// with CHF and EUR rates from day 1.
func newMarket() *market.Memory {
	m := market.NewMemory()
	m.Declare(msft)
	m.Declare(iprp)
	for n := 1; n <= 20; n++ {
		m.SetPrice("MSFT.US", folio.AdjustedClose, on(n), 100+float64(n))
		m.SetPrice("MSFT.US", folio.Close, on(n), 200+float64(n))
	}
	for n := 3; n <= 15; n++ {
		m.SetPrice("IPRP.SW", folio.AdjustedClose, on(n), 30-float64(n)/2)
	}
	m.SetFX("CHF", day1, 0.9889)
	m.SetFX("EUR", day1, 1.0012)
	return m
}

func q(v float64) folio.Quantity { return folio.Q(v) }

// mustValue values l on day in USD, failing the test on error.
func mustValue(t *testing.T, v *folio.PortfolioValuator, day date.Date) float64 {
	t.Helper()
	x, err := v.ValueAt(day, folio.ValueOptions{})
	require.NoError(t, err, "value on %s", day)
	return x
}
