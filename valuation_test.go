package folio_test

import (
	"errors"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	m := newMarket()
	testCases := []struct {
		name     string
		from, to folio.Currency
		want     float64
	}{
		{"identity", chf, chf, 1000},
		{"to the pivot", chf, folio.USD, 1000 / 0.9889},
		{"from the pivot", folio.USD, chf, 1000 * 0.9889},
		{"through the pivot", chf, eur, 1000 / 0.9889 * 1.0012},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := folio.Convert(m, 1000, tc.from, tc.to, on(3))
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	_, err := folio.Convert(m, 1000, folio.MustCurrency("GBP"), folio.USD, on(3))
	assert.ErrorIs(t, err, folio.ErrFxUnavailable)

	// USD legs never reach the FX source.
	got, err := folio.Convert(nil, 1000, folio.USD, folio.USD, on(3))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got)
}

func TestValueMultiCurrency(t *testing.T) {
	l := folio.NewLedger("multi", day1, nil)
	require.NoError(t, l.Add("USD", q(10000)))
	require.NoError(t, l.Add("CHF", q(50000)))

	v := folio.NewPortfolioValuator(l, newMarket())
	got := mustValue(t, v, day1)
	assert.InDelta(t, 10000+50000/0.9889, got, 1e-6)
	assert.InDelta(t, 60561, got, 1)

	inCHF, err := v.ValueAt(day1, folio.ValueOptions{Currency: chf})
	require.NoError(t, err)
	assert.InDelta(t, 10000*0.9889+50000, inCHF, 1e-6)
}

func TestValueEquity(t *testing.T) {
	l := folio.NewLedger("equity", day1, newMarket())
	require.NoError(t, l.Buy("MSFT", q(10), folio.On(on(2))))
	require.NoError(t, l.Buy("IPRP.SW", q(100), folio.On(on(5))))
	v := folio.NewPortfolioValuator(l, newMarket())

	assert.Equal(t, 0.0, mustValue(t, v, on(1)), "nothing held yet")
	assert.Equal(t, 10*102.0, mustValue(t, v, on(2)))

	closeValue, err := v.ValueAt(on(2), folio.ValueOptions{DataPoint: folio.Close})
	require.NoError(t, err)
	assert.Equal(t, 10*202.0, closeValue)

	want := 10*106.0 + 100*(30-6.0/2)/0.9889
	assert.InDelta(t, want, mustValue(t, v, on(6)), 1e-9)

	iprpValue, err := v.ValuePosition(folio.EquityPosition(iprp), on(6), folio.ValueOptions{Currency: chf})
	require.NoError(t, err)
	assert.InDelta(t, 100*(30-6.0/2), iprpValue, 1e-9)

	none, err := v.ValuePosition(folio.EquityPosition(iprp, "X"), on(6), folio.ValueOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, none)
}

func TestValuePreExistence(t *testing.T) {
	m := newMarket()
	l := folio.NewLedger("early", day1, m)
	require.NoError(t, l.Add("CHF", q(500)))
	require.NoError(t, l.Add("USD", q(100)))
	require.NoError(t, l.Buy("IPRP.SW", q(10), folio.On(on(2))))
	v := folio.NewPortfolioValuator(l, m)

	// on day 1 IPRP is not held yet: it contributes nothing.
	assert.InDelta(t, 100+500/0.9889, mustValue(t, v, on(1)), 1e-9)

	// on day 2 IPRP is held but only priced from day 3.
	_, err := v.ValueAt(on(2), folio.ValueOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, folio.ErrValuationUnavailable)
	var verr *folio.ValuationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "IPRP.SW", verr.Position.Identity())
	assert.Equal(t, on(2), verr.Date)
	assert.Equal(t, folio.AdjustedClose, verr.DataPoint)

	// cash in its own currency needs no lookup at all.
	cash, err := v.ValuePosition(folio.CashPosition(folio.USD), on(2), folio.ValueOptions{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, cash)
}

func TestValueUnavailableCauses(t *testing.T) {
	m := newMarket()
	m.Declare(folio.Instrument{Code: "NOPX", Venue: "US", Currency: folio.USD})
	l := folio.NewLedger("causes", day1, m)
	require.NoError(t, l.Buy("NOPX", q(1)))
	_, err := folio.NewPortfolioValuator(l, m).ValueAt(day1, folio.ValueOptions{})
	assert.ErrorIs(t, err, folio.ErrValuationUnavailable)
	assert.ErrorIs(t, err, folio.ErrPriceSeriesUnavailable)

	g := folio.NewLedger("gbp", day1, m)
	require.NoError(t, g.Add("GBP", q(1)))
	_, err = folio.NewPortfolioValuator(g, m).ValueAt(day1, folio.ValueOptions{})
	assert.ErrorIs(t, err, folio.ErrValuationUnavailable)
	assert.ErrorIs(t, err, folio.ErrFxUnavailable)
}

func TestWindow(t *testing.T) {
	m := newMarket()
	l := folio.NewLedger("window", day1.Add(-10), m)
	require.NoError(t, l.Buy("MSFT", q(1), folio.On(on(1))))
	require.NoError(t, l.Buy("IPRP.SW", q(1), folio.On(on(4))))
	v := folio.NewPortfolioValuator(l, m)

	w, err := v.Window(folio.ValueOptions{})
	require.NoError(t, err)
	assert.Equal(t, date.Range{From: on(3), To: on(15)}, w, "latest first price, earliest last price")

	w, err = v.Window(folio.ValueOptions{From: on(5), To: on(6)})
	require.NoError(t, err)
	assert.Equal(t, date.Range{From: on(5), To: on(6)}, w)

	_, err = v.Window(folio.ValueOptions{From: day1.Add(-11)})
	assert.ErrorIs(t, err, folio.ErrPortfolioDateOutOfRange)

	cash := folio.NewLedger("cash", day1, nil)
	w, err = folio.NewPortfolioValuator(cash, m).Window(folio.ValueOptions{})
	require.NoError(t, err)
	assert.Equal(t, date.Range{From: day1, To: date.Today()}, w)

	late := folio.NewLedger("late", on(18), m)
	require.NoError(t, late.Buy("IPRP.SW", q(1), folio.On(on(18))))
	_, err = folio.NewPortfolioValuator(late, m).Window(folio.ValueOptions{})
	assert.ErrorIs(t, err, folio.ErrValuationUnavailable, "no priced day after the origin")
}

func TestSeries(t *testing.T) {
	v := folio.NewPortfolioValuator(datedLedger(t), newMarket())
	s, err := v.Series(folio.ValueOptions{To: on(12)})
	require.NoError(t, err)
	assert.Equal(t, day1, s.Start())
	assert.Equal(t, []float64{100, 250, 250, 250, 450, 450, 450, 450, 450, 200, 200, 200}, s.Values(),
		"one value per calendar day")
}

func TestIndexMatchesRebase(t *testing.T) {
	m := newMarket()
	l := folio.NewLedger("index", day1, m)
	require.NoError(t, l.Add("CHF", q(1000)))
	require.NoError(t, l.Buy("MSFT", q(10), folio.On(on(2))))
	require.NoError(t, l.Buy("IPRP.SW", q(50), folio.On(on(4))))
	require.NoError(t, l.Sell("MSFT", q(5), folio.On(on(8))))
	v := folio.NewPortfolioValuator(l, m)

	base, end := on(3), on(14)
	raw, err := v.Series(folio.ValueOptions{From: base, To: end})
	require.NoError(t, err)
	rebased, err := raw.Rebase(base, 100)
	require.NoError(t, err)

	index, err := folio.NewIndexValuator(v, base, 100).Series(folio.ValueOptions{To: end})
	require.NoError(t, err)

	assert.Equal(t, rebased.Range(), index.Range())
	assert.InDeltaSlice(t, rebased.Values(), index.Values(), 1e-9)
	assert.Equal(t, 100.0, index.Values()[0])

	// chained ratios telescope when no valuation is missing.
	assert.InDelta(t, 100*raw.Values()[5]/raw.Values()[0], index.Values()[5], 1e-9)
}
