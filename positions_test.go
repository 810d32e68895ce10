package folio_test

import (
	"testing"

	"github.com/etnz/folio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(t *testing.T, dir folio.Direction, id folio.PositionIdentifier, qty float64) folio.Transaction {
	t.Helper()
	x, err := folio.NewTransaction(dir, id, q(qty), day1)
	require.NoError(t, err)
	return x
}

func TestPositionSetBuyAccumulates(t *testing.T) {
	s := folio.NewPositionSet()
	id := folio.EquityPosition(msft)
	require.NoError(t, s.Apply(tx(t, folio.Buy, id, 10)))
	require.NoError(t, s.Apply(tx(t, folio.Buy, id, 5)))

	got, err := s.Quantity(id)
	require.NoError(t, err)
	assert.True(t, got.Equal(q(15)), "got %s", got)
	assert.Equal(t, 1, s.Len())
}

func TestPositionSetSellRequiresSufficiency(t *testing.T) {
	s := folio.NewPositionSet()
	id := folio.CashPosition(folio.USD)
	require.NoError(t, s.Apply(tx(t, folio.Buy, id, 100)))

	err := s.Apply(tx(t, folio.Sell, id, 100.01))
	assert.ErrorIs(t, err, folio.ErrInsufficientPosition)
	got, _ := s.Get(id)
	assert.True(t, got.Equal(q(100)), "a failed sell leaves the position unchanged")

	err = s.Apply(tx(t, folio.Sell, folio.EquityPosition(msft), 1))
	assert.ErrorIs(t, err, folio.ErrInsufficientPosition, "never held")
	_, err = s.Quantity(folio.EquityPosition(msft))
	assert.ErrorIs(t, err, folio.ErrUnknownPosition, "a failed sell creates no line")

	require.NoError(t, s.Apply(tx(t, folio.Sell, id, 100)))
	got, err = s.Quantity(id)
	require.NoError(t, err, "a line sold down to zero is still known")
	assert.True(t, got.IsZero())
}

func TestPositionSetTagIsolation(t *testing.T) {
	s := folio.NewPositionSet()
	a := folio.EquityPosition(msft, "A")
	b := folio.EquityPosition(msft, "B")
	require.NoError(t, s.Apply(tx(t, folio.Buy, a, 10)))
	require.NoError(t, s.Apply(tx(t, folio.Buy, b, 20)))

	got, _ := s.Get(a)
	assert.True(t, got.Equal(q(10)))
	got, _ = s.Get(b)
	assert.True(t, got.Equal(q(20)))
	_, ok := s.Get(folio.EquityPosition(msft))
	assert.False(t, ok, "untagged lines are never merged with tagged ones")

	err := s.Apply(tx(t, folio.Sell, a, 15))
	assert.ErrorIs(t, err, folio.ErrInsufficientPosition, "B shares cannot cover A")
}

func TestPositionSetCopyIsDeep(t *testing.T) {
	s := folio.NewPositionSet()
	id := folio.CashPosition(chf)
	require.NoError(t, s.Apply(tx(t, folio.Buy, id, 100)))

	c := s.Copy()
	require.NoError(t, c.Apply(tx(t, folio.Buy, id, 1)))
	require.NoError(t, c.Apply(tx(t, folio.Buy, folio.CashPosition(eur), 1)))

	got, _ := s.Get(id)
	assert.True(t, got.Equal(q(100)))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, c.Len())
}

func TestPositionSetProjected(t *testing.T) {
	s := folio.NewPositionSet()
	require.NoError(t, s.Apply(tx(t, folio.Buy, folio.CashPosition(folio.USD, "SWISSQUOTE"), 100)))
	require.NoError(t, s.Apply(tx(t, folio.Buy, folio.CashPosition(folio.USD), 50)))
	require.NoError(t, s.Apply(tx(t, folio.Buy, folio.EquityPosition(iprp, "SWISSQUOTE", "ETF"), 235)))
	require.NoError(t, s.Apply(tx(t, folio.Buy, folio.CashPosition(folio.MustCurrency("BTC"), "CRYPTOS"), 2.2347)))

	p := s.Projected(folio.NewTags("SWISSQUOTE", "NONE"))
	assert.Equal(t, 2, p.Len())
	got, _ := p.Get(folio.EquityPosition(iprp, "ETF", "SWISSQUOTE"))
	assert.True(t, got.Equal(q(235)), "quantities are preserved verbatim")
	_, ok := p.Get(folio.CashPosition(folio.USD))
	assert.False(t, ok)
}

func TestPositionSetAllIsOrdered(t *testing.T) {
	s := folio.NewPositionSet()
	for _, id := range []folio.PositionIdentifier{
		folio.EquityPosition(msft, "B"),
		folio.CashPosition(folio.USD),
		folio.EquityPosition(msft),
		folio.CashPosition(chf),
	} {
		require.NoError(t, s.Apply(tx(t, folio.Buy, id, 1)))
	}
	var got []string
	for id := range s.All() {
		got = append(got, id.String())
	}
	assert.Equal(t, []string{"CHF", "MSFT.US", "MSFT.US[B]", "USD"}, got)
}

func TestNewTransactionRejectsNegativeQuantity(t *testing.T) {
	_, err := folio.NewTransaction(folio.Buy, folio.CashPosition(folio.USD), q(-1), day1)
	assert.ErrorIs(t, err, folio.ErrInvalidQuantity)
}
