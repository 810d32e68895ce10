package folio_test

import (
	"testing"

	"github.com/etnz/folio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCurrency(t *testing.T) {
	testCases := []struct {
		code   string
		crypto bool
		valid  bool
	}{
		{"USD", false, true},
		{"chf", false, true},
		{"EUR", false, true},
		{"BTC", true, true},
		{"eth", true, true},
		{"DOT", true, true},
		{"XYZ", false, false},
		{"", false, false},
	}
	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			c, err := folio.NewCurrency(tc.code)
			if !tc.valid {
				assert.ErrorIs(t, err, folio.ErrInvalidCurrency)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.crypto, c.IsCrypto())
			assert.Equal(t, !tc.crypto, c.IsFiat())
		})
	}
	assert.Equal(t, folio.MustCurrency("usd"), folio.USD, "equality by code")
}

func TestInstrumentIdentity(t *testing.T) {
	testCases := []struct {
		venue string
		want  string
	}{
		{"NYSE", "X.US"},
		{"NYSE ARCA", "X.US"},
		{"NASDAQ", "X.US"},
		{"US", "X.US"},
		{"SW", "X.SW"},
	}
	for _, tc := range testCases {
		t.Run(tc.venue, func(t *testing.T) {
			i := folio.Instrument{Code: "X", Venue: tc.venue}
			assert.Equal(t, tc.want, i.FullIdentity())
		})
	}

	a := folio.Instrument{Code: "EFA", Venue: "NYSE ARCA", Name: "iShares MSCI EAFE"}
	b := folio.Instrument{Code: "EFA", Venue: "NASDAQ"}
	assert.True(t, a.Equal(b), "metadata is not part of the identity")
	assert.False(t, a.Equal(folio.Instrument{Code: "EFA", Venue: "SW"}))
	assert.Equal(t, "EFA.US", folio.Instrument{Code: " efa", Venue: "nyse"}.FullIdentity())
}

func TestParseTicker(t *testing.T) {
	code, venue := folio.ParseTicker("MSFT")
	assert.Equal(t, "MSFT", code)
	assert.Equal(t, "US", venue)

	code, venue = folio.ParseTicker("iprp.sw")
	assert.Equal(t, "IPRP", code)
	assert.Equal(t, "SW", venue)
}

func TestTags(t *testing.T) {
	tags := folio.NewTags("b", "a", " b ", "")
	assert.Equal(t, folio.Tags{"a", "b"}, tags)
	assert.True(t, tags.HasAny(folio.NewTags("b", "z")))
	assert.False(t, tags.HasAny(folio.NewTags("z")))
	assert.False(t, tags.HasAny(nil))
	assert.True(t, tags.HasAll(folio.NewTags("a", "b")))
	assert.False(t, tags.HasAll(folio.NewTags("a", "z")))
	assert.Nil(t, folio.NewTags())
}

func TestPositionIdentifierEquality(t *testing.T) {
	untagged := folio.EquityPosition(msft)
	tagged := folio.EquityPosition(msft, "A")

	assert.False(t, untagged.Equal(tagged), "tags are part of equality")
	assert.Equal(t, untagged.Hash(), tagged.Hash(), "hash ignores tags")
	assert.True(t, tagged.Equal(folio.EquityPosition(folio.Instrument{Code: "MSFT", Venue: "NYSE"}, "A")))

	cash := folio.CashPosition(folio.USD, "A", "B")
	assert.True(t, cash.HasOneTag(folio.NewTags("B", "C")))
	assert.False(t, cash.HasAllTags(folio.NewTags("B", "C")))
	assert.Equal(t, "USD[A,B]", cash.String())
	assert.Equal(t, folio.USD, cash.Currency())

	_, ok := cash.Instrument()
	assert.False(t, ok)
	inst, ok := tagged.Instrument()
	assert.True(t, ok)
	assert.Equal(t, "MSFT.US", inst.FullIdentity())
	assert.Equal(t, folio.USD, tagged.Currency(), "settlement currency")
}
