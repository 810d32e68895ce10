package folio

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a valuation result in a given currency, used for display.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   Currency
}

// M returns a Money of value in currency.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency Currency) Money {
	return Money{value: newDecimal(value), cur: currency}
}

func (m Money) Currency() Currency { return m.cur }
func (m Money) IsZero() bool       { return m.value.IsZero() }
func (m Money) Float64() float64   { return m.value.InexactFloat64() }

// Add returns m+n, both must share the same currency.
func (m Money) Add(n Money) Money {
	if m.cur != n.cur && !m.IsZero() && !n.IsZero() {
		panic("currency mismatch " + m.cur.Code() + "!=" + n.cur.Code())
	}
	c := m.cur
	if c.IsZero() {
		c = n.cur
	}
	return Money{value: m.value.Add(n.value), cur: c}
}

// String formats fiat money with the currency conventions, and crypto money
// with 8 decimals.
func (m Money) String() string {
	if !m.cur.IsFiat() {
		return m.value.StringFixed(8) + " " + m.cur.Code()
	}
	// to get a never nil currency I need to call the Money constructor
	cur := money.New(0, m.cur.Code()).Currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}
