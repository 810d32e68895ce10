package folio

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

// Currency is a validated currency code, either fiat or crypto.
type Currency struct{ code string }

// USD is the pivot currency of every conversion.
var USD = Currency{"USD"}

// cryptoCurrencies is the closed set of supported crypto currencies.
var cryptoCurrencies = map[string]bool{
	"BTC": true, "ETH": true, "DOT": true, "ADA": true, "SOL": true, "XRP": true,
	"LTC": true, "BCH": true, "DOGE": true, "USDT": true, "USDC": true, "BNB": true,
	"MATIC": true, "AVAX": true, "LINK": true, "XLM": true, "ATOM": true, "UNI": true,
}

// NewCurrency returns the currency for code, an ISO 4217 code or a supported
// crypto currency. Codes are case insensitive.
func NewCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if cryptoCurrencies[code] || money.GetCurrency(code) != nil {
		return Currency{code}, nil
	}
	return Currency{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
}

// MustCurrency is like NewCurrency but panics on error.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Currency) Code() string   { return c.code }
func (c Currency) String() string { return c.code }
func (c Currency) IsZero() bool   { return c.code == "" }
func (c Currency) IsCrypto() bool { return cryptoCurrencies[c.code] }
func (c Currency) IsFiat() bool   { return c.code != "" && !c.IsCrypto() }

func (c Currency) MarshalText() ([]byte, error) { return []byte(c.code), nil }

func (c *Currency) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = Currency{}
		return nil
	}
	v, err := NewCurrency(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
