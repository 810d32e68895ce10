package folio

import "strings"

// usVenues are the physical venues that share the virtual venue "US".
var usVenues = map[string]bool{"US": true, "NYSE": true, "NYSE ARCA": true, "NASDAQ": true}

// NormalizeVenue maps every US venue to the virtual venue "US", so that a US
// listed instrument is identity stable whatever venue reported it.
func NormalizeVenue(venue string) string {
	venue = strings.ToUpper(strings.TrimSpace(venue))
	if usVenues[venue] {
		return "US"
	}
	return venue
}

// ParseTicker splits a ticker like "IPRP.SW" into its code and venue. A bare
// code is a US listing.
func ParseTicker(ticker string) (code, venue string) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if i := strings.LastIndex(ticker, "."); i > 0 {
		return ticker[:i], NormalizeVenue(ticker[i+1:])
	}
	return ticker, "US"
}

// Instrument describes a listed security.
//
// Its identity is the code on the normalized venue, other fields are metadata.
type Instrument struct {
	Code     string   `json:"code"`
	Venue    string   `json:"venue"`
	Type     string   `json:"type,omitempty"`
	ISIN     string   `json:"isin,omitempty"`
	Name     string   `json:"name,omitempty"`
	Country  string   `json:"country,omitempty"`
	Currency Currency `json:"currency"`
}

// FullIdentity returns "CODE.VENUE", upper cased, with the venue normalized.
func (i Instrument) FullIdentity() string {
	return strings.ToUpper(strings.TrimSpace(i.Code)) + "." + NormalizeVenue(i.Venue)
}

// Equal reports whether both instruments share the same full identity.
func (i Instrument) Equal(o Instrument) bool { return i.FullIdentity() == o.FullIdentity() }

func (i Instrument) String() string { return i.FullIdentity() }
