package folio

import (
	"fmt"
	"slices"
	"strings"
)

// Kind is the closed set of position kinds.
type Kind int

const (
	Cash Kind = iota
	Equity
)

func (k Kind) String() string {
	switch k {
	case Cash:
		return "cash"
	case Equity:
		return "equity"
	default:
		panic(fmt.Sprintf("unknown position kind %d", int(k)))
	}
}

// ParseKind parses "cash" or "equity".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "cash":
		return Cash, nil
	case "equity":
		return Equity, nil
	default:
		return Cash, fmt.Errorf("unknown position kind %q", s)
	}
}

// Tags is a normalized set of labels: sorted and without duplicates.
type Tags []string

// NewTags normalizes tags. Blank labels are dropped.
func NewTags(tags ...string) Tags {
	t := make(Tags, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			t = append(t, tag)
		}
	}
	slices.Sort(t)
	t = slices.Compact(t)
	if len(t) == 0 {
		return nil
	}
	return t
}

func (t Tags) Equal(o Tags) bool { return slices.Equal(t, o) }

func (t Tags) Contains(tag string) bool {
	_, found := slices.BinarySearch(t, tag)
	return found
}

// HasAny reports whether t contains at least one of tags.
func (t Tags) HasAny(tags Tags) bool {
	return slices.ContainsFunc(tags, t.Contains)
}

// HasAll reports whether t contains every one of tags.
func (t Tags) HasAll(tags Tags) bool {
	for _, tag := range tags {
		if !t.Contains(tag) {
			return false
		}
	}
	return true
}

func (t Tags) String() string { return strings.Join(t, ",") }

// PositionIdentifier identifies a ledger line: a kind, a currency or an
// instrument, and a set of tags.
//
// Two identifiers are equal only if kind, identity and tags all match. Hash is
// derived from the identity alone, so equal hashes do not imply equality but
// equal identifiers always hash equal.
type PositionIdentifier struct {
	kind       Kind
	currency   Currency
	instrument Instrument
	tags       Tags
}

// CashPosition returns the identifier of a cash line.
func CashPosition(c Currency, tags ...string) PositionIdentifier {
	return PositionIdentifier{kind: Cash, currency: c, tags: NewTags(tags...)}
}

// EquityPosition returns the identifier of an equity line.
func EquityPosition(i Instrument, tags ...string) PositionIdentifier {
	return PositionIdentifier{kind: Equity, currency: i.Currency, instrument: i, tags: NewTags(tags...)}
}

func (id PositionIdentifier) Kind() Kind { return id.kind }

// Currency is the currency of a cash line, or the settlement currency of an
// equity line.
func (id PositionIdentifier) Currency() Currency { return id.currency }

// Instrument returns the instrument of an equity line.
func (id PositionIdentifier) Instrument() (Instrument, bool) {
	return id.instrument, id.kind == Equity
}

func (id PositionIdentifier) Tags() Tags { return id.tags }

// Identity returns the currency code or the instrument full identity.
func (id PositionIdentifier) Identity() string {
	switch id.kind {
	case Cash:
		return id.currency.Code()
	case Equity:
		return id.instrument.FullIdentity()
	default:
		panic(fmt.Sprintf("unknown position kind %d", int(id.kind)))
	}
}

// Hash returns the bucketing key of the identifier: its identity, tags excluded.
func (id PositionIdentifier) Hash() string { return id.Identity() }

func (id PositionIdentifier) Equal(o PositionIdentifier) bool {
	return id.kind == o.kind && id.Identity() == o.Identity() && id.tags.Equal(o.tags)
}

// HasOneTag reports whether the line carries any of tags.
func (id PositionIdentifier) HasOneTag(tags Tags) bool { return id.tags.HasAny(tags) }

// HasAllTags reports whether the line carries every one of tags.
func (id PositionIdentifier) HasAllTags(tags Tags) bool { return id.tags.HasAll(tags) }

// String returns the identity followed by its tags, like "IPRP.SW[SWISSQUOTE]".
func (id PositionIdentifier) String() string {
	if len(id.tags) == 0 {
		return id.Identity()
	}
	return id.Identity() + "[" + id.tags.String() + "]"
}

// compare orders identifiers by identity, then kind, then tags.
func (id PositionIdentifier) compare(o PositionIdentifier) int {
	if c := strings.Compare(id.Identity(), o.Identity()); c != 0 {
		return c
	}
	if id.kind != o.kind {
		return int(id.kind) - int(o.kind)
	}
	return slices.Compare(id.tags, o.tags)
}
