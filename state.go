package folio

import (
	"fmt"

	"github.com/etnz/folio/date"
)

// IdentityState is the serializable identity of a position: a currency code,
// or an instrument.
type IdentityState struct {
	Code     string `json:"code"`
	Venue    string `json:"venue,omitempty"`
	Type     string `json:"type,omitempty"`
	ISIN     string `json:"isin,omitempty"`
	Name     string `json:"name,omitempty"`
	Country  string `json:"country,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// PositionIdentifierState is the serializable form of a PositionIdentifier.
type PositionIdentifierState struct {
	Kind     string        `json:"kind"`
	Identity IdentityState `json:"identity"`
	Tags     []string      `json:"tags,omitempty"`
}

// State returns the serializable form of id.
func (id PositionIdentifier) State() PositionIdentifierState {
	s := PositionIdentifierState{Kind: id.kind.String(), Tags: id.tags}
	switch id.kind {
	case Cash:
		s.Identity = IdentityState{Code: id.currency.Code()}
	case Equity:
		i := id.instrument
		s.Identity = IdentityState{
			Code: i.Code, Venue: NormalizeVenue(i.Venue), Type: i.Type, ISIN: i.ISIN,
			Name: i.Name, Country: i.Country, Currency: i.Currency.Code(),
		}
	}
	return s
}

// PositionIdentifierFromState rebuilds a PositionIdentifier.
func PositionIdentifierFromState(s PositionIdentifierState) (PositionIdentifier, error) {
	kind, err := ParseKind(s.Kind)
	if err != nil {
		return PositionIdentifier{}, err
	}
	switch kind {
	case Cash:
		c, err := NewCurrency(s.Identity.Code)
		if err != nil {
			return PositionIdentifier{}, err
		}
		return CashPosition(c, s.Tags...), nil
	default:
		c, err := NewCurrency(s.Identity.Currency)
		if err != nil {
			return PositionIdentifier{}, fmt.Errorf("instrument %s.%s: %w", s.Identity.Code, s.Identity.Venue, err)
		}
		return EquityPosition(Instrument{
			Code: s.Identity.Code, Venue: s.Identity.Venue, Type: s.Identity.Type, ISIN: s.Identity.ISIN,
			Name: s.Identity.Name, Country: s.Identity.Country, Currency: c,
		}, s.Tags...), nil
	}
}

// TransactionState is the serializable form of a Transaction.
type TransactionState struct {
	Direction string                  `json:"direction"`
	Date      date.Date               `json:"date"`
	Position  PositionIdentifierState `json:"position"`
	Quantity  Quantity                `json:"quantity"`
}

func (t Transaction) State() TransactionState {
	return TransactionState{Direction: t.direction.String(), Date: t.date, Position: t.position.State(), Quantity: t.quantity}
}

// TransactionFromState rebuilds a Transaction.
func TransactionFromState(s TransactionState) (Transaction, error) {
	dir, err := ParseDirection(s.Direction)
	if err != nil {
		return Transaction{}, err
	}
	id, err := PositionIdentifierFromState(s.Position)
	if err != nil {
		return Transaction{}, err
	}
	return NewTransaction(dir, id, s.Quantity, s.Date)
}

// PositionState is a line of a LedgerState.
type PositionState struct {
	Identifier PositionIdentifierState `json:"identifier"`
	Amount     Quantity                `json:"amount"`
}

// LedgerState is a snapshot of a ledger: the positions held as of a day.
//
// Rebuilding a ledger from it gives the same valuations on and after AsOf.
// The full dated history is kept by the journal, see EncodeLedger.
type LedgerState struct {
	Name       string          `json:"name"`
	OriginDate date.Date       `json:"origin_date"`
	AsOf       date.Date       `json:"as_of"`
	Positions  []PositionState `json:"positions"`
}

// State returns the snapshot of the ledger as of its latest transaction.
func (l *Ledger) State() (LedgerState, error) { return l.StateAt(l.Latest()) }

// StateAt returns the snapshot of the ledger as of day.
func (l *Ledger) StateAt(day date.Date) (LedgerState, error) {
	s, err := l.at(day)
	if err != nil {
		return LedgerState{}, err
	}
	state := LedgerState{Name: l.name, OriginDate: l.origin, AsOf: day, Positions: []PositionState{}}
	for id, q := range s.All() {
		state.Positions = append(state.Positions, PositionState{Identifier: id.State(), Amount: q})
	}
	return state, nil
}

// NewLedgerFromState rebuilds a ledger by buying every position of s on its
// AsOf day. The restored ledger is worth 0 before AsOf; a ledger whose
// transactions are all on its origin round trips at any date.
func NewLedgerFromState(s LedgerState, resolver InstrumentResolver) (*Ledger, error) {
	l := NewLedger(s.Name, s.OriginDate, resolver)
	asOf := s.AsOf
	if asOf.IsZero() {
		asOf = l.origin
	}
	for _, p := range s.Positions {
		id, err := PositionIdentifierFromState(p.Identifier)
		if err != nil {
			return nil, fmt.Errorf("cannot restore %q: %w", s.Name, err)
		}
		if err := l.insert(Buy, id, p.Amount, asOf); err != nil {
			return nil, fmt.Errorf("cannot restore %q: %w", s.Name, err)
		}
	}
	return l, nil
}

// GroupState is a snapshot of every ledger of a group.
type GroupState struct {
	Name       string           `json:"name"`
	Portfolios []PortfolioState `json:"portfolios"`
}

type PortfolioState struct {
	Name      string      `json:"portfolio_name"`
	Portfolio LedgerState `json:"portfolio"`
}

// State returns the snapshot of every ledger of the group.
func (g *Group) State() (GroupState, error) {
	s := GroupState{Name: g.name, Portfolios: []PortfolioState{}}
	for _, l := range g.ledgers {
		ls, err := l.State()
		if err != nil {
			return GroupState{}, err
		}
		s.Portfolios = append(s.Portfolios, PortfolioState{Name: l.name, Portfolio: ls})
	}
	return s, nil
}

// NewGroupFromState rebuilds a group and its ledgers.
func NewGroupFromState(s GroupState, resolver InstrumentResolver) (*Group, error) {
	g := NewGroup(s.Name)
	for _, p := range s.Portfolios {
		l, err := NewLedgerFromState(p.Portfolio, resolver)
		if err != nil {
			return nil, err
		}
		if err := g.Add(l); err != nil {
			return nil, err
		}
	}
	return g, nil
}
