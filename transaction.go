package folio

import (
	"fmt"
	"strings"

	"github.com/etnz/folio/date"
)

// Direction of a transaction.
type Direction int

const (
	Buy Direction = iota
	Sell
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		panic(fmt.Sprintf("unknown direction %d", int(d)))
	}
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return Buy, fmt.Errorf("unknown transaction direction %q", s)
	}
}

// Transaction is an immutable dated buy or sell of a position line.
//
// Adding and withdrawing cash are buy and sell of a cash line.
type Transaction struct {
	direction Direction
	position  PositionIdentifier
	quantity  Quantity
	date      date.Date
}

// NewTransaction returns a transaction; quantity must not be negative.
func NewTransaction(dir Direction, position PositionIdentifier, quantity Quantity, on date.Date) (Transaction, error) {
	if quantity.IsNegative() {
		return Transaction{}, fmt.Errorf("%w: %s %s %s", ErrInvalidQuantity, dir, quantity, position)
	}
	return Transaction{direction: dir, position: position, quantity: quantity, date: on}, nil
}

func (t Transaction) Direction() Direction         { return t.direction }
func (t Transaction) Position() PositionIdentifier { return t.position }
func (t Transaction) Quantity() Quantity           { return t.quantity }
func (t Transaction) Date() date.Date              { return t.date }

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s", t.date, t.direction, t.quantity, t.position)
}
