package renderer

import (
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// Transactions is the journal of a ledger.
type Transactions struct {
	Name   string
	Origin date.Date
	Rows   []TransactionRow
}

type TransactionRow struct {
	Date      date.Date
	Direction string
	Position  string
	Quantity  folio.Quantity
}

// NewTransactions lists the transactions of l in chronological order.
func NewTransactions(l *folio.Ledger) *Transactions {
	t := &Transactions{Name: l.Name(), Origin: l.Origin()}
	for _, tx := range l.Transactions() {
		t.Rows = append(t.Rows, TransactionRow{
			Date:      tx.Date(),
			Direction: tx.Direction().String(),
			Position:  tx.Position().String(),
			Quantity:  tx.Quantity(),
		})
	}
	return t
}
