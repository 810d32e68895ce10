package folio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// CommandType discriminates the lines of a journal.
type CommandType string

const (
	CmdLedger CommandType = "ledger"
	CmdBuy    CommandType = "buy"
	CmdSell   CommandType = "sell"
)

// header is the first line of a journal.
type header struct {
	Command CommandType `json:"command"`
	Name    string      `json:"name"`
	Origin  date.Date   `json:"origin"`
}

type txLine struct {
	Command CommandType `json:"command"`
	TransactionState
}

// EncodeTransaction marshals a single transaction to JSON and writes it to the
// writer, followed by a newline, in JSONL format.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	jsonData, err := json.Marshal(txLine{Command: CommandType(tx.Direction().String()), TransactionState: tx.State()})
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeLedger persists the full dated history of a ledger in JSONL format: a
// header line then every transaction in chronological order.
func EncodeLedger(w io.Writer, l *Ledger) error {
	jsonData, err := json.Marshal(header{Command: CmdLedger, Name: l.name, Origin: l.origin})
	if err != nil {
		return fmt.Errorf("failed to marshal ledger header: %w", err)
	}
	if _, err := w.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	for _, tx := range l.Transactions() {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTransactions decodes transaction lines from a stream of JSONL data.
// Empty lines and the ledger header are skipped.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	_, txs, err := decodeJournal(r)
	return txs, err
}

// DecodeLedger decodes a journal written by EncodeLedger. Transactions are
// recorded in chronological order, a journal without header gets the
// DefaultOrigin.
func DecodeLedger(r io.Reader, resolver InstrumentResolver) (*Ledger, error) {
	h, txs, err := decodeJournal(r)
	if err != nil {
		return nil, err
	}
	l := NewLedger(h.Name, h.Origin, resolver)
	slices.SortStableFunc(txs, func(a, b Transaction) int { return a.Date().Compare(b.Date()) })
	for _, tx := range txs {
		if err := l.Apply(tx); err != nil {
			return nil, fmt.Errorf("cannot record %s: %w", tx, err)
		}
	}
	return l, nil
}

func decodeJournal(r io.Reader) (header, []Transaction, error) {
	var h header
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return h, nil, fmt.Errorf("line %d: could not identify command in %q: %w", n, string(lineBytes), err)
		}

		switch identifier.Command {
		case CmdLedger:
			if err := json.Unmarshal(lineBytes, &h); err != nil {
				return h, nil, fmt.Errorf("line %d: %w", n, err)
			}
		case CmdBuy, CmdSell:
			var line txLine
			if err := json.Unmarshal(lineBytes, &line); err != nil {
				return h, nil, fmt.Errorf("line %d: %w", n, err)
			}
			line.Direction = string(line.Command)
			tx, err := TransactionFromState(line.TransactionState)
			if err != nil {
				return h, nil, fmt.Errorf("line %d: %w", n, err)
			}
			txs = append(txs, tx)
		default:
			return h, nil, fmt.Errorf("line %d: unknown command %q", n, identifier.Command)
		}
	}
	if err := scanner.Err(); err != nil {
		return h, nil, fmt.Errorf("error reading from input: %w", err)
	}
	return h, txs, nil
}
