package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/google/subcommands"
)

// --- Init Command ---

type initCmd struct {
	ledger string
	name   string
	origin string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create an empty ledger journal" }
func (*initCmd) Usage() string {
	return `init [-l <ledger>] [-name <name>] [-origin <date>]

  Creates an empty ledger journal. No transaction can be dated before the origin.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "l", "", "Ledger journal to create, the configured one by default")
	f.StringVar(&c.name, "name", "", "Ledger name, the file name by default")
	f.StringVar(&c.origin, "origin", folio.DefaultOrigin.String(), "Origin date of the ledger")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	origin, err := date.Parse(c.origin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing origin: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	path := a.ledgerPath(c.ledger)
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "Error: ledger %q already exists\n", path)
		return subcommands.ExitFailure
	}
	name := c.name
	if name == "" {
		name = ledgerName(path)
	}
	if err := writeLedger(path, folio.NewLedger(name, origin, a.market)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Created ledger %q in %s\n", name, path)
	return subcommands.ExitSuccess
}

// --- Buy, Sell, Add and Withdraw Commands ---

// transactionCmd records a buy or a sell of an equity line, or of a cash line.
type transactionCmd struct {
	name string
	dir  folio.Direction
	cash bool

	ledger   string
	date     string
	code     string
	quantity string
	tags     string
}

func (c *transactionCmd) Name() string { return c.name }

func (c *transactionCmd) Synopsis() string {
	switch {
	case c.cash && c.dir == folio.Buy:
		return "deposit cash"
	case c.cash:
		return "withdraw cash"
	case c.dir == folio.Buy:
		return "buy shares to open or add to a position"
	default:
		return "sell shares to trim or close a position"
	}
}

func (c *transactionCmd) Usage() string {
	what := "-s <ticker>"
	if c.cash {
		what = "-c <currency>"
	}
	return fmt.Sprintf(`%s [-l <ledger>] [-d <date>] %s -q <quantity> [-t <tag,...>]

  %s. The transaction is checked against the whole journal: it is rejected if
  any later sell would exceed the quantity held.
`, c.name, what, c.Synopsis())
}

func (c *transactionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "l", "", "Ledger journal, the configured one by default")
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date. See the user manual for supported date formats.")
	if c.cash {
		f.StringVar(&c.code, "c", "", "Currency code")
	} else {
		f.StringVar(&c.code, "s", "", "Ticker, like MSFT or IPRP.SW")
	}
	f.StringVar(&c.quantity, "q", "", "Quantity")
	f.StringVar(&c.tags, "t", "", "Comma separated tags of the position line")
}

func (c *transactionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.code == "" || c.quantity == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	qty, err := folio.ParseQuantity(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing quantity: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	path := a.ledgerPath(c.ledger)
	l, err := a.openOrCreateLedger(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var id folio.PositionIdentifier
	if c.cash {
		var cur folio.Currency
		cur, err = folio.NewCurrency(c.code)
		id = folio.CashPosition(cur, splitTags(c.tags)...)
	} else {
		id, err = l.Resolve(c.code, splitTags(c.tags)...)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	tx, err := folio.NewTransaction(c.dir, id, qty, day)
	if err == nil {
		err = l.Apply(tx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: transaction rejected: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := appendTransaction(path, l, tx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a.log.Info().Stringer("tx", tx).Str("ledger", path).Msg("recorded")
	fmt.Fprintf(stdout, "Successfully appended transaction to %s\n", path)
	return subcommands.ExitSuccess
}
