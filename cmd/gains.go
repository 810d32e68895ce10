package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type pnlCmd struct {
	ledger   string
	from     string
	to       string
	currency string
}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "display the profit and loss between two dates" }
func (*pnlCmd) Usage() string {
	return `pnl [-l <ledger>] [-from <date>] [-to <date>] [-c <currency>]

  Displays the gain of each position held at the end date, and of the whole
  ledger. A position that was not held at the start date contributes its whole
  end value.
`
}

func (c *pnlCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "l", "", "Ledger journal, the configured one by default")
	f.StringVar(&c.from, "from", "-1m", "Start date. See the user manual for supported date formats.")
	f.StringVar(&c.to, "to", "0d", "End date")
	f.StringVar(&c.currency, "c", "", "Reporting currency, the configured one by default")
}

func (c *pnlCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := date.Parse(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := date.Parse(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	opts, err := a.valueOptions(c.currency)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	l, err := a.DecodeLedger(c.ledger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a.preload(ctx, opts, l)

	r, err := folio.ComputeProfitAndLoss(folio.NewPortfolioValuator(l, a.market), from, to, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing gains of %q: %v\n", l.Name(), err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderPnL(renderer.NewPnL(l.Name(), r)))
	return subcommands.ExitSuccess
}
