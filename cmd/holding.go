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

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	ledger   string
	date     string
	currency string
	tags     string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the positions held on a date, with their value" }
func (*positionsCmd) Usage() string {
	return `positions [-l <ledger>] [-d <date>] [-c <currency>] [-t <tag,...>]

  Displays the equities and cash held on a given date, valued in the reporting
  currency. With -t only the lines carrying any of the tags are displayed.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "l", "", "Ledger journal, the configured one by default")
	f.StringVar(&c.date, "d", date.Today().String(), "Date for the holdings report. See the user manual for supported date formats.")
	f.StringVar(&c.currency, "c", "", "Reporting currency, the configured one by default")
	f.StringVar(&c.tags, "t", "", "Comma separated tags of the lines to display")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
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
	if tags := splitTags(c.tags); len(tags) > 0 {
		// Valuing the extraction values only the tagged lines.
		if l, err = l.Create(l.Name(), on, tags...); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	a.preload(ctx, opts, l)

	h, err := renderer.NewHolding(folio.NewPortfolioValuator(l, a.market), on, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing %q: %v\n", l.Name(), err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderHolding(h))
	return subcommands.ExitSuccess
}
