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

type valueCmd struct {
	ledgers  stringList
	name     string
	date     string
	currency string
	window   bool
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "value one or several ledgers on a date" }
func (*valueCmd) Usage() string {
	return `value [-l <ledger>]... [-name <group>] [-d <date>] [-c <currency>] [-window]

  Values a group of ledgers on a date. Ledgers whose origin is after the date
  are worth nothing. With -window, prints the date range over which every
  ledger of the group can be valued instead.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.ledgers, "l", "Ledger journal, can be repeated. The configured one by default")
	f.StringVar(&c.name, "name", "all", "Name of the group")
	f.StringVar(&c.date, "d", date.Today().String(), "Valuation date. See the user manual for supported date formats.")
	f.StringVar(&c.currency, "c", "", "Reporting currency, the configured one by default")
	f.BoolVar(&c.window, "window", false, "Print the fully covered valuation window")
}

func (c *valueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	g, err := a.DecodeGroup(c.name, c.ledgers)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a.preload(ctx, opts, g.Ledgers()...)

	if c.window {
		w, err := folio.NewGroupValuator(g, a.market).Window(opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(stdout, w)
		return subcommands.ExitSuccess
	}

	v, err := renderer.NewValuation(g, a.market, on, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing %q: %v\n", g.Name(), err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderValuation(v))
	return subcommands.ExitSuccess
}
