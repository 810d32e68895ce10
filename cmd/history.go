package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/etnz/folio/series"
	"github.com/google/subcommands"
)

type historyCmd struct {
	ledgers  stringList
	name     string
	from     string
	to       string
	period   string
	currency string
	index    bool
	base     string
	level    float64
	noStats  bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the value history of one or several ledgers" }
func (*historyCmd) Usage() string {
	return `history [-l <ledger>]... [-from <date>] [-to <date>] [-p <period>] [-c <currency>] [-index [-base <date>] [-level <value>]]

  Displays the daily valuation series sampled at the end of each period. By
  default the series covers the window where every equity has a price.

  With -index, the series is a chained return index that equals -level on the
  -base date, the start of the series by default.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.ledgers, "l", "Ledger journal, can be repeated. The configured one by default")
	f.StringVar(&c.name, "name", "all", "Name of the group when several ledgers are given")
	f.StringVar(&c.from, "from", "", "Start of the series, the start of the valuation window by default")
	f.StringVar(&c.to, "to", "", "End of the series, the end of the valuation window by default")
	f.StringVar(&c.period, "p", "weekly", "Sampling period (daily, weekly, monthly, quarterly, yearly)")
	f.StringVar(&c.currency, "c", "", "Reporting currency, the configured one by default")
	f.BoolVar(&c.index, "index", false, "Display a rebased index instead of values")
	f.StringVar(&c.base, "base", "", "Base date of the index")
	f.Float64Var(&c.level, "level", 100, "Value of the index on its base date")
	f.BoolVar(&c.noStats, "no-stats", false, "Do not display the return statistics")
}

func parseOptionalDate(s string) (date.Date, error) {
	if s == "" {
		return date.Date{}, nil
	}
	return date.Parse(s)
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
		return subcommands.ExitUsageError
	}
	var from, to, base date.Date
	for _, d := range []struct {
		dst *date.Date
		src string
	}{{&from, c.from}, {&to, c.to}, {&base, c.base}} {
		if *d.dst, err = parseOptionalDate(d.src); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
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
	opts.From, opts.To = from, to

	g, err := a.DecodeGroup(c.name, c.ledgers)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a.preload(ctx, opts, g.Ledgers()...)

	name := g.Name()
	var s *series.Dense
	if g.Len() == 1 {
		l := g.Ledgers()[0]
		name = l.Name()
		v := folio.NewPortfolioValuator(l, a.market)
		if c.index {
			s, err = folio.NewIndexValuator(v, base, c.level).Series(opts)
		} else {
			s, err = v.Series(opts)
		}
	} else {
		s, err = folio.NewGroupValuator(g, a.market).Series(opts)
		if err == nil && c.index {
			s, err = s.Rebase(base, c.level)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing %q: %v\n", name, err)
		return subcommands.ExitFailure
	}

	h := renderer.NewHistory(name, s, period, opts.Currency, c.index)
	printMarkdown(renderer.RenderHistory(h, renderer.HistoryRenderOptions{SkipStats: c.noStats}))
	return subcommands.ExitSuccess
}
