package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/market"
	"github.com/google/subcommands"
)

// --- Declare Command ---

type declareCmd struct {
	code     string
	venue    string
	kind     string
	isin     string
	name     string
	country  string
	currency string
}

func (*declareCmd) Name() string     { return "declare" }
func (*declareCmd) Synopsis() string { return "declare an instrument in the market database" }
func (*declareCmd) Usage() string {
	return `declare -code <code> [-venue <venue>] -currency <currency> [-type <type>] [-isin <isin>] [-name <name>] [-country <country>]

  Declares, or updates, the metadata of an instrument. Tickers used in the
  ledgers are resolved against the declared instruments. NYSE, NYSE ARCA and
  NASDAQ are all the US venue.
`
}

func (c *declareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "Instrument code (e.g., 'MSFT')")
	f.StringVar(&c.venue, "venue", "US", "Trading venue (e.g., 'US', 'SW')")
	f.StringVar(&c.kind, "type", "Common Stock", "Instrument type")
	f.StringVar(&c.isin, "isin", "", "ISIN")
	f.StringVar(&c.name, "name", "", "Instrument name")
	f.StringVar(&c.country, "country", "", "Country")
	f.StringVar(&c.currency, "currency", "", "The currency of the instrument (e.g., 'USD')")
}

func (c *declareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.code == "" || c.currency == "" {
		fmt.Fprintln(os.Stderr, "Error: -code and -currency flags are required.")
		return subcommands.ExitUsageError
	}
	cur, err := folio.NewCurrency(c.currency)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	inst := folio.Instrument{
		Code: strings.ToUpper(c.code), Venue: folio.NormalizeVenue(c.venue), Type: c.kind,
		ISIN: c.isin, Name: c.name, Country: c.country, Currency: cur,
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.store.Declare(ctx, inst); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Declared %s\n", inst.FullIdentity())
	return subcommands.ExitSuccess
}

// --- Import Command ---

type importCmd struct {
	prices string
	fx     string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import daily prices or FX rates from CSV files" }
func (*importCmd) Usage() string {
	return `import -prices <ticker> <file.csv>
import -fx <file.csv>

  Imports daily data into the market database.

  A prices file has a 'date' column followed by data point columns: open,
  high, low, close and adjusted_close.

  A FX file has a 'date' column followed by one column per currency, with the
  rate in units of that currency per USD.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.prices, "prices", "", "Ticker of the instrument whose prices are imported")
	f.StringVar(&c.fx, "fx", "", "FX rates file to import")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var path string
	switch {
	case c.prices != "" && c.fx == "" && f.NArg() == 1:
		path = f.Arg(0)
	case c.fx != "" && c.prices == "" && f.NArg() == 0:
		path = c.fx
	default:
		f.Usage()
		return subcommands.ExitUsageError
	}
	r, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer r.Close()

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	var n int
	if c.prices != "" {
		n, err = market.ImportPrices(ctx, a.store, c.prices, r)
	} else {
		n, err = market.ImportRates(ctx, a.store, r)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", path, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Imported %d values from %s\n", n, path)
	return subcommands.ExitSuccess
}

// --- Search Command ---

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search instruments by code, name or ISIN" }
func (*searchCmd) Usage() string {
	return `search <search term>

  Searches the instruments declared in the market database.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a search term is required.")
		return subcommands.ExitUsageError
	}
	term := strings.Join(f.Args(), " ")

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	results, err := a.store.Search(ctx, term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching instruments: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(results) == 0 {
		fmt.Fprintf(stdout, "No results found for '%s'.\n", term)
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(stdout, "Found %d results for '%s':\n\n", len(results), term)
	for _, inst := range results {
		fmt.Fprintf(stdout, "%-12s %s\n", inst.FullIdentity(), inst.Name)
		fmt.Fprintf(stdout, "%-12s Type: %s, Country: %s, Currency: %s, ISIN: %s\n", "", inst.Type, inst.Country, inst.Currency, inst.ISIN)
	}
	return subcommands.ExitSuccess
}
