package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/google/subcommands"
)

// --- Fmt Command ---

type fmtCmd struct {
	ledger string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `fmt [-l <ledger>]

  Validates the ledger journal, and writes it back with its transactions sorted
  by date.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "l", "", "Ledger journal, the configured one by default")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	path := a.ledgerPath(c.ledger)
	l, err := a.DecodeLedger(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := writeLedger(path, l); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Formatted %d transactions of %q\n", len(l.Transactions()), l.Name())
	return subcommands.ExitSuccess
}

// --- Extract Command ---

type extractCmd struct {
	ledger string
	output string
	name   string
	date   string
	tags   string
	force  bool
}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "create a new ledger from the tagged lines of a ledger" }
func (*extractCmd) Usage() string {
	return `extract [-l <ledger>] -o <new ledger> [-name <name>] [-d <date>] [-t <tag,...>] [-f]

  Creates a new ledger whose origin is the given date, holding the lines of the
  source ledger that carry any of the tags on that date. Without tags every line
  is copied.
`
}

func (c *extractCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "l", "", "Source ledger journal, the configured one by default")
	f.StringVar(&c.output, "o", "", "Journal of the new ledger")
	f.StringVar(&c.name, "name", "", "Name of the new ledger, the file name by default")
	f.StringVar(&c.date, "d", date.Today().String(), "Extraction date, origin of the new ledger")
	f.StringVar(&c.tags, "t", "", "Comma separated tags of the lines to extract")
	f.BoolVar(&c.force, "f", false, "Overwrite the new ledger journal if it exists")
}

func (c *extractCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.output == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if _, err := os.Stat(c.output); err == nil && !c.force {
		fmt.Fprintf(os.Stderr, "Error: %q already exists, use -f to overwrite it\n", c.output)
		return subcommands.ExitFailure
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	l, err := a.DecodeLedger(c.ledger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	name := c.name
	if name == "" {
		name = ledgerName(c.output)
	}
	sub, err := l.Create(name, day, splitTags(c.tags)...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := writeLedger(c.output, sub); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Extracted %d lines of %q into %s\n", len(sub.Transactions()), l.Name(), c.output)
	return subcommands.ExitSuccess
}

// --- Restore Command ---

type restoreCmd struct {
	input  string
	output string
	force  bool
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "create a ledger journal from a state snapshot" }
func (*restoreCmd) Usage() string {
	return `restore -i <state.json> -o <ledger> [-f]

  Creates a ledger journal from a state written by the 'state' command. The
  positions of the state are bought on its as_of date.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "State JSON file")
	f.StringVar(&c.output, "o", "", "Journal of the restored ledger")
	f.BoolVar(&c.force, "f", false, "Overwrite the journal if it exists")
}

func (c *restoreCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input == "" || c.output == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if _, err := os.Stat(c.output); err == nil && !c.force {
		fmt.Fprintf(os.Stderr, "Error: %q already exists, use -f to overwrite it\n", c.output)
		return subcommands.ExitFailure
	}
	data, err := os.ReadFile(c.input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	var s folio.LedgerState
	if err := json.Unmarshal(data, &s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid state %q: %v\n", c.input, err)
		return subcommands.ExitFailure
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	l, err := folio.NewLedgerFromState(s, a.market)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := writeLedger(c.output, l); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Restored %q as of %s into %s\n", l.Name(), s.AsOf, c.output)
	return subcommands.ExitSuccess
}
