package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"
)

type stateCmd struct {
	ledgers stringList
	name    string
	date    string
	query   string
}

func (*stateCmd) Name() string     { return "state" }
func (*stateCmd) Synopsis() string { return "print the snapshot state of ledgers as JSON" }
func (*stateCmd) Usage() string {
	return `state [-l <ledger>]... [-name <group>] [-d <date>] [-q <jsonpath>]

  Prints the positions held by a ledger as of its latest transaction, or as of
  -d. With several ledgers, prints the state of the group.

  -q selects a part of the state with a JSONPath expression, for instance:

    folio state -q '$.positions[?(@.identifier.kind=="cash")].amount'
`
}

func (c *stateCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.ledgers, "l", "Ledger journal, can be repeated. The configured one by default")
	f.StringVar(&c.name, "name", "all", "Name of the group when several ledgers are given")
	f.StringVar(&c.date, "d", "", "Date of the state, the latest transaction by default")
	f.StringVar(&c.query, "q", "", "JSONPath query on the state")
}

func (c *stateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseOptionalDate(c.date)
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

	g, err := a.DecodeGroup(c.name, c.ledgers)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var state any
	switch {
	case g.Len() > 1:
		state, err = g.State()
	case on.IsZero():
		state, err = g.Ledgers()[0].State()
	default:
		state, err = g.Ledgers()[0].StateAt(on)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.query != "" {
		if state, err = query(state, c.query); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	out, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(stdout, string(out))
	return subcommands.ExitSuccess
}

// query evaluates the JSONPath expression path on the JSON form of v.
func query(v any, path string) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, err
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	return jval, nil
}
