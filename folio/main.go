// Command folio records ledgers of dated positions and values them in any
// currency.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/folio/cmd"
	"github.com/etnz/folio/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// Exits when invoked by the shell for completion.
	completion(commander).Complete("folio")

	flag.Parse()
	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(c *subcommands.Commander, name string) (ok bool) {
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		ok = ok || cmd.Name() == name
	})
	return ok
}

// completion describes the commands and their flags to the shell.
func completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flags(flag.CommandLine),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		root.Sub[cmd.Name()] = &complete.Command{Flags: flags(fs)}
	})
	root.Sub["topic"].Args = predict.Set(append(docs.All(), "*"))
	return root
}

// predictors of the flags that take a known kind of value.
var predictors = map[string]complete.Predictor{
	"l":           predict.Files("*.jsonl"),
	"o":           predict.Files("*.jsonl"),
	"i":           predict.Files("*.json"),
	"ledger-file": predict.Files("*.jsonl"),
	"market-file": predict.Files("*.db"),
	"config":      predict.Files("*.toml"),
	"env-file":    predict.Files("*"),
	"fx":          predict.Files("*.csv"),
	"p":           predict.Set{"daily", "weekly", "monthly", "quarterly", "yearly"},
	"log-level":   predict.Set{"debug", "info", "warn", "error"},
}

func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			m[f.Name] = predict.Nothing
			return
		}
		if p, ok := predictors[f.Name]; ok {
			m[f.Name] = p
			return
		}
		m[f.Name] = predict.Something
	})
	return m
}
