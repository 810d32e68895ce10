// Package cmd implements the CLI application to manage ledgers and value them.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/folio"
	"github.com/etnz/folio/market"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&initCmd{}, "ledger")
	c.Register(&transactionCmd{name: "buy", dir: folio.Buy}, "ledger")
	c.Register(&transactionCmd{name: "sell", dir: folio.Sell}, "ledger")
	c.Register(&transactionCmd{name: "add", dir: folio.Buy, cash: true}, "ledger")
	c.Register(&transactionCmd{name: "withdraw", dir: folio.Sell, cash: true}, "ledger")
	c.Register(&fmtCmd{}, "ledger")
	c.Register(&extractCmd{}, "ledger")
	c.Register(&restoreCmd{}, "ledger")

	c.Register(&txCmd{}, "reports")
	c.Register(&positionsCmd{}, "reports")
	c.Register(&valueCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&pnlCmd{}, "reports")
	c.Register(&stateCmd{}, "reports")

	c.Register(&declareCmd{}, "market")
	c.Register(&importCmd{}, "market")
	c.Register(&searchCmd{}, "market")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile      = flag.String("config", "folio.toml", "Path to the TOML configuration file")
	envFile         = flag.String("env-file", ".env", "Path to a .env file with FOLIO_* variables")
	ledgerFile      = flag.String("ledger-file", "", "Path to the default ledger journal (JSONL format)")
	marketFile      = flag.String("market-file", "", "Path to the market SQLite database")
	defaultCurrency = flag.String("currency", "", "Default reporting currency")
	logLevel        = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	plain           = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")
)

// stdout is where the commands print their reports.
var stdout io.Writer = os.Stdout

// settings returns the configuration layered under the global flags.
func settings() (Config, error) {
	c, err := LoadConfig(*configFile)
	if err != nil {
		return c, err
	}
	env, err := Environment(*envFile)
	if err != nil {
		return c, err
	}
	if err := c.Override(env); err != nil {
		return c, err
	}
	for dst, v := range map[*string]string{
		&c.LedgerFile:      *ledgerFile,
		&c.MarketFile:      *marketFile,
		&c.DefaultCurrency: *defaultCurrency,
		&c.Log.Level:       *logLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	return c, nil
}

// app is what a command needs to run: its configuration, a logger and the
// market.
type app struct {
	Config
	log    zerolog.Logger
	store  *market.Store
	market *market.Cache
}

func openApp() (*app, error) {
	cfg, err := settings()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	folio.SetLogger(log)
	store, err := market.Open(cfg.MarketFile, log)
	if err != nil {
		return nil, err
	}
	return &app{Config: cfg, log: log, store: store, market: market.NewCache(store)}, nil
}

func (a *app) Close() error { return a.store.Close() }

// ledgerPath returns path, or the configured ledger file.
func (a *app) ledgerPath(path string) string {
	if path == "" {
		return a.LedgerFile
	}
	return path
}

// DecodeLedger loads the journal at path, the configured one by default.
func (a *app) DecodeLedger(path string) (*folio.Ledger, error) {
	path = a.ledgerPath(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger: %w", err)
	}
	defer f.Close()
	l, err := folio.DecodeLedger(f, a.market)
	if err != nil {
		return nil, fmt.Errorf("cannot decode ledger %q: %w", path, err)
	}
	return l, nil
}

// DecodeGroup loads every journal of paths into a group named name.
func (a *app) DecodeGroup(name string, paths []string) (*folio.Group, error) {
	if len(paths) == 0 {
		paths = []string{a.LedgerFile}
	}
	g := folio.NewGroup(name)
	for _, path := range paths {
		l, err := a.DecodeLedger(path)
		if err != nil {
			return nil, err
		}
		if err := g.Add(l); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ledgerName is the default name of the ledger journaled in path.
func ledgerName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// openOrCreateLedger is like DecodeLedger but returns an empty ledger if the
// journal does not exist yet.
func (a *app) openOrCreateLedger(path string) (*folio.Ledger, error) {
	path = a.ledgerPath(path)
	l, err := a.DecodeLedger(path)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Warn().Str("path", path).Msg("ledger does not exist, creating an empty one")
		return folio.NewLedger(ledgerName(path), folio.DefaultOrigin, a.market), nil
	}
	return l, err
}

// appendTransaction appends a transaction to the journal of l, writing its
// header first if the journal is new.
func appendTransaction(filename string, l *folio.Ledger, tx folio.Transaction) error {
	_, err := os.Stat(filename)
	isNew := errors.Is(err, fs.ErrNotExist)

	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot open ledger %q: %w", filename, err)
	}
	defer f.Close()

	if isNew {
		if err := folio.EncodeLedger(f, folio.NewLedger(l.Name(), l.Origin(), nil)); err != nil {
			return fmt.Errorf("cannot write to ledger %q: %w", filename, err)
		}
	}
	if err := folio.EncodeTransaction(f, tx); err != nil {
		return fmt.Errorf("cannot write to ledger %q: %w", filename, err)
	}
	return nil
}

// writeLedger replaces the journal at filename with the full history of l.
func writeLedger(filename string, l *folio.Ledger) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".folio-*.jsonl")
	if err != nil {
		return fmt.Errorf("cannot write ledger %q: %w", filename, err)
	}
	defer os.Remove(tmp.Name())
	if err := folio.EncodeLedger(tmp, l); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write ledger %q: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write ledger %q: %w", filename, err)
	}
	return os.Rename(tmp.Name(), filename)
}

// valueOptions returns the valuation options in currency, or the default
// currency of the configuration.
func (a *app) valueOptions(currency string) (folio.ValueOptions, error) {
	if currency == "" {
		currency = a.DefaultCurrency
	}
	cur, err := folio.NewCurrency(currency)
	if err != nil {
		return folio.ValueOptions{}, err
	}
	point, err := folio.ParseDataPoint(a.DataPoint)
	if err != nil {
		return folio.ValueOptions{}, err
	}
	return folio.ValueOptions{DataPoint: point, Currency: cur}, nil
}

// printMarkdown renders md for the terminal, unless -plain is set.
func printMarkdown(md string) {
	if !*plain {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				md = out
			}
		}
	}
	fmt.Fprint(stdout, md)
}

// stringList is a flag that can be repeated.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// splitTags splits a comma separated list of tags.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// preload fetches concurrently the prices of every equity of the ledgers.
// Failures are only logged, valuations report them when they matter.
func (a *app) preload(ctx context.Context, opts folio.ValueOptions, ledgers ...*folio.Ledger) {
	var ids []string
	seen := make(map[string]bool)
	for _, l := range ledgers {
		for _, tx := range l.Transactions() {
			if inst, ok := tx.Position().Instrument(); ok && !seen[inst.FullIdentity()] {
				seen[inst.FullIdentity()] = true
				ids = append(ids, inst.FullIdentity())
			}
		}
	}
	if err := a.market.Preload(ctx, opts.DataPoint, ids...); err != nil {
		a.log.Warn().Err(err).Msg("cannot preload prices")
	}
}
