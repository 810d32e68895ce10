package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/folio"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(v float64) string { return folio.M(v, folio.USD).String() }

// setup points the global flags to a fresh workspace and returns its
// directory.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	saved := []string{*configFile, *envFile, *ledgerFile, *marketFile, *defaultCurrency, *logLevel}
	savedPlain, savedStdout := *plain, stdout
	t.Cleanup(func() {
		*configFile, *envFile, *ledgerFile, *marketFile, *defaultCurrency, *logLevel = saved[0], saved[1], saved[2], saved[3], saved[4], saved[5]
		*plain, stdout = savedPlain, savedStdout
	})
	*configFile = ""
	*envFile = ""
	*ledgerFile = filepath.Join(dir, "main.jsonl")
	*marketFile = filepath.Join(dir, "market.db")
	*defaultCurrency = "USD"
	*logLevel = "disabled"
	*plain = true
	return dir
}

// run executes c with args, and returns its status and output.
func run(t *testing.T, c subcommands.Command, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	out := new(bytes.Buffer)
	stdout = out
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return c.Execute(context.Background(), f), out.String()
}

func mustRun(t *testing.T, c subcommands.Command, args ...string) string {
	t.Helper()
	status, out := run(t, c, args...)
	require.Equal(t, subcommands.ExitSuccess, status, "%s %v: %s", c.Name(), args, out)
	return out
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func buy() subcommands.Command      { return &transactionCmd{name: "buy", dir: folio.Buy} }
func sell() subcommands.Command     { return &transactionCmd{name: "sell", dir: folio.Sell} }
func add() subcommands.Command      { return &transactionCmd{name: "add", dir: folio.Buy, cash: true} }
func withdraw() subcommands.Command { return &transactionCmd{name: "withdraw", dir: folio.Sell, cash: true} }

// populate declares MSFT priced from 2022-09-01 to 2022-09-05 at 101 to 105,
// and records in the main ledger 1000 USD and 10 MSFT tagged broker.
func populate(t *testing.T, dir string) {
	t.Helper()
	mustRun(t, &declareCmd{}, "-code", "msft", "-venue", "NASDAQ", "-currency", "USD", "-name", "Microsoft", "-isin", "US5949181045")
	prices := writeFile(t, filepath.Join(dir, "msft.csv"), `date,close,adjusted_close
2022-09-01,201,101
2022-09-02,202,102
2022-09-03,203,103
2022-09-04,204,104
2022-09-05,205,105
`)
	assert.Contains(t, mustRun(t, &importCmd{}, "-prices", "MSFT", prices), "Imported 10 values")
	rates := writeFile(t, filepath.Join(dir, "fx.csv"), "date,EUR\n2022-09-01,0.5\n")
	assert.Contains(t, mustRun(t, &importCmd{}, "-fx", rates), "Imported 1 values")

	mustRun(t, &initCmd{}, "-origin", "2022-09-01")
	mustRun(t, add(), "-d", "2022-09-01", "-c", "USD", "-q", "1000")
	mustRun(t, buy(), "-d", "2022-09-02", "-s", "MSFT", "-q", "10", "-t", "broker")
}

func lines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestTransactionCommands(t *testing.T) {
	dir := setup(t)
	populate(t, dir)

	journal := lines(t, *ledgerFile)
	require.Len(t, journal, 3)
	assert.JSONEq(t, `{"command":"ledger","name":"main","origin":"2022-09-01"}`, journal[0])

	t.Run("rejected", func(t *testing.T) {
		for _, tc := range []struct {
			cmd  subcommands.Command
			args []string
		}{
			{sell(), []string{"-d", "2022-09-03", "-s", "MSFT", "-q", "11", "-t", "broker"}},
			// the untagged line was never held.
			{sell(), []string{"-d", "2022-09-03", "-s", "MSFT", "-q", "1"}},
			// more cash than held.
			{withdraw(), []string{"-d", "2022-09-01", "-c", "USD", "-q", "1000.01"}},
			{buy(), []string{"-d", "2022-08-31", "-s", "MSFT", "-q", "1"}},
			{buy(), []string{"-s", "AAPL", "-q", "1"}},
			{add(), []string{"-c", "NOPE", "-q", "1"}},
		} {
			status, _ := run(t, tc.cmd, tc.args...)
			assert.Equal(t, subcommands.ExitFailure, status, "%s %v", tc.cmd.Name(), tc.args)
		}
		assert.Equal(t, journal, lines(t, *ledgerFile), "a rejected transaction must not be journaled")
	})

	t.Run("usage", func(t *testing.T) {
		status, _ := run(t, buy(), "-s", "MSFT")
		assert.Equal(t, subcommands.ExitUsageError, status)
		status, _ = run(t, buy(), "-s", "MSFT", "-q", "ten")
		assert.Equal(t, subcommands.ExitUsageError, status)
	})

	t.Run("earlier sell checked against later ones", func(t *testing.T) {
		mustRun(t, withdraw(), "-d", "2022-09-04", "-c", "USD", "-q", "600")
		// 500 out on the 2nd would leave the withdrawal of the 4th uncovered.
		status, _ := run(t, withdraw(), "-d", "2022-09-02", "-c", "USD", "-q", "500")
		assert.Equal(t, subcommands.ExitFailure, status)
		mustRun(t, withdraw(), "-d", "2022-09-02", "-c", "USD", "-q", "400")
		assert.Len(t, lines(t, *ledgerFile), 5)
	})
}

func TestNewJournal(t *testing.T) {
	dir := setup(t)
	mustRun(t, add(), "-d", "2022-09-01", "-c", "eur", "-q", "12.5", "-t", "savings")

	journal := lines(t, *ledgerFile)
	require.Len(t, journal, 2)
	assert.JSONEq(t, `{"command":"ledger","name":"main","origin":"2000-01-01"}`, journal[0])
	assert.Contains(t, journal[1], `"command":"buy"`)

	status, _ := run(t, &initCmd{})
	assert.Equal(t, subcommands.ExitFailure, status, "init must not overwrite a ledger")

	mustRun(t, &initCmd{}, "-l", filepath.Join(dir, "other.jsonl"), "-name", "Other", "-origin", "2020-01-01")
	assert.JSONEq(t, `{"command":"ledger","name":"Other","origin":"2020-01-01"}`, lines(t, filepath.Join(dir, "other.jsonl"))[0])
}

func TestReportCommands(t *testing.T) {
	dir := setup(t)
	populate(t, dir)

	t.Run("positions", func(t *testing.T) {
		out := mustRun(t, &positionsCmd{}, "-d", "2022-09-05")
		assert.Contains(t, out, "Total value: **"+usd(2050)+"**")
		assert.Contains(t, out, "| MSFT.US | Microsoft | broker | 10 | "+usd(1050)+" |")

		out = mustRun(t, &positionsCmd{}, "-d", "2022-09-05", "-c", "EUR")
		assert.Contains(t, out, "Total value: **"+folio.M(1025, folio.MustCurrency("EUR")).String()+"**")

		out = mustRun(t, &positionsCmd{}, "-d", "2022-09-05", "-t", "broker")
		assert.Contains(t, out, "Total value: **"+usd(1050)+"**")
		assert.NotContains(t, out, "## Cash")
	})

	t.Run("value", func(t *testing.T) {
		other := filepath.Join(dir, "other.jsonl")
		mustRun(t, &initCmd{}, "-l", other, "-origin", "2022-09-03")
		mustRun(t, add(), "-l", other, "-d", "2022-09-03", "-c", "EUR", "-q", "50")

		out := mustRun(t, &valueCmd{}, "-l", *ledgerFile, "-l", other, "-d", "2022-09-02", "-name", "family")
		assert.Contains(t, out, "Valuation of family on 2022-09-02")
		assert.Contains(t, out, "Total value: **"+usd(2020)+"**")
		assert.Contains(t, out, "| other | "+usd(0)+" | 0.00% |")

		out = mustRun(t, &valueCmd{}, "-l", *ledgerFile, "-l", other, "-d", "2022-09-05")
		assert.Contains(t, out, "Total value: **"+usd(2150)+"**")

		out = mustRun(t, &valueCmd{}, "-l", *ledgerFile, "-l", other, "-window")
		assert.Equal(t, "2022-09-03..2022-09-05\n", out)

		status, _ := run(t, &valueCmd{}, "-l", *ledgerFile, "-l", *ledgerFile)
		assert.Equal(t, subcommands.ExitFailure, status, "duplicate ledger names")
	})

	t.Run("history", func(t *testing.T) {
		out := mustRun(t, &historyCmd{}, "-p", "daily", "-no-stats")
		assert.Contains(t, out, "From 2022-09-01 to 2022-09-05, daily.")
		assert.Contains(t, out, "| 2022-09-02 | "+usd(2020)+" |")
		assert.Contains(t, out, "| 2022-09-05 | "+usd(2050)+" |")
		assert.NotContains(t, out, "Statistics")

		out = mustRun(t, &historyCmd{}, "-p", "daily", "-index", "-base", "2022-09-02", "-level", "1000")
		assert.Contains(t, out, "| 2022-09-02 | 1000.00 |")
		assert.Contains(t, out, "| 2022-09-05 | 1014.85 |")
		assert.Contains(t, out, "## Statistics")

		status, _ := run(t, &historyCmd{}, "-p", "hourly")
		assert.Equal(t, subcommands.ExitUsageError, status)
	})

	t.Run("pnl", func(t *testing.T) {
		out := mustRun(t, &pnlCmd{}, "-from", "2022-09-01", "-to", "2022-09-05")
		assert.Contains(t, out, "From 2022-09-01 to 2022-09-05: **+"+usd(1050)+"** (+105.00%)")
		assert.Contains(t, out, "| MSFT.US[broker] | "+usd(0)+" | "+usd(1050)+" | +"+usd(1050)+" | 0.00% |")
	})

	t.Run("tx", func(t *testing.T) {
		out := mustRun(t, &txCmd{}, "-tail", "1")
		assert.Contains(t, out, "| 2022-09-02 | buy | MSFT.US[broker] | 10 |")
		assert.NotContains(t, out, "| USD |")
	})

	t.Run("state", func(t *testing.T) {
		out := mustRun(t, &stateCmd{})
		var s folio.LedgerState
		require.NoError(t, json.Unmarshal([]byte(out), &s))
		assert.Equal(t, "main", s.Name)
		assert.Equal(t, "2022-09-02", s.AsOf.String())
		assert.Len(t, s.Positions, 2)

		out = mustRun(t, &stateCmd{}, "-q", "$.positions[*].amount")
		assert.JSONEq(t, `[10, 1000]`, out)

		out = mustRun(t, &stateCmd{}, "-d", "2022-09-01", "-q", "$.positions[*].identifier.identity.code")
		assert.JSONEq(t, `["USD"]`, out)

		status, _ := run(t, &stateCmd{}, "-q", "$.positions[")
		assert.Equal(t, subcommands.ExitFailure, status)
	})
}

func TestLedgerCommands(t *testing.T) {
	dir := setup(t)
	populate(t, dir)

	t.Run("extract", func(t *testing.T) {
		sub := filepath.Join(dir, "broker.jsonl")
		mustRun(t, &extractCmd{}, "-o", sub, "-d", "2022-09-03", "-t", "broker")
		journal := lines(t, sub)
		require.Len(t, journal, 2)
		assert.JSONEq(t, `{"command":"ledger","name":"broker","origin":"2022-09-03"}`, journal[0])

		out := mustRun(t, &positionsCmd{}, "-l", sub, "-d", "2022-09-04")
		assert.Contains(t, out, "Total value: **"+usd(1040)+"**")

		status, _ := run(t, &extractCmd{}, "-o", sub, "-d", "2022-09-03")
		assert.Equal(t, subcommands.ExitFailure, status, "must not overwrite without -f")
		mustRun(t, &extractCmd{}, "-o", sub, "-d", "2022-09-03", "-f")
		assert.Len(t, lines(t, sub), 3)
	})

	t.Run("fmt", func(t *testing.T) {
		mustRun(t, add(), "-d", "2022-09-01", "-c", "EUR", "-q", "5")
		before := lines(t, *ledgerFile)
		require.Len(t, before, 4)
		assert.Contains(t, before[3], `"2022-09-01"`)

		mustRun(t, &fmtCmd{})
		after := lines(t, *ledgerFile)
		require.Len(t, after, 4)
		assert.Equal(t, before[0], after[0])
		assert.Contains(t, after[3], `"2022-09-02"`, "transactions sorted by date")
	})

	t.Run("restore", func(t *testing.T) {
		state := writeFile(t, filepath.Join(dir, "state.json"), mustRun(t, &stateCmd{}))
		restored := filepath.Join(dir, "restored.jsonl")
		mustRun(t, &restoreCmd{}, "-i", state, "-o", restored)

		want := mustRun(t, &positionsCmd{}, "-d", "2022-09-05")
		got := mustRun(t, &positionsCmd{}, "-l", restored, "-d", "2022-09-05")
		assert.Equal(t, want, got)
	})
}

func TestMarketCommands(t *testing.T) {
	dir := setup(t)
	populate(t, dir)

	out := mustRun(t, &searchCmd{}, "micro")
	assert.Contains(t, out, "Found 1 results")
	assert.Contains(t, out, "MSFT.US")

	out = mustRun(t, &searchCmd{}, "US5949")
	assert.Contains(t, out, "Microsoft")

	out = mustRun(t, &searchCmd{}, "nothing")
	assert.Contains(t, out, "No results found")

	status, _ := run(t, &declareCmd{}, "-code", "X")
	assert.Equal(t, subcommands.ExitUsageError, status)

	status, _ = run(t, &importCmd{}, "-prices", "MSFT")
	assert.Equal(t, subcommands.ExitUsageError, status)

	bad := writeFile(t, filepath.Join(dir, "bad.csv"), "day,close\n2022-09-01,1\n")
	status, _ = run(t, &importCmd{}, "-prices", "MSFT", bad)
	assert.Equal(t, subcommands.ExitFailure, status)
}

func TestTopicCommand(t *testing.T) {
	setup(t)
	out := mustRun(t, &topicCmd{})
	assert.Contains(t, out, "* dates:")

	out = mustRun(t, &topicCmd{}, "dates", "ledger")
	assert.Contains(t, out, "# Dates")
	assert.Contains(t, out, "# Ledgers")

	status, _ := run(t, &topicCmd{}, "nope")
	assert.Equal(t, subcommands.ExitUsageError, status)
}
