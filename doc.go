// Package folio tracks the holdings of one or more accounts over time and
// values them in any currency, on any date.
//
// The core functionalities include:
//   - Identity Model: currencies, instruments and tagged position identifiers.
//     A tagged and an untagged position of the same instrument are distinct
//     lines that are never netted together.
//   - Ledger: an append-only log of dated buy and sell transactions with
//     lazily recomputed position snapshots. Transactions may be inserted out of
//     chronological order, snapshots always reflect exactly the transactions
//     dated on or before the query date.
//   - Valuation Engine: cash and equity valuators, portfolio, group and
//     chained-return index valuators producing calendar-day series.
//   - Data Persistence: snapshot state and a JSONL journal of the full dated
//     history.
//
// Market data (prices, FX rates and instrument metadata) is provided by the
// caller through the Market interface; see the market package for
// implementations.
//
// A Ledger is not safe for concurrent use: callers sharing one must hold a
// lock across every insert or query.
package folio
