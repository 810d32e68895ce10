package market

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/series"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS instruments (
	id       TEXT PRIMARY KEY,
	code     TEXT NOT NULL,
	venue    TEXT NOT NULL,
	type     TEXT NOT NULL DEFAULT '',
	isin     TEXT NOT NULL DEFAULT '',
	name     TEXT NOT NULL DEFAULT '',
	country  TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS prices (
	id    TEXT NOT NULL,
	point TEXT NOT NULL,
	day   TEXT NOT NULL,
	value REAL NOT NULL,
	PRIMARY KEY (id, point, day)
);
CREATE TABLE IF NOT EXISTS fx (
	currency TEXT NOT NULL,
	day      TEXT NOT NULL,
	rate     REAL NOT NULL,
	PRIMARY KEY (currency, day)
);
`

// Store is a folio.Market persisted in a SQLite database.
type Store struct {
	conn *sql.DB
	path string
	log  zerolog.Logger
}

// Open opens, and creates if needed, the database at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open market database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create market schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("market database opened")
	return &Store{conn: conn, path: path, log: log}, nil
}

// Close closes the database connection
func (s *Store) Close() error { return s.conn.Close() }

// Declare adds or replaces the metadata of an instrument.
func (s *Store) Declare(ctx context.Context, inst folio.Instrument) error {
	_, err := s.conn.ExecContext(ctx, `INSERT OR REPLACE INTO instruments
		(id, code, venue, type, isin, name, country, currency) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inst.FullIdentity(), inst.Code, folio.NormalizeVenue(inst.Venue), inst.Type, inst.ISIN,
		inst.Name, inst.Country, inst.Currency.Code())
	if err != nil {
		return fmt.Errorf("cannot declare %s: %w", inst, err)
	}
	return nil
}

// PricePoint is a single daily price.
type PricePoint struct {
	ID    string
	Point folio.DataPoint
	Day   date.Date
	Value float64
}

// Rate is a single daily FX rate, in units of currency per USD.
type Rate struct {
	Currency string
	Day      date.Date
	Rate     float64
}

// SetPrices records prices in a single transaction.
func (s *Store) SetPrices(ctx context.Context, points ...PricePoint) error {
	return s.batch(ctx, `INSERT OR REPLACE INTO prices (id, point, day, value) VALUES (?, ?, ?, ?)`, len(points),
		func(i int) []any {
			p := points[i]
			return []any{fullID(p.ID), string(p.Point), p.Day.String(), p.Value}
		})
}

// SetRates records FX rates in a single transaction.
func (s *Store) SetRates(ctx context.Context, rates ...Rate) error {
	return s.batch(ctx, `INSERT OR REPLACE INTO fx (currency, day, rate) VALUES (?, ?, ?)`, len(rates),
		func(i int) []any {
			r := rates[i]
			return []any{strings.ToUpper(r.Currency), r.Day.String(), r.Rate}
		})
}

func (s *Store) batch(ctx context.Context, query string, n int, args func(i int) []any) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()
	for i := range n {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.log.Debug().Int("rows", n).Msg("market data stored")
	return nil
}

func scanInstrument(row interface{ Scan(...any) error }) (folio.Instrument, error) {
	var inst folio.Instrument
	var currency string
	if err := row.Scan(&inst.Code, &inst.Venue, &inst.Type, &inst.ISIN, &inst.Name, &inst.Country, &currency); err != nil {
		return inst, err
	}
	c, err := folio.NewCurrency(currency)
	if err != nil {
		return inst, err
	}
	inst.Currency = c
	return inst, nil
}

const instrumentColumns = `code, venue, type, isin, name, country, currency`

func (s *Store) Instrument(code string) (folio.Instrument, error) {
	row := s.conn.QueryRow(`SELECT `+instrumentColumns+` FROM instruments WHERE id = ?`, fullID(code))
	inst, err := scanInstrument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return inst, fmt.Errorf("unknown instrument %q", code)
	}
	if err != nil {
		return inst, fmt.Errorf("cannot read instrument %q: %w", code, err)
	}
	return inst, nil
}

// Search returns the instruments whose code, name or ISIN contains query,
// case insensitively.
func (s *Store) Search(ctx context.Context, query string) ([]folio.Instrument, error) {
	like := "%" + strings.ToUpper(strings.TrimSpace(query)) + "%"
	rows, err := s.conn.QueryContext(ctx, `SELECT `+instrumentColumns+` FROM instruments
		WHERE upper(code) LIKE ? OR upper(name) LIKE ? OR upper(isin) LIKE ? ORDER BY id`, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("cannot search instruments: %w", err)
	}
	defer rows.Close()
	var list []folio.Instrument
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("cannot read instrument: %w", err)
		}
		list = append(list, inst)
	}
	return list, rows.Err()
}

func (s *Store) Prices(id string, point folio.DataPoint) (*series.Dense, error) {
	rows, err := s.conn.Query(`SELECT day, value FROM prices WHERE id = ? AND point = ? ORDER BY day`, fullID(id), string(point))
	if err != nil {
		return nil, fmt.Errorf("cannot read prices of %s: %w", id, err)
	}
	defer rows.Close()
	h := new(date.History[float64])
	for rows.Next() {
		var day string
		var v float64
		if err := rows.Scan(&day, &v); err != nil {
			return nil, fmt.Errorf("cannot read prices of %s: %w", id, err)
		}
		d, err := date.Parse(day)
		if err != nil {
			return nil, err
		}
		h.Append(d, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read prices of %s: %w", id, err)
	}
	if h.Len() == 0 {
		return nil, fmt.Errorf("%w: %s %s", folio.ErrPriceSeriesUnavailable, id, point)
	}
	return dense(h)
}

func (s *Store) FX(currency string, on date.Date) (float64, error) {
	currency = strings.ToUpper(currency)
	if currency == folio.USD.Code() {
		return 1, nil
	}
	var rate float64
	err := s.conn.QueryRow(`SELECT rate FROM fx WHERE currency = ? AND day <= ? ORDER BY day DESC LIMIT 1`,
		currency, on.String()).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		var n int
		if err := s.conn.QueryRow(`SELECT count(*) FROM fx WHERE currency = ?`, currency).Scan(&n); err == nil && n == 0 {
			return 0, fmt.Errorf("%w: %s", folio.ErrFxUnavailable, currency)
		}
		return checkRate(currency, on, 0, false)
	}
	if err != nil {
		return 0, fmt.Errorf("cannot read %s rate: %w", currency, err)
	}
	return rate, nil
}
