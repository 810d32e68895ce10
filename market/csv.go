package market

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// readCSV reads a CSV with a header row whose first column is "date". It
// calls row for every non empty cell of every other column.
func readCSV(r io.Reader, row func(column string, day date.Date, v float64) error) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("cannot read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) < 2 || !strings.EqualFold(header[0], "date") {
		return fmt.Errorf("invalid csv header %q, want date as first column", header)
	}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		day, err := date.Parse(record[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		for i, cell := range record[1:] {
			if cell = strings.TrimSpace(cell); cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return fmt.Errorf("line %d, column %q: %w", line, header[i+1], err)
			}
			if err := row(header[i+1], day, v); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
		}
	}
}

// ImportPrices imports the daily prices of an instrument from a CSV like
//
//	date,open,high,low,close,adjusted_close
//	2022-09-01,10.5,11,10.2,10.8,10.8
//
// Columns are data point names, any subset of them is accepted.
func ImportPrices(ctx context.Context, s *Store, id string, r io.Reader) (int, error) {
	var points []PricePoint
	err := readCSV(r, func(column string, day date.Date, v float64) error {
		p, err := folio.ParseDataPoint(column)
		if err != nil {
			return err
		}
		points = append(points, PricePoint{ID: id, Point: p, Day: day, Value: v})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(points), s.SetPrices(ctx, points...)
}

// ImportRates imports daily FX rates from a CSV like
//
//	date,CHF,EUR
//	2022-09-01,0.9889,1.0012
//
// with one column per currency, in units of currency per USD.
func ImportRates(ctx context.Context, s *Store, r io.Reader) (int, error) {
	var rates []Rate
	err := readCSV(r, func(column string, day date.Date, v float64) error {
		c, err := folio.NewCurrency(column)
		if err != nil {
			return err
		}
		rates = append(rates, Rate{Currency: c.Code(), Day: day, Rate: v})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rates), s.SetRates(ctx, rates...)
}
