package market

import (
	"fmt"
	"strings"
	"sync"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/series"
)

// Memory is an in-memory folio.Market, safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	instruments map[string]folio.Instrument
	prices      map[string]map[folio.DataPoint]*date.History[float64]
	fx          map[string]*date.History[float64]
}

func NewMemory() *Memory {
	return &Memory{
		instruments: make(map[string]folio.Instrument),
		prices:      make(map[string]map[folio.DataPoint]*date.History[float64]),
		fx:          make(map[string]*date.History[float64]),
	}
}

// Declare adds or replaces the metadata of an instrument.
func (m *Memory) Declare(inst folio.Instrument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instruments[inst.FullIdentity()] = inst
}

// SetPrice records a price of an instrument on a day.
func (m *Memory) SetPrice(id string, point folio.DataPoint, on date.Date, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id = fullID(id)
	points, ok := m.prices[id]
	if !ok {
		points = make(map[folio.DataPoint]*date.History[float64])
		m.prices[id] = points
	}
	h, ok := points[point]
	if !ok {
		h = new(date.History[float64])
		points[point] = h
	}
	h.Append(on, price)
}

// SetFX records the rate of currency, in units per USD, on a day.
func (m *Memory) SetFX(currency string, on date.Date, rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	currency = strings.ToUpper(currency)
	h, ok := m.fx[currency]
	if !ok {
		h = new(date.History[float64])
		m.fx[currency] = h
	}
	h.Append(on, rate)
}

func (m *Memory) Instrument(code string) (folio.Instrument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instruments[fullID(code)]
	if !ok {
		return folio.Instrument{}, fmt.Errorf("unknown instrument %q", code)
	}
	return inst, nil
}

// Instruments returns every declared instrument.
func (m *Memory) Instruments() []folio.Instrument {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]folio.Instrument, 0, len(m.instruments))
	for _, inst := range m.instruments {
		list = append(list, inst)
	}
	return list
}

func (m *Memory) Prices(id string, point folio.DataPoint) (*series.Dense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.prices[fullID(id)][point]
	if !ok || h.Len() == 0 {
		return nil, fmt.Errorf("%w: %s %s", folio.ErrPriceSeriesUnavailable, id, point)
	}
	return dense(h)
}

func (m *Memory) FX(currency string, on date.Date) (float64, error) {
	currency = strings.ToUpper(currency)
	if currency == folio.USD.Code() {
		return 1, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.fx[currency]
	if !ok {
		return 0, fmt.Errorf("%w: %s", folio.ErrFxUnavailable, currency)
	}
	rate, found := h.ValueAsOf(on)
	return checkRate(currency, on, rate, found)
}
