package series

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Returns computes the daily returns between consecutive non missing values.
func (s *Dense) Returns() []float64 {
	var returns []float64
	prev := 0.0
	for _, v := range s.values {
		if v == 0 {
			continue
		}
		if prev != 0 {
			returns = append(returns, v/prev-1)
		}
		prev = v
	}
	return returns
}

// Volatility is the standard deviation of the daily returns annualized over
// calendar days.
func (s *Dense) Volatility() float64 {
	r := s.Returns()
	if len(r) < 2 {
		return 0
	}
	return stat.StdDev(r, nil) * math.Sqrt(365)
}

// MeanReturn is the average daily return.
func (s *Dense) MeanReturn() float64 {
	r := s.Returns()
	if len(r) == 0 {
		return 0
	}
	return stat.Mean(r, nil)
}

// MaxDrawdown is the largest relative loss from a peak, as a positive fraction.
func (s *Dense) MaxDrawdown() float64 {
	peak, worst := 0.0, 0.0
	for _, v := range s.values {
		if v == 0 {
			continue
		}
		if v > peak {
			peak = v
			continue
		}
		if dd := (peak - v) / peak; dd > worst {
			worst = dd
		}
	}
	return worst
}
