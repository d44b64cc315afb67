package calculation

import (
	"errors"
	"math"
)

// RatePolicy yields the growth rate for a 1-indexed period.
// Implementations must be safe for concurrent use.
type RatePolicy interface {
	RateFor(period int) (float64, error)
}

// ConstantRate applies the same rate every period.
type ConstantRate float64

func (c ConstantRate) RateFor(int) (float64, error) { return float64(c), nil }

// RegimeSwitchRate applies Before for periods 1..Threshold and After from then on,
// e.g. a lost decade followed by recovery.
type RegimeSwitchRate struct {
	Before    float64
	After     float64
	Threshold int
}

func (r RegimeSwitchRate) RateFor(period int) (float64, error) {
	if period <= r.Threshold {
		return r.Before, nil
	}
	return r.After, nil
}

// RateTable holds one rate per period. Periods outside the table are undefined.
type RateTable struct {
	rates []float64
}

// NewRateTable copies rates; rates[0] is period 1.
func NewRateTable(rates []float64) (*RateTable, error) {
	if len(rates) == 0 {
		return nil, invalidf("rate table is empty")
	}
	cp := make([]float64, len(rates))
	copy(cp, rates)
	for i, r := range cp {
		if err := checkRate(r); err != nil {
			return nil, invalidf("rate table period %d: %v", i+1, err)
		}
	}
	return &RateTable{rates: cp}, nil
}

func (t *RateTable) RateFor(period int) (float64, error) {
	if period < 1 || period > len(t.rates) {
		return 0, invalidf("rate table defines periods 1..%d, period %d requested", len(t.rates), period)
	}
	return t.rates[period-1], nil
}

// Len reports how many periods the table covers.
func (t *RateTable) Len() int { return len(t.rates) }

// RateFunc adapts a function to RatePolicy.
type RateFunc func(period int) (float64, error)

func (f RateFunc) RateFor(period int) (float64, error) { return f(period) }

var errRateRange = errors.New("rate must be finite and >= -1")

func checkRate(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < -1 {
		return errRateRange
	}
	return nil
}
