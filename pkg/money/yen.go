package money

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	twelve      = decimal.NewFromInt(12)
	tenThousand = decimal.NewFromInt(10000)
)

// Yen represents a yen amount with decimal precision. Display rounds to whole yen.
type Yen struct {
	decimal.Decimal
}

// NewYen creates a Yen amount from a float64
func NewYen(value float64) Yen {
	return Yen{decimal.NewFromFloat(value)}
}

// NewYenFromDecimal wraps a decimal.Decimal
func NewYenFromDecimal(d decimal.Decimal) Yen {
	return Yen{d}
}

// NewYenFromString parses a decimal string
func NewYenFromString(value string) (Yen, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Yen{}, err
	}
	return Yen{d}, nil
}

// FromManYen converts an amount in units of 10,000 yen (man-yen).
func FromManYen(man float64) Yen {
	return Yen{decimal.NewFromFloat(man).Mul(tenThousand)}
}

// Round rounds to whole yen (half away from zero).
func (y Yen) Round() Yen {
	return Yen{y.Decimal.Round(0)}
}

// Annual converts a monthly amount to annual
func (y Yen) Annual() Yen {
	return Yen{y.Decimal.Mul(twelve)}
}

// Monthly converts an annual amount to monthly
func (y Yen) Monthly() Yen {
	return Yen{y.Decimal.Div(twelve)}
}

// ApplyTaxRate returns the amount left after tax at rate.
func (y Yen) ApplyTaxRate(rate decimal.Decimal) Yen {
	return Yen{y.Decimal.Sub(y.Decimal.Mul(rate))}
}

func (y Yen) Add(other Yen) Yen { return Yen{y.Decimal.Add(other.Decimal)} }
func (y Yen) Sub(other Yen) Yen { return Yen{y.Decimal.Sub(other.Decimal)} }

// Max returns the larger amount
func Max(a, b Yen) Yen {
	if a.Decimal.GreaterThan(b.Decimal) {
		return a
	}
	return b
}

// Zero returns a zero amount
func Zero() Yen {
	return Yen{decimal.Zero}
}

// String returns whole yen without grouping, e.g. "1234568".
func (y Yen) String() string {
	return y.Decimal.StringFixed(0)
}

// Format renders whole yen with digit grouping, e.g. "¥1,234,568".
func (y Yen) Format() string {
	return "¥" + humanize.Comma(y.Round().IntPart())
}
