package calculation

import (
	"math"
	"sort"
)

// SalaryPoint is one control point of a salary curve.
type SalaryPoint struct {
	TenureYear   int
	AnnualSalary float64
}

// SalarySchedule yields the gross annual salary for a tenure year.
type SalarySchedule interface {
	AnnualSalary(tenureYear int) float64
}

// SalaryCurve is an immutable piecewise-linear salary curve.
type SalaryCurve struct {
	points []SalaryPoint
}

// NewSalaryCurve validates and copies points. At least two points are required,
// tenure years must start at 1 or later and be strictly ascending.
func NewSalaryCurve(points []SalaryPoint) (*SalaryCurve, error) {
	if len(points) < 2 {
		return nil, invalidf("salary curve needs at least 2 points, got %d", len(points))
	}
	cp := make([]SalaryPoint, len(points))
	copy(cp, points)
	for i, p := range cp {
		if p.TenureYear < 1 {
			return nil, invalidf("salary curve point %d: tenure year %d must be >= 1", i, p.TenureYear)
		}
		if math.IsNaN(p.AnnualSalary) || math.IsInf(p.AnnualSalary, 0) || p.AnnualSalary < 0 {
			return nil, invalidf("salary curve point %d: salary %v must be finite and non-negative", i, p.AnnualSalary)
		}
		if i > 0 && p.TenureYear <= cp[i-1].TenureYear {
			return nil, invalidf("salary curve point %d: tenure year %d not ascending after %d", i, p.TenureYear, cp[i-1].TenureYear)
		}
	}
	return &SalaryCurve{points: cp}, nil
}

// Interpolate returns the salary for tenureYear. Values between control points
// are linear; values outside the curve clamp to the nearest endpoint.
func (c *SalaryCurve) Interpolate(tenureYear int) float64 {
	first, last := c.points[0], c.points[len(c.points)-1]
	if tenureYear <= first.TenureYear {
		return first.AnnualSalary
	}
	if tenureYear >= last.TenureYear {
		return last.AnnualSalary
	}
	// first index whose tenure is greater than tenureYear
	i := sort.Search(len(c.points), func(i int) bool { return c.points[i].TenureYear > tenureYear })
	lo, hi := c.points[i-1], c.points[i]
	if lo.TenureYear == tenureYear {
		return lo.AnnualSalary
	}
	frac := float64(tenureYear-lo.TenureYear) / float64(hi.TenureYear-lo.TenureYear)
	return lo.AnnualSalary + (hi.AnnualSalary-lo.AnnualSalary)*frac
}

// AnnualSalary implements SalarySchedule.
func (c *SalaryCurve) AnnualSalary(tenureYear int) float64 { return c.Interpolate(tenureYear) }

// SalaryAt returns the salary of the control point at tenureYear, if any.
func (c *SalaryCurve) SalaryAt(tenureYear int) (float64, bool) {
	i := sort.Search(len(c.points), func(i int) bool { return c.points[i].TenureYear >= tenureYear })
	if i < len(c.points) && c.points[i].TenureYear == tenureYear {
		return c.points[i].AnnualSalary, true
	}
	return 0, false
}

// Points returns a copy of the control points.
func (c *SalaryCurve) Points() []SalaryPoint {
	cp := make([]SalaryPoint, len(c.points))
	copy(cp, c.points)
	return cp
}

// GrowthSalary grows a starting salary at a fixed annual rate: Initial*(1+GrowthRate)^(t-1).
type GrowthSalary struct {
	Initial    float64
	GrowthRate float64
}

func (g GrowthSalary) AnnualSalary(tenureYear int) float64 {
	if tenureYear < 1 {
		tenureYear = 1
	}
	return g.Initial * math.Pow(1+g.GrowthRate, float64(tenureYear-1))
}
