package calculation

import "math"

// ContributionPolicy yields the amount added to the balance in a 1-indexed period.
// Implementations must be safe for concurrent use.
type ContributionPolicy interface {
	ContributionFor(period int) (float64, error)
}

// FixedContribution adds the same amount every period.
type FixedContribution float64

func (f FixedContribution) ContributionFor(int) (float64, error) { return float64(f), nil }

// ContributionSchedule holds one amount per period; index 0 is period 1.
type ContributionSchedule []float64

func (s ContributionSchedule) ContributionFor(period int) (float64, error) {
	if period < 1 || period > len(s) {
		return 0, invalidf("contribution schedule defines periods 1..%d, period %d requested", len(s), period)
	}
	return s[period-1], nil
}

// ContributionFunc adapts a function to ContributionPolicy.
type ContributionFunc func(period int) (float64, error)

func (f ContributionFunc) ContributionFor(period int) (float64, error) { return f(period) }

// IncomeContribution saves a fixed share of take-home pay:
// salary(period) * TakeHomeRatio * SavingsRate.
type IncomeContribution struct {
	Salary        SalarySchedule
	TakeHomeRatio float64
	SavingsRate   float64
}

func (c IncomeContribution) ContributionFor(period int) (float64, error) {
	if c.Salary == nil {
		return 0, invalidf("income contribution has no salary schedule")
	}
	return c.Salary.AnnualSalary(period) * c.TakeHomeRatio * c.SavingsRate, nil
}

// EventReducedContribution subtracts the period's life-event cost from Base, floored at zero.
type EventReducedContribution struct {
	Base   ContributionPolicy
	Events *EventCalendar
}

func (c EventReducedContribution) ContributionFor(period int) (float64, error) {
	if c.Base == nil {
		return 0, invalidf("event-reduced contribution has no base policy")
	}
	base, err := c.Base.ContributionFor(period)
	if err != nil {
		return 0, err
	}
	return math.Max(0, base-c.Events.EventCost(period)), nil
}

// EventAdjustment selects how AdaptiveContribution reacts to a surplus squeezed by events.
type EventAdjustment int

const (
	// MinimumRate caps the savings rate at EventRate in event years and at BaseRate
	// otherwise, and never above what the surplus allows.
	MinimumRate EventAdjustment = iota
	// ZeroSurplus saves BaseRate of whatever surplus is left after living cost and events.
	ZeroSurplus
)

func (a EventAdjustment) String() string {
	switch a {
	case ZeroSurplus:
		return "zero_surplus"
	default:
		return "minimum_rate"
	}
}

// AdaptiveContribution derives savings from income after living cost and life events.
type AdaptiveContribution struct {
	Salary        SalarySchedule
	TakeHomeRatio float64
	BaseRate      float64
	EventRate     float64
	Living        *LivingCostSchedule
	Events        *EventCalendar
	Adjustment    EventAdjustment
}

// Breakdown exposes the intermediate figures for a period.
type Breakdown struct {
	TakeHome     float64
	LivingCost   float64
	EventCost    float64
	Surplus      float64
	SavingsRate  float64
	Contribution float64
}

func (c AdaptiveContribution) ContributionFor(period int) (float64, error) {
	b, err := c.Breakdown(period)
	if err != nil {
		return 0, err
	}
	return b.Contribution, nil
}

// Breakdown computes take-home pay, costs, surplus and the resulting contribution.
func (c AdaptiveContribution) Breakdown(period int) (Breakdown, error) {
	if c.Salary == nil {
		return Breakdown{}, invalidf("adaptive contribution has no salary schedule")
	}
	b := Breakdown{
		TakeHome:   c.Salary.AnnualSalary(period) * c.TakeHomeRatio,
		LivingCost: c.Living.AnnualCost(period),
		EventCost:  c.Events.EventCost(period),
	}
	b.Surplus = math.Max(0, b.TakeHome-b.LivingCost-b.EventCost)
	if b.TakeHome <= 0 {
		return b, nil
	}

	switch c.Adjustment {
	case ZeroSurplus:
		b.Contribution = b.Surplus * c.BaseRate
		b.SavingsRate = b.Contribution / b.TakeHome
	default:
		ceiling := c.BaseRate
		if b.EventCost > 0 {
			ceiling = c.EventRate
		}
		b.SavingsRate = math.Max(0, math.Min(ceiling, b.Surplus/b.TakeHome))
		b.Contribution = b.TakeHome * b.SavingsRate
	}
	return b, nil
}
