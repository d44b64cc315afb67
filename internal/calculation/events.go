package calculation

import (
	"math"
	"sort"
)

// LifeEvent is a one-time cost in a tenure year.
type LifeEvent struct {
	TenureYear int
	Label      string
	Cost       float64
}

// RecurringCost raises annual living cost from StartYear onward.
type RecurringCost struct {
	StartYear  int
	Label      string
	AnnualCost float64
}

// EventCalendar indexes life events by tenure year. Several events in the same
// year are kept and their costs summed. A nil calendar has no events.
type EventCalendar struct {
	byYear map[int][]LifeEvent
}

// NewEventCalendar validates events and builds the calendar.
func NewEventCalendar(events []LifeEvent) (*EventCalendar, error) {
	c := &EventCalendar{byYear: make(map[int][]LifeEvent, len(events))}
	for i, e := range events {
		if e.TenureYear < 1 {
			return nil, invalidf("life event %d (%s): tenure year %d must be >= 1", i, e.Label, e.TenureYear)
		}
		if !finiteNonNegative(e.Cost) {
			return nil, invalidf("life event %d (%s): cost must be finite and non-negative", i, e.Label)
		}
		c.byYear[e.TenureYear] = append(c.byYear[e.TenureYear], e)
	}
	return c, nil
}

// EventCost is the summed cost of events in tenureYear, zero when none.
func (c *EventCalendar) EventCost(tenureYear int) float64 {
	if c == nil {
		return 0
	}
	var total float64
	for _, e := range c.byYear[tenureYear] {
		total += e.Cost
	}
	return total
}

// EventsIn returns the events of tenureYear in declaration order.
func (c *EventCalendar) EventsIn(tenureYear int) []LifeEvent {
	if c == nil {
		return nil
	}
	return append([]LifeEvent(nil), c.byYear[tenureYear]...)
}

// Years returns the tenure years that carry events, ascending.
func (c *EventCalendar) Years() []int {
	if c == nil {
		return nil
	}
	years := make([]int, 0, len(c.byYear))
	for y := range c.byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// CumulativeCost sums every event up to and including tenureYear.
func (c *EventCalendar) CumulativeCost(tenureYear int) float64 {
	var total float64
	for _, y := range c.Years() {
		if y > tenureYear {
			break
		}
		total += c.EventCost(y)
	}
	return total
}

// LivingCostBand sets the monthly living cost for tenure years up to UpToTenure.
type LivingCostBand struct {
	UpToTenure  int
	MonthlyCost float64
}

// LivingCostSchedule combines banded monthly living costs with recurring costs.
// The last band is open-ended. A nil schedule costs nothing.
type LivingCostSchedule struct {
	bands     []LivingCostBand
	recurring []RecurringCost
}

// NewLivingCostSchedule validates bands (ascending, non-negative) and recurring costs.
func NewLivingCostSchedule(bands []LivingCostBand, recurring []RecurringCost) (*LivingCostSchedule, error) {
	s := &LivingCostSchedule{
		bands:     append([]LivingCostBand(nil), bands...),
		recurring: append([]RecurringCost(nil), recurring...),
	}
	for i, b := range s.bands {
		if b.UpToTenure < 1 {
			return nil, invalidf("living cost band %d: up_to_tenure must be >= 1", i)
		}
		if i > 0 && b.UpToTenure <= s.bands[i-1].UpToTenure {
			return nil, invalidf("living cost band %d: up_to_tenure not ascending", i)
		}
		if !finiteNonNegative(b.MonthlyCost) {
			return nil, invalidf("living cost band %d: monthly cost must be finite and non-negative", i)
		}
	}
	for i, r := range s.recurring {
		if r.StartYear < 1 {
			return nil, invalidf("recurring cost %d (%s): start year must be >= 1", i, r.Label)
		}
		if !finiteNonNegative(r.AnnualCost) {
			return nil, invalidf("recurring cost %d (%s): annual cost must be finite and non-negative", i, r.Label)
		}
	}
	return s, nil
}

// BaseAnnualCost is the banded living cost for tenureYear, without recurring costs.
func (s *LivingCostSchedule) BaseAnnualCost(tenureYear int) float64 {
	if s == nil || len(s.bands) == 0 {
		return 0
	}
	for _, b := range s.bands {
		if tenureYear <= b.UpToTenure {
			return b.MonthlyCost * 12
		}
	}
	return s.bands[len(s.bands)-1].MonthlyCost * 12
}

// RecurringCost sums every recurring cost whose start year has been reached.
func (s *LivingCostSchedule) RecurringCost(tenureYear int) float64 {
	if s == nil {
		return 0
	}
	var total float64
	for _, r := range s.recurring {
		if tenureYear >= r.StartYear {
			total += r.AnnualCost
		}
	}
	return total
}

// AnnualCost is the full living cost for tenureYear.
func (s *LivingCostSchedule) AnnualCost(tenureYear int) float64 {
	return s.BaseAnnualCost(tenureYear) + s.RecurringCost(tenureYear)
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
