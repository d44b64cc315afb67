package scenario

import (
	"fmt"

	"github.com/rpgo/asset-projector/internal/calculation"
	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/shopspring/decimal"
)

const defaultTakeHomeRatio = 0.8

// Plan is a scenario translated into calculation policies.
type Plan struct {
	Name          string
	Periods       int
	Initial       float64
	Compounding   string
	Rate          calculation.RatePolicy
	Contribution  calculation.ContributionPolicy
	Options       calculation.Options
	InflationRate *float64
	ExitTaxRate   *decimal.Decimal
	Targets       []float64
	StartAge      int
	MonteCarlo    *calculation.MonteCarloConfig
}

// Builder turns deck entries into Plans. Shared schedules are built once per deck.
type Builder struct {
	config  *domain.Configuration
	curves  map[string]*calculation.SalaryCurve
	ladders map[string]*calculation.GradeLadder
	living  *calculation.LivingCostSchedule
	events  *calculation.EventCalendar
}

// NewBuilder constructs the deck's shared salary schedules, living costs and events.
func NewBuilder(config *domain.Configuration) (*Builder, error) {
	b := &Builder{
		config:  config,
		curves:  make(map[string]*calculation.SalaryCurve, len(config.SalaryCurves)),
		ladders: make(map[string]*calculation.GradeLadder, len(config.GradeLadders)),
	}
	for name, pts := range config.SalaryCurves {
		points := make([]calculation.SalaryPoint, len(pts))
		for i, p := range pts {
			points[i] = calculation.SalaryPoint{TenureYear: p.TenureYear, AnnualSalary: p.AnnualSalary.InexactFloat64()}
		}
		curve, err := calculation.NewSalaryCurve(points)
		if err != nil {
			return nil, fmt.Errorf("salary curve %s: %w", name, err)
		}
		b.curves[name] = curve
	}
	for name, steps := range config.GradeLadders {
		cs := make([]calculation.GradeStep, len(steps))
		for i, s := range steps {
			cs[i] = calculation.GradeStep{UpToTenure: s.UpToTenure, Grade: s.Grade, AnnualSalary: s.AnnualSalary.InexactFloat64()}
		}
		ladder, err := calculation.NewGradeLadder(cs)
		if err != nil {
			return nil, fmt.Errorf("grade ladder %s: %w", name, err)
		}
		b.ladders[name] = ladder
	}

	bands := make([]calculation.LivingCostBand, len(config.LivingCosts.Bands))
	for i, band := range config.LivingCosts.Bands {
		bands[i] = calculation.LivingCostBand{UpToTenure: band.UpToTenure, MonthlyCost: band.MonthlyCost.InexactFloat64()}
	}
	recurring := make([]calculation.RecurringCost, len(config.LivingCosts.Recurring))
	for i, r := range config.LivingCosts.Recurring {
		recurring[i] = calculation.RecurringCost{StartYear: r.StartYear, Label: r.Label, AnnualCost: r.AnnualCost.InexactFloat64()}
	}
	living, err := calculation.NewLivingCostSchedule(bands, recurring)
	if err != nil {
		return nil, fmt.Errorf("living costs: %w", err)
	}
	b.living = living

	events := make([]calculation.LifeEvent, len(config.LifeEvents))
	for i, e := range config.LifeEvents {
		events[i] = calculation.LifeEvent{TenureYear: e.TenureYear, Label: e.Label, Cost: e.Cost.InexactFloat64()}
	}
	calendar, err := calculation.NewEventCalendar(events)
	if err != nil {
		return nil, fmt.Errorf("life events: %w", err)
	}
	b.events = calendar
	return b, nil
}

// Events returns the deck's life-event calendar.
func (b *Builder) Events() *calculation.EventCalendar { return b.events }

// Build translates one scenario.
func (b *Builder) Build(sc domain.Scenario) (*Plan, error) {
	rate, err := b.ratePolicy(sc.Rate)
	if err != nil {
		return nil, fmt.Errorf("rate: %w", err)
	}
	contribution, err := b.contributionPolicy(sc.Contribution)
	if err != nil {
		return nil, fmt.Errorf("contribution: %w", err)
	}

	plan := &Plan{
		Name:          sc.Name,
		Periods:       sc.Periods,
		Initial:       sc.InitialBalance.InexactFloat64(),
		Compounding:   compounding(sc.Compounding),
		Rate:          rate,
		Contribution:  contribution,
		Options:       options(sc.Compounding),
		InflationRate: floatPtr(sc.InflationRate),
		ExitTaxRate:   sc.ExitTaxRate,
		StartAge:      b.config.Assumptions.StartAge,
	}
	if td := sc.TaxDrag; td != nil {
		basis := calculation.TaxOnGrowth
		if td.Basis == domain.TaxBasisGainReturn {
			basis = calculation.TaxOnGainReturn
		}
		plan.Options.TaxDrag = &calculation.TaxDrag{Rate: td.Rate.InexactFloat64(), Basis: basis}
	}
	for _, t := range sc.Targets {
		plan.Targets = append(plan.Targets, t.InexactFloat64())
	}
	if mc := sc.MonteCarlo; mc != nil {
		plan.MonteCarlo = &calculation.MonteCarloConfig{
			Simulations:  mc.Simulations,
			Periods:      sc.Periods,
			Seed:         mc.Seed,
			Distribution: calculation.ReturnDistribution{Mean: mc.Mean.InexactFloat64(), StdDev: mc.StdDev.InexactFloat64()},
			Target:       mc.Target.InexactFloat64(),
		}
	}
	return plan, nil
}

func (b *Builder) ratePolicy(rc domain.RateConfig) (calculation.RatePolicy, error) {
	switch rc.Kind {
	case "", domain.RateConstant:
		return calculation.ConstantRate(rc.Value.InexactFloat64()), nil
	case domain.RateRegimeSwitch:
		return calculation.RegimeSwitchRate{
			Before:    rc.Before.InexactFloat64(),
			After:     rc.After.InexactFloat64(),
			Threshold: rc.Threshold,
		}, nil
	case domain.RateTable:
		if rc.File != "" {
			return calculation.LoadRateTableFile(rc.File)
		}
		return calculation.NewRateTable(floats(rc.Values))
	default:
		return nil, fmt.Errorf("unknown rate kind %q", rc.Kind)
	}
}

func (b *Builder) contributionPolicy(cc domain.ContributionConfig) (calculation.ContributionPolicy, error) {
	a := b.config.Assumptions
	switch cc.Kind {
	case domain.ContributionFixed:
		return calculation.FixedContribution(cc.Amount.InexactFloat64()), nil
	case domain.ContributionSchedule:
		return calculation.ContributionSchedule(floats(cc.Amounts)), nil
	case domain.ContributionEventReduced:
		return calculation.EventReducedContribution{
			Base:   calculation.FixedContribution(cc.Amount.InexactFloat64()),
			Events: b.events,
		}, nil
	case domain.ContributionIncome:
		salary, err := b.salary(cc.Salary)
		if err != nil {
			return nil, err
		}
		return calculation.IncomeContribution{
			Salary:        salary,
			TakeHomeRatio: b.takeHome(cc),
			SavingsRate:   pick(cc.SavingsRate, a.SavingsRate),
		}, nil
	case domain.ContributionAdaptive:
		salary, err := b.salary(cc.Salary)
		if err != nil {
			return nil, err
		}
		adjustment := calculation.MinimumRate
		if cc.Adjustment == domain.AdjustmentZeroSurplus {
			adjustment = calculation.ZeroSurplus
		}
		return calculation.AdaptiveContribution{
			Salary:        salary,
			TakeHomeRatio: b.takeHome(cc),
			BaseRate:      pick(cc.SavingsRate, a.SavingsRate),
			EventRate:     pick(cc.EventRate, a.EventSavingsRate),
			Living:        b.living,
			Events:        b.events,
			Adjustment:    adjustment,
		}, nil
	default:
		return nil, fmt.Errorf("unknown contribution kind %q", cc.Kind)
	}
}

func (b *Builder) salary(src *domain.SalarySource) (calculation.SalarySchedule, error) {
	switch {
	case src == nil:
		return nil, fmt.Errorf("salary source is required")
	case src.Curve != "":
		c, ok := b.curves[src.Curve]
		if !ok {
			return nil, fmt.Errorf("unknown salary curve %q", src.Curve)
		}
		return c, nil
	case src.Ladder != "":
		l, ok := b.ladders[src.Ladder]
		if !ok {
			return nil, fmt.Errorf("unknown grade ladder %q", src.Ladder)
		}
		return l, nil
	case src.Initial != nil:
		return calculation.GrowthSalary{Initial: src.Initial.InexactFloat64(), GrowthRate: src.Growth.InexactFloat64()}, nil
	default:
		return nil, fmt.Errorf("salary source is empty")
	}
}

func (b *Builder) takeHome(cc domain.ContributionConfig) float64 {
	r := pick(cc.TakeHomeRatio, b.config.Assumptions.TakeHomeRatio)
	if r == 0 {
		return defaultTakeHomeRatio
	}
	return r
}

func options(c string) calculation.Options {
	if c == domain.CompoundingMonthly {
		return calculation.MonthlyOptions()
	}
	return calculation.Options{}
}

func compounding(c string) string {
	if c == "" {
		return domain.CompoundingAnnual
	}
	return c
}

func pick(override *decimal.Decimal, fallback decimal.Decimal) float64 {
	if override != nil {
		return override.InexactFloat64()
	}
	return fallback.InexactFloat64()
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func floats(ds []decimal.Decimal) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.InexactFloat64()
	}
	return out
}
