package config

import (
	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/rpgo/asset-projector/pkg/money"
	"github.com/shopspring/decimal"
)

func man(v float64) decimal.Decimal { return money.FromManYen(v).Decimal }

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// CreateExampleConfiguration returns the standard new-employee deck: the standard
// salary curve and grade ladder, banded living costs, the usual life events and a
// handful of scenarios and sweeps comparing them.
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	curveYears := []int{1, 2, 3, 4, 6, 8, 11, 14, 17, 20}
	curveSalary := []float64{340, 340, 390, 430, 480, 520, 590, 700, 800, 900}
	standard := make([]domain.SalaryPoint, len(curveYears))
	for i := range curveYears {
		standard[i] = domain.SalaryPoint{TenureYear: curveYears[i], AnnualSalary: man(curveSalary[i])}
	}

	ladder := []domain.GradeStep{
		{UpToTenure: 1, Grade: "B2", AnnualSalary: man(340)},
		{UpToTenure: 2, Grade: "B1", AnnualSalary: man(390)},
		{UpToTenure: 3, Grade: "P4", AnnualSalary: man(430)},
		{UpToTenure: 4, Grade: "P3", AnnualSalary: man(480)},
		{UpToTenure: 5, Grade: "P2", AnnualSalary: man(520)},
		{UpToTenure: 6, Grade: "P1", AnnualSalary: man(590)},
		{UpToTenure: 7, Grade: "M3", AnnualSalary: man(700)},
		{UpToTenure: 8, Grade: "M2", AnnualSalary: man(800)},
		{UpToTenure: 9, Grade: "M1", AnnualSalary: man(900)},
		{UpToTenure: 10, Grade: "D3", AnnualSalary: man(980)},
		{UpToTenure: 15, Grade: "D2", AnnualSalary: man(1100)},
		{UpToTenure: 20, Grade: "D1", AnnualSalary: man(1300)},
	}

	return &domain.Configuration{
		Assumptions: domain.Assumptions{
			TakeHomeRatio:    dec(0.8),
			SavingsRate:      dec(0.25),
			EventSavingsRate: dec(0.10),
			StartAge:         22,
		},
		SalaryCurves: map[string][]domain.SalaryPoint{"standard": standard},
		GradeLadders: map[string][]domain.GradeStep{"standard": ladder},
		LivingCosts: domain.LivingCosts{
			Bands: []domain.LivingCostBand{
				{UpToTenure: 3, MonthlyCost: man(20)},
				{UpToTenure: 7, MonthlyCost: man(23)},
				{UpToTenure: 15, MonthlyCost: man(25)},
				{UpToTenure: 100, MonthlyCost: man(28)},
			},
			Recurring: []domain.RecurringCost{
				{StartYear: 10, Label: "housing loan", AnnualCost: man(120)},
				{StartYear: 12, Label: "childcare", AnnualCost: man(60)},
				{StartYear: 15, Label: "childcare (two children)", AnnualCost: man(120)},
			},
		},
		LifeEvents: []domain.LifeEvent{
			{TenureYear: 3, Label: "moving out", Cost: man(50)},
			{TenureYear: 5, Label: "car purchase", Cost: man(200)},
			{TenureYear: 7, Label: "wedding", Cost: man(300)},
			{TenureYear: 8, Label: "honeymoon", Cost: man(80)},
			{TenureYear: 10, Label: "house down payment", Cost: man(500)},
			{TenureYear: 12, Label: "first child", Cost: man(50)},
			{TenureYear: 15, Label: "second child", Cost: man(50)},
			{TenureYear: 18, Label: "car replacement", Cost: man(250)},
		},
		Scenarios: []domain.Scenario{
			{
				Name:        "adaptive-with-events",
				Periods:     20,
				Compounding: domain.CompoundingMonthly,
				Rate:        domain.RateConfig{Kind: domain.RateConstant, Value: dec(0.05)},
				Contribution: domain.ContributionConfig{
					Kind:       domain.ContributionAdaptive,
					Salary:     &domain.SalarySource{Curve: "standard"},
					Adjustment: domain.AdjustmentMinimumRate,
				},
				Targets: []decimal.Decimal{man(1000), man(2000)},
			},
			{
				Name:    "cash-savings",
				Periods: 20,
				Rate:    domain.RateConfig{Kind: domain.RateConstant, Value: dec(0.0001)},
				Contribution: domain.ContributionConfig{
					Kind:   domain.ContributionIncome,
					Salary: &domain.SalarySource{Curve: "standard"},
				},
			},
			{
				Name:        "grade-ladder-income",
				Periods:     20,
				Compounding: domain.CompoundingMonthly,
				Rate:        domain.RateConfig{Kind: domain.RateConstant, Value: dec(0.05)},
				Contribution: domain.ContributionConfig{
					Kind:   domain.ContributionIncome,
					Salary: &domain.SalarySource{Ladder: "standard"},
				},
			},
			{
				Name:          "nisa-monthly-50k",
				Periods:       43,
				Compounding:   domain.CompoundingMonthly,
				Rate:          domain.RateConfig{Kind: domain.RateConstant, Value: dec(0.05)},
				Contribution:  domain.ContributionConfig{Kind: domain.ContributionFixed, Amount: man(60)},
				InflationRate: decPtr(0.02),
				Targets:       []decimal.Decimal{man(1000), man(3000), man(5000)},
				MonteCarlo: &domain.MonteCarloConfig{
					Simulations: 500,
					Mean:        dec(0.05),
					StdDev:      dec(0.15),
					Seed:        42,
					Target:      man(5000),
				},
			},
			{
				Name:         "taxable-monthly-50k",
				Periods:      43,
				Compounding:  domain.CompoundingMonthly,
				Rate:         domain.RateConfig{Kind: domain.RateConstant, Value: dec(0.05)},
				Contribution: domain.ContributionConfig{Kind: domain.ContributionFixed, Amount: man(60)},
				TaxDrag:      &domain.TaxDragConfig{Rate: dec(0.20315), Basis: domain.TaxBasisGrowth},
				ExitTaxRate:  decPtr(0.20315),
			},
			{
				Name:         "lost-decade",
				Periods:      30,
				Compounding:  domain.CompoundingMonthly,
				Rate:         domain.RateConfig{Kind: domain.RateRegimeSwitch, Before: dec(-0.02), After: dec(0.07), Threshold: 10},
				Contribution: domain.ContributionConfig{Kind: domain.ContributionFixed, Amount: man(36)},
			},
		},
		Sweeps: []domain.Sweep{
			{
				Name:                "rate-by-monthly-amount",
				Periods:             43,
				Compounding:         domain.CompoundingMonthly,
				Rates:               []decimal.Decimal{dec(0.03), dec(0.04), dec(0.05), dec(0.06), dec(0.07)},
				AnnualContributions: []decimal.Decimal{man(12), man(36), man(60), man(120)},
			},
			{
				Name:                "start-timing",
				Periods:             43,
				Compounding:         domain.CompoundingMonthly,
				Rates:               []decimal.Decimal{dec(0.05)},
				AnnualContributions: []decimal.Decimal{man(36)},
				StartOffsets:        []int{0, 5, 10, 15, 20},
			},
		},
	}
}
