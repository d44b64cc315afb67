package domain

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Configuration is a projection deck: shared assumptions, reusable schedules and
// the scenarios and sweeps to run against them.
type Configuration struct {
	Assumptions  Assumptions              `yaml:"assumptions" json:"assumptions"`
	SalaryCurves map[string][]SalaryPoint `yaml:"salary_curves,omitempty" json:"salary_curves,omitempty"`
	GradeLadders map[string][]GradeStep   `yaml:"grade_ladders,omitempty" json:"grade_ladders,omitempty"`
	LivingCosts  LivingCosts              `yaml:"living_costs,omitempty" json:"living_costs,omitempty"`
	LifeEvents   []LifeEvent              `yaml:"life_events,omitempty" json:"life_events,omitempty"`
	Scenarios    []Scenario               `yaml:"scenarios" json:"scenarios"`
	Sweeps       []Sweep                  `yaml:"sweeps,omitempty" json:"sweeps,omitempty"`
}

// Assumptions are defaults shared by every scenario in a deck.
type Assumptions struct {
	TakeHomeRatio    decimal.Decimal `yaml:"take_home_ratio" json:"take_home_ratio"`
	SavingsRate      decimal.Decimal `yaml:"savings_rate" json:"savings_rate"`
	EventSavingsRate decimal.Decimal `yaml:"event_savings_rate" json:"event_savings_rate"`
	StartAge         int             `yaml:"start_age,omitempty" json:"start_age,omitempty"`
}

// SalaryPoint is a control point of a named salary curve.
type SalaryPoint struct {
	TenureYear   int             `yaml:"tenure_year" json:"tenure_year"`
	AnnualSalary decimal.Decimal `yaml:"annual_salary" json:"annual_salary"`
}

// GradeStep is one rung of a named grade ladder.
type GradeStep struct {
	UpToTenure   int             `yaml:"up_to_tenure" json:"up_to_tenure"`
	Grade        string          `yaml:"grade" json:"grade"`
	AnnualSalary decimal.Decimal `yaml:"annual_salary" json:"annual_salary"`
}

// LivingCosts holds monthly cost bands plus costs that recur from a start year.
type LivingCosts struct {
	Bands     []LivingCostBand `yaml:"bands,omitempty" json:"bands,omitempty"`
	Recurring []RecurringCost  `yaml:"recurring,omitempty" json:"recurring,omitempty"`
}

type LivingCostBand struct {
	UpToTenure  int             `yaml:"up_to_tenure" json:"up_to_tenure"`
	MonthlyCost decimal.Decimal `yaml:"monthly_cost" json:"monthly_cost"`
}

type RecurringCost struct {
	StartYear  int             `yaml:"start_year" json:"start_year"`
	Label      string          `yaml:"label" json:"label"`
	AnnualCost decimal.Decimal `yaml:"annual_cost" json:"annual_cost"`
}

// LifeEvent is a one-time cost in a tenure year.
type LifeEvent struct {
	TenureYear int             `yaml:"tenure_year" json:"tenure_year"`
	Label      string          `yaml:"label" json:"label"`
	Cost       decimal.Decimal `yaml:"cost" json:"cost"`
}

// Compounding modes.
const (
	CompoundingAnnual  = "annual"
	CompoundingMonthly = "monthly"
)

// Scenario is one projection to run.
type Scenario struct {
	Name           string             `yaml:"name" json:"name"`
	Periods        int                `yaml:"periods" json:"periods"`
	InitialBalance decimal.Decimal    `yaml:"initial_balance" json:"initial_balance"`
	Compounding    string             `yaml:"compounding,omitempty" json:"compounding,omitempty"`
	Rate           RateConfig         `yaml:"rate" json:"rate"`
	Contribution   ContributionConfig `yaml:"contribution" json:"contribution"`
	TaxDrag        *TaxDragConfig     `yaml:"tax_drag,omitempty" json:"tax_drag,omitempty"`
	InflationRate  *decimal.Decimal   `yaml:"inflation_rate,omitempty" json:"inflation_rate,omitempty"`
	ExitTaxRate    *decimal.Decimal   `yaml:"exit_tax_rate,omitempty" json:"exit_tax_rate,omitempty"`
	Targets        []decimal.Decimal  `yaml:"targets,omitempty" json:"targets,omitempty"`
	MonteCarlo     *MonteCarloConfig  `yaml:"monte_carlo,omitempty" json:"monte_carlo,omitempty"`
}

// Rate policy kinds.
const (
	RateConstant     = "constant"
	RateRegimeSwitch = "regime_switch"
	RateTable        = "table"
)

// RateConfig selects a rate policy. A bare number is shorthand for a constant rate.
type RateConfig struct {
	Kind      string            `yaml:"kind" json:"kind"`
	Value     decimal.Decimal   `yaml:"value,omitempty" json:"value,omitempty"`
	Before    decimal.Decimal   `yaml:"before,omitempty" json:"before,omitempty"`
	After     decimal.Decimal   `yaml:"after,omitempty" json:"after,omitempty"`
	Threshold int               `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Values    []decimal.Decimal `yaml:"values,omitempty" json:"values,omitempty"`
	File      string            `yaml:"file,omitempty" json:"file,omitempty"`
}

// UnmarshalYAML accepts either a mapping or a bare constant rate.
func (rc *RateConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var v decimal.Decimal
		if err := value.Decode(&v); err != nil {
			return err
		}
		*rc = RateConfig{Kind: RateConstant, Value: v}
		return nil
	}
	type Alias RateConfig
	var aux Alias
	if err := value.Decode(&aux); err != nil {
		return err
	}
	*rc = RateConfig(aux)
	if rc.Kind == "" {
		rc.Kind = RateConstant
	}
	return nil
}

// UnmarshalJSON accepts the same shorthand as UnmarshalYAML.
func (rc *RateConfig) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] != '{' {
		var v decimal.Decimal
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*rc = RateConfig{Kind: RateConstant, Value: v}
		return nil
	}
	type Alias RateConfig
	var aux Alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*rc = RateConfig(aux)
	if rc.Kind == "" {
		rc.Kind = RateConstant
	}
	return nil
}

// Contribution policy kinds.
const (
	ContributionFixed        = "fixed"
	ContributionSchedule     = "schedule"
	ContributionIncome       = "income"
	ContributionEventReduced = "event_reduced"
	ContributionAdaptive     = "adaptive"
	AdjustmentMinimumRate    = "minimum_rate"
	AdjustmentZeroSurplus    = "zero_surplus"
)

// ContributionConfig selects a contribution policy.
type ContributionConfig struct {
	Kind          string            `yaml:"kind" json:"kind"`
	Amount        decimal.Decimal   `yaml:"amount,omitempty" json:"amount,omitempty"`
	Amounts       []decimal.Decimal `yaml:"amounts,omitempty" json:"amounts,omitempty"`
	Salary        *SalarySource     `yaml:"salary,omitempty" json:"salary,omitempty"`
	TakeHomeRatio *decimal.Decimal  `yaml:"take_home_ratio,omitempty" json:"take_home_ratio,omitempty"`
	SavingsRate   *decimal.Decimal  `yaml:"savings_rate,omitempty" json:"savings_rate,omitempty"`
	EventRate     *decimal.Decimal  `yaml:"event_savings_rate,omitempty" json:"event_savings_rate,omitempty"`
	Adjustment    string            `yaml:"adjustment,omitempty" json:"adjustment,omitempty"`
}

// SalarySource names a curve or ladder, or describes a fixed-growth salary.
type SalarySource struct {
	Curve   string           `yaml:"curve,omitempty" json:"curve,omitempty"`
	Ladder  string           `yaml:"ladder,omitempty" json:"ladder,omitempty"`
	Initial *decimal.Decimal `yaml:"initial,omitempty" json:"initial,omitempty"`
	Growth  decimal.Decimal  `yaml:"growth,omitempty" json:"growth,omitempty"`
}

// Tax bases.
const (
	TaxBasisGrowth     = "growth"
	TaxBasisGainReturn = "gain_return"
)

type TaxDragConfig struct {
	Rate  decimal.Decimal `yaml:"rate" json:"rate"`
	Basis string          `yaml:"basis,omitempty" json:"basis,omitempty"`
}

// MonteCarloConfig runs the scenario's contributions under random returns.
type MonteCarloConfig struct {
	Simulations int             `yaml:"simulations" json:"simulations"`
	Mean        decimal.Decimal `yaml:"mean" json:"mean"`
	StdDev      decimal.Decimal `yaml:"stddev" json:"stddev"`
	Seed        int64           `yaml:"seed,omitempty" json:"seed,omitempty"`
	Target      decimal.Decimal `yaml:"target,omitempty" json:"target,omitempty"`
}

// Sweep runs a grid of constant-rate, fixed-contribution projections.
type Sweep struct {
	Name                string            `yaml:"name" json:"name"`
	Periods             int               `yaml:"periods" json:"periods"`
	InitialBalance      decimal.Decimal   `yaml:"initial_balance,omitempty" json:"initial_balance,omitempty"`
	Compounding         string            `yaml:"compounding,omitempty" json:"compounding,omitempty"`
	Rates               []decimal.Decimal `yaml:"rates" json:"rates"`
	AnnualContributions []decimal.Decimal `yaml:"annual_contributions" json:"annual_contributions"`
	StartOffsets        []int             `yaml:"start_offsets,omitempty" json:"start_offsets,omitempty"`
}
