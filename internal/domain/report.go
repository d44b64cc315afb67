package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunReport is the outcome of running a deck.
type RunReport struct {
	RunID       string           `yaml:"run_id" json:"run_id"`
	Source      string           `yaml:"source,omitempty" json:"source,omitempty"`
	GeneratedAt time.Time        `yaml:"generated_at" json:"generated_at"`
	DurationMs  int64            `yaml:"duration_ms" json:"duration_ms"`
	Scenarios   []ScenarioResult `yaml:"scenarios" json:"scenarios"`
	Sweeps      []SweepResult    `yaml:"sweeps,omitempty" json:"sweeps,omitempty"`
}

// ScenarioResult holds the rows and summary of one scenario. Money is rounded to whole yen.
type ScenarioResult struct {
	Name        string             `yaml:"name" json:"name"`
	Periods     int                `yaml:"periods" json:"periods"`
	Compounding string             `yaml:"compounding" json:"compounding"`
	Summary     ScenarioSummary    `yaml:"summary" json:"summary"`
	Rows        []PeriodRow        `yaml:"rows" json:"rows"`
	Milestones  []Milestone        `yaml:"milestones,omitempty" json:"milestones,omitempty"`
	MonteCarlo  *MonteCarloSummary `yaml:"monte_carlo,omitempty" json:"monte_carlo,omitempty"`
}

// ScenarioSummary describes the final period.
type ScenarioSummary struct {
	FinalBalance     decimal.Decimal  `yaml:"final_balance" json:"final_balance"`
	Principal        decimal.Decimal  `yaml:"principal" json:"principal"`
	Gain             decimal.Decimal  `yaml:"gain" json:"gain"`
	TotalTax         decimal.Decimal  `yaml:"total_tax" json:"total_tax"`
	RealFinalBalance *decimal.Decimal `yaml:"real_final_balance,omitempty" json:"real_final_balance,omitempty"`
	AfterExitTax     *decimal.Decimal `yaml:"after_exit_tax,omitempty" json:"after_exit_tax,omitempty"`
}

// PeriodRow is one period of a scenario.
type PeriodRow struct {
	Period       int              `yaml:"period" json:"period"`
	Age          int              `yaml:"age,omitempty" json:"age,omitempty"`
	Rate         decimal.Decimal  `yaml:"rate" json:"rate"`
	Contribution decimal.Decimal  `yaml:"contribution" json:"contribution"`
	Growth       decimal.Decimal  `yaml:"growth" json:"growth"`
	TaxPaid      decimal.Decimal  `yaml:"tax_paid" json:"tax_paid"`
	Balance      decimal.Decimal  `yaml:"balance" json:"balance"`
	Principal    decimal.Decimal  `yaml:"principal" json:"principal"`
	Gain         decimal.Decimal  `yaml:"gain" json:"gain"`
	RealBalance  *decimal.Decimal `yaml:"real_balance,omitempty" json:"real_balance,omitempty"`
}

// Milestone is the first period a balance target is reached.
type Milestone struct {
	Target  decimal.Decimal `yaml:"target" json:"target"`
	Period  int             `yaml:"period,omitempty" json:"period,omitempty"`
	Age     int             `yaml:"age,omitempty" json:"age,omitempty"`
	Reached bool            `yaml:"reached" json:"reached"`
}

// MonteCarloSummary reports the spread of final balances.
type MonteCarloSummary struct {
	Simulations int             `yaml:"simulations" json:"simulations"`
	Seed        int64           `yaml:"seed" json:"seed"`
	SuccessRate decimal.Decimal `yaml:"success_rate" json:"success_rate"`
	Mean        decimal.Decimal `yaml:"mean" json:"mean"`
	P10         decimal.Decimal `yaml:"p10" json:"p10"`
	P25         decimal.Decimal `yaml:"p25" json:"p25"`
	P50         decimal.Decimal `yaml:"p50" json:"p50"`
	P75         decimal.Decimal `yaml:"p75" json:"p75"`
	P90         decimal.Decimal `yaml:"p90" json:"p90"`
}

// SweepResult holds one cell per (rate, contribution, offset) combination.
type SweepResult struct {
	Name  string      `yaml:"name" json:"name"`
	Cells []SweepCell `yaml:"cells" json:"cells"`
}

type SweepCell struct {
	Rate               decimal.Decimal `yaml:"rate" json:"rate"`
	AnnualContribution decimal.Decimal `yaml:"annual_contribution" json:"annual_contribution"`
	StartOffset        int             `yaml:"start_offset" json:"start_offset"`
	Periods            int             `yaml:"periods" json:"periods"`
	FinalBalance       decimal.Decimal `yaml:"final_balance" json:"final_balance"`
	Principal          decimal.Decimal `yaml:"principal" json:"principal"`
	Gain               decimal.Decimal `yaml:"gain" json:"gain"`
}

// TargetRequest asks for the level contribution that reaches Amount.
type TargetRequest struct {
	Amount  decimal.Decimal `yaml:"amount" json:"amount"`
	Rate    decimal.Decimal `yaml:"rate" json:"rate"`
	Years   int             `yaml:"years" json:"years"`
	Monthly bool            `yaml:"monthly" json:"monthly"`
}

// TargetResult is the answer to a TargetRequest.
type TargetResult struct {
	Contribution decimal.Decimal `yaml:"contribution" json:"contribution"`
	Frequency    string          `yaml:"frequency" json:"frequency"`
	Principal    decimal.Decimal `yaml:"principal" json:"principal"`
	Gain         decimal.Decimal `yaml:"gain" json:"gain"`
}
