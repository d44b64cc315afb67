package calculation

import (
	"context"
	"fmt"
	"math"
)

// TaxBasis selects what the periodic tax drag is levied on.
type TaxBasis int

const (
	// TaxOnGrowth taxes the growth accrued during the step.
	TaxOnGrowth TaxBasis = iota
	// TaxOnGainReturn taxes the step's return on the unrealized gain carried in:
	// max(0, balance-principal) * stepRate * rate.
	TaxOnGainReturn
)

func (b TaxBasis) String() string {
	if b == TaxOnGainReturn {
		return "gain_return"
	}
	return "growth"
}

// TaxDrag models a taxable account. Tax is taken after growth and before the
// contribution; it lowers the balance but not the principal.
type TaxDrag struct {
	Rate  float64
	Basis TaxBasis
}

// Options tunes a projection. The zero value compounds once per period without tax.
type Options struct {
	// SubPeriods splits every period into equal compounding steps (12 for monthly
	// compounding in an annual loop). Rate and contribution are divided evenly.
	SubPeriods int
	TaxDrag    *TaxDrag
}

// MonthlyOptions compounds twelve times per period.
func MonthlyOptions() Options { return Options{SubPeriods: 12} }

// PeriodResult is the state at the end of one period.
type PeriodResult struct {
	Period       int     `json:"period"`
	Rate         float64 `json:"rate"`
	Contribution float64 `json:"contribution"`
	Growth       float64 `json:"growth"`
	TaxPaid      float64 `json:"tax_paid"`
	Balance      float64 `json:"balance"`
	Principal    float64 `json:"principal"`
	Gain         float64 `json:"gain"`
}

// ProjectionResult is the ordered output of one projection run.
type ProjectionResult struct {
	Initial float64        `json:"initial"`
	Periods []PeriodResult `json:"periods"`
}

// Len returns the number of simulated periods.
func (r ProjectionResult) Len() int { return len(r.Periods) }

// Balances returns the period-end balances.
func (r ProjectionResult) Balances() []float64 {
	out := make([]float64, len(r.Periods))
	for i, p := range r.Periods {
		out[i] = p.Balance
	}
	return out
}

// Final returns the last period, or false for an empty result.
func (r ProjectionResult) Final() (PeriodResult, bool) {
	if len(r.Periods) == 0 {
		return PeriodResult{}, false
	}
	return r.Periods[len(r.Periods)-1], true
}

// TotalTax sums tax paid over all periods.
func (r ProjectionResult) TotalTax() float64 {
	var total float64
	for _, p := range r.Periods {
		total += p.TaxPaid
	}
	return total
}

// ProjectionEngine runs compound-growth projections.
type ProjectionEngine struct {
	Logger Logger
}

// NewProjectionEngine creates an engine with a no-op logger.
func NewProjectionEngine() *ProjectionEngine {
	return &ProjectionEngine{Logger: NopLogger{}}
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (e *ProjectionEngine) SetLogger(l Logger) {
	e.Logger = OrNop(l)
}

// Project runs a projection with a default engine.
func Project(periods int, initial float64, rate RatePolicy, contribution ContributionPolicy, opts Options) (ProjectionResult, error) {
	return NewProjectionEngine().Project(periods, initial, rate, contribution, opts)
}

// Project advances initial through periods steps of growth and contribution.
// Every period: balance = balance*(1+rate) [- tax] + contribution, optionally split
// into opts.SubPeriods equal steps. It fails fast on invalid inputs and on
// non-finite balances.
func (e *ProjectionEngine) Project(periods int, initial float64, rate RatePolicy, contribution ContributionPolicy, opts Options) (ProjectionResult, error) {
	return e.ProjectContext(context.Background(), periods, initial, rate, contribution, opts)
}

// ProjectContext is Project, stopping between periods once ctx is done.
func (e *ProjectionEngine) ProjectContext(ctx context.Context, periods int, initial float64, rate RatePolicy, contribution ContributionPolicy, opts Options) (ProjectionResult, error) {
	log := OrNop(e.Logger)
	if err := validateProjection(periods, initial, rate, contribution, opts); err != nil {
		return ProjectionResult{}, err
	}
	steps := opts.SubPeriods
	if steps == 0 {
		steps = 1
	}
	log.Debugf("projecting %d periods (%d steps each) from %.2f", periods, steps, initial)

	result := ProjectionResult{Initial: initial, Periods: make([]PeriodResult, 0, periods)}
	balance := initial
	principal := 0.0

	for period := 1; period <= periods; period++ {
		if err := ctx.Err(); err != nil {
			return ProjectionResult{}, fmt.Errorf("period %d: %w", period, err)
		}
		r, err := rate.RateFor(period)
		if err != nil {
			return ProjectionResult{}, fmt.Errorf("period %d: rate: %w", period, err)
		}
		if err := checkRate(r); err != nil {
			return ProjectionResult{}, invalidf("period %d: %v (got %v)", period, err, r)
		}
		c, err := contribution.ContributionFor(period)
		if err != nil {
			return ProjectionResult{}, fmt.Errorf("period %d: contribution: %w", period, err)
		}
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return ProjectionResult{}, invalidf("period %d: contribution must be finite (got %v)", period, c)
		}

		stepRate := r / float64(steps)
		stepContrib := c / float64(steps)
		var growth, tax float64
		for s := 0; s < steps; s++ {
			g := balance * stepRate
			t := opts.TaxDrag.tax(balance, principal+stepContrib*float64(s), g, stepRate)
			balance = balance + g - t + stepContrib
			growth += g
			tax += t
		}
		principal += c

		if math.IsNaN(balance) || math.IsInf(balance, 0) {
			log.Errorf("balance overflow at period %d", period)
			return ProjectionResult{}, fmt.Errorf("%w: balance not finite at period %d", ErrNumericOverflow, period)
		}
		result.Periods = append(result.Periods, PeriodResult{
			Period:       period,
			Rate:         r,
			Contribution: c,
			Growth:       growth,
			TaxPaid:      tax,
			Balance:      balance,
			Principal:    principal,
			Gain:         balance - principal,
		})
	}
	return result, nil
}

func (t *TaxDrag) tax(balance, principal, growth, stepRate float64) float64 {
	if t == nil || t.Rate == 0 {
		return 0
	}
	switch t.Basis {
	case TaxOnGainReturn:
		return math.Max(0, balance-principal) * math.Max(0, stepRate) * t.Rate
	default:
		return math.Max(0, growth) * t.Rate
	}
}

// Upper bounds for a single projection. MaxPeriods covers a century of monthly periods.
const (
	MaxPeriods    = 1200
	MaxSubPeriods = 366
)

func validateProjection(periods int, initial float64, rate RatePolicy, contribution ContributionPolicy, opts Options) error {
	switch {
	case periods < 0:
		return invalidf("periods must be non-negative, got %d", periods)
	case periods > MaxPeriods:
		return invalidf("periods must be at most %d, got %d", MaxPeriods, periods)
	case math.IsNaN(initial) || math.IsInf(initial, 0):
		return invalidf("initial balance must be finite")
	case rate == nil:
		return invalidf("rate policy is required")
	case contribution == nil:
		return invalidf("contribution policy is required")
	case opts.SubPeriods < 0:
		return invalidf("sub-periods must be non-negative, got %d", opts.SubPeriods)
	case opts.SubPeriods > MaxSubPeriods:
		return invalidf("sub-periods must be at most %d, got %d", MaxSubPeriods, opts.SubPeriods)
	}
	if opts.TaxDrag != nil {
		if r := opts.TaxDrag.Rate; math.IsNaN(r) || r < 0 || r > 1 {
			return invalidf("tax rate must be within [0, 1], got %v", r)
		}
	}
	return nil
}
