package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/rpgo/asset-projector/internal/calculation"
	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// MaxSweepCells bounds the grid a single sweep may expand to.
const MaxSweepCells = 10000

var (
	one      = decimal.NewFromInt(1)
	minusOne = decimal.NewFromInt(-1)
)

// InputParser handles parsing of projection decks
type InputParser struct {
	// DisallowFiles rejects decks that reference local files (rate tables).
	DisallowFiles bool
}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a deck from a YAML (or JSON) file. Relative rate-table
// paths are resolved against the deck's directory.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	resolvePaths(&config, filepath.Dir(filename))

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// ParseJSON decodes and validates a deck sent as JSON.
func (ip *InputParser) ParseJSON(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

func resolvePaths(config *domain.Configuration, dir string) {
	for i := range config.Scenarios {
		f := config.Scenarios[i].Rate.File
		if f != "" && !filepath.IsAbs(f) {
			config.Scenarios[i].Rate.File = filepath.Join(dir, f)
		}
	}
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := ip.validateAssumptions(&config.Assumptions); err != nil {
		return fmt.Errorf("assumptions validation failed: %w", err)
	}

	for name, points := range config.SalaryCurves {
		if err := validateSalaryCurve(points); err != nil {
			return fmt.Errorf("salary curve %s validation failed: %w", name, err)
		}
	}
	for name, steps := range config.GradeLadders {
		if err := validateGradeLadder(steps); err != nil {
			return fmt.Errorf("grade ladder %s validation failed: %w", name, err)
		}
	}
	if err := validateLivingCosts(&config.LivingCosts); err != nil {
		return fmt.Errorf("living costs validation failed: %w", err)
	}
	for i, e := range config.LifeEvents {
		if e.TenureYear < 1 {
			return fmt.Errorf("life event %d (%s): tenure year must be at least 1", i, e.Label)
		}
		if e.Cost.IsNegative() {
			return fmt.Errorf("life event %d (%s): cost cannot be negative", i, e.Label)
		}
	}

	if len(config.Scenarios) == 0 && len(config.Sweeps) == 0 {
		return fmt.Errorf("no scenarios or sweeps provided")
	}

	seen := make(map[string]bool, len(config.Scenarios))
	for i := range config.Scenarios {
		s := &config.Scenarios[i]
		if seen[s.Name] {
			return fmt.Errorf("scenario %d: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
		if err := ip.validateScenario(config, s); err != nil {
			return fmt.Errorf("scenario %d (%s) validation failed: %w", i, s.Name, err)
		}
	}
	for i := range config.Sweeps {
		if err := validateSweep(&config.Sweeps[i]); err != nil {
			return fmt.Errorf("sweep %d (%s) validation failed: %w", i, config.Sweeps[i].Name, err)
		}
	}
	return nil
}

// validateAssumptions validates deck-wide assumptions
func (ip *InputParser) validateAssumptions(a *domain.Assumptions) error {
	if a.TakeHomeRatio.IsNegative() || a.TakeHomeRatio.GreaterThan(one) {
		return fmt.Errorf("take home ratio must be between 0 and 1")
	}
	if !isRatio(a.SavingsRate) {
		return fmt.Errorf("savings rate must be between 0 and 1")
	}
	if !isRatio(a.EventSavingsRate) {
		return fmt.Errorf("event savings rate must be between 0 and 1")
	}
	if a.StartAge < 0 || a.StartAge > 120 {
		return fmt.Errorf("start age must be between 0 and 120")
	}
	return nil
}

func validateSalaryCurve(points []domain.SalaryPoint) error {
	if len(points) < 2 {
		return fmt.Errorf("at least 2 points required, got %d", len(points))
	}
	for i, p := range points {
		if p.TenureYear < 1 {
			return fmt.Errorf("point %d: tenure year must be at least 1", i)
		}
		if i > 0 && p.TenureYear <= points[i-1].TenureYear {
			return fmt.Errorf("point %d: tenure years must be strictly ascending", i)
		}
		if p.AnnualSalary.IsNegative() {
			return fmt.Errorf("point %d: salary cannot be negative", i)
		}
	}
	return nil
}

func validateGradeLadder(steps []domain.GradeStep) error {
	if len(steps) == 0 {
		return fmt.Errorf("at least 1 step required")
	}
	for i, s := range steps {
		if s.UpToTenure < 1 {
			return fmt.Errorf("step %d (%s): up_to_tenure must be at least 1", i, s.Grade)
		}
		if i > 0 && s.UpToTenure <= steps[i-1].UpToTenure {
			return fmt.Errorf("step %d (%s): up_to_tenure must be strictly ascending", i, s.Grade)
		}
		if s.AnnualSalary.IsNegative() {
			return fmt.Errorf("step %d (%s): salary cannot be negative", i, s.Grade)
		}
	}
	return nil
}

func validateLivingCosts(lc *domain.LivingCosts) error {
	for i, b := range lc.Bands {
		if b.UpToTenure < 1 {
			return fmt.Errorf("band %d: up_to_tenure must be at least 1", i)
		}
		if i > 0 && b.UpToTenure <= lc.Bands[i-1].UpToTenure {
			return fmt.Errorf("band %d: up_to_tenure must be strictly ascending", i)
		}
		if b.MonthlyCost.IsNegative() {
			return fmt.Errorf("band %d: monthly cost cannot be negative", i)
		}
	}
	for i, r := range lc.Recurring {
		if r.StartYear < 1 {
			return fmt.Errorf("recurring cost %d (%s): start year must be at least 1", i, r.Label)
		}
		if r.AnnualCost.IsNegative() {
			return fmt.Errorf("recurring cost %d (%s): annual cost cannot be negative", i, r.Label)
		}
	}
	return nil
}

// validateScenario validates a single scenario against the deck it belongs to
func (ip *InputParser) validateScenario(config *domain.Configuration, s *domain.Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Periods < 0 {
		return fmt.Errorf("periods cannot be negative")
	}
	if s.Periods > calculation.MaxPeriods {
		return fmt.Errorf("periods cannot exceed %d", calculation.MaxPeriods)
	}
	if err := validateCompounding(s.Compounding); err != nil {
		return err
	}
	if err := ip.validateRate(&s.Rate, s.Periods); err != nil {
		return fmt.Errorf("rate: %w", err)
	}
	if err := validateContribution(config, &s.Contribution, s.Periods); err != nil {
		return fmt.Errorf("contribution: %w", err)
	}
	if s.TaxDrag != nil {
		if !isRatio(s.TaxDrag.Rate) {
			return fmt.Errorf("tax drag rate must be between 0 and 1")
		}
		switch s.TaxDrag.Basis {
		case "", domain.TaxBasisGrowth, domain.TaxBasisGainReturn:
		default:
			return fmt.Errorf("unknown tax basis %q", s.TaxDrag.Basis)
		}
	}
	if s.InflationRate != nil && s.InflationRate.LessThanOrEqual(minusOne) {
		return fmt.Errorf("inflation rate must be greater than -1")
	}
	if s.ExitTaxRate != nil && !isRatio(*s.ExitTaxRate) {
		return fmt.Errorf("exit tax rate must be between 0 and 1")
	}
	if mc := s.MonteCarlo; mc != nil {
		if mc.Simulations < 1 || mc.Simulations > 100000 {
			return fmt.Errorf("monte carlo simulations must be between 1 and 100000")
		}
		if mc.StdDev.IsNegative() {
			return fmt.Errorf("monte carlo stddev cannot be negative")
		}
		if s.Periods == 0 {
			return fmt.Errorf("monte carlo needs at least one period")
		}
	}
	return nil
}

func (ip *InputParser) validateRate(rc *domain.RateConfig, periods int) error {
	switch rc.Kind {
	case "", domain.RateConstant:
		return checkRate(rc.Value)
	case domain.RateRegimeSwitch:
		if rc.Threshold < 0 {
			return fmt.Errorf("threshold cannot be negative")
		}
		if err := checkRate(rc.Before); err != nil {
			return fmt.Errorf("before: %w", err)
		}
		return checkRate(rc.After)
	case domain.RateTable:
		if rc.File != "" {
			if ip.DisallowFiles {
				return fmt.Errorf("rate table files are not allowed here")
			}
			return nil
		}
		if len(rc.Values) < periods {
			return fmt.Errorf("table defines %d periods, scenario needs %d", len(rc.Values), periods)
		}
		for i, v := range rc.Values {
			if err := checkRate(v); err != nil {
				return fmt.Errorf("period %d: %w", i+1, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown rate kind %q", rc.Kind)
	}
}

func validateContribution(config *domain.Configuration, cc *domain.ContributionConfig, periods int) error {
	switch cc.Kind {
	case domain.ContributionFixed, domain.ContributionEventReduced:
		return nil
	case domain.ContributionSchedule:
		if len(cc.Amounts) < periods {
			return fmt.Errorf("schedule defines %d periods, scenario needs %d", len(cc.Amounts), periods)
		}
		return nil
	case domain.ContributionIncome, domain.ContributionAdaptive:
		if cc.Salary == nil {
			return fmt.Errorf("%s contribution needs a salary source", cc.Kind)
		}
		if err := validateSalarySource(config, cc.Salary); err != nil {
			return err
		}
		for _, r := range []*decimal.Decimal{cc.TakeHomeRatio, cc.SavingsRate, cc.EventRate} {
			if r != nil && !isRatio(*r) {
				return fmt.Errorf("ratios must be between 0 and 1")
			}
		}
		switch cc.Adjustment {
		case "", domain.AdjustmentMinimumRate, domain.AdjustmentZeroSurplus:
			return nil
		default:
			return fmt.Errorf("unknown adjustment %q", cc.Adjustment)
		}
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown contribution kind %q", cc.Kind)
	}
}

func validateSalarySource(config *domain.Configuration, src *domain.SalarySource) error {
	set := 0
	if src.Curve != "" {
		set++
		if _, ok := config.SalaryCurves[src.Curve]; !ok {
			return fmt.Errorf("unknown salary curve %q", src.Curve)
		}
	}
	if src.Ladder != "" {
		set++
		if _, ok := config.GradeLadders[src.Ladder]; !ok {
			return fmt.Errorf("unknown grade ladder %q", src.Ladder)
		}
	}
	if src.Initial != nil {
		set++
		if src.Initial.IsNegative() {
			return fmt.Errorf("initial salary cannot be negative")
		}
	}
	if set != 1 {
		return fmt.Errorf("salary source needs exactly one of curve, ladder or initial")
	}
	return nil
}

func validateSweep(sw *domain.Sweep) error {
	if sw.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sw.Periods < 1 {
		return fmt.Errorf("periods must be at least 1")
	}
	if sw.Periods > calculation.MaxPeriods {
		return fmt.Errorf("periods cannot exceed %d", calculation.MaxPeriods)
	}
	if err := validateCompounding(sw.Compounding); err != nil {
		return err
	}
	if len(sw.Rates) == 0 || len(sw.AnnualContributions) == 0 {
		return fmt.Errorf("rates and annual contributions are required")
	}
	offsets := len(sw.StartOffsets)
	if offsets == 0 {
		offsets = 1
	}
	if cells := len(sw.Rates) * len(sw.AnnualContributions) * offsets; cells > MaxSweepCells {
		return fmt.Errorf("sweep expands to %d cells, limit is %d", cells, MaxSweepCells)
	}
	for _, r := range sw.Rates {
		if err := checkRate(r); err != nil {
			return err
		}
	}
	for _, o := range sw.StartOffsets {
		if o < 0 || o >= sw.Periods {
			return fmt.Errorf("start offset %d must be within [0, %d)", o, sw.Periods)
		}
	}
	return nil
}

func validateCompounding(c string) error {
	switch c {
	case "", domain.CompoundingAnnual, domain.CompoundingMonthly:
		return nil
	default:
		return fmt.Errorf("unknown compounding %q", c)
	}
}

func checkRate(r decimal.Decimal) error {
	if r.LessThan(minusOne) {
		return fmt.Errorf("rate %s is below -1", r)
	}
	return nil
}

func isRatio(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(one)
}
