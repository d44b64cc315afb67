package scenario

import (
	"context"
	"fmt"

	"github.com/rpgo/asset-projector/internal/calculation"
	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/rpgo/asset-projector/internal/recorder"
	"github.com/rpgo/asset-projector/pkg/money"
	"github.com/shopspring/decimal"
)

// Runner executes decks and records the reports it produces.
type Runner struct {
	Engine   *calculation.ProjectionEngine
	Recorder recorder.Recorder
	Logger   calculation.Logger
	// Workers bounds concurrent projections; 0 means 10.
	Workers int
}

// NewRunner creates a Runner. A nil recorder disables recording.
func NewRunner(rec recorder.Recorder, logger calculation.Logger) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	engine := calculation.NewProjectionEngine()
	engine.SetLogger(logger)
	return &Runner{
		Engine:   engine,
		Recorder: rec,
		Logger:   calculation.OrNop(logger),
		Workers:  defaultWorkers,
	}
}

// Run projects every scenario and sweep of config concurrently. The report keeps
// deck order. source tags the run in history ("cli", "http", "cron").
func (r *Runner) Run(ctx context.Context, config *domain.Configuration, source string) (*domain.RunReport, error) {
	started := nowFunc()
	builder, err := NewBuilder(config)
	if err != nil {
		return nil, fmt.Errorf("failed to build deck: %w", err)
	}

	report := &domain.RunReport{
		RunID:       idFunc(),
		Source:      source,
		GeneratedAt: started.UTC(),
		Scenarios:   make([]domain.ScenarioResult, len(config.Scenarios)),
		Sweeps:      make([]domain.SweepResult, len(config.Sweeps)),
	}
	nScen := len(config.Scenarios)
	err = forEach(ctx, nScen+len(config.Sweeps), r.Workers, func(i int) error {
		if i < nScen {
			sc := config.Scenarios[i]
			res, err := r.RunScenario(ctx, builder, sc)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			report.Scenarios[i] = res
			return nil
		}
		sw := config.Sweeps[i-nScen]
		res, err := r.RunSweep(ctx, sw)
		if err != nil {
			return fmt.Errorf("sweep %s: %w", sw.Name, err)
		}
		report.Sweeps[i-nScen] = res
		return nil
	})
	if err != nil {
		r.logger().Errorf("run failed: %v", err)
		return nil, err
	}
	report.DurationMs = nowFunc().Sub(started).Milliseconds()

	if r.Recorder != nil {
		if err := r.Recorder.RecordRun(ctx, report); err != nil {
			r.logger().Warnf("record run %s: %v", report.RunID, err)
		}
	}
	r.logger().Infof("run %s (%s): %d scenarios, %d sweeps in %dms",
		report.RunID, source, len(report.Scenarios), len(report.Sweeps), report.DurationMs)
	return report, nil
}

// RunScenario projects one scenario with the deck's shared schedules.
func (r *Runner) RunScenario(ctx context.Context, builder *Builder, sc domain.Scenario) (domain.ScenarioResult, error) {
	plan, err := builder.Build(sc)
	if err != nil {
		return domain.ScenarioResult{}, err
	}
	result, err := r.engine().ProjectContext(ctx, plan.Periods, plan.Initial, plan.Rate, plan.Contribution, plan.Options)
	if err != nil {
		return domain.ScenarioResult{}, err
	}

	out := domain.ScenarioResult{
		Name:        plan.Name,
		Periods:     plan.Periods,
		Compounding: plan.Compounding,
		Rows:        make([]domain.PeriodRow, len(result.Periods)),
	}

	var deflated calculation.ProjectionResult
	if plan.InflationRate != nil {
		if deflated, err = calculation.Deflate(result, *plan.InflationRate); err != nil {
			return domain.ScenarioResult{}, err
		}
	}
	for i, p := range result.Periods {
		row := domain.PeriodRow{
			Period:       p.Period,
			Age:          plan.age(p.Period),
			Rate:         decimal.NewFromFloat(p.Rate).Round(6),
			Contribution: yen(p.Contribution),
			Growth:       yen(p.Growth),
			TaxPaid:      yen(p.TaxPaid),
			Balance:      yen(p.Balance),
			Principal:    yen(p.Principal),
			Gain:         yen(p.Gain),
		}
		if plan.InflationRate != nil {
			rb := yen(deflated.Periods[i].Balance)
			row.RealBalance = &rb
		}
		out.Rows[i] = row
	}

	final, ok := result.Final()
	if !ok {
		final = calculation.PeriodResult{Balance: plan.Initial, Gain: plan.Initial}
	}
	out.Summary = domain.ScenarioSummary{
		FinalBalance: yen(final.Balance),
		Principal:    yen(final.Principal),
		Gain:         yen(final.Gain),
		TotalTax:     yen(result.TotalTax()),
	}
	if plan.InflationRate != nil {
		realFinal := yen(calculation.RealValue(final.Balance, *plan.InflationRate, plan.Periods))
		out.Summary.RealFinalBalance = &realFinal
	}
	if plan.ExitTaxRate != nil {
		after := afterExitTax(final, *plan.ExitTaxRate)
		out.Summary.AfterExitTax = &after
	}

	for _, m := range calculation.Milestones(result, plan.Targets) {
		ms := domain.Milestone{Target: yen(m.Target), Reached: m.Reached}
		if m.Reached {
			ms.Period = m.Period
			ms.Age = plan.age(m.Period)
		}
		out.Milestones = append(out.Milestones, ms)
	}

	if plan.MonteCarlo != nil {
		sim := calculation.NewMonteCarloSimulator(r.engine(), *plan.MonteCarlo)
		mc, err := sim.Run(ctx, plan.Initial, plan.Contribution, plan.Options)
		if err != nil {
			return domain.ScenarioResult{}, fmt.Errorf("monte carlo: %w", err)
		}
		out.MonteCarlo = &domain.MonteCarloSummary{
			Simulations: mc.Simulations,
			Seed:        mc.Seed,
			SuccessRate: decimal.NewFromFloat(mc.SuccessRate).Round(4),
			Mean:        yen(mc.Mean),
			P10:         yen(mc.Percentiles.P10),
			P25:         yen(mc.Percentiles.P25),
			P50:         yen(mc.Percentiles.P50),
			P75:         yen(mc.Percentiles.P75),
			P90:         yen(mc.Percentiles.P90),
		}
	}
	r.logger().Debugf("scenario %s: final %s", plan.Name, money.NewYenFromDecimal(out.Summary.FinalBalance).Format())
	return out, nil
}

// RunSweep projects every (rate, contribution, start offset) cell of sw.
// A start offset shortens the horizon by that many periods.
func (r *Runner) RunSweep(ctx context.Context, sw domain.Sweep) (domain.SweepResult, error) {
	offsets := sw.StartOffsets
	if len(offsets) == 0 {
		offsets = []int{0}
	}
	opts := options(sw.Compounding)
	initial := sw.InitialBalance.InexactFloat64()

	nc, no := len(sw.AnnualContributions), len(offsets)
	cells := make([]domain.SweepCell, len(sw.Rates)*nc*no)
	err := forEach(ctx, len(cells), r.Workers, func(i int) error {
		rate := sw.Rates[i/(nc*no)]
		contribution := sw.AnnualContributions[(i/no)%nc]
		offset := offsets[i%no]
		periods := sw.Periods - offset

		result, err := r.engine().ProjectContext(ctx, periods, initial,
			calculation.ConstantRate(rate.InexactFloat64()),
			calculation.FixedContribution(contribution.InexactFloat64()), opts)
		if err != nil {
			return fmt.Errorf("rate %s contribution %s offset %d: %w", rate, contribution, offset, err)
		}
		final, ok := result.Final()
		if !ok {
			final = calculation.PeriodResult{Balance: initial, Gain: initial}
		}
		cells[i] = domain.SweepCell{
			Rate:               rate,
			AnnualContribution: contribution,
			StartOffset:        offset,
			Periods:            periods,
			FinalBalance:       yen(final.Balance),
			Principal:          yen(final.Principal),
			Gain:               yen(final.Gain),
		}
		return nil
	})
	if err != nil {
		return domain.SweepResult{}, err
	}
	return domain.SweepResult{Name: sw.Name, Cells: cells}, nil
}

// Target computes the level contribution reaching req.Amount.
func Target(req domain.TargetRequest) (domain.TargetResult, error) {
	rate := req.Rate.InexactFloat64()
	periods := req.Years
	frequency := "annual"
	if req.Monthly {
		rate /= 12
		periods *= 12
		frequency = "monthly"
	}
	c, err := calculation.RequiredContribution(req.Amount.InexactFloat64(), rate, periods)
	if err != nil {
		return domain.TargetResult{}, err
	}
	principal := c * float64(periods)
	return domain.TargetResult{
		Contribution: yen(c),
		Frequency:    frequency,
		Principal:    yen(principal),
		Gain:         yen(req.Amount.InexactFloat64() - principal),
	}, nil
}

func (p *Plan) age(period int) int {
	if p.StartAge == 0 {
		return 0
	}
	return p.StartAge + period
}

func (r *Runner) engine() *calculation.ProjectionEngine {
	if r.Engine == nil {
		return calculation.NewProjectionEngine()
	}
	return r.Engine
}

func (r *Runner) logger() calculation.Logger { return calculation.OrNop(r.Logger) }

func yen(f float64) decimal.Decimal { return money.NewYen(f).Round().Decimal }

// afterExitTax is the balance left after liquidation: only a positive gain is taxed.
func afterExitTax(final calculation.PeriodResult, rate decimal.Decimal) decimal.Decimal {
	gain := money.Max(money.NewYen(final.Gain), money.Zero())
	return money.NewYen(final.Balance).Sub(gain).Add(gain.ApplyTaxRate(rate)).Round().Decimal
}
