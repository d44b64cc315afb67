package calculation

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

// ReturnDistribution describes normally distributed annual returns for one product.
type ReturnDistribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// MonteCarloConfig holds configuration for Monte Carlo simulations
type MonteCarloConfig struct {
	Simulations  int
	Periods      int
	Seed         int64
	Distribution ReturnDistribution
	// Target is the final balance a simulation must reach to count as a success.
	Target float64
	// Workers bounds concurrent simulations; 0 means 10.
	Workers int
}

// MonteCarloResult summarizes the distribution of final balances.
type MonteCarloResult struct {
	Simulations   int              `json:"simulations"`
	Seed          int64            `json:"seed"`
	SuccessRate   float64          `json:"success_rate"`
	Mean          float64          `json:"mean"`
	Percentiles   PercentileRanges `json:"percentiles"`
	FinalBalances []float64        `json:"-"`
}

// PercentileRanges represents percentile ranges for Monte Carlo results
type PercentileRanges struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// MonteCarloSimulator projects the same contribution plan under random return paths.
type MonteCarloSimulator struct {
	Engine *ProjectionEngine
	Config MonteCarloConfig
}

// NewMonteCarloSimulator creates a simulator, drawing a seed when none is configured.
func NewMonteCarloSimulator(engine *ProjectionEngine, config MonteCarloConfig) *MonteCarloSimulator {
	if config.Seed == 0 {
		config.Seed = seedFunc()
	}
	if config.Workers <= 0 {
		config.Workers = 10
	}
	if engine == nil {
		engine = NewProjectionEngine()
	}
	return &MonteCarloSimulator{Engine: engine, Config: config}
}

// Run executes the simulations. Simulation i draws its returns from a source
// seeded with Seed+i, so results do not depend on scheduling.
func (mcs *MonteCarloSimulator) Run(ctx context.Context, initial float64, contribution ContributionPolicy, opts Options) (*MonteCarloResult, error) {
	cfg := mcs.Config
	if cfg.Simulations <= 0 {
		return nil, invalidf("monte carlo needs at least one simulation")
	}
	if cfg.Periods <= 0 {
		return nil, invalidf("monte carlo needs at least one period")
	}
	if cfg.Distribution.StdDev < 0 {
		return nil, invalidf("return standard deviation must be non-negative")
	}

	finals := make([]float64, cfg.Simulations)
	errs := make([]error, cfg.Simulations)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, cfg.Workers) // Limit concurrent simulations

	for i := 0; i < cfg.Simulations; i++ {
		wg.Add(1)
		go func(simIndex int) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire semaphore
			defer func() { <-semaphore }() // Release semaphore

			if err := ctx.Err(); err != nil {
				errs[simIndex] = err
				return
			}
			finals[simIndex], errs[simIndex] = mcs.runSingleSimulation(ctx, simIndex, initial, contribution, opts)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("simulation %d: %w", i, err)
		}
	}
	return summarize(cfg, finals), nil
}

func (mcs *MonteCarloSimulator) runSingleSimulation(ctx context.Context, simIndex int, initial float64, contribution ContributionPolicy, opts Options) (float64, error) {
	cfg := mcs.Config
	rng := rand.New(rand.NewSource(cfg.Seed + int64(simIndex)))
	rates := make([]float64, cfg.Periods)
	for p := range rates {
		r := cfg.Distribution.Mean + rng.NormFloat64()*cfg.Distribution.StdDev
		if r < -1 {
			r = -1 // total loss is the floor
		}
		rates[p] = r
	}
	table, err := NewRateTable(rates)
	if err != nil {
		return 0, err
	}
	result, err := mcs.Engine.ProjectContext(ctx, cfg.Periods, initial, table, contribution, opts)
	if err != nil {
		return 0, err
	}
	final, _ := result.Final()
	return final.Balance, nil
}

func summarize(cfg MonteCarloConfig, finals []float64) *MonteCarloResult {
	sorted := append([]float64(nil), finals...)
	sort.Float64s(sorted)

	var sum float64
	success := 0
	for _, b := range sorted {
		sum += b
		if b >= cfg.Target {
			success++
		}
	}
	n := len(sorted)
	return &MonteCarloResult{
		Simulations: n,
		Seed:        cfg.Seed,
		SuccessRate: float64(success) / float64(n),
		Mean:        sum / float64(n),
		Percentiles: PercentileRanges{
			P10: sorted[n/10],
			P25: sorted[n/4],
			P50: sorted[n/2],
			P75: sorted[3*n/4],
			P90: sorted[9*n/10],
		},
		FinalBalances: finals,
	}
}
