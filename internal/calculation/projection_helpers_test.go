package calculation

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeflate(t *testing.T) {
	nominal, err := Project(3, 0, ConstantRate(0.05), FixedContribution(100), Options{})
	require.NoError(t, err)

	deflated, err := Deflate(nominal, 0.02)
	require.NoError(t, err)
	for i, p := range deflated.Periods {
		f := math.Pow(1.02, float64(i+1))
		assert.InDelta(t, nominal.Periods[i].Balance/f, p.Balance, 1e-9)
		assert.InDelta(t, p.Balance-p.Principal, p.Gain, 1e-9)
	}
	assert.Equal(t, 100.0, nominal.Periods[0].Balance, "input must not be modified")

	_, err = Deflate(nominal, -1)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.InDelta(t, 100/math.Pow(1.02, 10), RealValue(100, 0.02, 10), 1e-12)
}

func TestAnnuityHelpers(t *testing.T) {
	assert.InDelta(t, 628.89, FutureValueOfAnnuity(50, 0.05, 10), 0.01)
	assert.Equal(t, 500.0, FutureValueOfAnnuity(50, 0, 10))

	monthly, err := RequiredContribution(10000000, 0.05/12, 120)
	require.NoError(t, err)
	assert.InDelta(t, 10000000, FutureValueOfAnnuity(monthly, 0.05/12, 120), 1e-3)

	flat, err := RequiredContribution(1200, 0, 12)
	require.NoError(t, err)
	assert.Equal(t, 100.0, flat)

	_, err = RequiredContribution(1000, 0.05, 0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestMilestones(t *testing.T) {
	result, err := Project(10, 0, ConstantRate(0.05), FixedContribution(50), Options{})
	require.NoError(t, err)

	period, ok := PeriodsToTarget(result, 100)
	assert.True(t, ok)
	assert.Equal(t, 2, period)

	ms := Milestones(result, []float64{50, 300, 10000})
	require.Len(t, ms, 3)
	assert.Equal(t, Milestone{Target: 50, Period: 1, Reached: true}, ms[0])
	assert.True(t, ms[1].Reached)
	assert.Equal(t, 6, ms[1].Period)
	assert.False(t, ms[2].Reached)
}

func TestLoadRateTable(t *testing.T) {
	table, err := LoadRateTable(strings.NewReader("period,rate\n1,-0.02\n2, 0.07\n3,0.05\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	r, err := table.RateFor(2)
	require.NoError(t, err)
	assert.Equal(t, 0.07, r)

	tests := []struct {
		name string
		csv  string
	}{
		{"gap", "1,0.05\n3,0.05\n"},
		{"bad rate", "1,abc\n"},
		{"below total loss", "1,-1.5\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRateTable(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}

func TestMonteCarlo_Deterministic(t *testing.T) {
	cfg := MonteCarloConfig{
		Simulations:  200,
		Periods:      20,
		Seed:         42,
		Distribution: ReturnDistribution{Mean: 0.05, StdDev: 0.15},
		Target:       10000000,
	}
	a, err := NewMonteCarloSimulator(nil, cfg).Run(context.Background(), 0, FixedContribution(600000), Options{})
	require.NoError(t, err)
	b, err := NewMonteCarloSimulator(nil, cfg).Run(context.Background(), 0, FixedContribution(600000), Options{})
	require.NoError(t, err)

	assert.Equal(t, a.FinalBalances, b.FinalBalances)
	assert.Equal(t, 200, a.Simulations)
	assert.LessOrEqual(t, a.Percentiles.P10, a.Percentiles.P50)
	assert.LessOrEqual(t, a.Percentiles.P50, a.Percentiles.P90)
	assert.GreaterOrEqual(t, a.SuccessRate, 0.0)
	assert.LessOrEqual(t, a.SuccessRate, 1.0)
}

func TestMonteCarlo_ZeroVolatilityMatchesDeterministic(t *testing.T) {
	cfg := MonteCarloConfig{
		Simulations:  5,
		Periods:      10,
		Seed:         7,
		Distribution: ReturnDistribution{Mean: 0.05},
		Target:       600,
	}
	res, err := NewMonteCarloSimulator(nil, cfg).Run(context.Background(), 0, FixedContribution(50), Options{})
	require.NoError(t, err)
	assert.InDelta(t, 628.89, res.Percentiles.P50, 0.01)
	assert.Equal(t, 1.0, res.SuccessRate)
}

func TestMonteCarlo_SeedFromProvider(t *testing.T) {
	orig := seedFunc
	SetSeedFunc(func() int64 { return 99 })
	defer SetSeedFunc(orig)
	sim := NewMonteCarloSimulator(nil, MonteCarloConfig{Simulations: 1, Periods: 1})
	assert.Equal(t, int64(99), sim.Config.Seed)
	assert.Equal(t, 10, sim.Config.Workers)
}

func TestMonteCarlo_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := MonteCarloConfig{Simulations: 3, Periods: 3, Seed: 1, Distribution: ReturnDistribution{Mean: 0.05}}
	_, err := NewMonteCarloSimulator(nil, cfg).Run(ctx, 0, FixedContribution(1), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
