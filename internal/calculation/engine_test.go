package calculation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_ConstantContributionSeries(t *testing.T) {
	result, err := Project(10, 0, ConstantRate(0.05), FixedContribution(50), Options{})
	require.NoError(t, err)
	require.Equal(t, 10, result.Len())

	assert.Equal(t, 50.0, result.Periods[0].Balance)
	assert.InDelta(t, 102.5, result.Periods[1].Balance, 1e-9)

	want := 50 * (math.Pow(1.05, 10) - 1) / 0.05
	final, ok := result.Final()
	require.True(t, ok)
	assert.InDelta(t, want, final.Balance, 0.01)
	assert.InDelta(t, 628.89, final.Balance, 0.01)
	assert.Equal(t, 500.0, final.Principal)
	assert.InDelta(t, final.Balance-500, final.Gain, 1e-9)
}

func TestProject_MonthlyCompounding(t *testing.T) {
	result, err := Project(1, 0, ConstantRate(0.05), FixedContribution(50), MonthlyOptions())
	require.NoError(t, err)

	m := 0.05 / 12
	want := (50.0 / 12) * (math.Pow(1+m, 12) - 1) / m
	assert.InDelta(t, want, result.Periods[0].Balance, 0.01)
	assert.InDelta(t, 51.16, result.Periods[0].Balance, 0.01)
	assert.InDelta(t, 50.0, result.Periods[0].Principal, 1e-9)
}

func TestProject_Monotonic(t *testing.T) {
	rates, err := NewRateTable([]float64{0.01, 0.07, 0.002, 0.05, 0.12, 0.0, 0.03, 0.09})
	require.NoError(t, err)
	contribs := ContributionSchedule{10, 0, 25, 0, 0, 100, 3, 0}

	for _, opts := range []Options{{}, MonthlyOptions()} {
		result, err := Project(8, 100, rates, contribs, opts)
		require.NoError(t, err)
		prev := 100.0
		for _, p := range result.Periods {
			assert.GreaterOrEqual(t, p.Balance, prev, "period %d", p.Period)
			prev = p.Balance
		}
	}
}

func TestProject_ZeroContributionIsCompoundInterest(t *testing.T) {
	tests := []struct {
		name    string
		initial float64
		rate    float64
		periods int
	}{
		{"index fund", 1000000, 0.05, 44},
		{"cash", 2500000, 0.0001, 30},
		{"high rate", 10, 0.2, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Project(tt.periods, tt.initial, ConstantRate(tt.rate), FixedContribution(0), Options{})
			require.NoError(t, err)
			for _, p := range result.Periods {
				want := tt.initial * math.Pow(1+tt.rate, float64(p.Period))
				assert.InEpsilon(t, want, p.Balance, 1e-9, "period %d", p.Period)
			}
		})
	}
}

func TestProject_ZeroRateIsPureAccumulation(t *testing.T) {
	contribs := ContributionSchedule{120000, 0, 35000.5, 600000, 1, 99999.25}
	result, err := Project(len(contribs), 5000, ConstantRate(0), contribs, Options{})
	require.NoError(t, err)

	want := 5000.0
	for i, p := range result.Periods {
		want += contribs[i]
		assert.Equal(t, want, p.Balance, "period %d", p.Period)
	}
}

func TestProject_TaxDragNeverExceedsUntaxed(t *testing.T) {
	regime := RegimeSwitchRate{Before: -0.02, After: 0.07, Threshold: 10}
	for _, basis := range []TaxBasis{TaxOnGrowth, TaxOnGainReturn} {
		for _, opts := range []Options{{}, MonthlyOptions()} {
			untaxed, err := Project(30, 1000, regime, FixedContribution(600), opts)
			require.NoError(t, err)

			opts.TaxDrag = &TaxDrag{Rate: 0.20315, Basis: basis}
			taxed, err := Project(30, 1000, regime, FixedContribution(600), opts)
			require.NoError(t, err)

			for i := range taxed.Periods {
				assert.LessOrEqual(t, taxed.Periods[i].Balance, untaxed.Periods[i].Balance+1e-9,
					"basis %s period %d", basis, i+1)
				assert.Equal(t, untaxed.Periods[i].Principal, taxed.Periods[i].Principal)
			}
			ft, _ := taxed.Final()
			fu, _ := untaxed.Final()
			assert.Less(t, ft.Balance, fu.Balance)
			assert.Greater(t, taxed.TotalTax(), 0.0)
		}
	}
}

func TestProject_TaxOnGrowthLowersEffectiveRate(t *testing.T) {
	opts := Options{TaxDrag: &TaxDrag{Rate: 0.2}}
	result, err := Project(10, 0, ConstantRate(0.05), FixedContribution(50), opts)
	require.NoError(t, err)
	final, _ := result.Final()
	assert.InDelta(t, 50*(math.Pow(1.04, 10)-1)/0.04, final.Balance, 1e-6)
}

func TestProject_RegimeSwitch(t *testing.T) {
	regime := RegimeSwitchRate{Before: -0.02, After: 0.07, Threshold: 10}
	result, err := Project(12, 100, regime, FixedContribution(0), Options{})
	require.NoError(t, err)
	assert.Equal(t, -0.02, result.Periods[9].Rate)
	assert.Equal(t, 0.07, result.Periods[10].Rate)
	assert.InDelta(t, 100*math.Pow(0.98, 10)*1.07*1.07, result.Periods[11].Balance, 1e-9)
}

func TestProject_InitialBalanceCarriesOver(t *testing.T) {
	first, err := Project(5, 0, ConstantRate(0.05), FixedContribution(50), Options{})
	require.NoError(t, err)
	mid, _ := first.Final()

	second, err := Project(5, mid.Balance, ConstantRate(0.05), FixedContribution(50), Options{})
	require.NoError(t, err)
	whole, err := Project(10, 0, ConstantRate(0.05), FixedContribution(50), Options{})
	require.NoError(t, err)

	a, _ := second.Final()
	b, _ := whole.Final()
	assert.InDelta(t, b.Balance, a.Balance, 1e-9)
}

func TestProject_ZeroPeriods(t *testing.T) {
	result, err := Project(0, 100, ConstantRate(0.05), FixedContribution(50), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	_, ok := result.Final()
	assert.False(t, ok)
}

func TestProject_Invalid(t *testing.T) {
	short, err := NewRateTable([]float64{0.05, 0.05})
	require.NoError(t, err)

	tests := []struct {
		name         string
		periods      int
		initial      float64
		rate         RatePolicy
		contribution ContributionPolicy
		opts         Options
	}{
		{"negative periods", -1, 0, ConstantRate(0.05), FixedContribution(1), Options{}},
		{"nan initial", 1, math.NaN(), ConstantRate(0.05), FixedContribution(1), Options{}},
		{"nil rate", 1, 0, nil, FixedContribution(1), Options{}},
		{"nil contribution", 1, 0, ConstantRate(0.05), nil, Options{}},
		{"rate undefined for period", 3, 0, short, FixedContribution(1), Options{}},
		{"contribution undefined for period", 3, 0, ConstantRate(0.05), ContributionSchedule{1}, Options{}},
		{"rate below -1", 1, 0, ConstantRate(-1.5), FixedContribution(1), Options{}},
		{"infinite contribution", 1, 0, ConstantRate(0.05), FixedContribution(math.Inf(1)), Options{}},
		{"periods above maximum", MaxPeriods + 1, 0, ConstantRate(0.05), FixedContribution(1), Options{}},
		{"max int periods", math.MaxInt, 0, ConstantRate(0.05), FixedContribution(1), Options{}},
		{"sub-periods above maximum", 1, 0, ConstantRate(0.05), FixedContribution(1), Options{SubPeriods: MaxSubPeriods + 1}},
		{"negative sub-periods", 1, 0, ConstantRate(0.05), FixedContribution(1), Options{SubPeriods: -12}},
		{"tax rate above one", 1, 0, ConstantRate(0.05), FixedContribution(1), Options{TaxDrag: &TaxDrag{Rate: 1.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project(tt.periods, tt.initial, tt.rate, tt.contribution, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestProject_Overflow(t *testing.T) {
	_, err := Project(1000, 1e300, ConstantRate(10), FixedContribution(0), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNumericOverflow)
}

func TestProject_RateFuncErrorPropagates(t *testing.T) {
	boom := errors.New("feed unavailable")
	rate := RateFunc(func(period int) (float64, error) {
		if period == 3 {
			return 0, boom
		}
		return 0.01, nil
	})
	_, err := Project(5, 0, rate, FixedContribution(1), Options{})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "period 3")
}

func TestProjectionEngine_SetLogger(t *testing.T) {
	e := NewProjectionEngine()
	e.SetLogger(nil)
	assert.IsType(t, NopLogger{}, e.Logger)
}

func TestProjectContext_StopsBetweenPeriods(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	rate := RateFunc(func(period int) (float64, error) {
		calls++
		if period == 3 {
			cancel()
		}
		return 0.05, nil
	})

	_, err := NewProjectionEngine().ProjectContext(ctx, 100, 0, rate, FixedContribution(1), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "period 4")
	assert.Equal(t, 3, calls)
}
