package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(id string, at time.Time) *domain.RunReport {
	return &domain.RunReport{
		RunID:       id,
		Source:      "cli",
		GeneratedAt: at,
		DurationMs:  12,
		Scenarios: []domain.ScenarioResult{
			{
				Name:        "steady",
				Periods:     2,
				Compounding: "annual",
				Summary: domain.ScenarioSummary{
					FinalBalance: decimal.NewFromInt(103),
					Principal:    decimal.NewFromInt(100),
					Gain:         decimal.NewFromInt(3),
					TotalTax:     decimal.Zero,
				},
				Rows: []domain.PeriodRow{
					{Period: 1, Balance: decimal.NewFromInt(50), Principal: decimal.NewFromInt(50)},
					{Period: 2, Balance: decimal.NewFromInt(103), Principal: decimal.NewFromInt(100), Gain: decimal.NewFromInt(3)},
				},
			},
			{Name: "empty", Compounding: "monthly"},
		},
		Sweeps: []domain.SweepResult{{Name: "grid"}},
	}
}

func TestSQLiteRecorder(t *testing.T) {
	ctx := context.Background()
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer rec.Close()

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, rec.RecordRun(ctx, sampleReport("run-a", base)))
	require.NoError(t, rec.RecordRun(ctx, sampleReport("run-b", base.Add(time.Hour))))

	t.Run("list newest first", func(t *testing.T) {
		runs, err := rec.ListRuns(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "run-b", runs[0].RunID)
		assert.Equal(t, "run-a", runs[1].RunID)
		assert.Equal(t, "cli", runs[1].Source)
		assert.Equal(t, 2, runs[1].Scenarios)
		assert.Equal(t, 1, runs[1].Sweeps)
		assert.Equal(t, int64(12), runs[1].DurationMs)
		assert.True(t, base.Equal(runs[1].GeneratedAt))
	})

	t.Run("limit", func(t *testing.T) {
		runs, err := rec.ListRuns(ctx, 1)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "run-b", runs[0].RunID)
	})

	t.Run("scenarios keep deck order", func(t *testing.T) {
		scenarios, err := rec.RunScenarios(ctx, "run-a")
		require.NoError(t, err)
		require.Len(t, scenarios, 2)
		assert.Equal(t, "steady", scenarios[0].Name)
		assert.True(t, scenarios[0].FinalBalance.Equal(decimal.NewFromInt(103)))
		assert.True(t, scenarios[0].Gain.Equal(decimal.NewFromInt(3)))
		assert.Equal(t, "empty", scenarios[1].Name)
		assert.True(t, scenarios[1].FinalBalance.IsZero())
	})

	t.Run("period balances", func(t *testing.T) {
		balances, err := rec.ScenarioBalances(ctx, "run-a", "steady")
		require.NoError(t, err)
		require.Len(t, balances, 2)
		assert.Equal(t, 1, balances[0].Period)
		assert.True(t, balances[0].Balance.Equal(decimal.NewFromInt(50)))
		assert.True(t, balances[0].Gain.IsZero())
		assert.Equal(t, 2, balances[1].Period)
		assert.True(t, balances[1].Balance.Equal(decimal.NewFromInt(103)))
		assert.True(t, balances[1].Principal.Equal(decimal.NewFromInt(100)))

		balances, err = rec.ScenarioBalances(ctx, "run-a", "empty")
		require.NoError(t, err)
		assert.Empty(t, balances)
	})

	t.Run("unknown run", func(t *testing.T) {
		scenarios, err := rec.RunScenarios(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, scenarios)
	})

	t.Run("duplicate run id rejected", func(t *testing.T) {
		err := rec.RecordRun(ctx, sampleReport("run-a", base))
		assert.Error(t, err)
		runs, err := rec.ListRuns(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, runs, 2)
	})
}

func TestSQLiteRecorderReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	rec, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, rec.RecordRun(ctx, sampleReport("run-a", time.Unix(0, 0).UTC())))
	require.NoError(t, rec.Close())

	rec, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer rec.Close()
	runs, err := rec.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	ctx := context.Background()
	assert.NoError(t, rec.RecordRun(ctx, sampleReport("x", time.Now())))
	runs, err := rec.ListRuns(ctx, 5)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	balances, err := rec.ScenarioBalances(ctx, "x", "steady")
	assert.NoError(t, err)
	assert.Empty(t, balances)
	assert.NoError(t, rec.Close())
}
