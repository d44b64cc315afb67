package recorder

import (
	"context"
	"time"

	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/shopspring/decimal"
)

// RunSummary is one row of run history.
type RunSummary struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Source      string    `json:"source" yaml:"source"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	DurationMs  int64     `json:"duration_ms" yaml:"duration_ms"`
	Scenarios   int       `json:"scenarios" yaml:"scenarios"`
	Sweeps      int       `json:"sweeps" yaml:"sweeps"`
}

// ScenarioRecord is the stored summary of one scenario in a run.
type ScenarioRecord struct {
	Name         string          `json:"name" yaml:"name"`
	Periods      int             `json:"periods" yaml:"periods"`
	Compounding  string          `json:"compounding" yaml:"compounding"`
	FinalBalance decimal.Decimal `json:"final_balance" yaml:"final_balance"`
	Principal    decimal.Decimal `json:"principal" yaml:"principal"`
	Gain         decimal.Decimal `json:"gain" yaml:"gain"`
	TotalTax     decimal.Decimal `json:"total_tax" yaml:"total_tax"`
}

// PeriodBalance is one stored period of a scenario.
type PeriodBalance struct {
	Period    int             `json:"period" yaml:"period"`
	Balance   decimal.Decimal `json:"balance" yaml:"balance"`
	Principal decimal.Decimal `json:"principal" yaml:"principal"`
	Gain      decimal.Decimal `json:"gain" yaml:"gain"`
}

// Recorder persists run history for later comparison.
type Recorder interface {
	RecordRun(ctx context.Context, report *domain.RunReport) error
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	RunScenarios(ctx context.Context, runID string) ([]ScenarioRecord, error)
	ScenarioBalances(ctx context.Context, runID, scenario string) ([]PeriodBalance, error)
	Close() error
}

var (
	_ Recorder = (*SQLiteRecorder)(nil)
	_ Recorder = (*NoopRecorder)(nil)
)
