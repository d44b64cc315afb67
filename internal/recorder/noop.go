package recorder

import (
	"context"

	"github.com/rpgo/asset-projector/internal/domain"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(context.Context, *domain.RunReport) error  { return nil }
func (n *NoopRecorder) ListRuns(context.Context, int) ([]RunSummary, error) { return nil, nil }
func (n *NoopRecorder) RunScenarios(context.Context, string) ([]ScenarioRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) ScenarioBalances(context.Context, string, string) ([]PeriodBalance, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
