package output

import (
	"github.com/goccy/go-json"
	"github.com/rpgo/asset-projector/internal/domain"
)

// JSONFormatter serializes the run report as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *domain.RunReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

func compactJSON(report *domain.RunReport) ([]byte, error) {
	out, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
