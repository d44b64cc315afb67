package output

import (
	"github.com/rpgo/asset-projector/internal/domain"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter serializes the run report as YAML, the same format decks are written in.
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(report *domain.RunReport) ([]byte, error) {
	return yaml.Marshal(report)
}
