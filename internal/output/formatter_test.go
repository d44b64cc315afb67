package output

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rpgo/asset-projector/internal/config"
	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

func buildTestReport() *domain.RunReport {
	return &domain.RunReport{
		RunID:       "run-1",
		Source:      "cli",
		GeneratedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		Scenarios: []domain.ScenarioResult{
			{
				Name:        "index-fund",
				Periods:     2,
				Compounding: "annual",
				Summary: domain.ScenarioSummary{
					FinalBalance: decimal.NewFromInt(2050000),
					Principal:    decimal.NewFromInt(2000000),
					Gain:         decimal.NewFromInt(50000),
				},
				Rows: []domain.PeriodRow{
					{Period: 1, Balance: decimal.NewFromInt(1000000)},
					{Period: 2, Balance: decimal.NewFromInt(2050000)},
				},
			},
		},
	}
}

func TestFormattersRoundTripRunID(t *testing.T) {
	for _, name := range AvailableFormatterNames() {
		var buf bytes.Buffer
		if err := WriteReport(&buf, buildTestReport(), name); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		var got domain.RunReport
		var err error
		if name == "yaml" {
			err = yaml.Unmarshal(buf.Bytes(), &got)
		} else {
			err = json.Unmarshal(buf.Bytes(), &got)
		}
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if got.RunID != "run-1" || len(got.Scenarios) != 1 {
			t.Fatalf("%s: report not preserved: %+v", name, got)
		}
		if !got.Scenarios[0].Summary.FinalBalance.Equal(decimal.NewFromInt(2050000)) {
			t.Fatalf("%s: final balance = %s", name, got.Scenarios[0].Summary.FinalBalance)
		}
	}
}

func TestJSONFormatterIsIndented(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "\n  \"run_id\": \"run-1\"") {
		t.Fatalf("expected indented run_id, got: %s", out)
	}
}

func TestCompactJSONIsOneLine(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, buildTestReport(), "ndjson"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected a single line, got: %q", buf.String())
	}
}

func TestFormatterAliasResolution(t *testing.T) {
	cases := map[string]string{"json-pretty": "json", " YML ": "yaml", "JSON": "json"}
	for alias, want := range cases {
		f := GetFormatterByName(alias)
		if f == nil {
			t.Fatalf("alias %q did not resolve to a formatter", alias)
		}
		if f.Name() != want {
			t.Fatalf("alias %q resolved to %q, want %q", alias, f.Name(), want)
		}
	}
}

func TestUnknownFormatErrorIncludesSuggestions(t *testing.T) {
	err := WriteReport(&bytes.Buffer{}, buildTestReport(), "definitely-not-a-format")
	if err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "unsupported report format") || !strings.Contains(msg, "Try one of:") {
		t.Fatalf("error message missing suggestions: %s", msg)
	}
}

func TestSaveConfigurationReloads(t *testing.T) {
	parser := config.NewInputParser()
	path := filepath.Join(t.TempDir(), "deck.yaml")
	if err := SaveConfiguration(parser.CreateExampleConfiguration(), path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := parser.LoadFromFile(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Scenarios) == 0 {
		t.Fatalf("expected scenarios after reload")
	}
}
