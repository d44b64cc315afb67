package calculation

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadRateTable reads a "period,rate" CSV (header optional). Periods must run
// 1, 2, 3, ... without gaps.
func LoadRateTable(r io.Reader) (*RateTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table: %w", err)
	}

	var rates []float64
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "period") {
			continue // header
		}
		period, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid period %q: %w", i+1, rec[0], err)
		}
		if period != len(rates)+1 {
			return nil, invalidf("line %d: expected period %d, got %d", i+1, len(rates)+1, period)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rate %q: %w", i+1, rec[1], err)
		}
		rates = append(rates, rate)
	}
	return NewRateTable(rates)
}

// LoadRateTableFile opens path and calls LoadRateTable.
func LoadRateTableFile(path string) (*RateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate table %s: %w", path, err)
	}
	defer f.Close()
	return LoadRateTable(f)
}
