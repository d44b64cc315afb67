package calculation

import "math"

// Deflate rescales a nominal result to real terms, dividing every monetary
// figure of period p by (1+inflationRate)^p. The input is not modified.
func Deflate(result ProjectionResult, inflationRate float64) (ProjectionResult, error) {
	if math.IsNaN(inflationRate) || math.IsInf(inflationRate, 0) || inflationRate <= -1 {
		return ProjectionResult{}, invalidf("inflation rate must be finite and > -1, got %v", inflationRate)
	}
	out := ProjectionResult{Initial: result.Initial, Periods: make([]PeriodResult, len(result.Periods))}
	for i, p := range result.Periods {
		f := math.Pow(1+inflationRate, float64(p.Period))
		out.Periods[i] = PeriodResult{
			Period:       p.Period,
			Rate:         p.Rate,
			Contribution: p.Contribution / f,
			Growth:       p.Growth / f,
			TaxPaid:      p.TaxPaid / f,
			Balance:      p.Balance / f,
			Principal:    p.Principal / f,
			Gain:         p.Gain / f,
		}
	}
	return out, nil
}

// RealValue discounts a nominal amount received after periods of inflation.
func RealValue(nominal, inflationRate float64, periods int) float64 {
	return nominal / math.Pow(1+inflationRate, float64(periods))
}
