package calculation

import "math"

// FutureValueOfAnnuity is the balance reached by paying payment at the end of each
// of periods periods at rate per period, starting from zero.
func FutureValueOfAnnuity(payment, rate float64, periods int) float64 {
	if rate == 0 {
		return payment * float64(periods)
	}
	return payment * (math.Pow(1+rate, float64(periods)) - 1) / rate
}

// RequiredContribution is the level end-of-period payment that grows to target
// after periods periods at rate (sinking fund).
func RequiredContribution(target, rate float64, periods int) (float64, error) {
	if periods <= 0 {
		return 0, invalidf("periods must be positive, got %d", periods)
	}
	if err := checkRate(rate); err != nil {
		return 0, invalidf("%v (got %v)", err, rate)
	}
	if rate == 0 {
		return target / float64(periods), nil
	}
	return target * rate / (math.Pow(1+rate, float64(periods)) - 1), nil
}

// PeriodsToTarget returns the first period whose balance reaches target.
func PeriodsToTarget(result ProjectionResult, target float64) (int, bool) {
	for _, p := range result.Periods {
		if p.Balance >= target {
			return p.Period, true
		}
	}
	return 0, false
}

// Milestone records when a balance target is first reached.
type Milestone struct {
	Target  float64 `json:"target"`
	Period  int     `json:"period"`
	Reached bool    `json:"reached"`
}

// Milestones evaluates PeriodsToTarget for each target, in the given order.
func Milestones(result ProjectionResult, targets []float64) []Milestone {
	out := make([]Milestone, 0, len(targets))
	for _, t := range targets {
		period, ok := PeriodsToTarget(result, t)
		out = append(out, Milestone{Target: t, Period: period, Reached: ok})
	}
	return out
}
