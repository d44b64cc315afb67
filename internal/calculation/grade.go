package calculation

import "math"

// GradeStep assigns a grade and salary to every tenure year up to and including UpToTenure.
type GradeStep struct {
	UpToTenure   int
	Grade        string
	AnnualSalary float64
}

// GradeLadder is a step salary schedule. Tenure beyond the last step stays on the last step.
type GradeLadder struct {
	steps []GradeStep
}

// NewGradeLadder validates steps: non-empty, UpToTenure strictly ascending, salaries non-negative.
func NewGradeLadder(steps []GradeStep) (*GradeLadder, error) {
	if len(steps) == 0 {
		return nil, invalidf("grade ladder needs at least one step")
	}
	cp := make([]GradeStep, len(steps))
	copy(cp, steps)
	for i, s := range cp {
		if s.UpToTenure < 1 {
			return nil, invalidf("grade step %d (%s): up_to_tenure %d must be >= 1", i, s.Grade, s.UpToTenure)
		}
		if i > 0 && s.UpToTenure <= cp[i-1].UpToTenure {
			return nil, invalidf("grade step %d (%s): up_to_tenure not ascending", i, s.Grade)
		}
		if math.IsNaN(s.AnnualSalary) || math.IsInf(s.AnnualSalary, 0) || s.AnnualSalary < 0 {
			return nil, invalidf("grade step %d (%s): salary must be finite and non-negative", i, s.Grade)
		}
	}
	return &GradeLadder{steps: cp}, nil
}

// Lookup returns the step covering tenureYear.
func (l *GradeLadder) Lookup(tenureYear int) GradeStep {
	for _, s := range l.steps {
		if tenureYear <= s.UpToTenure {
			return s
		}
	}
	return l.steps[len(l.steps)-1]
}

// AnnualSalary implements SalarySchedule.
func (l *GradeLadder) AnnualSalary(tenureYear int) float64 {
	return l.Lookup(tenureYear).AnnualSalary
}
