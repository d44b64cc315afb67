package calculation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration marks inputs the engine refuses to project.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNumericOverflow is returned when a balance leaves the representable float64 range
	// (roughly ±1.8e308). Realistic horizons and rates stay far below it.
	ErrNumericOverflow = errors.New("numeric overflow")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
