package loudness

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned by RMS when the window holds no samples.
// Callers treat it as silence.
var ErrNoInput = errors.New("no input samples")

// ConfigurationError is returned when a configuration value is out of range.
// The previously active configuration stays in effect.
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}
