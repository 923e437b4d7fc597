package hubness

import (
	"errors"
	"fmt"
)

// ErrConfiguration reports invalid parameters: mismatched array lengths,
// non-positive k, fewer clusters than an index requires. Configuration
// errors are surfaced synchronously and are never retried.
var ErrConfiguration = errors.New("hubness: invalid configuration")

// ErrDataAvailability reports a missing required input, such as absent
// ground-truth labels or an uncomputed distance matrix.
var ErrDataAvailability = errors.New("hubness: required input unavailable")

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func dataErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataAvailability, fmt.Sprintf(format, args...))
}
