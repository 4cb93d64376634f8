// internal/ec/select.go
package ec

import (
	"errors"
	"fmt"
)

// FindWorking opens candidates in order and returns the first one whose
// Open succeeds. Candidates that fail are left closed.
//
// When every candidate fails the result wraps ErrNoWorkingController
// together with each backend's own error. No state is cached between
// calls.
func FindWorking(candidates []Controller) (Controller, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrNoWorkingController)
	}

	errs := make([]error, 0, len(candidates)+1)
	errs = append(errs, ErrNoWorkingController)

	for _, c := range candidates {
		if err := c.Open(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			continue
		}
		return c, nil
	}

	return nil, errors.Join(errs...)
}
