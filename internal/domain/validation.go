package domain

import "fmt"

// ValidationError wraps ErrValidation with a human readable reason.
func ValidationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
