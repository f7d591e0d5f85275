package chat

import "fmt"

// ValidationError is returned when a submission is rejected before any
// transcript or network activity.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s", e.Reason)
}
