package valuation

import "fmt"

// ErrInvalidInput is returned when an engine precondition is violated
// (non-positive discount rate, shares, debt, and so on).
type ErrInvalidInput struct {
	Reason string
}

func (e *ErrInvalidInput) Error() string {
	return "invalid valuation input: " + e.Reason
}

// ErrMissingData is returned when a required field or period is absent from
// the parsed records.
type ErrMissingData struct {
	Field  string
	Period string
}

func (e *ErrMissingData) Error() string {
	return fmt.Sprintf("missing data: field %q for period %q", e.Field, e.Period)
}
