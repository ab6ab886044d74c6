package form

import (
	"errors"
	"fmt"
)

// Rejection reasons.
const (
	ReasonTooShort     = "too_short"
	ReasonTooLong      = "too_long"
	ReasonDigitsOnly   = "digits_only"
	ReasonBadPrefix    = "bad_prefix"
	ReasonBadLength    = "bad_length"
	ReasonNotANumber   = "not_a_number"
	ReasonOutOfRange   = "out_of_range"
	ReasonNotPositive  = "not_positive"
	ReasonTooLarge     = "too_large"
	ReasonEmpty        = "empty"
	ReasonUnknownValue = "unknown_value"
	ReasonPhotoNeeded  = "photo_needed"
)

// ValidationError is a user-correctable rejection of a single field.
type ValidationError struct {
	Field  string
	Reason string
	// Message is the user-facing explanation shown on re-prompt.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func reject(field, reason, message string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Message: message}
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
