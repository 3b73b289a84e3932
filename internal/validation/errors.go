package validation

import "fmt"

// Reason classifies why a payload failed validation.
type Reason string

const (
	ReasonMissingField        Reason = "missing_field"
	ReasonInvalidFormat       Reason = "invalid_format"
	ReasonConstraintViolation Reason = "constraint_violation"
	ReasonInvalidEnumValue    Reason = "invalid_enum_value"
)

// Sentinels for errors.Is matching on the failure reason alone.
var (
	ErrMissingField        = &Error{Reason: ReasonMissingField}
	ErrInvalidFormat       = &Error{Reason: ReasonInvalidFormat}
	ErrConstraintViolation = &Error{Reason: ReasonConstraintViolation}
	ErrInvalidEnumValue    = &Error{Reason: ReasonInvalidEnumValue}
)

// Error is a field-level validation failure.
type Error struct {
	// Collection is the collection the payload was validated against.
	Collection string
	// Field is the offending field name.
	Field string
	// Reason classifies the failure.
	Reason Reason
	// Message is a human-readable description.
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s.%s: %s: %s", e.Collection, e.Field, e.Reason, e.Message)
}

// Is matches sentinels by reason, or another *Error by reason and field.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Field == "" {
		return t.Reason == e.Reason
	}
	return t.Reason == e.Reason && t.Field == e.Field
}

func fail(collection, field string, reason Reason, format string, args ...any) *Error {
	return &Error{
		Collection: collection,
		Field:      field,
		Reason:     reason,
		Message:    fmt.Sprintf(format, args...),
	}
}
