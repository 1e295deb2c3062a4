package errors

import (
	"fmt"
	"sort"
	"strings"
)

// MetaValidationErrors is the metadata key holding per-field messages
const MetaValidationErrors = "validation_errors"

// ValidationError collects messages per field
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Error lists the fields in sorted order so messages are stable
func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(v.Fields[name], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AddFieldError records a message against field
func (v *ValidationError) AddFieldError(field, message string) {
	v.Fields[field] = append(v.Fields[field], message)
}

// HasErrors reports whether any field failed
func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

// ToError converts to an InvalidArgument *Error, or nil when nothing failed
func (v *ValidationError) ToError() *Error {
	if !v.HasErrors() {
		return nil
	}
	return InvalidArgument(v.Error()).WithMeta(MetaValidationErrors, v.Fields)
}

// ValidationBuilder accumulates field errors fluently
type ValidationBuilder struct {
	err *ValidationError
}

// NewValidationBuilder creates a new builder
func NewValidationBuilder() *ValidationBuilder {
	return &ValidationBuilder{err: NewValidationError()}
}

// Field adds a message for field
func (vb *ValidationBuilder) Field(field, message string) *ValidationBuilder {
	vb.err.AddFieldError(field, message)
	return vb
}

// Fieldf adds a formatted message for field
func (vb *ValidationBuilder) Fieldf(field, format string, args ...any) *ValidationBuilder {
	return vb.Field(field, fmt.Sprintf(format, args...))
}

// RequiredField marks field as missing
func (vb *ValidationBuilder) RequiredField(field string) *ValidationBuilder {
	return vb.Field(field, "is required")
}

// InvalidField marks field as malformed
func (vb *ValidationBuilder) InvalidField(field, reason string) *ValidationBuilder {
	return vb.Fieldf(field, "is invalid: %s", reason)
}

// Build returns nil when nothing failed
func (vb *ValidationBuilder) Build() error {
	if !vb.err.HasErrors() {
		return nil
	}
	return vb.err.ToError()
}

// ValidateRequired flags a blank string
func ValidateRequired(field, value string, vb *ValidationBuilder) {
	if strings.TrimSpace(value) == "" {
		vb.RequiredField(field)
	}
}

// ValidateRange flags a value outside [minValue, maxValue]
func ValidateRange(field string, value, minValue, maxValue int, vb *ValidationBuilder) {
	if value < minValue || value > maxValue {
		vb.Fieldf(field, "must be between %d and %d", minValue, maxValue)
	}
}

// ValidatePositive flags a value below one
func ValidatePositive(field string, value int, vb *ValidationBuilder) {
	if value <= 0 {
		vb.Field(field, "must be positive")
	}
}

// ValidateEnum flags a value not in allowed
func ValidateEnum(field, value string, allowed []string, vb *ValidationBuilder) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	vb.Fieldf(field, "must be one of: %s", strings.Join(allowed, ", "))
}
