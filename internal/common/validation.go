package common

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s=%v: %s", e.Field, e.Value, e.Message)
}

// Validator collects rule failures across fields.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// Check records msg against fieldName when ok is false.
func (v *Validator) Check(ok bool, fieldName string, value any, msg string) *Validator {
	if !ok {
		v.errors = append(v.errors, ValidationError{Field: fieldName, Value: value, Message: msg})
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Err joins every failure under ErrInvalidInput, or returns nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	errs := []error{ErrInvalidInput}
	for _, e := range v.errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	msgs := make([]string, 0, len(v.errors))
	for _, e := range v.errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value any) *ValidationError

func Required(fieldName string, value any) *ValidationError {
	if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
		return nil
	}
	if value != nil {
		if _, ok := value.(string); !ok {
			return nil
		}
	}
	return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
}

func Positive(fieldName string, value any) *ValidationError {
	var ok bool
	switch n := value.(type) {
	case int:
		ok = n > 0
	case int64:
		ok = n > 0
	case float64:
		ok = n > 0
	}
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be positive"}
	}
	return nil
}

// Between accepts ints in [lo, hi].
func Between(lo, hi int) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		n, ok := value.(int)
		if !ok || n < lo || n > hi {
			return &ValidationError{Field: fieldName, Value: value, Message: fmt.Sprintf("must be between %d and %d", lo, hi)}
		}
		return nil
	}
}

// OneOf accepts strings from allowed, compared case-insensitively.
func OneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		s, _ := value.(string)
		if slices.Contains(allowed, strings.ToLower(s)) {
			return nil
		}
		return &ValidationError{Field: fieldName, Value: value, Message: "must be one of " + strings.Join(allowed, ", ")}
	}
}
