// Package validation provides small string validators and an accumulating field validator.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// IntRange validates that a field is a valid integer between minVal and maxVal.
// Empty values are accepted.
func IntRange(fieldName string, minVal, maxVal int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return fieldName + " must be a number."
		}
		if i < minVal || i > maxVal {
			return fmt.Sprintf("%s must be between %d and %d.", fieldName, minVal, maxVal)
		}
		return ""
	}
}

// In validates that a non-empty field is exactly one of the provided options.
func In(fieldName string, options []string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		for _, opt := range options {
			if v == opt {
				return ""
			}
		}
		return fieldName + " is invalid."
	}
}

// Pattern validates that a non-empty field matches the provided regular expression.
func Pattern(fieldName string, re *regexp.Regexp) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if !re.MatchString(v) {
			return fieldName + " is invalid."
		}
		return ""
	}
}

// Errors maps a field name to its first validation message.
type Errors map[string]string

// Fields returns the failing field names, sorted.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// FieldValidator provides a fluent API for validating multiple fields.
// Failures accumulate across fields.
type FieldValidator struct {
	errors Errors
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(Errors)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field and skips fields that already failed.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	if _, failed := fv.errors[field]; failed {
		return fv
	}
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break // Stop at first error per field
		}
	}
	return fv
}

// Add records msg for field unless the field already has an error.
func (fv *FieldValidator) Add(field, msg string) *FieldValidator {
	if _, failed := fv.errors[field]; !failed {
		fv.errors[field] = msg
	}
	return fv
}

// Valid reports whether no errors were recorded.
func (fv *FieldValidator) Valid() bool {
	return len(fv.errors) == 0
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() Errors {
	return fv.errors
}
