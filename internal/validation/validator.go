package validation

import (
	"fmt"
	"sort"
	"strings"

	"cardguard/internal/errors"
)

// Validator collects field errors.
type Validator struct {
	Errors map[string]string
}

// New creates a new validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records message for field, keeping the first message per field.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	v.CheckFn(ok, field, func() string { return message })
}

func (v *Validator) CheckFn(ok bool, field string, message func() string) {
	if !ok {
		v.AddError(field, message())
	}
}

// NotBlank checks an optional string is non-empty when set.
func (v *Validator) NotBlank(field string, value *string) {
	if value != nil {
		v.Check(strings.TrimSpace(*value) != "", field, "must not be empty")
	}
}

func (v *Validator) MaxLength(field, value string, n int) {
	v.CheckFn(len(value) <= n, field, func() string {
		return fmt.Sprintf("must not be more than %d characters long", n)
	})
}

// Err returns a ValidationError listing every failed field, or nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	fields := make([]string, 0, len(v.Errors))
	for f := range v.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return errors.NewValidationError("invalid request: "+strings.Join(fields, ", "), v.Errors)
}
