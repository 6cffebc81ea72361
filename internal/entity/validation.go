package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError carries every constraint violation found for a payload.
type ValidationError struct {
	Violations []string
}

func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

var noteValidator = newNoteValidator()

func newNoteValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("json_list_nonempty", func(fl validator.FieldLevel) bool {
		var list []json.RawMessage
		if err := json.Unmarshal([]byte(fl.Field().String()), &list); err != nil {
			return false
		}
		return len(list) > 0
	})
	_ = v.RegisterValidation("json_string_list", func(fl validator.FieldLevel) bool {
		var list []string
		if err := json.Unmarshal([]byte(fl.Field().String()), &list); err != nil {
			return false
		}
		return list != nil
	})
	return v
}

func validationErrorFrom(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			violations = append(violations, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			violations = append(violations, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
		}
	}
	return NewValidationError(violations...)
}
