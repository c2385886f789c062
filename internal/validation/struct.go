package validation

import (
	stderrors "errors"
	"reflect"
	"strings"

	"cardguard/internal/errors"
	"cardguard/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return models.Condition(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := models.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("factor", func(fl validator.FieldLevel) bool {
		return models.IsKnownFactor(fl.Field().String())
	})
	return v
}

// Struct validates s against its `validate` tags, recording failures under
// the field's json name.
func (v *Validator) Struct(s interface{}) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		v.AddError("request", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		v.AddError(fe.Field(), message(fe))
	}
}

// Struct is a shorthand for validating a single request.
func Struct(s interface{}) error {
	v := New()
	v.Struct(s)
	return v.Err()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "len":
		return "must be " + fe.Param() + " characters long"
	case "numeric":
		return "must contain only digits"
	case "max":
		return "must not be more than " + fe.Param() + " characters long"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "condition":
		return "must be one of: EQUAL GREATER LESS_THAN NOT IS"
	case "timeofday":
		return "must be a time of day as HH:MM or HH:MM:SS"
	case "factor":
		return "unknown factor"
	default:
		return "is invalid"
	}
}

// BodyError reports a request body that could not be decoded.
func BodyError() error {
	return errors.NewValidationError("invalid request body", map[string]string{"body": "must be valid JSON"})
}
