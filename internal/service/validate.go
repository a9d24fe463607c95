package service

import (
	"errors"
	"reflect"
	"strings"

	"approvalflow/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationError converts validator output to an apperror.Validation
// naming the first offending field.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Validation("invalid input: %v", err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperror.Validation("%s is required", fe.Field())
	case "email":
		return apperror.Validation("%s must be a valid email address", fe.Field())
	case "oneof":
		return apperror.Validation("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return apperror.Validation("%s must be at least %s", fe.Field(), fe.Param())
	}
	return apperror.Validation("%s is invalid", fe.Field())
}

func validateStruct(s interface{}) error {
	return validationError(validate.Struct(s))
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
