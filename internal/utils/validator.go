package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the custom tags this service uses.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()

	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: validate}
}

func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		var errs validator.ValidationErrors
		if ok := errorsAs(err, &errs); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("field %s failed on %q", first.Field(), first.Tag())
		}
		return err
	}
	return nil
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "easy", "moderate", "hard":
		return true
	}
	return false
}

func errorsAs(err error, target *validator.ValidationErrors) bool {
	errs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = errs
	}
	return ok
}
