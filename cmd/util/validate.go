package util

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/resonatehq/console/internal/util"
)

var validate = newValidator()

// validates the same binding tags the web forms use
func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return v
}

// Validate checks v against its binding tags and reports every failed field
// in a single error.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return errors.New(util.ValidationMessage(err))
	}
	return nil
}
