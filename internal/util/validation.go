package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationMessage joins the failed fields of a validator error into one
// message, for example "lastName is required, dateOfBirth is required".
// Other errors are returned as is.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Tag() == "required" {
			msgs[i] = fmt.Sprintf("%s is required", fe.Field())
		} else {
			msgs[i] = fmt.Sprintf("%s is invalid", fe.Field())
		}
	}

	return strings.Join(msgs, ", ")
}
