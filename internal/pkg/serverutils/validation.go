package serverutils

import (
	"strings"

	"ask-engine-be/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and folds failures into a
// single ClientError so the middleware answers with a 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var fields []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			fields = append(fields, fieldErr.Field())
		}
		return errs.NewClientError("validation failed for: %s", strings.Join(fields, ", "))
	}
	return nil
}
