package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

var validate = validator.New()

// Validate runs struct tag validation and converts failures into a
// validation error with per-field details.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	details := map[string]any{}
	for _, fe := range fieldErrors {
		details[fe.Field()] = fmt.Sprintf("falla la regla '%s'", fe.Tag())
	}
	return apperrors.NewValidationError("payload inválido", details)
}
