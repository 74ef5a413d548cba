package dto

import (
	"fmt"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance for all request DTOs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation and maps failures onto the validation
// error sentinel so callers can classify them without knowing the library.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}
