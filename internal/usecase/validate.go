package usecase

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return NewValidationError("invalid email format")
	}
	return nil
}

func validateCode(code string, digits int) error {
	if err := validate.Var(code, "required,numeric"); err != nil {
		return NewValidationError("otp code must contain only digits")
	}
	if err := validate.Var(code, fmt.Sprintf("len=%d", digits)); err != nil {
		return NewValidationError(fmt.Sprintf("otp code must be %d digits long", digits))
	}
	return nil
}

func validatePassword(password string) error {
	if err := validate.Var(password, "required,min=8,max=72"); err != nil {
		return NewValidationError("password must be between 8 and 72 characters")
	}
	return nil
}
