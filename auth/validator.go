package auth

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"personal-chat/errors"
)

var validate = validator.New()

// RegisterRequest carries the profile fields accepted at sign-up.
// Mobile must be exactly ten digits and loginId exactly eight
// alphanumerics, matching the legacy account records this system
// imports.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Mobile    string `json:"mobile" validate:"omitempty,len=10,numeric"`
	Email     string `json:"email" validate:"required,email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	LoginID   string `json:"loginId" validate:"omitempty,len=8,alphanum"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

// isPasswordComplex requires a lowercase, an uppercase and a special
// character.
func isPasswordComplex(s string) bool {
	var hasUpper, hasLower, hasSpecial bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasSpecial
}
