// Package forms validates signup and login input before anything is sent to
// the backend. Every rejection is a failure.KindValidation carrying the
// message shown to the agent.
package forms

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/agentportal/internal/failure"
	"github.com/go-playground/validator/v10"
)

const (
	MsgAllFieldsRequired   = "All fields are required"
	MsgCredentialsRequired = "Email and password are required"
	MsgInvalidEmail        = "Please enter a valid email address"
	MsgPasswordTooShort    = "Password must be at least 8 characters long"
	MsgPasswordsDoNotMatch = "Passwords do not match"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type SignupInput struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Normalize trims surrounding whitespace from the email. Passwords are kept
// verbatim.
func (in *SignupInput) Normalize() {
	in.Email = strings.TrimSpace(in.Email)
}

func (in *LoginInput) Normalize() {
	in.Email = strings.TrimSpace(in.Email)
}

// ValidateSignup checks, in order: all fields present, email format,
// password length, confirmation match.
func ValidateSignup(in SignupInput) error {
	in.Normalize()
	return firstFailure(validate.Struct(in), MsgAllFieldsRequired, map[string]string{
		"Email.email":             MsgInvalidEmail,
		"Password.min":            MsgPasswordTooShort,
		"ConfirmPassword.eqfield": MsgPasswordsDoNotMatch,
	})
}

// ValidateLogin checks that both fields are present and the email is well formed.
func ValidateLogin(in LoginInput) error {
	in.Normalize()
	return firstFailure(validate.Struct(in), MsgCredentialsRequired, map[string]string{
		"Email.email": MsgInvalidEmail,
	})
}

// firstFailure turns validator errors into one display message. Missing
// fields win over everything else; otherwise the first failing field in
// declaration order decides.
func firstFailure(err error, requiredMsg string, messages map[string]string) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return failure.Validation(err.Error())
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return failure.Validation(requiredMsg)
		}
	}
	for _, fe := range verrs {
		if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
			return failure.Validation(msg)
		}
	}
	return failure.Validation(verrs[0].Error())
}
