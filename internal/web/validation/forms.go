package validation

import "strings"

// bcrypt rejects passwords longer than 72 bytes.
const maxPasswordLength = 72

// FieldError describes a single invalid form field.
type FieldError struct {
	Field   string
	Message string
}

// CredentialsForm mirrors the fields of the register and login forms.
type CredentialsForm struct {
	Username string
	Password string
}

// ValidateCredentialsForm validates a submitted username/password form.
func ValidateCredentialsForm(form CredentialsForm) []FieldError {
	var errs []FieldError

	username := strings.TrimSpace(form.Username)
	if username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "username is required"})
	} else if len(username) > 64 {
		errs = append(errs, FieldError{Field: "username", Message: "username must be at most 64 characters"})
	}

	if form.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if len(form.Password) > maxPasswordLength {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at most 72 characters"})
	}

	return errs
}
