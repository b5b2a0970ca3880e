package validation

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SignUpRequest mirrors the fields needed for signup validation.
type SignUpRequest struct {
	Email    string
	Password string
	FullName string
}

// ValidateSignUpRequest validates the fields of a signup request.
// Returns a slice of field errors; empty slice means valid.
func ValidateSignUpRequest(req SignUpRequest) []FieldError {
	var errs []FieldError

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(email) {
		errs = append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if len(req.Password) < 6 {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}

	if strings.TrimSpace(req.FullName) == "" {
		errs = append(errs, FieldError{Field: "fullName", Message: "fullName is required"})
	}

	return errs
}

// PasswordChangeRequest mirrors the fields needed for password update
// validation. Confirm must repeat the new password.
type PasswordChangeRequest struct {
	Password string
	Confirm  string
}

// ValidatePasswordChangeRequest validates a new password pair.
func ValidatePasswordChangeRequest(req PasswordChangeRequest) []FieldError {
	var errs []FieldError

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if len(req.Password) < 6 {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}

	if req.Confirm != req.Password {
		errs = append(errs, FieldError{Field: "confirmPassword", Message: "passwords do not match"})
	}

	return errs
}
