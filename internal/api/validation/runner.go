package validation

import "strings"

// CreateRunnerRequest mirrors the fields needed for runner registration
// validation.
type CreateRunnerRequest struct {
	FullName  string
	BibNumber string
	Email     string
}

// ValidateCreateRunnerRequest validates the fields of a runner registration.
func ValidateCreateRunnerRequest(req CreateRunnerRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.FullName) == "" {
		errs = append(errs, FieldError{Field: "fullName", Message: "fullName is required"})
	} else if len(req.FullName) > 255 {
		errs = append(errs, FieldError{Field: "fullName", Message: "fullName must be at most 255 characters"})
	}

	if strings.TrimSpace(req.BibNumber) == "" {
		errs = append(errs, FieldError{Field: "bibNumber", Message: "bibNumber is required"})
	}

	if req.Email != "" && !emailRegex.MatchString(req.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}

	return errs
}
