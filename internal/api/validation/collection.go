package validation

import "strings"

var validIDTypes = map[string]bool{
	"ic":              true,
	"passport":        true,
	"driving_license": true,
}

// CollectKitRequest mirrors the fields needed for kit collection validation.
type CollectKitRequest struct {
	CollectionType string
	RepFullName    string
	RepIDNumber    string
	RepIDType      string
}

// ValidateCollectKitRequest validates a kit collection submission. For
// representative collections the representative's full name and ID number
// are required before any repository call is made.
func ValidateCollectKitRequest(req CollectKitRequest) []FieldError {
	var errs []FieldError

	switch req.CollectionType {
	case "self":
	case "representative":
		if strings.TrimSpace(req.RepFullName) == "" {
			errs = append(errs, FieldError{Field: "representative.fullName", Message: "representative full name is required"})
		}
		if strings.TrimSpace(req.RepIDNumber) == "" {
			errs = append(errs, FieldError{Field: "representative.idNumber", Message: "representative ID number is required"})
		}
		if req.RepIDType != "" && !validIDTypes[req.RepIDType] {
			errs = append(errs, FieldError{Field: "representative.idType", Message: "idType must be \"ic\", \"passport\", or \"driving_license\""})
		}
	case "":
		errs = append(errs, FieldError{Field: "collectionType", Message: "collectionType is required"})
	default:
		errs = append(errs, FieldError{Field: "collectionType", Message: "collectionType must be \"self\" or \"representative\""})
	}

	return errs
}
