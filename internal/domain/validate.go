package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRecord checks a record at the ingestion boundary. The returned error is a
// *ValidationError listing every offending field.
func ValidateRecord(rec ParticipationRecord) error {
	err := validate.Struct(rec)
	if err == nil {
		if rec.Date != nil && rec.Date.IsZero() {
			return NewValidationError(FieldError{Field: "date", Message: "date is not a valid calendar date"})
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: lowerFirst(fe.Field()), Message: describe(fe)})
	}
	return NewValidationError(fields...)
}

// CleanRecord validates rec and clears malformed optional contact fields
// (phone number, gender). It returns the cleaned record and the cleared fields,
// or an error when a required field is invalid.
func CleanRecord(rec ParticipationRecord) (ParticipationRecord, []FieldError, error) {
	err := ValidateRecord(rec)
	if err == nil {
		return rec, nil, nil
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return rec, nil, err
	}
	for _, f := range verr.Fields {
		switch f.Field {
		case "phoneNumber", "gender":
		default:
			return rec, nil, err
		}
	}
	for _, f := range verr.Fields {
		switch f.Field {
		case "phoneNumber":
			rec.PhoneNumber = ""
		case "gender":
			rec.Gender = ""
		}
	}
	return rec, verr.Fields, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain digits only"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
