package form

import (
	"strings"
	"unicode/utf8"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationFailure is returned by Submit when required inputs are missing
// or malformed. No request was sent.
type ValidationFailure struct {
	Errors []ValidationError
}

func (v *ValidationFailure) Error() string {
	msgs := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		msgs = append(msgs, e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

const (
	maxTextLength = 255
	maxLongText   = 2000
	maxURLLength  = 2048
)

// Validate checks the form before submission. Title and artist name are
// required.
func Validate(f TrackForm) []ValidationError {
	var errs []ValidationError

	if e := validateRequired(string(FieldTitle), "Title", f.Title, "TITLE"); e != nil {
		errs = append(errs, *e)
	}
	if e := validateRequired(string(FieldSingerName), "Artist name", f.SingerName, "SINGER_NAME"); e != nil {
		errs = append(errs, *e)
	}

	for _, lf := range []struct {
		field Field
		value string
		max   int
	}{
		{FieldSingerGenre, f.SingerGenre, maxTextLength},
		{FieldDescription, f.Description, maxLongText},
		{FieldSingerBio, f.SingerBio, maxLongText},
		{FieldURL, f.URL, maxURLLength},
		{FieldSingerPhoto, f.SingerPhoto, maxURLLength},
	} {
		if utf8.RuneCountInString(lf.value) > lf.max {
			errs = append(errs, ValidationError{
				Field:   string(lf.field),
				Message: string(lf.field) + " is too long",
				Code:    "FIELD_TOO_LONG",
			})
		}
	}

	return errs
}

func validateRequired(field, label, value, code string) *ValidationError {
	value = sanitizeInput(value)
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: label + " is required",
			Code:    "MISSING_" + code,
		}
	}
	if utf8.RuneCountInString(value) > maxTextLength {
		return &ValidationError{
			Field:   field,
			Message: label + " too long (max 255 characters)",
			Code:    code + "_TOO_LONG",
		}
	}
	if strings.ContainsAny(value, "\n\r") {
		return &ValidationError{
			Field:   field,
			Message: label + " contains invalid characters",
			Code:    "INVALID_" + code + "_CHARACTERS",
		}
	}
	return nil
}
