// Package form models the "add track" form as an immutable value with a
// pure update function, validation and submission.
package form

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"trackshelf/pkg/models"
)

// Field names one input of the form.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldURL         Field = "url"
	FieldRating      Field = "rating"
	FieldSingerName  Field = "singerName"
	FieldSingerGenre Field = "singerGenre"
	FieldSingerBio   Field = "singerBio"
	FieldSingerPhoto Field = "singerPhoto"
)

// Fields lists every input in display order.
var Fields = []Field{
	FieldTitle, FieldDescription, FieldURL, FieldRating,
	FieldSingerName, FieldSingerGenre, FieldSingerBio, FieldSingerPhoto,
}

// Genres offered by the genre picker. Any other genre text is accepted.
var Genres = []string{"Pop", "Rock", "Jazz", "Hip Hop", "R&B", "Eletrônica", "Sertanejo", "MPB"}

// TrackForm holds the raw text of every input. Values are never mutated in
// place; Update returns a new form.
type TrackForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Rating      string `json:"rating"`
	SingerName  string `json:"singerName"`
	SingerGenre string `json:"singerGenre"`
	SingerBio   string `json:"singerBio"`
	SingerPhoto string `json:"singerPhoto"`
}

// Update returns a copy of f with field set to value. An unknown field
// returns f unchanged and an error.
func Update(f TrackForm, field Field, value string) (TrackForm, error) {
	switch field {
	case FieldTitle:
		f.Title = value
	case FieldDescription:
		f.Description = value
	case FieldURL:
		f.URL = value
	case FieldRating:
		f.Rating = value
	case FieldSingerName:
		f.SingerName = value
	case FieldSingerGenre:
		f.SingerGenre = value
	case FieldSingerBio:
		f.SingerBio = value
	case FieldSingerPhoto:
		f.SingerPhoto = value
	default:
		return f, fmt.Errorf("unknown form field %q", field)
	}
	return f, nil
}

// Get returns the current text of field.
func (f TrackForm) Get(field Field) (string, bool) {
	switch field {
	case FieldTitle:
		return f.Title, true
	case FieldDescription:
		return f.Description, true
	case FieldURL:
		return f.URL, true
	case FieldRating:
		return f.Rating, true
	case FieldSingerName:
		return f.SingerName, true
	case FieldSingerGenre:
		return f.SingerGenre, true
	case FieldSingerBio:
		return f.SingerBio, true
	case FieldSingerPhoto:
		return f.SingerPhoto, true
	}
	return "", false
}

// IsZero reports whether every input is empty.
func (f TrackForm) IsZero() bool {
	return f == TrackForm{}
}

// Payload converts the form into a create request. The rating is parsed as
// a float; anything unparseable becomes 0. No range check is applied.
func Payload(f TrackForm) models.NewTrack {
	return models.NewTrack{
		Title:       sanitizeInput(f.Title),
		Description: sanitizeInput(f.Description),
		URL:         sanitizeInput(f.URL),
		Rating:      parseRating(f.Rating),
		Singer: models.NewSinger{
			Name:      sanitizeInput(f.SingerName),
			Genre:     sanitizeInput(f.SingerGenre),
			Biography: sanitizeInput(f.SingerBio),
			PhotoURL:  sanitizeInput(f.SingerPhoto),
		},
	}
}

func parseRating(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Creator sends a new track to the catalog.
type Creator interface {
	CreateTrack(ctx context.Context, track models.NewTrack) error
}

// Submit validates f and, if valid, sends it. On success the returned form
// is empty. On any failure f is returned unchanged so no input is lost; a
// validation failure never reaches the network.
func Submit(ctx context.Context, creator Creator, f TrackForm) (TrackForm, error) {
	if errs := Validate(f); len(errs) > 0 {
		return f, &ValidationFailure{Errors: errs}
	}

	if err := creator.CreateTrack(ctx, Payload(f)); err != nil {
		return f, err
	}
	return TrackForm{}, nil
}

// sanitizeInput removes null bytes and surrounding whitespace.
func sanitizeInput(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}
