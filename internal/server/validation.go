package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"trackshelf/internal/form"
	"trackshelf/internal/session"

	"github.com/sirupsen/logrus"
)

const maxGenreLength = 100

// ValidationResult contains validation results
type ValidationResult struct {
	Valid  bool                   `json:"valid"`
	Errors []form.ValidationError `json:"errors,omitempty"`
}

// respondJSON encodes v with the given status.
func (vs *ViewServer) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		vs.logger.WithError(err).Error("Failed to encode response")
	}
}

// respondWithValidationError sends a structured validation error response
func (vs *ViewServer) respondWithValidationError(w http.ResponseWriter, r *http.Request, errors []form.ValidationError) {
	vs.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"errors": errors,
	}).Warn("Validation failed")

	vs.respondJSON(w, http.StatusBadRequest, ValidationResult{
		Valid:  false,
		Errors: errors,
	})
}

// respondWithError sends a structured error response
func (vs *ViewServer) respondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string, err error) {
	logEntry := vs.logger.WithFields(logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status_code": statusCode,
		"message":     message,
	})

	if err != nil {
		logEntry = logEntry.WithError(err)
	}

	if statusCode >= 500 {
		logEntry.Error("Server error")
	} else {
		logEntry.Warn("Client error")
	}

	vs.respondJSON(w, statusCode, map[string]interface{}{
		"error":   message,
		"code":    statusCode,
		"success": false,
	})
}

// validateTrackID parses a track id path value.
func validateTrackID(raw string) (int, *form.ValidationError) {
	if raw == "" {
		return 0, &form.ValidationError{
			Field:   "track_id",
			Message: "Track ID cannot be empty",
			Code:    "EMPTY_TRACK_ID",
		}
	}

	trackID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &form.ValidationError{
			Field:   "track_id",
			Message: "Track ID must be a valid integer",
			Code:    "INVALID_TRACK_ID_FORMAT",
		}
	}

	return trackID, nil
}

// validateGenre checks the genre filter query parameter.
func validateGenre(genre string) *form.ValidationError {
	if len(genre) > maxGenreLength {
		return &form.ValidationError{
			Field:   "genre",
			Message: "Genre too long (max 100 characters)",
			Code:    "GENRE_TOO_LONG",
		}
	}

	if strings.Contains(genre, "\x00") {
		return &form.ValidationError{
			Field:   "genre",
			Message: "Genre contains invalid characters",
			Code:    "INVALID_GENRE_CHARACTERS",
		}
	}

	return nil
}

// validateScreenName checks a screen name against the known screens.
func validateScreenName(name string) *form.ValidationError {
	switch name {
	case session.ScreenList, session.ScreenFavorites, session.ScreenAdd:
		return nil
	case "":
		return &form.ValidationError{
			Field:   "name",
			Message: "Screen name is required",
			Code:    "MISSING_SCREEN_NAME",
		}
	}
	return &form.ValidationError{
		Field:   "name",
		Message: "Unknown screen: " + name,
		Code:    "UNKNOWN_SCREEN",
	}
}
