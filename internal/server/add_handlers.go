package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"trackshelf/internal/api"
	"trackshelf/internal/form"
)

const maxFormBodyBytes = 64 << 10

// CreateTrackResponse reports the outcome of an add-screen submit. Form
// carries the state the screen should show next: empty on success, the
// submitted values on failure.
type CreateTrackResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Errors  []form.ValidationError `json:"errors,omitempty"`
	Form    form.TrackForm         `json:"form"`
}

// handleCreateTrack validates the submitted form and posts it upstream.
func (vs *ViewServer) handleCreateTrack(w http.ResponseWriter, r *http.Request) {
	var submitted form.TrackForm
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBodyBytes)).Decode(&submitted); err != nil {
		vs.respondWithError(w, r, http.StatusBadRequest, "Invalid form body", err)
		return
	}

	next, err := form.Submit(r.Context(), vs.client, submitted)

	var vf *form.ValidationFailure
	switch {
	case err == nil:
		vs.respondJSON(w, http.StatusCreated, CreateTrackResponse{
			Success: true,
			Message: "Track added",
			Form:    next,
		})
	case errors.As(err, &vf):
		vs.logger.WithField("errors", vf.Errors).Info("Track form rejected")
		vs.respondJSON(w, http.StatusBadRequest, CreateTrackResponse{
			Message: "Fill in at least the title and the artist name",
			Errors:  vf.Errors,
			Form:    next,
		})
	case errors.Is(err, api.ErrSubmit):
		vs.logger.WithError(err).Warn("Track submit failed")
		vs.respondJSON(w, http.StatusBadGateway, CreateTrackResponse{
			Message: "Could not add the track",
			Form:    next,
		})
	default:
		vs.respondWithError(w, r, http.StatusInternalServerError, "Could not add the track", err)
	}
}
