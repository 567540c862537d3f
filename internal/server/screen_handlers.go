package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"trackshelf/internal/catalog"
	"trackshelf/internal/form"
	"trackshelf/internal/session"

	"github.com/sirupsen/logrus"
)

// MountRequest asks to mount a screen.
type MountRequest struct {
	Name string `json:"name"`
}

func (vs *ViewServer) handleGetScreens(w http.ResponseWriter, r *http.Request) {
	vs.respondJSON(w, http.StatusOK, map[string]interface{}{
		"screens": vs.screens.Active(),
	})
}

// handleMountScreen registers a screen and starts a fetch on its behalf.
// The fetch is bound to the screen, so unmounting it discards a late
// result.
func (vs *ViewServer) handleMountScreen(w http.ResponseWriter, r *http.Request) {
	var req MountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		vs.respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validateScreenName(req.Name); verr != nil {
		vs.respondWithValidationError(w, r, []form.ValidationError{*verr})
		return
	}

	// the screen outlives this request
	screen := vs.screens.Mount(context.WithoutCancel(r.Context()), req.Name)
	logger := vs.logger.WithFields(logrus.Fields{
		"screen":    screen.Name,
		"screen_id": screen.ID,
	})
	logger.Debug("Screen mounted")

	if req.Name != session.ScreenAdd {
		go vs.fetchForScreen(screen, logger)
	}

	vs.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"screen": screen,
		"state":  vs.store.Snapshot(),
	})
}

func (vs *ViewServer) fetchForScreen(screen *session.Screen, logger *logrus.Entry) {
	err := vs.store.Fetch(screen.Context())
	var failure *catalog.FetchFailure
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrDiscarded):
		logger.WithError(err).Debug("Screen fetch discarded")
	case errors.As(err, &failure):
		logger.WithError(err).Info("Screen loaded with fallback data")
	default:
		logger.WithError(err).Warn("Screen fetch failed")
	}
}

func (vs *ViewServer) handleGetScreen(w http.ResponseWriter, r *http.Request) {
	screen, ok := vs.screens.Get(r.PathValue("id"))
	if !ok {
		vs.respondWithError(w, r, http.StatusNotFound, "Screen not mounted", nil)
		return
	}
	vs.respondJSON(w, http.StatusOK, map[string]interface{}{
		"screen": screen,
	})
}

func (vs *ViewServer) handleUnmountScreen(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !vs.screens.Unmount(id) {
		vs.respondWithError(w, r, http.StatusNotFound, "Screen not mounted", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
