package server

import (
	"errors"
	"net/http"

	"trackshelf/internal/catalog"
	"trackshelf/internal/form"
	"trackshelf/internal/session"
)

// TracksResponse is the list screen payload.
type TracksResponse struct {
	State  catalog.LoadState `json:"state"`
	Banner string            `json:"banner,omitempty"`
	Genre  string            `json:"genre"`
	Facets []string          `json:"facets"`
	Tracks []catalog.Row     `json:"tracks"`
}

// StateResponse describes the store lifecycle and mounted screens.
type StateResponse struct {
	catalog.Snapshot
	Screens []session.Screen `json:"screens"`
}

// screenHeader names the mounted screen a request is made for.
const screenHeader = "X-Screen-ID"

// ensureLoaded loads the store on first use. A failed fetch is not an HTTP
// error: the store falls back to sample data and reports a banner.
func (vs *ViewServer) ensureLoaded(r *http.Request) {
	if id := r.Header.Get(screenHeader); id != "" {
		vs.screens.Touch(id)
	}

	err := vs.store.EnsureLoaded(r.Context())
	var failure *catalog.FetchFailure
	switch {
	case err == nil:
	case errors.As(err, &failure):
		vs.logger.WithError(err).Debug("Serving fallback catalog")
	default:
		vs.logger.WithError(err).Debug("Catalog load interrupted")
	}
}

// handleGetTracks returns the list screen rows filtered by ?genre.
func (vs *ViewServer) handleGetTracks(w http.ResponseWriter, r *http.Request) {
	genre := r.URL.Query().Get("genre")
	if genre == "" {
		genre = catalog.AllGenres
	}
	if verr := validateGenre(genre); verr != nil {
		vs.respondWithValidationError(w, r, []form.ValidationError{*verr})
		return
	}

	vs.ensureLoaded(r)
	snap := vs.store.Snapshot()

	vs.respondJSON(w, http.StatusOK, TracksResponse{
		State:  snap.State,
		Banner: snap.Banner,
		Genre:  genre,
		Facets: catalog.LimitFacets(snap.Facets, vs.config.Catalog.FacetLimit),
		Tracks: vs.store.List(genre),
	})
}

// handleGetTrack returns one track row by id.
func (vs *ViewServer) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	id, verr := validateTrackID(r.PathValue("id"))
	if verr != nil {
		vs.respondWithValidationError(w, r, []form.ValidationError{*verr})
		return
	}

	vs.ensureLoaded(r)
	track, ok := vs.store.Track(id)
	if !ok {
		vs.respondWithError(w, r, http.StatusNotFound, "Track not found", nil)
		return
	}

	vs.respondJSON(w, http.StatusOK, catalog.Row{Track: track, Favorited: vs.store.IsFavorite(id)})
}

// handleGetFacets returns the capped genre facets.
func (vs *ViewServer) handleGetFacets(w http.ResponseWriter, r *http.Request) {
	vs.ensureLoaded(r)
	vs.respondJSON(w, http.StatusOK, map[string]interface{}{
		"facets": vs.store.Facets(vs.config.Catalog.FacetLimit),
	})
}

// handleGetFormGenres returns the genres offered by the add screen.
func (vs *ViewServer) handleGetFormGenres(w http.ResponseWriter, r *http.Request) {
	vs.respondJSON(w, http.StatusOK, map[string]interface{}{
		"genres": form.Genres,
	})
}

// handleGetState returns the store snapshot and mounted screens.
func (vs *ViewServer) handleGetState(w http.ResponseWriter, r *http.Request) {
	vs.respondJSON(w, http.StatusOK, StateResponse{
		Snapshot: vs.store.Snapshot(),
		Screens:  vs.screens.Active(),
	})
}

// handleRefresh re-fetches the catalog, re-entering Loading.
func (vs *ViewServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := vs.store.Fetch(r.Context())
	if errors.Is(err, catalog.ErrDiscarded) {
		vs.respondWithError(w, r, http.StatusConflict, "Refresh superseded by a newer fetch", err)
		return
	}

	vs.respondJSON(w, http.StatusOK, vs.store.Snapshot())
}
