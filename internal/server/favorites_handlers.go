package server

import (
	"net/http"

	"trackshelf/internal/catalog"
	"trackshelf/internal/form"
)

// FavoritesResponse is the favorites screen payload.
type FavoritesResponse struct {
	State  catalog.LoadState `json:"state"`
	Banner string            `json:"banner,omitempty"`
	IDs    []int             `json:"ids"`
	Tracks []catalog.Row     `json:"tracks"`
}

func (vs *ViewServer) handleGetFavorites(w http.ResponseWriter, r *http.Request) {
	vs.ensureLoaded(r)
	snap := vs.store.Snapshot()

	vs.respondJSON(w, http.StatusOK, FavoritesResponse{
		State:  snap.State,
		Banner: snap.Banner,
		IDs:    vs.store.FavoriteIDs(),
		Tracks: vs.store.Favorites(),
	})
}

func (vs *ViewServer) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, verr := validateTrackID(r.PathValue("id"))
	if verr != nil {
		vs.respondWithValidationError(w, r, []form.ValidationError{*verr})
		return
	}

	favorited := vs.store.ToggleFavorite(id)
	vs.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"favorited": favorited,
	})
}

func (vs *ViewServer) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	id, verr := validateTrackID(r.PathValue("id"))
	if verr != nil {
		vs.respondWithValidationError(w, r, []form.ValidationError{*verr})
		return
	}

	changed := vs.store.AddFavorite(id)
	vs.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"favorited": true,
		"changed":   changed,
	})
}

func (vs *ViewServer) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, verr := validateTrackID(r.PathValue("id"))
	if verr != nil {
		vs.respondWithValidationError(w, r, []form.ValidationError{*verr})
		return
	}

	changed := vs.store.RemoveFavorite(id)
	vs.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"favorited": false,
		"changed":   changed,
	})
}
