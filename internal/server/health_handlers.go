package server

import (
	"net/http"
	"time"
)

// HealthStatus represents operational status for the /health endpoint.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Catalog   string    `json:"catalog"`
	State     string    `json:"state"`
	Screens   int       `json:"activeScreens"`
	Tracks    int       `json:"trackCount"`
	Banner    string    `json:"banner,omitempty"`
}

// handleHealthCheck reports liveness. A degraded catalog (sample data after
// a failed fetch) is still healthy for the local server.
func (vs *ViewServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := vs.store.Snapshot()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Catalog:   vs.client.BaseURL(),
		State:     snap.State.String(),
		Screens:   len(vs.screens.Active()),
		Tracks:    snap.TrackCount,
		Banner:    snap.Banner,
	}
	if snap.Banner != "" {
		health.Status = "degraded"
	}

	vs.respondJSON(w, http.StatusOK, health)
}
