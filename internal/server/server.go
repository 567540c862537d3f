package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"trackshelf/internal/api"
	"trackshelf/internal/catalog"
	"trackshelf/internal/config"
	"trackshelf/internal/ngrok"
	"trackshelf/internal/session"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// screenIdleTimeout unmounts screens the presentation layer forgot to
// unmount.
const screenIdleTimeout = 30 * time.Minute

// ViewServer serves the catalog screens as JSON to a presentation layer.
type ViewServer struct {
	config     *config.Config
	configPath string
	store      *catalog.Store
	client     *api.Client
	screens    *session.Manager
	logger     *logrus.Logger
	watcher    *fsnotify.Watcher
	tunnel     *ngrok.Service
}

// NewViewServer wires a server around an existing store and API client.
// configPath is watched for changes when cfg.Server.WatchConfig is set.
func NewViewServer(cfg *config.Config, configPath string, store *catalog.Store, client *api.Client, logger *logrus.Logger) (*ViewServer, error) {
	tunnel, err := ngrok.NewService(&cfg.Tunnel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tunnel service: %w", err)
	}

	return &ViewServer{
		config:     cfg,
		configPath: configPath,
		store:      store,
		client:     client,
		screens:    session.NewManager(screenIdleTimeout),
		logger:     logger,
		tunnel:     tunnel,
	}, nil
}

// Handler returns the routed handler with middleware applied.
func (vs *ViewServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", vs.handleHealthCheck)
	mux.HandleFunc("GET /api/state", vs.handleGetState)
	mux.HandleFunc("POST /api/refresh", vs.handleRefresh)
	mux.HandleFunc("GET /api/events", vs.handleEvents)

	mux.HandleFunc("GET /api/tracks", vs.handleGetTracks)
	mux.HandleFunc("GET /api/tracks/{id}", vs.handleGetTrack)
	mux.HandleFunc("POST /api/tracks", vs.handleCreateTrack)
	mux.HandleFunc("GET /api/facets", vs.handleGetFacets)
	mux.HandleFunc("GET /api/genres", vs.handleGetFormGenres)

	mux.HandleFunc("GET /api/favorites", vs.handleGetFavorites)
	mux.HandleFunc("PUT /api/favorites/{id}", vs.handleAddFavorite)
	mux.HandleFunc("DELETE /api/favorites/{id}", vs.handleRemoveFavorite)
	mux.HandleFunc("POST /api/favorites/{id}/toggle", vs.handleToggleFavorite)

	mux.HandleFunc("GET /api/screens", vs.handleGetScreens)
	mux.HandleFunc("POST /api/screens", vs.handleMountScreen)
	mux.HandleFunc("GET /api/screens/{id}", vs.handleGetScreen)
	mux.HandleFunc("DELETE /api/screens/{id}", vs.handleUnmountScreen)

	var handler http.Handler = mux
	handler = vs.corsMiddleware(handler)
	handler = vs.requestLoggingMiddleware(handler)
	handler = vs.panicRecoveryMiddleware(handler)
	return handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (vs *ViewServer) Start(ctx context.Context) error {
	if vs.config.Server.WatchConfig {
		if err := vs.startConfigWatcher(ctx); err != nil {
			vs.logger.WithError(err).Warn("Could not start config watcher")
		} else {
			defer vs.stopConfigWatcher()
		}
	}

	// warm the store so the first screen has data
	go func() {
		if err := vs.store.EnsureLoaded(ctx); err != nil {
			vs.logger.WithError(err).Debug("Initial catalog load did not complete cleanly")
		}
	}()

	httpServer := &http.Server{
		Addr:        vs.config.GetAddress(),
		Handler:     vs.Handler(),
		ReadTimeout: time.Duration(vs.config.Server.ReadTimeout) * time.Second,
	}

	localAddress := fmt.Sprintf("http://%s", vs.config.GetAddress())
	vs.logger.WithFields(logrus.Fields{
		"address": localAddress,
		"catalog": vs.client.BaseURL(),
	}).Info("View server starting")

	if err := vs.tunnel.StartTunnel(ctx, localAddress); err != nil {
		vs.logger.WithError(err).Warn("Could not start tunnel")
	} else {
		defer vs.tunnel.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	vs.logger.Info("Shutting down view server")
	vs.screens.UnmountAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	vs.logger.Info("View server shutdown complete")
	return nil
}
