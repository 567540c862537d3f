// Package api talks to the remote track catalog (GET/POST <base>/musics).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"trackshelf/pkg/models"

	"github.com/sirupsen/logrus"
)

var (
	// ErrFetch marks any failure to read the track collection.
	ErrFetch = errors.New("fetch tracks failed")
	// ErrSubmit marks any failure to create a track.
	ErrSubmit = errors.New("submit track failed")
	// ErrMalformedPayload is returned when GET /musics does not return a JSON array.
	ErrMalformedPayload = errors.New("response payload is not a JSON array")
)

const tracksPath = "/musics"

// StatusError records a non-success HTTP status from the remote catalog.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// Client is an HTTP client for the remote catalog.
type Client struct {
	baseURL    string
	mutex      sync.RWMutex
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a client for the catalog rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the catalog root the client talks to.
func (c *Client) BaseURL() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.baseURL
}

// SetBaseURL points the client at a different catalog root. Requests
// already in flight are not affected.
func (c *Client) SetBaseURL(baseURL string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// ListTracks reads the full track collection. All errors wrap ErrFetch.
func (c *Client) ListTracks(ctx context.Context) ([]models.RawTrack, error) {
	handleErr := func(err error) ([]models.RawTrack, error) {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+tracksPath, nil)
	if err != nil {
		return handleErr(err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return handleErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return handleErr(&StatusError{Op: "GET " + tracksPath, StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return handleErr(err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return handleErr(ErrMalformedPayload)
	}

	var raw []models.RawTrack
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return handleErr(fmt.Errorf("decode tracks: %w", err))
	}

	c.logger.WithFields(logrus.Fields{
		"count":    len(raw),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("Fetched tracks")

	return raw, nil
}

// CreateTrack posts a new track. Only the status is inspected; any
// non-2xx status or transport error wraps ErrSubmit.
func (c *Client) CreateTrack(ctx context.Context, track models.NewTrack) error {
	handleErr := func(err error) error {
		return fmt.Errorf("%w: %w", ErrSubmit, err)
	}

	body, err := json.Marshal(track)
	if err != nil {
		return handleErr(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+tracksPath, bytes.NewReader(body))
	if err != nil {
		return handleErr(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return handleErr(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErr(&StatusError{Op: "POST " + tracksPath, StatusCode: resp.StatusCode})
	}

	c.logger.WithFields(logrus.Fields{
		"title":  track.Title,
		"artist": track.Singer.Name,
	}).Info("Track created")

	return nil
}
