// Package session tracks mounted screens. Each screen carries a context
// that is cancelled when it unmounts, so fetches started on its behalf can
// be discarded instead of updating a view that is gone.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Screen names known to the application.
const (
	ScreenList      = "list"
	ScreenFavorites = "favorites"
	ScreenAdd       = "add"
)

// Screen is one mounted view.
type Screen struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MountedAt    time.Time `json:"mountedAt"`
	LastActivity time.Time `json:"lastActivity"`

	ctx    context.Context
	cancel context.CancelFunc
}

// Context is cancelled when the screen unmounts or expires.
func (s *Screen) Context() context.Context {
	return s.ctx
}

// Manager manages mounted screens
type Manager struct {
	screens         map[string]*Screen
	mutex           sync.RWMutex
	activityTimeout time.Duration
}

// NewManager creates a manager; screens idle longer than activityTimeout
// are unmounted automatically. Zero disables expiry.
func NewManager(activityTimeout time.Duration) *Manager {
	return &Manager{
		screens:         make(map[string]*Screen),
		activityTimeout: activityTimeout,
	}
}

// Mount registers a new screen whose context derives from parent.
func (m *Manager) Mount(parent context.Context, name string) *Screen {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.cleanupExpiredScreens()

	ctx, cancel := context.WithCancel(parent)
	now := time.Now()
	screen := &Screen{
		ID:           uuid.NewString(),
		Name:         name,
		MountedAt:    now,
		LastActivity: now,
		ctx:          ctx,
		cancel:       cancel,
	}
	m.screens[screen.ID] = screen
	return screen
}

// Get returns a mounted screen.
func (m *Manager) Get(id string) (*Screen, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	screen, ok := m.screens[id]
	if !ok || m.isExpired(screen, time.Now()) {
		return nil, false
	}
	return screen, true
}

// Touch records activity on a screen. It reports whether the screen is
// still mounted.
func (m *Manager) Touch(id string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	screen, ok := m.screens[id]
	if !ok {
		return false
	}
	screen.LastActivity = time.Now()
	return true
}

// Unmount removes a screen and cancels its context. It reports whether the
// screen was mounted.
func (m *Manager) Unmount(id string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	screen, ok := m.screens[id]
	if !ok {
		return false
	}
	screen.cancel()
	delete(m.screens, id)
	return true
}

// UnmountAll cancels every screen, e.g. on shutdown.
func (m *Manager) UnmountAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, screen := range m.screens {
		screen.cancel()
		delete(m.screens, id)
	}
}

// Active returns the mounted screens, oldest first.
func (m *Manager) Active() []Screen {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.cleanupExpiredScreens()

	result := make([]Screen, 0, len(m.screens))
	for _, screen := range m.screens {
		result = append(result, Screen{
			ID:           screen.ID,
			Name:         screen.Name,
			MountedAt:    screen.MountedAt,
			LastActivity: screen.LastActivity,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MountedAt.Before(result[j].MountedAt)
	})
	return result
}

// isExpired must be called with the lock held.
func (m *Manager) isExpired(screen *Screen, now time.Time) bool {
	return m.activityTimeout > 0 && now.Sub(screen.LastActivity) > m.activityTimeout
}

// cleanupExpiredScreens unmounts idle screens (must be called with lock held)
func (m *Manager) cleanupExpiredScreens() {
	now := time.Now()
	for id, screen := range m.screens {
		if m.isExpired(screen, now) {
			screen.cancel()
			delete(m.screens, id)
		}
	}
}
