package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trackshelf/internal/favorites"
	"trackshelf/pkg/models"

	"github.com/sirupsen/logrus"
)

// ErrDiscarded is returned by Fetch when its result arrived after a newer
// fetch started or after its context was cancelled. The store is left
// untouched by such a result.
var ErrDiscarded = errors.New("fetch result discarded")

// FetchFailure is recorded when the remote catalog could not be read and
// the store fell back to the sample tracks.
type FetchFailure struct {
	Err error
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("could not load tracks, showing sample data: %v", f.Err)
}

func (f *FetchFailure) Unwrap() error {
	return f.Err
}

// Fetcher reads the raw track collection.
type Fetcher interface {
	ListTracks(ctx context.Context) ([]models.RawTrack, error)
}

// LoadState is the load lifecycle of the store.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Loaded
	LoadedWithFallback
)

func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadedWithFallback:
		return "loaded_with_fallback"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

func (s LoadState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *LoadState) UnmarshalText(text []byte) error {
	for _, st := range []LoadState{Idle, Loading, Loaded, LoadedWithFallback} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown load state %q", text)
}

// Row is a track as shown on a screen, joined with its favorite flag.
type Row struct {
	models.Track
	Favorited bool `json:"favorited"`
}

// Snapshot is a point-in-time view of the store for banners and status.
type Snapshot struct {
	State         LoadState `json:"state"`
	Banner        string    `json:"banner,omitempty"`
	TrackCount    int       `json:"trackCount"`
	FavoriteCount int       `json:"favoriteCount"`
	Facets        []string  `json:"facets"`
	Generation    uint64    `json:"generation"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Store owns the track list, its facets and the favorite set. One store is
// shared by every screen.
type Store struct {
	fetcher   Fetcher
	favorites *favorites.Set
	backend   favorites.Backend
	logger    *logrus.Logger

	mutex      sync.RWMutex
	state      LoadState
	tracks     []models.Track
	facets     []string
	lastErr    error
	updatedAt  time.Time
	listeners  []chan Snapshot

	// generation numbers every fetch; latest is the newest one whose
	// result is still wanted, zero when none is. settled is the state
	// to return to when every pending fetch is withdrawn.
	generation uint64
	latest     uint64
	inflight   map[uint64]struct{}
	settled    LoadState
}

// NewStore creates an idle store. favs may be pre-seeded.
func NewStore(fetcher Fetcher, favs *favorites.Set, logger *logrus.Logger) *Store {
	if favs == nil {
		favs = favorites.New()
	}
	return &Store{
		fetcher:   fetcher,
		favorites: favs,
		logger:    logger,
		state:     Idle,
		settled:   Idle,
		inflight:  make(map[uint64]struct{}),
		facets:    []string{AllGenres},
		updatedAt: time.Now(),
	}
}

// UseBackend loads the favorite set from backend and saves every later
// change to it. A fresh backend is seeded with the current set instead.
func (s *Store) UseBackend(backend favorites.Backend) error {
	if f, ok := backend.(favorites.Fresh); ok && f.Fresh() {
		if err := backend.Save(s.favorites.IDs()); err != nil {
			return fmt.Errorf("failed to seed favorites: %w", err)
		}
		s.mutex.Lock()
		s.backend = backend
		s.mutex.Unlock()
		s.logger.WithField("count", s.favorites.Len()).Debug("Seeded favorites backend")
		return nil
	}

	ids, err := backend.Load()
	if err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.backend = backend
	s.favorites.Replace(ids)
	s.logger.WithField("count", len(ids)).Debug("Loaded favorites from backend")
	return nil
}

// Fetch reads the catalog and replaces the track list. On failure the
// sample tracks are installed and a *FetchFailure is returned; the store
// is still usable. A result that is no longer wanted yields ErrDiscarded.
func (s *Store) Fetch(ctx context.Context) error {
	s.mutex.Lock()
	s.generation++
	gen := s.generation
	s.latest = gen
	s.inflight[gen] = struct{}{}
	s.state = Loading
	s.notifyListeners()
	s.mutex.Unlock()

	raw, err := s.fetcher.ListTracks(ctx)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.inflight, gen)

	if ctxErr := ctx.Err(); ctxErr != nil {
		// nobody is waiting for this result any more
		if gen == s.latest {
			s.withdraw()
		}
		s.logger.WithField("generation", gen).Debug("Discarding fetch result for cancelled screen")
		return fmt.Errorf("%w: %w", ErrDiscarded, ctxErr)
	}
	if gen != s.latest {
		s.logger.WithFields(logrus.Fields{
			"generation": gen,
			"latest":     s.latest,
		}).Debug("Discarding stale fetch result")
		return ErrDiscarded
	}

	// older fetches can no longer take over
	s.latest = 0
	for g := range s.inflight {
		if g < gen {
			delete(s.inflight, g)
		}
	}

	if err != nil {
		failure := &FetchFailure{Err: err}
		s.setTracks(SampleTracks())
		s.lastErr = failure
		s.state = LoadedWithFallback
		s.settled = s.state
		s.notifyListeners()
		s.logger.WithError(err).Warn("Catalog fetch failed, using sample tracks")
		return failure
	}

	s.setTracks(NormalizeAll(raw))
	s.lastErr = nil
	s.state = Loaded
	s.settled = s.state
	s.notifyListeners()
	s.logger.WithField("tracks", len(s.tracks)).Info("Catalog loaded")
	return nil
}

// withdraw hands the latest slot to the newest fetch still pending, or
// returns to the settled state when none is. Called with the lock held.
func (s *Store) withdraw() {
	s.latest = 0
	for g := range s.inflight {
		if g > s.latest {
			s.latest = g
		}
	}
	if s.latest == 0 {
		s.state = s.settled
		s.notifyListeners()
	}
}

// EnsureLoaded fetches only if the store has never been loaded.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mutex.RLock()
	state := s.state
	s.mutex.RUnlock()

	if state != Idle {
		return nil
	}
	return s.Fetch(ctx)
}

// setTracks must be called with the lock held.
func (s *Store) setTracks(tracks []models.Track) {
	s.tracks = tracks
	s.facets = DeriveFacets(tracks)
	s.updatedAt = time.Now()
}

// State returns the current load state.
func (s *Store) State() LoadState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state
}

// Err returns the last fetch failure, or nil.
func (s *Store) Err() error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastErr
}

// Tracks returns a copy of the full track list.
func (s *Store) Tracks() []models.Track {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	tracks := make([]models.Track, len(s.tracks))
	copy(tracks, s.tracks)
	return tracks
}

// Track looks up a track by id in the current list.
func (s *Store) Track(id int) (models.Track, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, t := range s.tracks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Track{}, false
}

// Facets returns the genre facets capped to limit entries (limit <= 0 for
// no cap).
func (s *Store) Facets(limit int) []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	facets := make([]string, len(s.facets))
	copy(facets, s.facets)
	return LimitFacets(facets, limit)
}

// List returns the rows for genre, each flagged with its favorite state.
func (s *Store) List(genre string) []Row {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.rows(ApplyFilter(s.tracks, genre))
}

// Favorites returns the rows of favorited tracks present in the current
// list, in list order.
func (s *Store) Favorites() []Row {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rows := make([]Row, 0, s.favorites.Len())
	for _, t := range s.tracks {
		if s.favorites.Contains(t.ID) {
			rows = append(rows, Row{Track: t, Favorited: true})
		}
	}
	return rows
}

func (s *Store) rows(tracks []models.Track) []Row {
	rows := make([]Row, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, Row{Track: t, Favorited: s.favorites.Contains(t.ID)})
	}
	return rows
}

// IsFavorite reports whether id is favorited.
func (s *Store) IsFavorite(id int) bool {
	return s.favorites.Contains(id)
}

// FavoriteIDs returns the favorited ids in ascending order.
func (s *Store) FavoriteIDs() []int {
	return s.favorites.IDs()
}

// ToggleFavorite flips id's membership and returns the new state.
func (s *Store) ToggleFavorite(id int) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	on := s.favorites.Toggle(id)
	s.favoritesChanged("toggle", id)
	return on
}

// AddFavorite marks id as favorite. It reports whether anything changed.
func (s *Store) AddFavorite(id int) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	changed := s.favorites.Add(id)
	if changed {
		s.favoritesChanged("add", id)
	}
	return changed
}

// RemoveFavorite unmarks id. It reports whether anything changed.
func (s *Store) RemoveFavorite(id int) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	changed := s.favorites.Remove(id)
	if changed {
		s.favoritesChanged("remove", id)
	}
	return changed
}

// favoritesChanged must be called with the lock held. Backend errors are
// logged, the in-memory set stays authoritative.
func (s *Store) favoritesChanged(op string, id int) {
	s.updatedAt = time.Now()
	if s.backend != nil {
		if err := s.backend.Save(s.favorites.IDs()); err != nil {
			s.logger.WithError(err).WithField("track_id", id).Warn("Failed to save favorites")
		}
	}
	s.logger.WithFields(logrus.Fields{
		"op":       op,
		"track_id": id,
	}).Debug("Favorites changed")
	s.notifyListeners()
}

// Snapshot returns the current state, banner text and counts.
func (s *Store) Snapshot() Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.snapshot()
}

func (s *Store) snapshot() Snapshot {
	snap := Snapshot{
		State:         s.state,
		TrackCount:    len(s.tracks),
		FavoriteCount: s.favorites.Len(),
		Facets:        append([]string(nil), s.facets...),
		Generation:    s.generation,
		UpdatedAt:     s.updatedAt,
	}
	if s.lastErr != nil {
		snap.Banner = s.lastErr.Error()
	}
	return snap
}

// Subscribe returns a channel receiving a snapshot after every change.
// Call Unsubscribe when done.
func (s *Store) Subscribe() <-chan Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ch := make(chan Snapshot, 10)
	s.listeners = append(s.listeners, ch)
	return ch
}

// Unsubscribe removes and closes a listener.
func (s *Store) Unsubscribe(ch <-chan Snapshot) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, listener := range s.listeners {
		if listener == ch {
			close(listener)
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			break
		}
	}
}

// notifyListeners must be called with the lock held. Listeners that are
// not keeping up are dropped.
func (s *Store) notifyListeners() {
	if len(s.listeners) == 0 {
		return
	}

	snap := s.snapshot()
	kept := s.listeners[:0]
	for _, listener := range s.listeners {
		select {
		case listener <- snap:
			kept = append(kept, listener)
		default:
			close(listener)
		}
	}
	s.listeners = kept
}
