package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"trackshelf/internal/favorites"
	"trackshelf/internal/logging"
	"trackshelf/pkg/models"
)

type stubFetcher struct {
	tracks []models.RawTrack
	err    error
}

func (f *stubFetcher) ListTracks(ctx context.Context) ([]models.RawTrack, error) {
	return f.tracks, f.err
}

// gatedFetcher blocks each call until the test answers on the channel it
// hands out for that call.
type gatedFetcher struct {
	calls chan chan []models.RawTrack
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan chan []models.RawTrack, 4)}
}

func (f *gatedFetcher) ListTracks(ctx context.Context) ([]models.RawTrack, error) {
	reply := make(chan []models.RawTrack, 1)
	f.calls <- reply
	return <-reply, nil
}

var remoteTracks = []models.RawTrack{
	{ID: 1, Title: "One", Singer: &models.RawSinger{Name: "A", Genre: "Pop"}},
	{ID: 2, Title: "Two", Singer: &models.RawSinger{Name: "B", Genre: "Rock"}},
	{ID: 3, Title: "Three", Singer: &models.RawSinger{Name: "C", Genre: "Pop"}},
	{ID: 4, Title: "Four", Singer: &models.RawSinger{Name: "D", Genre: "Jazz"}},
}

func newTestStore(f Fetcher, seed ...int) *Store {
	return NewStore(f, favorites.New(seed...), logging.Discard())
}

func TestStoreFetchSuccess(t *testing.T) {
	store := newTestStore(&stubFetcher{tracks: remoteTracks})
	if store.State() != Idle {
		t.Fatalf("new store state = %v", store.State())
	}

	if err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if store.State() != Loaded {
		t.Errorf("state = %v, want loaded", store.State())
	}
	if store.Err() != nil {
		t.Errorf("unexpected recorded error: %v", store.Err())
	}
	if got := len(store.Tracks()); got != 4 {
		t.Errorf("tracks = %d", got)
	}
	if got := store.Facets(0); !reflect.DeepEqual(got, []string{"All", "Pop", "Rock", "Jazz"}) {
		t.Errorf("facets = %v", got)
	}
	if got := store.Facets(3); !reflect.DeepEqual(got, []string{"All", "Pop", "Rock"}) {
		t.Errorf("capped facets = %v", got)
	}
}

func TestStoreFetchFailureFallsBack(t *testing.T) {
	store := newTestStore(&stubFetcher{err: errors.New("connection refused")})

	err := store.Fetch(context.Background())
	var failure *FetchFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *FetchFailure, got %v", err)
	}

	if store.State() != LoadedWithFallback {
		t.Errorf("state = %v, want loaded_with_fallback", store.State())
	}
	if !reflect.DeepEqual(store.Tracks(), SampleTracks()) {
		t.Errorf("tracks should be the sample set, got %+v", store.Tracks())
	}

	snap := store.Snapshot()
	if snap.Banner == "" {
		t.Error("banner should be set after a failed fetch")
	}
	if store.Err() == nil {
		t.Error("error flag should be set after a failed fetch")
	}
}

func TestStoreRefreshRecoversFromFallback(t *testing.T) {
	f := &stubFetcher{err: errors.New("down")}
	store := newTestStore(f)
	store.Fetch(context.Background())

	f.err = nil
	f.tracks = remoteTracks
	if err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if store.State() != Loaded || store.Err() != nil || store.Snapshot().Banner != "" {
		t.Errorf("refresh should clear the fallback: %+v", store.Snapshot())
	}
}

func TestStoreEnsureLoadedFetchesOnce(t *testing.T) {
	f := &countingFetcher{tracks: remoteTracks}
	store := newTestStore(f)

	for i := 0; i < 3; i++ {
		if err := store.EnsureLoaded(context.Background()); err != nil {
			t.Fatalf("EnsureLoaded() error: %v", err)
		}
	}
	if f.calls != 1 {
		t.Errorf("expected 1 fetch, got %d", f.calls)
	}
}

type countingFetcher struct {
	tracks []models.RawTrack
	calls  int
}

func (f *countingFetcher) ListTracks(ctx context.Context) ([]models.RawTrack, error) {
	f.calls++
	return f.tracks, nil
}

func TestStoreDiscardsStaleFetch(t *testing.T) {
	f := newGatedFetcher()
	store := newTestStore(f)

	firstErr := make(chan error, 1)
	go func() { firstErr <- store.Fetch(context.Background()) }()
	first := <-f.calls

	secondErr := make(chan error, 1)
	go func() { secondErr <- store.Fetch(context.Background()) }()
	second := <-f.calls

	// newer fetch resolves first
	second <- remoteTracks[:1]
	if err := waitErr(t, secondErr); err != nil {
		t.Fatalf("second fetch error: %v", err)
	}

	// the older one arrives late and must not overwrite
	first <- remoteTracks
	if err := waitErr(t, firstErr); !errors.Is(err, ErrDiscarded) {
		t.Fatalf("expected ErrDiscarded for stale fetch, got %v", err)
	}

	if got := len(store.Tracks()); got != 1 {
		t.Errorf("stale result leaked into store: %d tracks", got)
	}
	if store.State() != Loaded {
		t.Errorf("state = %v", store.State())
	}
}

func TestStoreDiscardsCancelledFetch(t *testing.T) {
	f := newGatedFetcher()
	store := newTestStore(f)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- store.Fetch(ctx) }()
	reply := <-f.calls

	cancel()
	reply <- remoteTracks

	err := waitErr(t, errCh)
	if !errors.Is(err, ErrDiscarded) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected discarded cancelled fetch, got %v", err)
	}
	if store.State() != Idle {
		t.Errorf("state should return to idle, got %v", store.State())
	}
	if len(store.Tracks()) != 0 {
		t.Error("cancelled result must not be applied")
	}
}

func TestStoreCancelledFetchYieldsToOlderFetch(t *testing.T) {
	f := newGatedFetcher()
	store := newTestStore(f)

	olderErr := make(chan error, 1)
	go func() { olderErr <- store.Fetch(context.Background()) }()
	older := <-f.calls

	ctx, cancel := context.WithCancel(context.Background())
	newerErr := make(chan error, 1)
	go func() { newerErr <- store.Fetch(ctx) }()
	newer := <-f.calls

	// the screen that started the newer fetch goes away
	cancel()
	newer <- remoteTracks[:1]
	if err := waitErr(t, newerErr); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled newer fetch, got %v", err)
	}
	if store.State() != Loading {
		t.Errorf("older fetch is still pending, state = %v", store.State())
	}

	older <- remoteTracks
	if err := waitErr(t, olderErr); err != nil {
		t.Fatalf("older fetch should be applied, got %v", err)
	}
	if store.State() != Loaded {
		t.Errorf("state = %v, want loaded", store.State())
	}
	if got := len(store.Tracks()); got != len(remoteTracks) {
		t.Errorf("tracks = %d, want %d", got, len(remoteTracks))
	}
}

func TestStoreCancelledFetchNeverStrandsLoading(t *testing.T) {
	f := newGatedFetcher()
	store := newTestStore(f)

	olderErr := make(chan error, 1)
	go func() { olderErr <- store.Fetch(context.Background()) }()
	older := <-f.calls

	ctx, cancel := context.WithCancel(context.Background())
	newerErr := make(chan error, 1)
	go func() { newerErr <- store.Fetch(ctx) }()
	newer := <-f.calls

	// the older result lands while the newer fetch is still wanted
	older <- remoteTracks
	if err := waitErr(t, olderErr); !errors.Is(err, ErrDiscarded) {
		t.Fatalf("expected stale older fetch, got %v", err)
	}

	cancel()
	newer <- remoteTracks
	waitErr(t, newerErr)

	if store.State() != Idle {
		t.Fatalf("state = %v, want idle so the next view fetches again", store.State())
	}

	go func() {
		reply := <-f.calls
		reply <- remoteTracks
	}()
	if err := store.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("EnsureLoaded() error: %v", err)
	}
	if store.State() != Loaded || len(store.Tracks()) != len(remoteTracks) {
		t.Errorf("store did not recover: %+v", store.Snapshot())
	}
}

func TestStoreCancelledRefreshKeepsLoadedList(t *testing.T) {
	f := newGatedFetcher()
	store := newTestStore(f)

	go func() {
		reply := <-f.calls
		reply <- remoteTracks
	}()
	if err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("initial fetch: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- store.Fetch(ctx) }()
	reply := <-f.calls
	cancel()
	reply <- nil
	waitErr(t, errCh)

	if store.State() != Loaded || len(store.Tracks()) != len(remoteTracks) {
		t.Errorf("cancelled refresh should leave the loaded list: %+v", store.Snapshot())
	}
}

func TestStoreListAndFavorites(t *testing.T) {
	store := newTestStore(&stubFetcher{tracks: remoteTracks}, 2, 99)
	store.Fetch(context.Background())

	pop := store.List("Pop")
	if len(pop) != 2 || pop[0].ID != 1 || pop[1].ID != 3 {
		t.Fatalf("List(Pop) = %+v", pop)
	}
	if pop[0].Favorited {
		t.Error("track 1 should not be favorited yet")
	}

	if on := store.ToggleFavorite(1); !on {
		t.Error("ToggleFavorite(1) should favorite")
	}
	if !store.List("Pop")[0].Favorited {
		t.Error("list row should reflect the toggle")
	}

	// 99 is not in the list, so the favorites view only joins 1 and 2
	favs := store.Favorites()
	if ids := rowIDs(favs); !reflect.DeepEqual(ids, []int{1, 2}) {
		t.Errorf("Favorites() ids = %v", ids)
	}

	if !store.RemoveFavorite(2) {
		t.Error("RemoveFavorite(2) should report a change")
	}
	if store.RemoveFavorite(2) {
		t.Error("second RemoveFavorite(2) should be a no-op")
	}
	if ids := rowIDs(store.Favorites()); !reflect.DeepEqual(ids, []int{1}) {
		t.Errorf("Favorites() after remove = %v", ids)
	}

	// records themselves are never mutated by favorites
	all := store.List(AllGenres)
	if len(all) != 4 {
		t.Errorf("List(All) = %d rows", len(all))
	}
}

func TestStoreToggleInvolution(t *testing.T) {
	store := newTestStore(&stubFetcher{tracks: remoteTracks}, 1)
	before := store.FavoriteIDs()
	store.ToggleFavorite(3)
	store.ToggleFavorite(3)
	if after := store.FavoriteIDs(); !reflect.DeepEqual(before, after) {
		t.Errorf("toggle twice changed favorites: %v -> %v", before, after)
	}
}

type memoryBackend struct {
	saved [][]int
	load  []int
	err   error
}

func (b *memoryBackend) Load() ([]int, error) { return b.load, b.err }

func (b *memoryBackend) Save(ids []int) error {
	b.saved = append(b.saved, ids)
	return b.err
}

func TestStoreBackend(t *testing.T) {
	store := newTestStore(&stubFetcher{tracks: remoteTracks}, 1, 2)
	backend := &memoryBackend{load: []int{4}}

	if err := store.UseBackend(backend); err != nil {
		t.Fatalf("UseBackend() error: %v", err)
	}
	if ids := store.FavoriteIDs(); !reflect.DeepEqual(ids, []int{4}) {
		t.Errorf("backend ids should replace the seed, got %v", ids)
	}

	store.AddFavorite(1)
	store.AddFavorite(1)
	if len(backend.saved) != 1 || !reflect.DeepEqual(backend.saved[0], []int{1, 4}) {
		t.Errorf("saved = %v", backend.saved)
	}

	failing := &memoryBackend{err: errors.New("disk full")}
	if err := store.UseBackend(failing); err == nil {
		t.Error("UseBackend should surface load errors")
	}
}

type freshBackend struct {
	memoryBackend
}

func (b *freshBackend) Fresh() bool { return true }

func TestStoreFreshBackendKeepsSeed(t *testing.T) {
	store := newTestStore(&stubFetcher{tracks: remoteTracks}, 1, 2)
	backend := &freshBackend{}

	if err := store.UseBackend(backend); err != nil {
		t.Fatalf("UseBackend() error: %v", err)
	}
	if ids := store.FavoriteIDs(); !reflect.DeepEqual(ids, []int{1, 2}) {
		t.Errorf("seed should survive a fresh backend, got %v", ids)
	}
	if len(backend.saved) != 1 || !reflect.DeepEqual(backend.saved[0], []int{1, 2}) {
		t.Errorf("fresh backend should be seeded, saved = %v", backend.saved)
	}
}

func TestStoreSubscribe(t *testing.T) {
	store := newTestStore(&stubFetcher{tracks: remoteTracks})
	ch := store.Subscribe()

	store.Fetch(context.Background())

	first := <-ch
	if first.State != Loading {
		t.Errorf("first snapshot state = %v, want loading", first.State)
	}
	second := <-ch
	if second.State != Loaded || second.TrackCount != 4 {
		t.Errorf("second snapshot = %+v", second)
	}

	store.ToggleFavorite(1)
	if snap := <-ch; snap.FavoriteCount != 1 {
		t.Errorf("favorite snapshot = %+v", snap)
	}

	store.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
}

func TestLoadStateText(t *testing.T) {
	text, _ := LoadedWithFallback.MarshalText()
	if string(text) != "loaded_with_fallback" {
		t.Errorf("MarshalText = %s", text)
	}
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
		return nil
	}
}

func rowIDs(rows []Row) []int {
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}
