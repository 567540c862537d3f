package catalog

import (
	"reflect"
	"testing"

	"trackshelf/pkg/models"
)

func TestNormalizeDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  models.RawTrack
		want models.Track
	}{
		{
			name: "empty record",
			raw:  models.RawTrack{},
			want: models.Track{
				Title:          PlaceholderTitle,
				ArtistName:     PlaceholderArtist,
				ArtistGenre:    PlaceholderGenre,
				ArtistPhotoURL: PlaceholderPhoto,
			},
		},
		{
			name: "singer without fields",
			raw:  models.RawTrack{ID: 3, Singer: &models.RawSinger{}},
			want: models.Track{
				ID:             3,
				Title:          PlaceholderTitle,
				ArtistName:     PlaceholderArtist,
				ArtistGenre:    PlaceholderGenre,
				ArtistPhotoURL: PlaceholderPhoto,
			},
		},
		{
			name: "complete record",
			raw: models.RawTrack{
				ID:          9,
				Title:       "Song",
				Description: "desc",
				URL:         "https://example.com/s.mp3",
				Rating:      4.5,
				Singer: &models.RawSinger{
					Name:      "Singer",
					Genre:     "Jazz",
					Biography: "bio",
					PhotoURL:  "https://example.com/p.jpg",
				},
			},
			want: models.Track{
				ID:             9,
				Title:          "Song",
				Description:    "desc",
				URL:            "https://example.com/s.mp3",
				Rating:         4.5,
				ArtistName:     "Singer",
				ArtistGenre:    "Jazz",
				ArtistBio:      "bio",
				ArtistPhotoURL: "https://example.com/p.jpg",
			},
		},
		{
			name: "out of range rating passes through",
			raw:  models.RawTrack{ID: 4, Title: "Loud", Rating: 11},
			want: models.Track{
				ID:             4,
				Title:          "Loud",
				Rating:         11,
				ArtistName:     PlaceholderArtist,
				ArtistGenre:    PlaceholderGenre,
				ArtistPhotoURL: PlaceholderPhoto,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeAlwaysFillsDisplayFields(t *testing.T) {
	// every subset of the optional string fields
	for mask := 0; mask < 1<<5; mask++ {
		raw := models.RawTrack{ID: mask}
		if mask&1 != 0 {
			raw.Title = "t"
		}
		if mask&2 != 0 {
			raw.Singer = &models.RawSinger{}
		}
		if mask&4 != 0 && raw.Singer != nil {
			raw.Singer.Name = "n"
		}
		if mask&8 != 0 && raw.Singer != nil {
			raw.Singer.Genre = "g"
		}
		if mask&16 != 0 && raw.Singer != nil {
			raw.Singer.PhotoURL = "p"
		}

		got := Normalize(raw)
		for field, v := range map[string]string{
			"title":  got.Title,
			"artist": got.ArtistName,
			"genre":  got.ArtistGenre,
			"photo":  got.ArtistPhotoURL,
		} {
			if v == "" {
				t.Errorf("mask %05b: %s is empty", mask, field)
			}
		}
	}
}

func TestDeriveFacets(t *testing.T) {
	tracks := func(genres ...string) []models.Track {
		out := make([]models.Track, 0, len(genres))
		for i, g := range genres {
			out = append(out, models.Track{ID: i, ArtistGenre: g})
		}
		return out
	}

	tests := []struct {
		name   string
		tracks []models.Track
		want   []string
	}{
		{"empty", nil, []string{"All"}},
		{"first seen order", tracks("Rock", "Pop", "Rock", "Jazz", "Pop"), []string{"All", "Rock", "Pop", "Jazz"}},
		{"case sensitive", tracks("Pop", "pop"), []string{"All", "Pop", "pop"}},
		{"genre named All", tracks("All", "Rock"), []string{"All", "Rock"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveFacets(tt.tracks); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeriveFacets() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLimitFacets(t *testing.T) {
	facets := []string{"All", "A", "B", "C", "D", "E", "F"}

	if got := LimitFacets(facets, 5); !reflect.DeepEqual(got, []string{"All", "A", "B", "C", "D"}) {
		t.Errorf("LimitFacets(5) = %v", got)
	}
	if got := LimitFacets(facets, 0); len(got) != len(facets) {
		t.Errorf("LimitFacets(0) should not cap, got %v", got)
	}
	if got := LimitFacets([]string{"All"}, 5); !reflect.DeepEqual(got, []string{"All"}) {
		t.Errorf("LimitFacets short list = %v", got)
	}
}

func TestApplyFilter(t *testing.T) {
	tracks := []models.Track{
		{ID: 1, ArtistGenre: "Pop"},
		{ID: 2, ArtistGenre: "Rock"},
		{ID: 3, ArtistGenre: "pop"},
		{ID: 4, ArtistGenre: "Pop"},
	}

	all := ApplyFilter(tracks, AllGenres)
	if len(all) != len(tracks) || &all[0] != &tracks[0] {
		t.Error("ApplyFilter(All) should return the input slice itself")
	}

	pop := ApplyFilter(tracks, "Pop")
	if ids := trackIDs(pop); !reflect.DeepEqual(ids, []int{1, 4}) {
		t.Errorf("ApplyFilter(Pop) ids = %v", ids)
	}

	lower := ApplyFilter(tracks, "pop")
	if ids := trackIDs(lower); !reflect.DeepEqual(ids, []int{3}) {
		t.Errorf("ApplyFilter(pop) ids = %v", ids)
	}

	if none := ApplyFilter(tracks, "Jazz"); len(none) != 0 {
		t.Errorf("ApplyFilter(Jazz) = %v", none)
	}
}

func TestNormalizeFacetFilterScenario(t *testing.T) {
	raw := []models.RawTrack{
		{ID: 1, Title: "A"},
		{ID: 2, Singer: &models.RawSinger{Genre: "Rock"}},
	}

	tracks := NormalizeAll(raw)
	facets := DeriveFacets(tracks)
	if !reflect.DeepEqual(facets, []string{"All", "Outros", "Rock"}) {
		t.Fatalf("facets = %v", facets)
	}

	rock := ApplyFilter(tracks, "Rock")
	if len(rock) != 1 || rock[0].ID != 2 {
		t.Errorf("filter Rock = %+v", rock)
	}
}

func TestSampleTracks(t *testing.T) {
	sample := SampleTracks()
	if len(sample) != 2 {
		t.Fatalf("expected 2 sample tracks, got %d", len(sample))
	}
	if got := DeriveFacets(sample); !reflect.DeepEqual(got, []string{"All", "Pop", "Rock"}) {
		t.Errorf("sample facets = %v", got)
	}
}

func trackIDs(tracks []models.Track) []int {
	ids := make([]int, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}
	return ids
}
