package catalog

import "trackshelf/pkg/models"

// AllGenres is the facet meaning "no filter".
const AllGenres = "All"

// DeriveFacets returns AllGenres followed by the distinct genres of tracks
// in first-seen order.
func DeriveFacets(tracks []models.Track) []string {
	facets := []string{AllGenres}
	seen := map[string]bool{AllGenres: true}

	for _, t := range tracks {
		if seen[t.ArtistGenre] {
			continue
		}
		seen[t.ArtistGenre] = true
		facets = append(facets, t.ArtistGenre)
	}
	return facets
}

// LimitFacets caps facets to at most n entries, AllGenres included. n <= 0
// leaves the list uncapped.
func LimitFacets(facets []string, n int) []string {
	if n <= 0 || len(facets) <= n {
		return facets
	}
	return facets[:n]
}

// ApplyFilter returns the tracks whose genre equals genre exactly. For
// AllGenres the input slice itself is returned.
func ApplyFilter(tracks []models.Track, genre string) []models.Track {
	if genre == AllGenres {
		return tracks
	}

	filtered := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.ArtistGenre == genre {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
