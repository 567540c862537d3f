// Package catalog shapes the remote track list for display: normalization,
// genre facets, filtering and the shared store every screen reads from.
package catalog

import "trackshelf/pkg/models"

// Placeholders used when upstream leaves a display field empty.
const (
	PlaceholderTitle  = "Sem título"
	PlaceholderArtist = "Artista Desconhecido"
	PlaceholderGenre  = "Outros"
	PlaceholderPhoto  = "https://via.placeholder.com/50"
)

// Normalize turns a raw upstream record into a display-ready track. Each
// missing field is defaulted independently; rating is passed through
// unclamped.
func Normalize(raw models.RawTrack) models.Track {
	track := models.Track{
		ID:             raw.ID,
		Title:          orDefault(raw.Title, PlaceholderTitle),
		Description:    raw.Description,
		URL:            raw.URL,
		Rating:         float64(raw.Rating),
		ArtistName:     PlaceholderArtist,
		ArtistGenre:    PlaceholderGenre,
		ArtistPhotoURL: PlaceholderPhoto,
	}

	if raw.Singer != nil {
		track.ArtistName = orDefault(raw.Singer.Name, PlaceholderArtist)
		track.ArtistGenre = orDefault(raw.Singer.Genre, PlaceholderGenre)
		track.ArtistPhotoURL = orDefault(raw.Singer.PhotoURL, PlaceholderPhoto)
		track.ArtistBio = raw.Singer.Biography
	}

	return track
}

// NormalizeAll normalizes every record, preserving order.
func NormalizeAll(raw []models.RawTrack) []models.Track {
	tracks := make([]models.Track, 0, len(raw))
	for _, r := range raw {
		tracks = append(tracks, Normalize(r))
	}
	return tracks
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
