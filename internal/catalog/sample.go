package catalog

import "trackshelf/pkg/models"

// SampleTracks is shown when the remote catalog cannot be read, so the
// screens always have something to render.
func SampleTracks() []models.Track {
	return []models.Track{
		{
			ID:             1,
			Title:          "Exemplo de Música 1",
			Description:    "Descrição da música",
			URL:            "https://example.com/music1",
			Rating:         4.5,
			ArtistName:     "Artista 1",
			ArtistGenre:    "Pop",
			ArtistPhotoURL: PlaceholderPhoto,
		},
		{
			ID:             2,
			Title:          "Exemplo de Música 2",
			Description:    "Descrição da música",
			URL:            "https://example.com/music2",
			Rating:         4.0,
			ArtistName:     "Artista 2",
			ArtistGenre:    "Rock",
			ArtistPhotoURL: PlaceholderPhoto,
		},
	}
}
