package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// RawSinger is the nested artist object as served by the remote catalog.
type RawSinger struct {
	Name      string `json:"name"`
	Genre     string `json:"genre"`
	Biography string `json:"biography"`
	PhotoURL  string `json:"photoUrl"`
}

// RawTrack is a track object exactly as returned by GET /musics. Any field
// may be missing, and the singer object may be absent or null.
type RawTrack struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Rating      FlexFloat  `json:"rating"`
	Singer      *RawSinger `json:"singer"`
}

// Track is a normalized, display-ready track. Every display field is
// populated, either with the upstream value or with a placeholder.
type Track struct {
	ID             int     `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	URL            string  `json:"url"`
	Rating         float64 `json:"rating"`
	ArtistName     string  `json:"singerName"`
	ArtistGenre    string  `json:"singerGenre"`
	ArtistBio      string  `json:"singerBio,omitempty"`
	ArtistPhotoURL string  `json:"singerPhoto"`
}

// NewSinger is the artist part of a create request.
type NewSinger struct {
	Name      string `json:"name"`
	Genre     string `json:"genre"`
	Biography string `json:"biography"`
	PhotoURL  string `json:"photoUrl"`
}

// NewTrack is the body of POST /musics.
type NewTrack struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Rating      float64   `json:"rating"`
	Singer      NewSinger `json:"singer"`
}

// FlexFloat decodes a number that upstream may send as a JSON number, a
// numeric string or null. Anything unparseable decodes to 0.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			v = 0
		}
		*f = FlexFloat(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}
