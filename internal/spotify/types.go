package spotify

import (
	"encoding/json"
	"errors"
)

// Image is an artwork resource attached to albums and artists.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Track is the normalized projection of a Spotify track search result.
// Fields absent from the upstream response hold zero values or nil; results
// are rebuilt on every query and never persisted verbatim.
type Track struct {
	SpotifyID   string         `json:"spotify_id"`
	Name        string         `json:"name"`
	Artists     []string       `json:"artists"`
	Album       string         `json:"album"`
	AlbumImage  *string        `json:"album_image"`
	PreviewURL  *string        `json:"preview_url"`
	ExternalURL *string        `json:"external_url"`
	DurationMs  *int           `json:"duration_ms"`
	Popularity  *int           `json:"popularity"`
	Features    *AudioFeatures `json:"audio_features,omitempty"`
}

// Album is the normalized projection of a Spotify album search result.
type Album struct {
	SpotifyID   string   `json:"spotify_id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	ReleaseDate *string  `json:"release_date"`
	TotalTracks *int     `json:"total_tracks"`
	AlbumType   string   `json:"album_type"`
	ExternalURL *string  `json:"external_url"`
	Images      []Image  `json:"images"`
}

// Artist is the normalized projection of a Spotify artist search result.
type Artist struct {
	SpotifyID   string   `json:"spotify_id"`
	Name        string   `json:"name"`
	Genres      []string `json:"genres"`
	Popularity  *int     `json:"popularity"`
	Followers   *int     `json:"followers"`
	ExternalURL *string  `json:"external_url"`
	Images      []Image  `json:"images"`
}

// AudioFeatures holds Spotify's numeric audio descriptors for a track. Each
// field is independently nullable; a 404 from the audio-features endpoint
// leaves the whole struct absent.
type AudioFeatures struct {
	Danceability     *float64 `json:"danceability"`
	Energy           *float64 `json:"energy"`
	Key              *int     `json:"key"`
	Loudness         *float64 `json:"loudness"`
	Mode             *int     `json:"mode"`
	Speechiness      *float64 `json:"speechiness"`
	Acousticness     *float64 `json:"acousticness"`
	Instrumentalness *float64 `json:"instrumentalness"`
	Liveness         *float64 `json:"liveness"`
	Valence          *float64 `json:"valence"`
	Tempo            *float64 `json:"tempo"`
	DurationMs       *int     `json:"duration_ms"`
	TimeSignature    *int     `json:"time_signature"`
}

// Wire types for the search endpoint. Response shapes based on
// https://developer.spotify.com/documentation/web-api/reference/search

type searchResponse struct {
	Tracks  itemPage[trackItem]  `json:"tracks"`
	Albums  itemPage[albumItem]  `json:"albums"`
	Artists itemPage[artistItem] `json:"artists"`
}

type itemPage[T any] struct {
	Items []T `json:"items"`
}

type trackItem struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []artistItem      `json:"artists"`
	Album        albumItem         `json:"album"`
	PreviewURL   *string           `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
	DurationMs   *int              `json:"duration_ms"`
	Popularity   *int              `json:"popularity"`
}

type albumItem struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []artistItem      `json:"artists"`
	ReleaseDate  *string           `json:"release_date"`
	TotalTracks  *int              `json:"total_tracks"`
	AlbumType    string            `json:"album_type"`
	Images       []Image           `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type artistItem struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Genres       []string          `json:"genres"`
	Popularity   *int              `json:"popularity"`
	Followers    followers         `json:"followers"`
	Images       []Image           `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type followers struct {
	Total *int `json:"total"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// decodeLenient unmarshals untrusted upstream JSON into v, tolerating type
// mismatches at any nesting level: fields whose upstream value has the wrong
// type keep their zero value while every well-typed sibling still decodes.
// Only malformed JSON itself is an error. This is the single validation point
// that keeps evolving or broken third-party schemas from failing a request.
func decodeLenient(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}

func artistNames(items []artistItem) []string {
	names := make([]string, 0, len(items))
	for _, a := range items {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

func externalURL(urls map[string]string) *string {
	if u, ok := urls["spotify"]; ok && u != "" {
		return &u
	}
	return nil
}

func (t trackItem) normalize() *Track {
	track := &Track{
		SpotifyID:   t.ID,
		Name:        t.Name,
		Artists:     artistNames(t.Artists),
		Album:       t.Album.Name,
		PreviewURL:  t.PreviewURL,
		ExternalURL: externalURL(t.ExternalURLs),
		DurationMs:  t.DurationMs,
		Popularity:  t.Popularity,
	}
	if len(t.Album.Images) > 0 && t.Album.Images[0].URL != "" {
		track.AlbumImage = &t.Album.Images[0].URL
	}
	return track
}

func (a albumItem) normalize() *Album {
	return &Album{
		SpotifyID:   a.ID,
		Name:        a.Name,
		Artists:     artistNames(a.Artists),
		ReleaseDate: a.ReleaseDate,
		TotalTracks: a.TotalTracks,
		AlbumType:   a.AlbumType,
		ExternalURL: externalURL(a.ExternalURLs),
		Images:      a.Images,
	}
}

func (a artistItem) normalize() *Artist {
	return &Artist{
		SpotifyID:   a.ID,
		Name:        a.Name,
		Genres:      a.Genres,
		Popularity:  a.Popularity,
		Followers:   a.Followers.Total,
		ExternalURL: externalURL(a.ExternalURLs),
		Images:      a.Images,
	}
}
