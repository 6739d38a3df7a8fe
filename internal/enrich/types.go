package enrich

import (
	"time"

	"github.com/justestif/go-music-catalog/internal/catalog"
	"github.com/justestif/go-music-catalog/internal/spotify"
)

// ArtistRef identifies an artist inside another response object.
type ArtistRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AlbumRef identifies an album inside another response object.
type AlbumRef struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate *string `json:"release_date,omitempty"`
}

// SongSpotifyData is the external enrichment attached to a song response.
// The whole object is null when enrichment failed or is disabled.
type SongSpotifyData struct {
	SpotifyID     string                 `json:"spotify_id"`
	PreviewURL    *string                `json:"preview_url"`
	ExternalURL   *string                `json:"external_url"`
	Popularity    *int                   `json:"popularity"`
	AlbumImage    *string                `json:"album_image"`
	DurationMs    *int                   `json:"duration_ms"`
	AudioFeatures *spotify.AudioFeatures `json:"audio_features"`
}

// SongDetail is a catalog song combined with best-effort external data.
type SongDetail struct {
	ID                int64            `json:"id"`
	Title             string           `json:"title"`
	Duration          int              `json:"duration"`
	DurationFormatted string           `json:"duration_formatted"`
	Artist            ArtistRef        `json:"artist"`
	Album             *AlbumRef        `json:"album,omitempty"`
	Streams           int64            `json:"streams"`
	AudioURL          *string          `json:"audio_file,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	SpotifyData       *SongSpotifyData `json:"spotify_data"`
}

// AlbumDetail is a catalog album combined with best-effort external data.
type AlbumDetail struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Artist       ArtistRef       `json:"artist"`
	CoverImage   *string         `json:"cover_image"`
	ReleaseDate  *string         `json:"release_date"`
	Genre        *string         `json:"genre"`
	TotalSongs   int             `json:"total_songs"`
	TotalStreams int64           `json:"total_streams"`
	CreatedAt    time.Time       `json:"created_at"`
	Songs        []SongDetail    `json:"songs,omitempty"`
	SpotifyData  *spotify.Album  `json:"spotify_data"`
}

// ArtistDetail is a catalog artist combined with best-effort external data.
type ArtistDetail struct {
	ID               int64           `json:"id"`
	Name             string          `json:"artist_name"`
	Bio              *string         `json:"bio"`
	ProfileImage     *string         `json:"profile_image"`
	Email            string          `json:"email,omitempty"`
	Website          *string         `json:"website,omitempty"`
	Instagram        *string         `json:"instagram,omitempty"`
	Twitter          *string         `json:"twitter,omitempty"`
	Facebook         *string         `json:"facebook,omitempty"`
	MonthlyListeners int             `json:"monthly_listeners"`
	TotalStreams     int64           `json:"total_streams"`
	IsVerified       bool            `json:"is_verified"`
	VerifiedAt       *time.Time      `json:"verification_date,omitempty"`
	TotalSongs       int             `json:"total_songs"`
	CreatedAt        time.Time       `json:"created_at"`
	Songs            []SongDetail    `json:"songs,omitempty"`
	SpotifyData      *spotify.Artist `json:"spotify_data"`
}

func albumRef(song *catalog.Song) *AlbumRef {
	if song.AlbumID == nil {
		return nil
	}
	ref := &AlbumRef{ID: *song.AlbumID}
	if song.AlbumTitle != nil {
		ref.Title = *song.AlbumTitle
	}
	if song.AlbumReleaseDate != nil {
		d := song.AlbumReleaseDate.Format("2006-01-02")
		ref.ReleaseDate = &d
	}
	return ref
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	d := t.Format("2006-01-02")
	return &d
}
