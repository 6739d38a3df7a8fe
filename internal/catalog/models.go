package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Artist represents a music artist or band.
type Artist struct {
	ID               int64
	Name             string
	Bio              *string // nullable
	ProfileImageURL  *string // nullable
	Email            string
	Website          *string // nullable
	Instagram        *string // nullable
	Twitter          *string // nullable
	Facebook         *string // nullable
	MonthlyListeners int
	IsVerified       bool
	VerifiedAt       *time.Time // nullable
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Aggregates computed by queries, not stored columns.
	TotalStreams int64
	TotalSongs   int
}

// Album represents an album that contains songs.
type Album struct {
	ID            int64
	Title         string
	ArtistID      int64
	ArtistName    string
	CoverImageURL *string    // nullable
	ReleaseDate   *time.Time // nullable
	Genre         *string    // nullable
	CreatedAt     time.Time

	// Aggregates computed by queries.
	TotalStreams int64
	TotalSongs   int
}

// Song represents a catalog song with its artist and optional album joined in.
type Song struct {
	ID               int64
	Title            string
	ArtistID         int64
	ArtistName       string
	AlbumID          *int64     // nullable
	AlbumTitle       *string    // nullable
	AlbumReleaseDate *time.Time // nullable
	Duration         int        // seconds
	AudioURL         *string    // nullable
	TotalStreams     int64
	Lyrics           *string // nullable
	SpotifyTrackID   *string // nullable
	CreatedAt        time.Time
}

// DurationFormatted returns the song duration as m:ss.
func (s *Song) DurationFormatted() string {
	return fmt.Sprintf("%d:%02d", s.Duration/60, s.Duration%60)
}

// Stream represents a single stream event, used for listener analytics.
type Stream struct {
	ID              uuid.UUID
	SongID          int64
	UserID          int64
	ListenedSeconds int
	CreatedAt       time.Time
}

// Analytics holds streaming metrics for one song over a time period.
type Analytics struct {
	SongID          int64
	SongTitle       string
	Artist          string
	TotalStreams    int64
	UniqueListeners int64
	ListenedSeconds int64
	Period          string // "all_time", "today", "week", or "month"
}

// ListenedFormatted returns the total listened duration in a human-readable
// form ("2h 5m", "3m", "45s").
func (a *Analytics) ListenedFormatted() string {
	s := a.ListenedSeconds
	switch {
	case s >= 3600:
		return fmt.Sprintf("%dh %dm", s/3600, (s%3600)/60)
	case s >= 60:
		return fmt.Sprintf("%dm", s/60)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
