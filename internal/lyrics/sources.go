package lyrics

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-music-catalog/internal/catalog"
	"github.com/justestif/go-music-catalog/internal/spotify"
)

// DatabaseSource serves lyrics already stored on the catalog song.
type DatabaseSource struct{}

// Name implements Source.
func (DatabaseSource) Name() string { return SourceDatabase }

// Attempt implements Source.
func (DatabaseSource) Attempt(ctx context.Context, song *catalog.Song) *Result {
	if song.Lyrics == nil || strings.TrimSpace(*song.Lyrics) == "" {
		return nil
	}
	src := SourceDatabase
	return &Result{
		Success:   true,
		Lyrics:    song.Lyrics,
		Source:    &src,
		SongTitle: song.Title,
		Artist:    song.ArtistName,
		HasLyrics: true,
	}
}

// TrackSearcher is the Spotify access the spotify source needs.
type TrackSearcher interface {
	Enabled() bool
	SearchTrack(ctx context.Context, title, artist string) *spotify.Track
}

// TrackIDWriter records a matched Spotify track id on a song.
type TrackIDWriter interface {
	UpdateSpotifyTrackID(ctx context.Context, id int64, spotifyID string) error
}

// SpotifySource matches the song on Spotify. The Web API carries no lyrics
// text, so this source never yields lyrics today; it exists as the extension
// point for when it does, and meanwhile records the matched track id on the
// song as a side effect.
type SpotifySource struct {
	Client TrackSearcher
	Songs  TrackIDWriter
	Logger *log.Logger
}

// Name implements Source.
func (s *SpotifySource) Name() string { return SourceSpotify }

// Attempt implements Source.
func (s *SpotifySource) Attempt(ctx context.Context, song *catalog.Song) *Result {
	if !s.Client.Enabled() {
		return nil
	}

	track := s.Client.SearchTrack(ctx, song.Title, song.ArtistName)
	if track == nil || track.SpotifyID == "" {
		return nil
	}

	if song.SpotifyTrackID == nil || *song.SpotifyTrackID != track.SpotifyID {
		if err := s.Songs.UpdateSpotifyTrackID(ctx, song.ID, track.SpotifyID); err != nil {
			s.Logger.Error("recording spotify track id", "song_id", song.ID, "err", err)
		}
	}

	// No lyrics available through the API.
	return nil
}

// LyricsPageFinder is the Genius access the genius source needs.
type LyricsPageFinder interface {
	Enabled() bool
	SearchSongURL(ctx context.Context, title, artist string) string
	Lyrics(ctx context.Context, pageURL string) string
}

// GeniusSource resolves lyrics through Genius search. Text extraction from
// the matched page is unimplemented in the genius client, so today a match
// still yields nothing.
type GeniusSource struct {
	Client LyricsPageFinder
	Logger *log.Logger
}

// Name implements Source.
func (s *GeniusSource) Name() string { return SourceGenius }

// Attempt implements Source.
func (s *GeniusSource) Attempt(ctx context.Context, song *catalog.Song) *Result {
	if !s.Client.Enabled() {
		return nil
	}

	pageURL := s.Client.SearchSongURL(ctx, song.Title, song.ArtistName)
	if pageURL == "" {
		return nil
	}
	s.Logger.Info("genius page matched", "song_id", song.ID, "url", pageURL)

	text := s.Client.Lyrics(ctx, pageURL)
	if text == "" {
		return nil
	}

	src := SourceGenius
	return &Result{
		Success:   true,
		Lyrics:    &text,
		Source:    &src,
		SongTitle: song.Title,
		Artist:    song.ArtistName,
		HasLyrics: true,
	}
}

var _ Source = DatabaseSource{}
var _ Source = (*SpotifySource)(nil)
var _ Source = (*GeniusSource)(nil)
