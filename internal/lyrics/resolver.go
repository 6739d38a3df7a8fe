// Package lyrics resolves song lyrics through an ordered chain of sources:
// the catalog itself, then Spotify track metadata, then Genius. The first
// source to produce lyrics wins; newly discovered lyrics are written back to
// the catalog, and whole resolutions are cached.
package lyrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-music-catalog/internal/cache"
	"github.com/justestif/go-music-catalog/internal/catalog"
)

// CacheTTL is how long a resolution (found or not) is served from cache
// before the chain runs again.
const CacheTTL = 24 * time.Hour

// Lyrics sources, in the order the resolver consults them.
const (
	SourceDatabase = "database"
	SourceSpotify  = "spotify"
	SourceGenius   = "genius"
)

// Result is the outcome of a lyrics resolution.
type Result struct {
	Success   bool    `json:"success"`
	Lyrics    *string `json:"lyrics"`
	Source    *string `json:"source"`
	SongTitle string  `json:"song_title"`
	Artist    string  `json:"artist"`
	HasLyrics bool    `json:"has_lyrics"`
	Message   string  `json:"message,omitempty"`
}

// Source is one strategy in the resolution chain. Attempt returns nil when
// the source has nothing for the song; failures inside a source are absorbed
// and reported as nil so the chain moves on.
type Source interface {
	Name() string
	Attempt(ctx context.Context, song *catalog.Song) *Result
}

// SongStore is the catalog access the resolver needs.
type SongStore interface {
	Get(ctx context.Context, id int64) (*catalog.Song, error)
	ListWithoutLyrics(ctx context.Context, limit int) ([]catalog.Song, error)
	UpdateLyrics(ctx context.Context, id int64, lyrics string) error
}

// Resolver runs the source chain with caching and write-back.
type Resolver struct {
	songs   SongStore
	cache   cache.Store
	sources []Source
	logger  *log.Logger
}

// NewResolver creates a Resolver consulting the given sources in order.
func NewResolver(songs SongStore, store cache.Store, sources []Source, logger *log.Logger) *Resolver {
	return &Resolver{
		songs:   songs,
		cache:   store,
		sources: sources,
		logger:  logger,
	}
}

func cacheKey(songID int64) string {
	return fmt.Sprintf("lyrics_%d", songID)
}

// Lyrics resolves lyrics for a song. Results are cached for CacheTTL, so two
// calls within that window return the same result without re-running the
// chain. Returns catalog.ErrNotFound only when the song id is unknown.
func (r *Resolver) Lyrics(ctx context.Context, songID int64) (*Result, error) {
	if v, ok := r.cache.Get(cacheKey(songID)); ok {
		if result, ok := v.(*Result); ok {
			r.logger.Debug("lyrics cache hit", "song_id", songID)
			return result, nil
		}
	}

	song, err := r.songs.Get(ctx, songID)
	if err != nil {
		return nil, fmt.Errorf("loading song %d: %w", songID, err)
	}

	result := r.resolve(ctx, song)
	r.cache.Set(cacheKey(songID), result, CacheTTL)
	return result, nil
}

// Refresh evicts any cached resolution for the song and re-runs the chain,
// guaranteeing a live re-resolution.
func (r *Resolver) Refresh(ctx context.Context, songID int64) (*Result, error) {
	r.cache.Delete(cacheKey(songID))
	return r.Lyrics(ctx, songID)
}

func (r *Resolver) resolve(ctx context.Context, song *catalog.Song) *Result {
	for _, src := range r.sources {
		result := src.Attempt(ctx, song)
		if result == nil {
			continue
		}

		// Lyrics discovered outside the catalog are persisted so the next
		// resolution short-circuits at the database source.
		if result.HasLyrics && result.Lyrics != nil && src.Name() != SourceDatabase {
			if err := r.songs.UpdateLyrics(ctx, song.ID, *result.Lyrics); err != nil {
				r.logger.Error("persisting resolved lyrics", "song_id", song.ID, "err", err)
			}
		}

		r.logger.Info("lyrics resolved", "song_id", song.ID, "source", src.Name())
		return result
	}

	return &Result{
		Success:   true,
		SongTitle: song.Title,
		Artist:    song.ArtistName,
		Message:   "Lyrics not available for this song",
	}
}

// UpdateStats summarizes a batch lyrics backfill.
type UpdateStats struct {
	Updated int
	Failed  int
	Skipped int
}

// UpdateMissing attempts to resolve lyrics for up to limit songs that have
// none, persisting whatever is found. Songs that gained lyrics since listing
// are skipped. Per-song failures never abort the batch.
func (r *Resolver) UpdateMissing(ctx context.Context, limit int) (UpdateStats, error) {
	var stats UpdateStats

	songs, err := r.songs.ListWithoutLyrics(ctx, limit)
	if err != nil {
		return stats, fmt.Errorf("listing songs without lyrics: %w", err)
	}

	for i := range songs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		song := &songs[i]
		if song.Lyrics != nil && strings.TrimSpace(*song.Lyrics) != "" {
			stats.Skipped++
			continue
		}

		result := r.resolve(ctx, song)
		if result.HasLyrics {
			stats.Updated++
		} else {
			stats.Failed++
		}
	}
	return stats, nil
}
