package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SongRepository handles song database operations.
type SongRepository struct {
	pool *pgxpool.Pool
}

const songColumns = `
	s.id, s.title, s.artist_id, a.artist_name,
	s.album_id, al.title, al.release_date,
	s.duration, s.audio_url, s.total_streams, s.lyrics, s.spotify_track_id,
	s.created_at
`

const songFrom = `
	FROM songs s
	JOIN artists a ON a.id = s.artist_id
	LEFT JOIN albums al ON al.id = s.album_id
`

func scanSong(row pgx.Row) (*Song, error) {
	var song Song
	err := row.Scan(
		&song.ID,
		&song.Title,
		&song.ArtistID,
		&song.ArtistName,
		&song.AlbumID,
		&song.AlbumTitle,
		&song.AlbumReleaseDate,
		&song.Duration,
		&song.AudioURL,
		&song.TotalStreams,
		&song.Lyrics,
		&song.SpotifyTrackID,
		&song.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &song, nil
}

// Get retrieves a song by ID with its artist and album joined in.
func (r *SongRepository) Get(ctx context.Context, id int64) (*Song, error) {
	query := `SELECT ` + songColumns + songFrom + ` WHERE s.id = $1`

	song, err := scanSong(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return song, nil
}

// List retrieves all songs ordered by creation time, newest first.
func (r *SongRepository) List(ctx context.Context) ([]Song, error) {
	query := `SELECT ` + songColumns + songFrom + ` ORDER BY s.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	defer rows.Close()

	return collectSongs(rows)
}

// ListWithoutLyrics retrieves up to limit songs that have no stored lyrics,
// oldest first so backfill jobs work through the catalog deterministically.
func (r *SongRepository) ListWithoutLyrics(ctx context.Context, limit int) ([]Song, error) {
	query := `SELECT ` + songColumns + songFrom + `
		WHERE s.lyrics IS NULL OR btrim(s.lyrics) = ''
		ORDER BY s.created_at ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying songs without lyrics: %w", err)
	}
	defer rows.Close()

	return collectSongs(rows)
}

// UpdateLyrics stores resolved lyrics on a song.
func (r *SongRepository) UpdateLyrics(ctx context.Context, id int64, lyrics string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE songs SET lyrics = $2 WHERE id = $1`, id, lyrics)
	if err != nil {
		return fmt.Errorf("updating lyrics: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSpotifyTrackID records the Spotify track id matched for a song.
func (r *SongRepository) UpdateSpotifyTrackID(ctx context.Context, id int64, spotifyID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE songs SET spotify_track_id = $2 WHERE id = $1`, id, spotifyID)
	if err != nil {
		return fmt.Errorf("updating spotify track id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectSongs(rows pgx.Rows) ([]Song, error) {
	var songs []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		songs = append(songs, *song)
	}
	return songs, rows.Err()
}
