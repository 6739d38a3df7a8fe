package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ArtistRepository handles artist database operations.
type ArtistRepository struct {
	pool *pgxpool.Pool
}

const artistColumns = `
	a.id, a.artist_name, a.bio, a.profile_image_url, a.email,
	a.website, a.instagram, a.twitter, a.facebook,
	a.monthly_listeners, a.is_verified, a.verified_at,
	a.created_at, a.updated_at,
	COALESCE(SUM(s.total_streams), 0) AS total_streams,
	COUNT(s.id) AS total_songs
`

const artistFrom = `
	FROM artists a
	LEFT JOIN songs s ON s.artist_id = a.id
`

const artistGroup = `
	GROUP BY a.id
`

func scanArtist(row pgx.Row) (*Artist, error) {
	var artist Artist
	err := row.Scan(
		&artist.ID,
		&artist.Name,
		&artist.Bio,
		&artist.ProfileImageURL,
		&artist.Email,
		&artist.Website,
		&artist.Instagram,
		&artist.Twitter,
		&artist.Facebook,
		&artist.MonthlyListeners,
		&artist.IsVerified,
		&artist.VerifiedAt,
		&artist.CreatedAt,
		&artist.UpdatedAt,
		&artist.TotalStreams,
		&artist.TotalSongs,
	)
	if err != nil {
		return nil, err
	}
	return &artist, nil
}

// Get retrieves an artist by ID with stream and song aggregates.
func (r *ArtistRepository) Get(ctx context.Context, id int64) (*Artist, error) {
	query := `SELECT ` + artistColumns + artistFrom + ` WHERE a.id = $1` + artistGroup

	artist, err := scanArtist(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying artist: %w", err)
	}
	return artist, nil
}

// List retrieves all artists ordered by name.
func (r *ArtistRepository) List(ctx context.Context) ([]Artist, error) {
	query := `SELECT ` + artistColumns + artistFrom + artistGroup + ` ORDER BY a.artist_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying artists: %w", err)
	}
	defer rows.Close()

	var artists []Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning artist: %w", err)
		}
		artists = append(artists, *artist)
	}
	return artists, rows.Err()
}

// Songs retrieves all songs by an artist, newest first.
func (r *ArtistRepository) Songs(ctx context.Context, artistID int64) ([]Song, error) {
	query := `SELECT ` + songColumns + songFrom + `
		WHERE s.artist_id = $1
		ORDER BY s.created_at DESC`

	rows, err := r.pool.Query(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("querying artist songs: %w", err)
	}
	defer rows.Close()

	return collectSongs(rows)
}
