package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AlbumRepository handles album database operations.
type AlbumRepository struct {
	pool *pgxpool.Pool
}

const albumColumns = `
	al.id, al.title, al.artist_id, a.artist_name,
	al.cover_image_url, al.release_date, al.genre, al.created_at,
	COALESCE(SUM(s.total_streams), 0) AS total_streams,
	COUNT(s.id) AS total_songs
`

const albumFrom = `
	FROM albums al
	JOIN artists a ON a.id = al.artist_id
	LEFT JOIN songs s ON s.album_id = al.id
`

const albumGroup = `
	GROUP BY al.id, a.artist_name
`

func scanAlbum(row pgx.Row) (*Album, error) {
	var album Album
	err := row.Scan(
		&album.ID,
		&album.Title,
		&album.ArtistID,
		&album.ArtistName,
		&album.CoverImageURL,
		&album.ReleaseDate,
		&album.Genre,
		&album.CreatedAt,
		&album.TotalStreams,
		&album.TotalSongs,
	)
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// Get retrieves an album by ID with stream and song aggregates.
func (r *AlbumRepository) Get(ctx context.Context, id int64) (*Album, error) {
	query := `SELECT ` + albumColumns + albumFrom + ` WHERE al.id = $1` + albumGroup

	album, err := scanAlbum(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying album: %w", err)
	}
	return album, nil
}

// List retrieves all albums, newest release first.
func (r *AlbumRepository) List(ctx context.Context) ([]Album, error) {
	query := `SELECT ` + albumColumns + albumFrom + albumGroup + ` ORDER BY al.release_date DESC NULLS LAST`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying albums: %w", err)
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning album: %w", err)
		}
		albums = append(albums, *album)
	}
	return albums, rows.Err()
}

// Songs retrieves all songs on an album in track order (creation order here,
// since the catalog stores no track numbers).
func (r *AlbumRepository) Songs(ctx context.Context, albumID int64) ([]Song, error) {
	query := `SELECT ` + songColumns + songFrom + `
		WHERE s.album_id = $1
		ORDER BY s.created_at ASC`

	rows, err := r.pool.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("querying album songs: %w", err)
	}
	defer rows.Close()

	return collectSongs(rows)
}
