package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Time periods accepted by analytics queries. An empty period means all time.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// StreamRepository handles stream-event database operations.
type StreamRepository struct {
	pool *pgxpool.Pool
}

// Record inserts a stream event and increments the song's stream counter.
func (r *StreamRepository) Record(ctx context.Context, songID, userID int64, listenedSeconds int) (*Stream, error) {
	stream := Stream{
		ID:              uuid.New(),
		SongID:          songID,
		UserID:          userID,
		ListenedSeconds: listenedSeconds,
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO streams (id, song_id, user_id, listened_seconds, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`, stream.ID, stream.SongID, stream.UserID, stream.ListenedSeconds).Scan(&stream.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting stream: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE songs SET total_streams = total_streams + 1 WHERE id = $1`, songID)
	if err != nil {
		return nil, fmt.Errorf("incrementing stream count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing stream: %w", err)
	}
	return &stream, nil
}

// periodStart returns the inclusive lower bound for a period, or nil for all
// time. Unknown periods are treated as all time.
func periodStart(period string, now time.Time) *time.Time {
	var start time.Time
	switch period {
	case PeriodToday:
		y, m, d := now.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		start = now.AddDate(0, 0, -7)
	case PeriodMonth:
		start = now.AddDate(0, 0, -30)
	default:
		return nil
	}
	return &start
}

func periodLabel(period string) string {
	switch period {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return period
	default:
		return "all_time"
	}
}

const analyticsQuery = `
	SELECT s.id, s.title, a.artist_name,
		COUNT(st.id) AS total_streams,
		COUNT(DISTINCT st.user_id) AS unique_listeners,
		COALESCE(SUM(st.listened_seconds), 0) AS listened_seconds
	FROM songs s
	JOIN artists a ON a.id = s.artist_id
	LEFT JOIN streams st ON st.song_id = s.id
		AND ($1::timestamptz IS NULL OR st.created_at >= $1)
`

// SongAnalytics computes streaming metrics for one song over a period.
func (r *StreamRepository) SongAnalytics(ctx context.Context, songID int64, period string) (*Analytics, error) {
	query := analyticsQuery + `
		WHERE s.id = $2
		GROUP BY s.id, s.title, a.artist_name`

	an, err := scanAnalytics(r.pool.QueryRow(ctx, query, periodStart(period, time.Now()), songID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song analytics: %w", err)
	}
	an.Period = periodLabel(period)
	return an, nil
}

// AllAnalytics computes streaming metrics for every song over a period,
// ordered by stream count descending.
func (r *StreamRepository) AllAnalytics(ctx context.Context, period string) ([]Analytics, error) {
	query := analyticsQuery + `
		GROUP BY s.id, s.title, a.artist_name
		ORDER BY total_streams DESC, s.id`

	rows, err := r.pool.Query(ctx, query, periodStart(period, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("querying analytics: %w", err)
	}
	defer rows.Close()

	label := periodLabel(period)
	var all []Analytics
	for rows.Next() {
		an, err := scanAnalytics(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning analytics: %w", err)
		}
		an.Period = label
		all = append(all, *an)
	}
	return all, rows.Err()
}

// TopSongs returns the limit most-streamed songs over a period.
func (r *StreamRepository) TopSongs(ctx context.Context, limit int, period string) ([]Analytics, error) {
	all, err := r.AllAnalytics(ctx, period)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func scanAnalytics(row pgx.Row) (*Analytics, error) {
	var an Analytics
	err := row.Scan(
		&an.SongID,
		&an.SongTitle,
		&an.Artist,
		&an.TotalStreams,
		&an.UniqueListeners,
		&an.ListenedSeconds,
	)
	if err != nil {
		return nil, err
	}
	return &an, nil
}
