package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-music-catalog/internal/catalog"
	"github.com/justestif/go-music-catalog/internal/enrich"
	"github.com/justestif/go-music-catalog/internal/lyrics"
	"github.com/justestif/go-music-catalog/internal/moods"
)

// CatalogService provides enriched catalog reads.
type CatalogService interface {
	Songs(ctx context.Context) ([]enrich.SongDetail, error)
	Song(ctx context.Context, id int64) (*enrich.SongDetail, error)
	Artists(ctx context.Context) ([]enrich.ArtistDetail, error)
	Artist(ctx context.Context, id int64) (*enrich.ArtistDetail, error)
	Albums(ctx context.Context) ([]enrich.AlbumDetail, error)
	Album(ctx context.Context, id int64) (*enrich.AlbumDetail, error)
}

// LyricsService resolves song lyrics.
type LyricsService interface {
	Lyrics(ctx context.Context, songID int64) (*lyrics.Result, error)
	Refresh(ctx context.Context, songID int64) (*lyrics.Result, error)
}

// StreamService records stream events and serves listener analytics.
type StreamService interface {
	Record(ctx context.Context, songID, userID int64, listenedSeconds int) (*catalog.Stream, error)
	SongAnalytics(ctx context.Context, songID int64, period string) (*catalog.Analytics, error)
	AllAnalytics(ctx context.Context, period string) ([]catalog.Analytics, error)
	TopSongs(ctx context.Context, limit int, period string) ([]catalog.Analytics, error)
}

// Handlers contains the HTTP handlers for the catalog API.
type Handlers struct {
	catalog CatalogService
	lyrics  LyricsService
	streams StreamService
	logger  *log.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(catalogSvc CatalogService, lyricsSvc LyricsService, streamSvc StreamService, logger *log.Logger) *Handlers {
	return &Handlers{
		catalog: catalogSvc,
		lyrics:  lyricsSvc,
		streams: streamSvc,
		logger:  logger,
	}
}

// ListSongs handles GET /songs.
func (h *Handlers) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.catalog.Songs(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, songs)
}

// GetSong handles GET /songs/{id}.
func (h *Handlers) GetSong(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	song, err := h.catalog.Song(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, song)
}

// GetLyrics handles GET /songs/{id}/lyrics.
func (h *Handlers) GetLyrics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	result, err := h.lyrics.Lyrics(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// RefreshLyrics handles POST /songs/{id}/lyrics/refresh. It evicts the
// cached result and runs the source chain again.
func (h *Handlers) RefreshLyrics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	result, err := h.lyrics.Refresh(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

type streamRequest struct {
	UserID          int64 `json:"user_id"`
	ListenedSeconds int   `json:"listened_seconds"`
}

type streamResponse struct {
	StreamID string `json:"stream_id"`
	SongID   int64  `json:"song_id"`
	Message  string `json:"message"`
}

// RecordStream handles POST /songs/{id}/stream.
func (h *Handlers) RecordStream(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req streamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ListenedSeconds < 0 {
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "listened_seconds must not be negative"})
		return
	}

	stream, err := h.streams.Record(r.Context(), id, req.UserID, req.ListenedSeconds)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, streamResponse{
		StreamID: stream.ID.String(),
		SongID:   stream.SongID,
		Message:  "stream recorded",
	})
}

type analyticsResponse struct {
	SongID            int64  `json:"song_id"`
	SongTitle         string `json:"song_title"`
	Artist            string `json:"artist"`
	TotalStreams      int64  `json:"total_streams"`
	UniqueListeners   int64  `json:"unique_listeners"`
	ListenedSeconds   int64  `json:"listened_seconds"`
	ListenedFormatted string `json:"listened_formatted"`
	Period            string `json:"period"`
}

func toAnalyticsResponse(a *catalog.Analytics) analyticsResponse {
	return analyticsResponse{
		SongID:            a.SongID,
		SongTitle:         a.SongTitle,
		Artist:            a.Artist,
		TotalStreams:      a.TotalStreams,
		UniqueListeners:   a.UniqueListeners,
		ListenedSeconds:   a.ListenedSeconds,
		ListenedFormatted: a.ListenedFormatted(),
		Period:            a.Period,
	}
}

// AllAnalytics handles GET /songs/analytics.
func (h *Handlers) AllAnalytics(w http.ResponseWriter, r *http.Request) {
	period, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}

	all, err := h.streams.AllAnalytics(r.Context(), period)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out := make([]analyticsResponse, len(all))
	for i := range all {
		out[i] = toAnalyticsResponse(&all[i])
	}
	h.respondJSON(w, http.StatusOK, out)
}

// SongAnalytics handles GET /songs/analytics/{id}.
func (h *Handlers) SongAnalytics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	period, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}

	analytics, err := h.streams.SongAnalytics(r.Context(), id, period)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toAnalyticsResponse(analytics))
}

// defaultTopSongs bounds GET /songs/top-songs when no limit is given.
const defaultTopSongs = 10

// TopSongs handles GET /songs/top-songs.
func (h *Handlers) TopSongs(w http.ResponseWriter, r *http.Request) {
	period, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}

	limit := defaultTopSongs
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	top, err := h.streams.TopSongs(r.Context(), limit, period)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out := make([]analyticsResponse, len(top))
	for i := range top {
		out[i] = toAnalyticsResponse(&top[i])
	}
	h.respondJSON(w, http.StatusOK, out)
}

type moodGroupResponse struct {
	Mood        string             `json:"mood"`
	Description string             `json:"description"`
	Centroid    map[string]float64 `json:"centroid"`
	SongCount   int                `json:"song_count"`
	Songs       []moodSongResponse `json:"songs"`
}

type moodSongResponse struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type moodsResponse struct {
	Moods     []moodGroupResponse `json:"moods"`
	Ungrouped []moodSongResponse  `json:"ungrouped"`
}

// Moods handles GET /songs/moods. It clusters the catalog by the audio
// features external enrichment provides; songs without features come back
// ungrouped.
func (h *Handlers) Moods(w http.ResponseWriter, r *http.Request) {
	songs, err := h.catalog.Songs(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	input := make([]moods.Song, len(songs))
	for i := range songs {
		input[i] = moods.Song{
			ID:     songs[i].ID,
			Title:  songs[i].Title,
			Artist: songs[i].Artist.Name,
		}
		if sd := songs[i].SpotifyData; sd != nil && sd.AudioFeatures != nil {
			input[i].Energy = sd.AudioFeatures.Energy
			input[i].Valence = sd.AudioFeatures.Valence
			input[i].Danceability = sd.AudioFeatures.Danceability
			input[i].Acousticness = sd.AudioFeatures.Acousticness
		}
	}

	groups, ungrouped := moods.Detect(input, moods.DefaultConfig())

	resp := moodsResponse{
		Moods:     make([]moodGroupResponse, len(groups)),
		Ungrouped: make([]moodSongResponse, len(ungrouped)),
	}
	for i, g := range groups {
		members := make([]moodSongResponse, len(g.Songs))
		for j, s := range g.Songs {
			members[j] = moodSongResponse{ID: s.ID, Title: s.Title, Artist: s.Artist}
		}
		resp.Moods[i] = moodGroupResponse{
			Mood:        g.Mood,
			Description: g.Description,
			Centroid:    g.Centroid,
			SongCount:   len(g.Songs),
			Songs:       members,
		}
	}
	for i, s := range ungrouped {
		resp.Ungrouped[i] = moodSongResponse{ID: s.ID, Title: s.Title, Artist: s.Artist}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// ListArtists handles GET /artists.
func (h *Handlers) ListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.catalog.Artists(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, artists)
}

// GetArtist handles GET /artists/{id}.
func (h *Handlers) GetArtist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	artist, err := h.catalog.Artist(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, artist)
}

// ListAlbums handles GET /albums.
func (h *Handlers) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.catalog.Albums(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, albums)
}

// GetAlbum handles GET /albums/{id}.
func (h *Handlers) GetAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	album, err := h.catalog.Album(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, album)
}

type errorResponse struct {
	Error string `json:"error"`
}

// pathID parses the {id} URL parameter, responding 400 on garbage.
func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// queryPeriod validates the optional ?period= parameter. Empty means all
// time.
func (h *Handlers) queryPeriod(w http.ResponseWriter, r *http.Request) (string, bool) {
	period := r.URL.Query().Get("period")
	switch period {
	case "", catalog.PeriodToday, catalog.PeriodWeek, catalog.PeriodMonth:
		return period, true
	default:
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "period must be today, week or month"})
		return "", false
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", "err", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		h.respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	h.logger.Error("handling request", "err", err)
	h.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
