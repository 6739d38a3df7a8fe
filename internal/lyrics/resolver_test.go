package lyrics

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-music-catalog/internal/cache"
	"github.com/justestif/go-music-catalog/internal/catalog"
	"github.com/justestif/go-music-catalog/internal/spotify"
)

type fakeSongStore struct {
	songs         map[int64]*catalog.Song
	lyricsWrites  map[int64]string
	trackIDWrites map[int64]string
	withoutLyrics []catalog.Song
}

func newFakeSongStore(songs ...*catalog.Song) *fakeSongStore {
	s := &fakeSongStore{
		songs:         make(map[int64]*catalog.Song),
		lyricsWrites:  make(map[int64]string),
		trackIDWrites: make(map[int64]string),
	}
	for _, song := range songs {
		s.songs[song.ID] = song
	}
	return s
}

func (s *fakeSongStore) Get(ctx context.Context, id int64) (*catalog.Song, error) {
	song, ok := s.songs[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return song, nil
}

func (s *fakeSongStore) ListWithoutLyrics(ctx context.Context, limit int) ([]catalog.Song, error) {
	if limit < len(s.withoutLyrics) {
		return s.withoutLyrics[:limit], nil
	}
	return s.withoutLyrics, nil
}

func (s *fakeSongStore) UpdateLyrics(ctx context.Context, id int64, lyrics string) error {
	s.lyricsWrites[id] = lyrics
	return nil
}

func (s *fakeSongStore) UpdateSpotifyTrackID(ctx context.Context, id int64, spotifyID string) error {
	s.trackIDWrites[id] = spotifyID
	return nil
}

// countingSource counts attempts and optionally returns a fixed result.
type countingSource struct {
	name   string
	result *Result
	calls  int
}

func (s *countingSource) Name() string { return s.name }

func (s *countingSource) Attempt(ctx context.Context, song *catalog.Song) *Result {
	s.calls++
	return s.result
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func songWithLyrics(id int64, lyrics string) *catalog.Song {
	return &catalog.Song{ID: id, Title: "Song", ArtistName: "Artist", Lyrics: &lyrics}
}

func TestLyricsFromDatabaseMakesNoExternalCalls(t *testing.T) {
	store := newFakeSongStore(songWithLyrics(1, "la la la"))
	external := &countingSource{name: SourceSpotify}

	r := NewResolver(store, cache.NewMemory(), []Source{DatabaseSource{}, external}, testLogger())

	result, err := r.Lyrics(context.Background(), 1)
	if err != nil {
		t.Fatalf("Lyrics: %v", err)
	}

	if !result.Success || !result.HasLyrics {
		t.Errorf("result = %+v, want success with lyrics", result)
	}
	if result.Source == nil || *result.Source != SourceDatabase {
		t.Errorf("Source = %v, want database", result.Source)
	}
	if result.Lyrics == nil || *result.Lyrics != "la la la" {
		t.Errorf("Lyrics = %v, want la la la", result.Lyrics)
	}
	if external.calls != 0 {
		t.Errorf("external source attempted %d times, want 0", external.calls)
	}
}

func TestLyricsIsCached(t *testing.T) {
	store := newFakeSongStore(&catalog.Song{ID: 1, Title: "Song", ArtistName: "Artist"})
	external := &countingSource{name: SourceGenius}

	r := NewResolver(store, cache.NewMemory(), []Source{DatabaseSource{}, external}, testLogger())

	first, err := r.Lyrics(context.Background(), 1)
	if err != nil {
		t.Fatalf("Lyrics: %v", err)
	}
	second, err := r.Lyrics(context.Background(), 1)
	if err != nil {
		t.Fatalf("Lyrics: %v", err)
	}

	if external.calls != 1 {
		t.Errorf("source attempted %d times across two lookups, want 1", external.calls)
	}
	if first != second {
		t.Error("cached lookup returned a different result value")
	}
}

func TestRefreshEvictsAndReresolves(t *testing.T) {
	store := newFakeSongStore(&catalog.Song{ID: 1, Title: "Song", ArtistName: "Artist"})
	external := &countingSource{name: SourceGenius}

	r := NewResolver(store, cache.NewMemory(), []Source{external}, testLogger())

	if _, err := r.Lyrics(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Refresh(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	if external.calls != 2 {
		t.Errorf("source attempted %d times, want 2 (refresh bypasses cache)", external.calls)
	}
}

func TestResolvedLyricsAreWrittenBack(t *testing.T) {
	store := newFakeSongStore(&catalog.Song{ID: 1, Title: "Song", ArtistName: "Artist"})

	text := "found somewhere else"
	src := SourceGenius
	hit := &countingSource{name: SourceGenius, result: &Result{
		Success:   true,
		Lyrics:    &text,
		Source:    &src,
		HasLyrics: true,
	}}

	r := NewResolver(store, cache.NewMemory(), []Source{DatabaseSource{}, hit}, testLogger())

	result, err := r.Lyrics(context.Background(), 1)
	if err != nil {
		t.Fatalf("Lyrics: %v", err)
	}
	if !result.HasLyrics {
		t.Fatalf("result = %+v, want lyrics", result)
	}
	if store.lyricsWrites[1] != text {
		t.Errorf("written lyrics = %q, want %q", store.lyricsWrites[1], text)
	}
}

func TestNoSourceYieldsNotFoundResult(t *testing.T) {
	store := newFakeSongStore(&catalog.Song{ID: 1, Title: "Song", ArtistName: "Artist"})

	r := NewResolver(store, cache.NewMemory(), []Source{DatabaseSource{}}, testLogger())

	result, err := r.Lyrics(context.Background(), 1)
	if err != nil {
		t.Fatalf("Lyrics: %v", err)
	}
	if !result.Success || result.HasLyrics || result.Lyrics != nil || result.Source != nil {
		t.Errorf("result = %+v, want empty successful result", result)
	}
	if result.Message == "" {
		t.Error("Message is empty, want availability note")
	}
}

func TestLyricsUnknownSong(t *testing.T) {
	r := NewResolver(newFakeSongStore(), cache.NewMemory(), nil, testLogger())

	if _, err := r.Lyrics(context.Background(), 42); err == nil {
		t.Fatal("Lyrics succeeded for unknown song")
	}
}

// fakeSearcher implements TrackSearcher.
type fakeSearcher struct {
	track *spotify.Track
	calls int
}

func (f *fakeSearcher) Enabled() bool { return true }

func (f *fakeSearcher) SearchTrack(ctx context.Context, title, artist string) *spotify.Track {
	f.calls++
	return f.track
}

func TestSpotifySourceRecordsTrackID(t *testing.T) {
	store := newFakeSongStore()
	searcher := &fakeSearcher{track: &spotify.Track{SpotifyID: "t1", Name: "Song"}}

	src := &SpotifySource{Client: searcher, Songs: store, Logger: testLogger()}
	song := &catalog.Song{ID: 1, Title: "Song", ArtistName: "Artist"}

	// The API has no lyrics, so the source must yield nothing even on a match.
	if result := src.Attempt(context.Background(), song); result != nil {
		t.Errorf("Attempt = %+v, want nil", result)
	}
	if store.trackIDWrites[1] != "t1" {
		t.Errorf("recorded track id = %q, want t1", store.trackIDWrites[1])
	}

	// A song already carrying the id is not re-written.
	id := "t1"
	delete(store.trackIDWrites, 1)
	song.SpotifyTrackID = &id
	src.Attempt(context.Background(), song)
	if _, ok := store.trackIDWrites[1]; ok {
		t.Error("track id re-written for song that already had it")
	}
}

func TestUpdateMissing(t *testing.T) {
	blank := "   "
	store := newFakeSongStore()
	store.withoutLyrics = []catalog.Song{
		{ID: 1, Title: "One", ArtistName: "A"},
		{ID: 2, Title: "Two", ArtistName: "B", Lyrics: &blank},
		{ID: 3, Title: "Three", ArtistName: "C"},
	}

	text := "resolved"
	src := SourceGenius
	hit := &countingSource{name: SourceGenius, result: &Result{
		Success: true, Lyrics: &text, Source: &src, HasLyrics: true,
	}}

	r := NewResolver(store, cache.NewMemory(), []Source{hit}, testLogger())

	stats, err := r.UpdateMissing(context.Background(), 10)
	if err != nil {
		t.Fatalf("UpdateMissing: %v", err)
	}
	if stats.Updated != 3 || stats.Failed != 0 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want 3 updated", stats)
	}
	if len(store.lyricsWrites) != 3 {
		t.Errorf("wrote lyrics for %d songs, want 3", len(store.lyricsWrites))
	}
}

// Verify the cache TTL constant holds the documented 24 hours.
func TestCacheTTL(t *testing.T) {
	if CacheTTL != 24*time.Hour {
		t.Errorf("CacheTTL = %v, want 24h", CacheTTL)
	}
}
