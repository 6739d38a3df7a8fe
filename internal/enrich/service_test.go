package enrich

import (
	"context"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-music-catalog/internal/catalog"
	"github.com/justestif/go-music-catalog/internal/spotify"
)

type fakeStores struct {
	songs   []catalog.Song
	artists []catalog.Artist
	albums  []catalog.Album
}

func (f *fakeStores) Get(ctx context.Context, id int64) (*catalog.Song, error) {
	for i := range f.songs {
		if f.songs[i].ID == id {
			return &f.songs[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeStores) List(ctx context.Context) ([]catalog.Song, error) {
	return f.songs, nil
}

type fakeArtistStore struct{ fakeStores }

func (f *fakeArtistStore) Get(ctx context.Context, id int64) (*catalog.Artist, error) {
	for i := range f.artists {
		if f.artists[i].ID == id {
			return &f.artists[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeArtistStore) List(ctx context.Context) ([]catalog.Artist, error) {
	return f.artists, nil
}

func (f *fakeArtistStore) Songs(ctx context.Context, artistID int64) ([]catalog.Song, error) {
	var out []catalog.Song
	for _, s := range f.songs {
		if s.ArtistID == artistID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeAlbumStore struct{ fakeStores }

func (f *fakeAlbumStore) Get(ctx context.Context, id int64) (*catalog.Album, error) {
	for i := range f.albums {
		if f.albums[i].ID == id {
			return &f.albums[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeAlbumStore) List(ctx context.Context) ([]catalog.Album, error) {
	return f.albums, nil
}

func (f *fakeAlbumStore) Songs(ctx context.Context, albumID int64) ([]catalog.Song, error) {
	var out []catalog.Song
	for _, s := range f.songs {
		if s.AlbumID != nil && *s.AlbumID == albumID {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeMeta serves canned results keyed by title or name. A nil entry (or a
// missing key) simulates a failed lookup.
type fakeMeta struct {
	mu      sync.Mutex
	enabled bool
	tracks  map[string]*spotify.Track
	albums  map[string]*spotify.Album
	artists map[string]*spotify.Artist
	calls   []string
}

func (f *fakeMeta) Enabled() bool { return f.enabled }

func (f *fakeMeta) record(kind, key string) {
	f.mu.Lock()
	f.calls = append(f.calls, kind+":"+key)
	f.mu.Unlock()
}

func (f *fakeMeta) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeMeta) TrackData(ctx context.Context, title, artist string) *spotify.Track {
	f.record("track", title)
	return f.tracks[title]
}

func (f *fakeMeta) SearchAlbum(ctx context.Context, title, artist string) *spotify.Album {
	f.record("album", title)
	return f.albums[title]
}

func (f *fakeMeta) SearchArtist(ctx context.Context, name string) *spotify.Artist {
	f.record("artist", name)
	return f.artists[name]
}

func testService(t *testing.T, stores *fakeStores, meta *fakeMeta, opts ...Option) *Service {
	t.Helper()
	logger := log.New(io.Discard)
	return NewService(stores, &fakeArtistStore{*stores}, &fakeAlbumStore{*stores}, meta, logger, opts...)
}

func testSongs() []catalog.Song {
	albumID := int64(10)
	title := "Greatest"
	return []catalog.Song{
		{ID: 1, Title: "First", ArtistID: 1, ArtistName: "The Band", AlbumID: &albumID, AlbumTitle: &title, Duration: 185, TotalStreams: 100, CreatedAt: time.Now()},
		{ID: 2, Title: "Second", ArtistID: 1, ArtistName: "The Band", Duration: 62, TotalStreams: 50, CreatedAt: time.Now()},
		{ID: 3, Title: "Third", ArtistID: 2, ArtistName: "Solo Act", Duration: 245, TotalStreams: 10, CreatedAt: time.Now()},
	}
}

func TestSongsBatchIsolatesFailures(t *testing.T) {
	meta := &fakeMeta{
		enabled: true,
		tracks: map[string]*spotify.Track{
			"First": {SpotifyID: "sp1", Name: "First"},
			// "Second" missing: that lookup fails.
			"Third": {SpotifyID: "sp3", Name: "Third"},
		},
	}
	svc := testService(t, &fakeStores{songs: testSongs()}, meta)

	details, err := svc.Songs(context.Background())
	if err != nil {
		t.Fatalf("Songs: %v", err)
	}
	if len(details) != 3 {
		t.Fatalf("got %d details, want 3", len(details))
	}

	for i, wantTitle := range []string{"First", "Second", "Third"} {
		if details[i].Title != wantTitle {
			t.Errorf("details[%d].Title = %q, want %q", i, details[i].Title, wantTitle)
		}
	}
	if details[0].SpotifyData == nil || details[0].SpotifyData.SpotifyID != "sp1" {
		t.Errorf("details[0].SpotifyData = %+v, want spotify id sp1", details[0].SpotifyData)
	}
	if details[1].SpotifyData != nil {
		t.Errorf("details[1].SpotifyData = %+v, want nil after failed lookup", details[1].SpotifyData)
	}
	if details[2].SpotifyData == nil || details[2].SpotifyData.SpotifyID != "sp3" {
		t.Errorf("details[2].SpotifyData = %+v, want spotify id sp3", details[2].SpotifyData)
	}
}

func TestSongsPreservesOrderUnderConcurrency(t *testing.T) {
	songs := make([]catalog.Song, 40)
	tracks := make(map[string]*spotify.Track, len(songs))
	for i := range songs {
		title := "Song " + strconv.Itoa(i)
		songs[i] = catalog.Song{ID: int64(i + 1), Title: title, ArtistID: 1, ArtistName: "The Band"}
		tracks[title] = &spotify.Track{SpotifyID: title, Name: title}
	}
	meta := &fakeMeta{enabled: true, tracks: tracks}
	svc := testService(t, &fakeStores{songs: songs}, meta, WithConcurrency(7))

	details, err := svc.Songs(context.Background())
	if err != nil {
		t.Fatalf("Songs: %v", err)
	}
	for i := range songs {
		if details[i].ID != songs[i].ID {
			t.Fatalf("details[%d].ID = %d, want %d", i, details[i].ID, songs[i].ID)
		}
		if details[i].SpotifyData == nil || details[i].SpotifyData.SpotifyID != songs[i].Title {
			t.Fatalf("details[%d] enrichment does not match its song", i)
		}
	}
}

func TestSongsDisabledClientSkipsLookups(t *testing.T) {
	meta := &fakeMeta{enabled: false}
	svc := testService(t, &fakeStores{songs: testSongs()}, meta)

	details, err := svc.Songs(context.Background())
	if err != nil {
		t.Fatalf("Songs: %v", err)
	}
	if got := meta.callCount(); got != 0 {
		t.Errorf("external calls = %d, want 0 with disabled client", got)
	}
	for i := range details {
		if details[i].SpotifyData != nil {
			t.Errorf("details[%d].SpotifyData = %+v, want nil", i, details[i].SpotifyData)
		}
	}
}

func TestSongDetailFields(t *testing.T) {
	preview := "https://p.scdn.co/x"
	meta := &fakeMeta{
		enabled: true,
		tracks: map[string]*spotify.Track{
			"First": {SpotifyID: "sp1", Name: "First", PreviewURL: &preview},
		},
	}
	svc := testService(t, &fakeStores{songs: testSongs()}, meta)

	detail, err := svc.Song(context.Background(), 1)
	if err != nil {
		t.Fatalf("Song: %v", err)
	}
	if detail.DurationFormatted != "3:05" {
		t.Errorf("DurationFormatted = %q, want 3:05", detail.DurationFormatted)
	}
	if detail.Artist.Name != "The Band" {
		t.Errorf("Artist.Name = %q, want The Band", detail.Artist.Name)
	}
	if detail.Album == nil || detail.Album.Title != "Greatest" {
		t.Errorf("Album = %+v, want title Greatest", detail.Album)
	}
	if detail.SpotifyData == nil || detail.SpotifyData.PreviewURL == nil || *detail.SpotifyData.PreviewURL != preview {
		t.Errorf("SpotifyData = %+v, want preview url %q", detail.SpotifyData, preview)
	}
}

func TestSongNotFound(t *testing.T) {
	svc := testService(t, &fakeStores{songs: testSongs()}, &fakeMeta{})
	if _, err := svc.Song(context.Background(), 99); err != catalog.ErrNotFound {
		t.Fatalf("Song(99) error = %v, want ErrNotFound", err)
	}
}

func TestArtistDetailIncludesSongs(t *testing.T) {
	meta := &fakeMeta{
		enabled: true,
		artists: map[string]*spotify.Artist{
			"The Band": {SpotifyID: "ar1", Name: "The Band"},
		},
	}
	stores := &fakeStores{
		songs:   testSongs(),
		artists: []catalog.Artist{{ID: 1, Name: "The Band", Email: "band@example.com", TotalSongs: 2}},
	}
	svc := testService(t, stores, meta)

	detail, err := svc.Artist(context.Background(), 1)
	if err != nil {
		t.Fatalf("Artist: %v", err)
	}
	if len(detail.Songs) != 2 {
		t.Fatalf("got %d songs, want 2", len(detail.Songs))
	}
	if detail.Email != "band@example.com" {
		t.Errorf("Email = %q, want the full contact fields on single lookup", detail.Email)
	}
	if detail.SpotifyData == nil || detail.SpotifyData.SpotifyID != "ar1" {
		t.Errorf("SpotifyData = %+v, want spotify id ar1", detail.SpotifyData)
	}
	// Embedded songs are not enriched individually.
	for i := range detail.Songs {
		if detail.Songs[i].SpotifyData != nil {
			t.Errorf("Songs[%d].SpotifyData = %+v, want nil", i, detail.Songs[i].SpotifyData)
		}
	}
	if got := meta.callCount(); got != 1 {
		t.Errorf("external calls = %d, want 1", got)
	}
}

func TestArtistsListOmitsContactFields(t *testing.T) {
	stores := &fakeStores{
		artists: []catalog.Artist{{ID: 1, Name: "The Band", Email: "band@example.com"}},
	}
	svc := testService(t, stores, &fakeMeta{})

	details, err := svc.Artists(context.Background())
	if err != nil {
		t.Fatalf("Artists: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("got %d details, want 1", len(details))
	}
	if details[0].Email != "" {
		t.Errorf("Email = %q, want empty in list responses", details[0].Email)
	}
}

func TestAlbumDetailIncludesSongs(t *testing.T) {
	release := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	meta := &fakeMeta{
		enabled: true,
		albums: map[string]*spotify.Album{
			"Greatest": {SpotifyID: "al1", Name: "Greatest"},
		},
	}
	stores := &fakeStores{
		songs:  testSongs(),
		albums: []catalog.Album{{ID: 10, Title: "Greatest", ArtistID: 1, ArtistName: "The Band", ReleaseDate: &release}},
	}
	svc := testService(t, stores, meta)

	detail, err := svc.Album(context.Background(), 10)
	if err != nil {
		t.Fatalf("Album: %v", err)
	}
	if len(detail.Songs) != 1 || detail.Songs[0].Title != "First" {
		t.Fatalf("Songs = %+v, want the one song on the album", detail.Songs)
	}
	if detail.ReleaseDate == nil || *detail.ReleaseDate != "2019-06-01" {
		t.Errorf("ReleaseDate = %v, want 2019-06-01", detail.ReleaseDate)
	}
	if detail.SpotifyData == nil || detail.SpotifyData.SpotifyID != "al1" {
		t.Errorf("SpotifyData = %+v, want spotify id al1", detail.SpotifyData)
	}
}
