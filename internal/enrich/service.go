// Package enrich combines catalog records with live Spotify metadata into the
// response shapes served by the API. Enrichment is strictly best effort: a
// record whose external lookup fails is returned with null spotify_data, and
// one record's failure never affects the rest of a batch.
package enrich

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-music-catalog/internal/catalog"
	"github.com/justestif/go-music-catalog/internal/spotify"
)

// DefaultConcurrency bounds parallel external lookups during batch
// enrichment.
const DefaultConcurrency = 5

// MetadataClient abstracts the Spotify client for testing.
type MetadataClient interface {
	Enabled() bool
	TrackData(ctx context.Context, title, artist string) *spotify.Track
	SearchAlbum(ctx context.Context, title, artist string) *spotify.Album
	SearchArtist(ctx context.Context, name string) *spotify.Artist
}

// SongStore is the song catalog access the service needs.
type SongStore interface {
	Get(ctx context.Context, id int64) (*catalog.Song, error)
	List(ctx context.Context) ([]catalog.Song, error)
}

// ArtistStore is the artist catalog access the service needs.
type ArtistStore interface {
	Get(ctx context.Context, id int64) (*catalog.Artist, error)
	List(ctx context.Context) ([]catalog.Artist, error)
	Songs(ctx context.Context, artistID int64) ([]catalog.Song, error)
}

// AlbumStore is the album catalog access the service needs.
type AlbumStore interface {
	Get(ctx context.Context, id int64) (*catalog.Album, error)
	List(ctx context.Context) ([]catalog.Album, error)
	Songs(ctx context.Context, albumID int64) ([]catalog.Song, error)
}

// Service builds enriched response objects.
type Service struct {
	songs       SongStore
	artists     ArtistStore
	albums      AlbumStore
	meta        MetadataClient
	logger      *log.Logger
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets the number of concurrent enrichment lookups in batch
// operations.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates an enrichment service.
func NewService(songs SongStore, artists ArtistStore, albums AlbumStore, meta MetadataClient, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		songs:       songs,
		artists:     artists,
		albums:      albums,
		meta:        meta,
		logger:      logger,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Song returns one song enriched with external data.
func (s *Service) Song(ctx context.Context, id int64) (*SongDetail, error) {
	song, err := s.songs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := s.songDetail(ctx, song)
	return &detail, nil
}

// Songs returns all songs, each independently enriched.
func (s *Service) Songs(ctx context.Context) ([]SongDetail, error) {
	songs, err := s.songs.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrichSongs(ctx, songs), nil
}

// Artist returns one artist with their songs and external data.
func (s *Service) Artist(ctx context.Context, id int64) (*ArtistDetail, error) {
	artist, err := s.artists.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	songs, err := s.artists.Songs(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := s.artistDetail(ctx, artist, true)
	detail.Songs = s.songDetailsShallow(songs)
	return &detail, nil
}

// Artists returns all artists, each independently enriched.
func (s *Service) Artists(ctx context.Context) ([]ArtistDetail, error) {
	artists, err := s.artists.List(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]ArtistDetail, len(artists))
	s.fanOut(ctx, len(artists), func(ctx context.Context, i int) {
		details[i] = s.artistDetail(ctx, &artists[i], false)
	})
	return details, nil
}

// Album returns one album with its songs and external data.
func (s *Service) Album(ctx context.Context, id int64) (*AlbumDetail, error) {
	album, err := s.albums.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	songs, err := s.albums.Songs(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := s.albumDetail(ctx, album)
	detail.Songs = s.songDetailsShallow(songs)
	return &detail, nil
}

// Albums returns all albums, each independently enriched.
func (s *Service) Albums(ctx context.Context) ([]AlbumDetail, error) {
	albums, err := s.albums.List(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]AlbumDetail, len(albums))
	s.fanOut(ctx, len(albums), func(ctx context.Context, i int) {
		details[i] = s.albumDetail(ctx, &albums[i])
	})
	return details, nil
}

// enrichSongs enriches a batch with bounded concurrency, preserving input
// order. Per-record failures are already absorbed inside songDetail.
func (s *Service) enrichSongs(ctx context.Context, songs []catalog.Song) []SongDetail {
	details := make([]SongDetail, len(songs))
	s.fanOut(ctx, len(songs), func(ctx context.Context, i int) {
		details[i] = s.songDetail(ctx, &songs[i])
	})
	return details
}

// fanOut runs fn for each index with at most s.concurrency workers. Workers
// stop picking up new work once ctx is cancelled; slots they skip keep their
// zero values, which render as unenriched records.
func (s *Service) fanOut(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	if n == 0 {
		return
	}

	workers := s.concurrency
	if workers > n {
		workers = n
	}

	workCh := make(chan int, n)
	for i := 0; i < n; i++ {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if ctx.Err() != nil {
					continue
				}
				fn(ctx, i)
			}
		}()
	}
	wg.Wait()
}

func (s *Service) songDetail(ctx context.Context, song *catalog.Song) SongDetail {
	detail := SongDetail{
		ID:                song.ID,
		Title:             song.Title,
		Duration:          song.Duration,
		DurationFormatted: song.DurationFormatted(),
		Artist:            ArtistRef{ID: song.ArtistID, Name: song.ArtistName},
		Album:             albumRef(song),
		Streams:           song.TotalStreams,
		AudioURL:          song.AudioURL,
		CreatedAt:         song.CreatedAt,
	}

	if !s.meta.Enabled() {
		return detail
	}

	track := s.meta.TrackData(ctx, song.Title, song.ArtistName)
	if track == nil {
		s.logger.Debug("no external data for song", "song_id", song.ID)
		return detail
	}

	detail.SpotifyData = &SongSpotifyData{
		SpotifyID:     track.SpotifyID,
		PreviewURL:    track.PreviewURL,
		ExternalURL:   track.ExternalURL,
		Popularity:    track.Popularity,
		AlbumImage:    track.AlbumImage,
		DurationMs:    track.DurationMs,
		AudioFeatures: track.Features,
	}
	return detail
}

// songDetailsShallow maps songs without external lookups, for embedding in
// artist and album detail responses.
func (s *Service) songDetailsShallow(songs []catalog.Song) []SongDetail {
	details := make([]SongDetail, len(songs))
	for i := range songs {
		song := &songs[i]
		details[i] = SongDetail{
			ID:                song.ID,
			Title:             song.Title,
			Duration:          song.Duration,
			DurationFormatted: song.DurationFormatted(),
			Artist:            ArtistRef{ID: song.ArtistID, Name: song.ArtistName},
			Album:             albumRef(song),
			Streams:           song.TotalStreams,
			AudioURL:          song.AudioURL,
			CreatedAt:         song.CreatedAt,
		}
	}
	return details
}

func (s *Service) artistDetail(ctx context.Context, artist *catalog.Artist, full bool) ArtistDetail {
	detail := ArtistDetail{
		ID:               artist.ID,
		Name:             artist.Name,
		Bio:              artist.Bio,
		ProfileImage:     artist.ProfileImageURL,
		MonthlyListeners: artist.MonthlyListeners,
		TotalStreams:     artist.TotalStreams,
		IsVerified:       artist.IsVerified,
		TotalSongs:       artist.TotalSongs,
		CreatedAt:        artist.CreatedAt,
	}
	if full {
		detail.Email = artist.Email
		detail.Website = artist.Website
		detail.Instagram = artist.Instagram
		detail.Twitter = artist.Twitter
		detail.Facebook = artist.Facebook
		detail.VerifiedAt = artist.VerifiedAt
	}

	if s.meta.Enabled() {
		detail.SpotifyData = s.meta.SearchArtist(ctx, artist.Name)
	}
	return detail
}

func (s *Service) albumDetail(ctx context.Context, album *catalog.Album) AlbumDetail {
	detail := AlbumDetail{
		ID:           album.ID,
		Title:        album.Title,
		Artist:       ArtistRef{ID: album.ArtistID, Name: album.ArtistName},
		CoverImage:   album.CoverImageURL,
		ReleaseDate:  formatDate(album.ReleaseDate),
		Genre:        album.Genre,
		TotalSongs:   album.TotalSongs,
		TotalStreams: album.TotalStreams,
		CreatedAt:    album.CreatedAt,
	}

	if s.meta.Enabled() {
		detail.SpotifyData = s.meta.SearchAlbum(ctx, album.Title, album.ArtistName)
	}
	return detail
}
