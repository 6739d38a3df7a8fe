// Command catalogd runs the music catalog API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-music-catalog/internal/cache"
	"github.com/justestif/go-music-catalog/internal/catalog"
	"github.com/justestif/go-music-catalog/internal/enrich"
	"github.com/justestif/go-music-catalog/internal/genius"
	"github.com/justestif/go-music-catalog/internal/lyrics"
	"github.com/justestif/go-music-catalog/internal/spotify"
	"github.com/justestif/go-music-catalog/internal/web"
)

// defaultCredentialsFile is where Spotify API credentials are read from when
// SPOTIFY_CREDENTIALS_FILE is unset.
const defaultCredentialsFile = "apis/spotify.txt"

func main() {
	updateLyrics := flag.Bool("update-lyrics", false, "backfill lyrics for songs without any, then exit")
	limit := flag.Int("limit", 50, "maximum songs to process with -update-lyrics")
	flag.Parse()

	if err := run(*updateLyrics, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(updateLyrics bool, limit int) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "catalogd",
	})

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("please set the DATABASE_URL environment variable")
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = web.DefaultAddr
	}

	db, err := catalog.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	store := cache.NewMemory()

	// Missing or malformed credentials disable enrichment but never stop
	// the server.
	credsFile := os.Getenv("SPOTIFY_CREDENTIALS_FILE")
	if credsFile == "" {
		credsFile = defaultCredentialsFile
	}
	creds, err := spotify.LoadCredentials(credsFile)
	if err != nil {
		logger.Warn("spotify enrichment disabled", "file", credsFile, "err", err)
		creds = nil
	}
	spotifyClient := spotify.NewClient(creds, store, logger)

	geniusClient := genius.NewClient(os.Getenv("GENIUS_API_KEY"), logger)
	if !geniusClient.Enabled() {
		logger.Warn("genius lookups disabled, GENIUS_API_KEY is not set")
	}

	sources := []lyrics.Source{
		lyrics.DatabaseSource{},
		&lyrics.SpotifySource{Client: spotifyClient, Songs: db.Songs(), Logger: logger},
		&lyrics.GeniusSource{Client: geniusClient, Logger: logger},
	}
	resolver := lyrics.NewResolver(db.Songs(), store, sources, logger)

	if updateLyrics {
		stats, err := resolver.UpdateMissing(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("updating lyrics: %w", err)
		}
		logger.Info("lyrics update finished",
			"updated", stats.Updated,
			"failed", stats.Failed,
			"skipped", stats.Skipped,
		)
		return nil
	}

	enricher := enrich.NewService(db.Songs(), db.Artists(), db.Albums(), spotifyClient, logger)

	handlers := web.NewHandlers(enricher, resolver, db.Streams(), logger)
	server := web.NewServer(web.ServerConfig{Addr: addr}, handlers, logger)

	return server.Run()
}
