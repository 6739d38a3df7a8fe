// Package spotify is a client for the Spotify Web API using the
// client-credentials grant. All lookups degrade to "no data" on failure; a
// request is never failed because the upstream was slow, down, or returned
// JSON in an unexpected shape.
package spotify

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Credentials holds the application client id and secret for the
// client-credentials grant. Loaded once at construction; immutable after.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// LoadCredentials reads credentials from a line-oriented file. Recognized
// lines are "key: value" and "key = value"; blank lines and lines starting
// with # are skipped; keys are lowercased and trimmed. Both client_id and
// client_secret are required.
//
// A missing, unreadable, or incomplete file is an expected state, not a fatal
// one: callers should log the returned error and construct the client with
// nil credentials, which disables enrichment.
func LoadCredentials(path string) (*Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening credentials file: %w", err)
	}
	defer f.Close()

	values := make(map[string]string)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var key, value string
		if k, v, ok := strings.Cut(line, ":"); ok {
			key, value = k, v
		} else if k, v, ok := strings.Cut(line, "="); ok {
			key, value = k, v
		} else {
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	creds := &Credentials{
		ClientID:     values["client_id"],
		ClientSecret: values["client_secret"],
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("credentials file %s is missing client_id or client_secret", path)
	}
	return creds, nil
}
