package spotify

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// tokenCacheKey is the cache-store key holding the current access token.
	tokenCacheKey = "spotify_access_token"

	// defaultExpiresIn is assumed when the token response omits expires_in.
	defaultExpiresIn = 3600 * time.Second

	// tokenExpirySlack is subtracted from the advertised lifetime so a token
	// read from cache is never presented right at its real expiry.
	tokenExpirySlack = 60 * time.Second

	tokenTimeout = 10 * time.Second
)

// accessToken returns a bearer token for API calls, or "" when none can be
// obtained. The cached token is reused until its slack-adjusted expiry; a
// miss triggers a client-credentials exchange. Failures are logged, never
// returned: a "" result makes every lookup degrade to "no data".
func (c *Client) accessToken(ctx context.Context) string {
	if v, ok := c.cache.Get(tokenCacheKey); ok {
		if token, ok := v.(string); ok && token != "" {
			return token
		}
	}

	if c.creds == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, tokenTimeout)
	defer cancel()

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Error("building token request", "err", err)
		return ""
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("requesting access token", "err", err)
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("reading token response", "err", err)
		return ""
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("access token request failed", "status", resp.StatusCode)
		return ""
	}

	var token tokenResponse
	if err := decodeLenient(body, &token); err != nil || token.AccessToken == "" {
		c.logger.Error("parsing token response", "err", err)
		return ""
	}

	expiresIn := time.Duration(token.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}
	// A lifetime within the slack would cache with a non-positive TTL, which
	// the store treats as no expiry. Use such a token once and never cache it.
	if expiresIn > tokenExpirySlack {
		c.cache.Set(tokenCacheKey, token.AccessToken, expiresIn-tokenExpirySlack)
	}

	return token.AccessToken
}

// invalidateToken evicts the cached token so the next call re-runs the
// exchange. Used when the API rejects a token the cache still considered
// valid.
func (c *Client) invalidateToken() {
	c.cache.Delete(tokenCacheKey)
}
