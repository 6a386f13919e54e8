package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"songquiz/internal/catalog"
)

const (
	searchTimeout = 5 * time.Second
	embedTimeout  = 3 * time.Second

	// A cached token is only reused while more than this remains before
	// its expiry.
	tokenSkew = 60 * time.Second

	maxAttempts = 3
)

// Embed pages carry the preview URL inside an inline JSON literal.
var embedPreviewPattern = regexp.MustCompile(`"audioPreview":\{"url":"([^"]+)"`)

// Client is a Spotify Web API client that implements catalog.Client.
// Search requires a client-credentials bearer token, which is cached on
// the client and refreshed lazily.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	embedClient  *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	// Overridable for testing
	tokenURL string
	apiURL   string
	embedURL string
}

// New creates a new Spotify client.
func New(clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: searchTimeout},
		embedClient:  &http.Client{Timeout: embedTimeout},
		tokenURL:     "https://accounts.spotify.com/api/token",
		apiURL:       "https://api.spotify.com/v1",
		embedURL:     "https://open.spotify.com/embed/track",
	}
}

func (c *Client) Name() string { return "spotify" }

// Resolve searches Spotify for the track and returns it with a playable
// preview URL. Lookup failures of any kind (timeouts, rate limiting past
// the retry budget, missing previews) are reported as not found rather
// than errors.
func (c *Client) Resolve(ctx context.Context, title, artist string) (*catalog.Track, error) {
	query := buildSearchQuery(title, artist)
	if query == "" {
		return nil, nil
	}

	authRetried := false
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		token, err := c.getToken(ctx)
		if err != nil {
			return nil, nil
		}

		resp, err := c.search(ctx, query, token)
		if err != nil {
			// Timeouts and transport errors: back off and retry
			if waitErr := sleepCtx(ctx, 500*time.Millisecond*(1<<attempt)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && !authRetried:
			// Cached token went stale; drop it and retry once fresh
			resp.Body.Close()
			c.invalidateToken()
			authRetried = true
			attempt--
			continue

		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := retryAfterSeconds(resp)
			resp.Body.Close()
			wait := time.Duration(retryAfter) * time.Second * (1 << attempt)
			if waitErr := sleepCtx(ctx, wait); waitErr != nil {
				return nil, waitErr
			}
			continue

		case resp.StatusCode != http.StatusOK:
			resp.Body.Close()
			return nil, nil
		}

		var searchResp searchResponse
		err = json.NewDecoder(resp.Body).Decode(&searchResp)
		resp.Body.Close()
		if err != nil {
			return nil, nil
		}

		return c.trackFromResponse(ctx, searchResp), nil
	}

	return nil, nil
}

func (c *Client) search(ctx context.Context, query, token string) (*http.Response, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", "1")
	params.Set("market", "US")

	reqURL := fmt.Sprintf("%s/search?%s", c.apiURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return c.httpClient.Do(req)
}

// trackFromResponse extracts the first result and ensures it has a preview
// URL, falling back to the embed page when the API omits one.
func (c *Client) trackFromResponse(ctx context.Context, resp searchResponse) *catalog.Track {
	if len(resp.Tracks.Items) == 0 {
		return nil
	}

	item := resp.Tracks.Items[0]

	previewURL := item.PreviewURL
	if previewURL == "" {
		previewURL = c.previewFromEmbed(ctx, item.ID)
	}
	if previewURL == "" {
		return nil
	}

	var artists []string
	for _, a := range item.Artists {
		artists = append(artists, a.Name)
	}

	var artworkURL string
	if len(item.Album.Images) > 0 {
		artworkURL = item.Album.Images[0].URL
	}

	return &catalog.Track{
		Title:       item.Name,
		Artist:      strings.Join(artists, ", "),
		AlbumArtURL: artworkURL,
		PreviewURL:  previewURL,
		ID:          item.ID,
	}
}

// previewFromEmbed fetches the track's public embed page and extracts the
// preview URL from its inline JSON. Failure is non-fatal and returns "".
func (c *Client) previewFromEmbed(ctx context.Context, trackID string) string {
	reqURL := fmt.Sprintf("%s/%s", c.embedURL, url.PathEscape(trackID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.embedClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	if m := embedPreviewPattern.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	return ""
}

// buildSearchQuery embeds title and artist as separate filtered terms to
// bias toward exact-field matches.
func buildSearchQuery(title, artist string) string {
	var parts []string
	if title != "" {
		parts = append(parts, "track:"+title)
	}
	if artist != "" {
		parts = append(parts, "artist:"+artist)
	}
	return strings.Join(parts, " ")
}

// getToken returns a valid access token, refreshing if necessary.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.tokenExpiry) > tokenSkew {
		return c.accessToken, nil
	}

	data := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request returned %d: %s", resp.StatusCode, body)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	return c.accessToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

func retryAfterSeconds(resp *http.Response) int {
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if parsed, err := strconv.Atoi(ra); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return 1
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Spotify API response types

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type searchResponse struct {
	Tracks struct {
		Items []trackItem `json:"items"`
	} `json:"tracks"`
}

type trackItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Artists    []artist  `json:"artists"`
	Album      albumInfo `json:"album"`
	PreviewURL string    `json:"preview_url"`
}

type artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type albumInfo struct {
	Name   string  `json:"name"`
	Images []image `json:"images"`
}

type image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
