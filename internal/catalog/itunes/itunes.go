package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"songquiz/internal/catalog"
)

// Client is an iTunes Search API client that implements catalog.Client.
// iTunes needs no authentication and returns preview clips inline, so
// every lookup is a single request.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// New creates a new iTunes client.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		apiURL:     "https://itunes.apple.com/search",
	}
}

func (c *Client) Name() string { return "itunes" }

// Resolve searches the iTunes catalog and returns the first result that
// has a preview clip. Lookup failures are reported as not found.
func (c *Client) Resolve(ctx context.Context, title, artist string) (*catalog.Track, error) {
	term := strings.TrimSpace(title + " " + artist)
	if term == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", "5")

	reqURL := fmt.Sprintf("%s?%s", c.apiURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("User-Agent", "songquiz/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, nil
	}

	for _, item := range searchResp.Results {
		if item.PreviewURL == "" {
			continue
		}

		artworkURL := item.ArtworkURL100
		// Upgrade to 600x600 artwork
		if artworkURL != "" {
			artworkURL = strings.Replace(artworkURL, "100x100", "600x600", 1)
		}

		return &catalog.Track{
			Title:       item.TrackName,
			Artist:      item.ArtistName,
			AlbumArtURL: artworkURL,
			PreviewURL:  item.PreviewURL,
			ID:          strconv.FormatInt(item.TrackID, 10),
		}, nil
	}

	return nil, nil
}

// iTunes Search API response types

type searchResponse struct {
	ResultCount int          `json:"resultCount"`
	Results     []resultItem `json:"results"`
}

type resultItem struct {
	TrackID       int64  `json:"trackId"`
	TrackName     string `json:"trackName"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
	PreviewURL    string `json:"previewUrl"`
}
