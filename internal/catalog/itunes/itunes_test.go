package itunes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(apiURL string) *Client {
	c := New()
	c.apiURL = apiURL
	return c
}

func TestResolvePicksFirstResultWithPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("media") != "music" || q.Get("entity") != "song" {
			t.Errorf("unexpected query params %v", q)
		}
		if q.Get("term") != "Eye of the Tiger Survivor" {
			t.Errorf("term = %q", q.Get("term"))
		}
		json.NewEncoder(w).Encode(searchResponse{
			ResultCount: 2,
			Results: []resultItem{
				{
					TrackID:       1,
					TrackName:     "Eye of the Tiger (Karaoke)",
					ArtistName:    "Karaoke All Stars",
					ArtworkURL100: "https://art/1/100x100bb.jpg",
					// No preview clip, must be skipped
				},
				{
					TrackID:       695342,
					TrackName:     "Eye of the Tiger",
					ArtistName:    "Survivor",
					ArtworkURL100: "https://art/2/100x100bb.jpg",
					PreviewURL:    "https://audio/preview.m4a",
				},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	track, err := c.Resolve(context.Background(), "Eye of the Tiger", "Survivor")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if track == nil {
		t.Fatal("Resolve() = nil, want track")
	}
	if track.ID != "695342" {
		t.Errorf("ID = %q, want %q", track.ID, "695342")
	}
	if track.Title != "Eye of the Tiger" || track.Artist != "Survivor" {
		t.Errorf("unexpected track %+v", track)
	}
	if track.PreviewURL != "https://audio/preview.m4a" {
		t.Errorf("PreviewURL = %q", track.PreviewURL)
	}
	if track.AlbumArtURL != "https://art/2/600x600bb.jpg" {
		t.Errorf("AlbumArtURL = %q, want 600x600 upgrade", track.AlbumArtURL)
	}
}

func TestResolveNoPlayableResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{
			ResultCount: 1,
			Results:     []resultItem{{TrackID: 1, TrackName: "Song", ArtistName: "Artist"}},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	track, err := c.Resolve(context.Background(), "Song", "Artist")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if track != nil {
		t.Errorf("Resolve() = %+v, want nil", track)
	}
}

func TestResolveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	track, err := c.Resolve(context.Background(), "Song", "Artist")
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil (lookup failures are not found)", err)
	}
	if track != nil {
		t.Errorf("Resolve() = %+v, want nil", track)
	}
}

func TestResolveEmptyTerm(t *testing.T) {
	c := newTestClient("http://unused")

	track, err := c.Resolve(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if track != nil {
		t.Errorf("Resolve() = %+v, want nil", track)
	}
}
