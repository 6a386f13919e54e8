// Package catalog defines the contract for music catalog backends.
//
// Implementations live in sub-packages (spotify, itunes), following the Go
// convention of defining the interface where it is consumed.
package catalog

import "context"

// Track is a catalog-verified track. PreviewURL is always non-empty: a
// track without a playable preview clip is reported as not found instead.
type Track struct {
	Title       string
	Artist      string
	AlbumArtURL string
	PreviewURL  string
	ID          string
}

// Client resolves a (title, artist) pair to a catalog track with a preview
// clip. A (nil, nil) return means the catalog had no playable match; the
// error return is reserved for context cancellation.
type Client interface {
	Name() string
	Resolve(ctx context.Context, title, artist string) (*Track, error)
}
