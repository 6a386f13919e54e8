// Package pipeline assembles a quiz: it drives generation rounds against
// the suggestion generator and validates candidates against the catalog
// until the target song count is reached or rounds run out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"songquiz/internal/catalog"
	"songquiz/internal/catalog/itunes"
	"songquiz/internal/catalog/spotify"
	"songquiz/internal/config"
	"songquiz/internal/logger"
	"songquiz/internal/quiz"
	"songquiz/internal/suggest"
)

// ErrNoPlayableSongs reports that zero tracks with preview clips were
// resolved after exhausting all rounds.
var ErrNoPlayableSongs = errors.New("no songs with preview clips found")

const (
	maxRounds = 3

	// Each round over-generates to absorb the expected loss rate from
	// missing previews and failed lookups. Later rounds request a larger
	// multiple since the easy resolves are already partly exhausted.
	firstRoundFactor = 1.6
	laterRoundFactor = 2.0
	minGenerateCount = 20

	// Concurrent catalog lookups in flight per round.
	lookupConcurrency = 20
)

// Hooks receive progress notifications during a build. All fields are
// optional.
type Hooks struct {
	OnRound    func(round, requested, have, target int)
	OnResolved func(have, target int)
}

// Builder orchestrates quiz assembly.
type Builder struct {
	generator suggest.Generator
	catalog   catalog.Client
	logger    *logger.Logger
}

// New creates a Builder.
func New(gen suggest.Generator, cat catalog.Client, log *logger.Logger) *Builder {
	return &Builder{
		generator: gen,
		catalog:   cat,
		logger:    log,
	}
}

// FromConfig wires a Builder with the configured catalog and suggestion
// backends.
func FromConfig(cfg config.Config, log *logger.Logger) (*Builder, error) {
	var cat catalog.Client
	switch strings.ToLower(cfg.Catalog) {
	case "itunes":
		cat = itunes.New()
	default:
		cat = spotify.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	}

	var gen suggest.Generator
	switch {
	case cfg.AnthropicAPIKey != "":
		gen = suggest.NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case cfg.OpenAIAPIKey != "":
		gen = suggest.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("no suggestion backend configured")
	}

	log.Debug("Using %s catalog and %s suggestions", cat.Name(), gen.Name())
	return New(gen, cat, log), nil
}

// Build assembles up to targetCount unique, preview-bearing songs for the
// prompt. The count is clamped to the allowed range first. Returning fewer
// songs than requested is a degraded success; only an empty result is an
// error. A generation parse failure aborts the whole build.
func (b *Builder) Build(ctx context.Context, prompt string, targetCount int, d quiz.Difficulty, hooks Hooks) ([]quiz.Song, error) {
	target := quiz.ClampCount(targetCount)

	var accepted []catalog.Track
	seen := make(map[string]struct{})

	for round := 0; round < maxRounds; round++ {
		needed := target - len(accepted)
		if needed <= 0 {
			break
		}

		generateCount := generateCountFor(round, needed)
		b.logger.Info("Round %d: generating %d songs (have %d/%d)", round+1, generateCount, len(accepted), target)
		if hooks.OnRound != nil {
			hooks.OnRound(round+1, generateCount, len(accepted), target)
		}

		suggestions, err := b.generator.Generate(ctx, prompt, generateCount, d)
		if err != nil {
			return nil, err
		}

		resolved, err := b.resolveAll(ctx, suggestions)
		if err != nil {
			return nil, err
		}

		// Append in suggestion order, skipping duplicates by catalog id
		for _, track := range resolved {
			if track == nil {
				continue
			}
			if _, dup := seen[track.ID]; dup {
				continue
			}
			seen[track.ID] = struct{}{}
			accepted = append(accepted, *track)
			if hooks.OnResolved != nil {
				hooks.OnResolved(len(accepted), target)
			}
			if len(accepted) >= target {
				break
			}
		}
	}

	if len(accepted) == 0 {
		return nil, ErrNoPlayableSongs
	}
	if len(accepted) < target {
		b.logger.Warn("Could only find %d/%d songs with previews", len(accepted), target)
	}

	songs := make([]quiz.Song, len(accepted))
	for i, track := range accepted {
		songs[i] = quiz.Song{
			Title:       track.Title,
			Artist:      track.Artist,
			AlbumArtURL: track.AlbumArtURL,
			PreviewURL:  track.PreviewURL,
			TrackID:     track.ID,
			TrackNumber: i + 1,
		}
	}

	return songs, nil
}

// resolveAll looks up all suggestions concurrently, bounded by the
// concurrency cap, and returns results slotted in suggestion order.
// Individual lookup failures become nil slots; only context cancellation
// is an error.
func (b *Builder) resolveAll(ctx context.Context, suggestions []quiz.Suggestion) ([]*catalog.Track, error) {
	results := make([]*catalog.Track, len(suggestions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)

	for i, s := range suggestions {
		i, s := i, s
		g.Go(func() error {
			track, err := b.catalog.Resolve(gctx, s.Title, s.Artist)
			if err != nil {
				// Resolve only errors on cancellation
				return err
			}
			if track == nil {
				b.logger.Debug("No playable match for %q by %q", s.Title, s.Artist)
				return nil
			}
			results[i] = track
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func generateCountFor(round, needed int) int {
	var count int
	if round == 0 {
		count = int(math.Ceil(float64(needed) * firstRoundFactor))
	} else {
		count = int(float64(needed) * laterRoundFactor)
	}
	if count < minGenerateCount {
		count = minGenerateCount
	}
	return count
}
