// Package quiz defines the quiz data model, the difficulty tiers, and the
// answer matching engine.
package quiz

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Song count bounds enforced before generation begins.
const (
	MinSongs = 10
	MaxSongs = 50
)

// Suggestion is a candidate song produced by the suggestion generator.
// It is ephemeral: consumed once by a catalog lookup and never persisted.
type Suggestion struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Song is a catalog-verified track with its position in the quiz.
type Song struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	AlbumArtURL string `json:"album_art"`
	PreviewURL  string `json:"preview_url"`
	TrackID     string `json:"track_id"`
	TrackNumber int    `json:"track_number"`
}

// Quiz is a complete generated quiz.
type Quiz struct {
	ID         string     `json:"quiz_id"`
	Prompt     string     `json:"prompt"`
	Songs      []Song     `json:"songs"`
	TotalSongs int        `json:"total_songs"`
	Difficulty Difficulty `json:"difficulty"`
}

// NewID returns a short random opaque quiz identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ClampCount clamps a requested song count to [MinSongs, MaxSongs].
func ClampCount(n int) int {
	if n < MinSongs {
		return MinSongs
	}
	if n > MaxSongs {
		return MaxSongs
	}
	return n
}

// Difficulty selects both the song selection mix and the answer matching
// strictness.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty parses a difficulty string, defaulting to medium when
// empty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return Medium, nil
	case Easy:
		return Easy, nil
	case Medium:
		return Medium, nil
	case Hard:
		return Hard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q, valid values: easy, medium, hard", s)
}

// TierParams holds the tuned per-tier constants: the hit/solid/deep-cut
// selection mix and the answer matcher thresholds. The matcher values are
// empirically tuned; they are recorded here rather than derived.
type TierParams struct {
	// Song selection mix, in percent. Must sum to 100.
	HitPct     int
	SolidPct   int
	DeepCutPct int

	// ExactOnly disables all fuzzy matching.
	ExactOnly bool

	// LengthGate is the minimum guess/title length ratio required before
	// any fuzzy evaluation is attempted.
	LengthGate float64
	// ContainsGate is the minimum guess/title length ratio for a guess
	// that is a substring of the title to be accepted.
	ContainsGate float64
	// MinSimilarity is the edit-distance similarity floor (0..1).
	MinSimilarity float64
	// TokenRatio is the fraction of title words that must be matched by
	// guess words in the token overlap fallback.
	TokenRatio float64
	// WordEditMax is the maximum per-word character substitution count
	// for two words to count as matching in the token overlap fallback.
	WordEditMax int
}

var tierParams = map[Difficulty]TierParams{
	Easy: {
		HitPct: 70, SolidPct: 20, DeepCutPct: 10,
		LengthGate:    0.6,
		ContainsGate:  0.8,
		MinSimilarity: 0.65,
		TokenRatio:    0.7,
		WordEditMax:   1,
	},
	Medium: {
		HitPct: 50, SolidPct: 35, DeepCutPct: 15,
		LengthGate:    0.8,
		ContainsGate:  0.9,
		MinSimilarity: 0.75,
		TokenRatio:    0.8,
		WordEditMax:   1,
	},
	Hard: {
		HitPct: 25, SolidPct: 50, DeepCutPct: 25,
		ExactOnly: true,
	},
}

// Params returns the parameter record for the tier. Unknown values fall
// back to medium.
func (d Difficulty) Params() TierParams {
	if p, ok := tierParams[d]; ok {
		return p
	}
	return tierParams[Medium]
}
