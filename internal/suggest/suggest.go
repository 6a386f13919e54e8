// Package suggest produces candidate song lists from a language model.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"songquiz/internal/quiz"
)

// ErrGenerationFailed reports that the model's output could not be parsed
// into a usable suggestion list. It is fatal for the whole quiz build.
var ErrGenerationFailed = errors.New("model output could not be parsed into a song list")

// Generator asks a language model for song suggestions matching a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, count int, d quiz.Difficulty) ([]quiz.Suggestion, error)
}

// systemPrompt builds the model instruction: strict JSON-array output with
// a difficulty-weighted mix of hits, solid picks and deep cuts.
func systemPrompt(d quiz.Difficulty) string {
	p := d.Params()
	return fmt.Sprintf(
		"You are a music expert. Generate a list of songs that match the given genre/era description. "+
			"Return ONLY a JSON array of objects with 'title' and 'artist' keys. "+
			"Aim for roughly %d%% iconic hits everyone knows, %d%% solid well-known songs, and %d%% deep cuts for enthusiasts. "+
			"Mix the tiers together throughout the list, do not group them. "+
			"Focus on songs that are likely available on streaming catalogs with preview clips. "+
			"Include a diverse mix of artists. Do not repeat artists more than twice. "+
			"Return exactly the requested number of songs.",
		p.HitPct, p.SolidPct, p.DeepCutPct)
}

func userPrompt(prompt string, count int) string {
	return fmt.Sprintf(
		"Generate exactly %d songs for this music category: %q\n\n"+
			"Return a JSON array like: [{\"title\": \"Song Name\", \"artist\": \"Artist Name\"}, ...]\n"+
			"Only return the JSON array, no other text.",
		count, prompt)
}

// Models wrap JSON in prose or markdown fences often enough that parsing
// has to be defensive: strip fences, try a direct parse, then fall back to
// the first bracketed array substring.
var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// ParseSongList parses a model response into suggestions. Entries missing
// a title or artist are dropped; an empty result is ErrGenerationFailed.
func ParseSongList(text string) ([]quiz.Suggestion, error) {
	text = stripCodeFence(strings.TrimSpace(text))

	var raw []map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		extracted := arrayPattern.FindString(text)
		if extracted == "" {
			return nil, fmt.Errorf("%w: no JSON array found", ErrGenerationFailed)
		}
		if err := json.Unmarshal([]byte(extracted), &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
	}

	var suggestions []quiz.Suggestion
	for _, entry := range raw {
		title := strings.TrimSpace(stringValue(entry["title"]))
		artist := strings.TrimSpace(stringValue(entry["artist"]))
		if title == "" || artist == "" {
			continue
		}
		suggestions = append(suggestions, quiz.Suggestion{Title: title, Artist: artist})
	}

	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: no valid entries", ErrGenerationFailed)
	}

	return suggestions, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// stripCodeFence removes a leading/trailing markdown code fence wrapper.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
