package quiz

import (
	"regexp"
	"strings"
)

// Catalog titles carry metadata annotations ("(Remastered 2011)",
// "- Live at Wembley", "[feat. ...]") that are not part of the song title a
// player would type. These tag keywords identify such annotations.
const metadataTags = `remaster(?:ed)?|re-?recorded?|deluxe|anniversary|special edition|expanded|limited|collector'?s|album version|single version|radio edit|radio version|extended|club mix|dub mix|original mix|live|unplugged|acoustic|stripped|demo|instrumental|a ?cappella|karaoke|mono|stereo|sped up|slowed|reverb|nightcore|8d|bass boosted|feat|ft|featuring|remix|mash-?up|bootleg|from|soundtrack|theme|explicit|clean|edit|version|mix`

// Suffix patterns stripped from catalog titles before display and comparison
var titleSuffixPatterns = []*regexp.Regexp{
	// Parenthesized annotations: "Yesterday (Live at the BBC)"
	regexp.MustCompile(`(?i)\s*\([^)]*\b(?:` + metadataTags + `)\b[^)]*\)`),
	// Bracketed annotations: "One More Time [Radio Edit]"
	regexp.MustCompile(`(?i)\s*\[[^\]]*\b(?:` + metadataTags + `)\b[^\]]*\]`),
	// Dash-appended annotations: "Bohemian Rhapsody - Remastered 2011"
	regexp.MustCompile(`(?i)\s+[-–—]\s+[^-–—]*\b(?:` + metadataTags + `)\b.*$`),
}

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	articlePattern    = regexp.MustCompile(`\b(?:the|a|an)\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripSuffix removes metadata annotations from a catalog title, producing
// the title as a player would know it.
func StripSuffix(title string) string {
	title = strings.ReplaceAll(title, "’", "'")
	for _, p := range titleSuffixPatterns {
		title = p.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}

// Normalize lowercases, removes apostrophes and punctuation, drops the
// standalone articles "the", "a" and "an", and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "’", "")
	s = strings.ReplaceAll(s, "'", "")
	s = nonWordPattern.ReplaceAllString(s, "")
	s = articlePattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeTitle strips metadata suffixes and then normalizes.
func NormalizeTitle(title string) string {
	return Normalize(StripSuffix(title))
}

// IsCorrect reports whether a free-text guess matches the canonical title
// under the given difficulty tier. It is deterministic and has no side
// effects.
func IsCorrect(guess, title, artist string, d Difficulty) bool {
	p := d.Params()

	g := Normalize(guess)
	t := NormalizeTitle(title)

	if len(g) < 2 || t == "" {
		return false
	}

	// Exact normalized equality accepts at every tier
	if g == t {
		return true
	}

	if p.ExactOnly {
		return false
	}

	// The artist name alone is never a valid answer for the title
	if a := Normalize(artist); a != "" && g == a {
		return false
	}

	// Trivially short guesses never fuzzy-match long titles
	if float64(len(g)) < p.LengthGate*float64(len(t)) {
		return false
	}

	if strings.Contains(g, t) {
		return true
	}
	if strings.Contains(t, g) && len(g) >= 4 && float64(len(g)) >= p.ContainsGate*float64(len(t)) {
		return true
	}

	if similarity(g, t) >= p.MinSimilarity {
		return true
	}

	return tokenOverlapMatch(g, t, p)
}

// tokenOverlapMatch checks whether enough of the title's significant words
// appear (exactly or near-exactly) among the guess's words.
func tokenOverlapMatch(guess, title string, p TierParams) bool {
	titleWords := significantWords(title)
	guessWords := significantWords(guess)

	if len(titleWords) == 0 || len(guessWords) < 2 {
		return false
	}

	matched := 0
	for _, tw := range titleWords {
		for _, gw := range guessWords {
			if wordsMatch(tw, gw, p.WordEditMax) {
				matched++
				break
			}
		}
	}

	return float64(matched)/float64(len(titleWords)) >= p.TokenRatio
}

// significantWords returns the words longer than 2 characters.
func significantWords(s string) []string {
	var words []string
	for _, w := range strings.Fields(s) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// wordsMatch reports whether two words are equal, or within maxEdits
// positional character substitutions of each other when their lengths
// differ by at most one.
func wordsMatch(a, b string, maxEdits int) bool {
	if a == b {
		return true
	}
	if maxEdits <= 0 {
		return false
	}

	diff := len(a) - len(b)
	if diff < -1 || diff > 1 {
		return false
	}

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}

	edits := 0
	for i := 0; i < longest; i++ {
		if i >= len(a) || i >= len(b) || a[i] != b[i] {
			edits++
			if edits > maxEdits {
				return false
			}
		}
	}
	return true
}

// similarity returns how similar two strings are (0.0-1.0) based on edit
// distance.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
