package usecase

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/macrolens/nutrilog/internal/domain"
)

// Multiple spaces cleanup
var multiSpacePattern = regexp.MustCompile(`\s+`)

// QueryPreprocessor normalizes free-text fragments before they are resolved
type QueryPreprocessor struct {
	modifierPattern    *regexp.Regexp // nil when the lexicon has no modifiers
	enableDebugLogging bool
}

// NewQueryPreprocessor creates a preprocessor that strips the lexicon's modifier words
func NewQueryPreprocessor(lex domain.Lexicon, enableDebugLogging bool) *QueryPreprocessor {
	return &QueryPreprocessor{
		modifierPattern:    wordPattern(lex.Modifiers, ""),
		enableDebugLogging: enableDebugLogging,
	}
}

// Normalize lowercases and trims the fragment, removes modifier words
// ("with", "small", "fried", ...) and collapses whitespace.
func (p *QueryPreprocessor) Normalize(fragment string) string {
	cleaned := strings.TrimSpace(strings.ToLower(fragment))

	if p.modifierPattern != nil {
		cleaned = p.modifierPattern.ReplaceAllString(cleaned, " ")
	}

	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if p.enableDebugLogging {
		log.Printf("[PREPROCESS] Input: %q -> Output: %q", fragment, cleaned)
	}

	return cleaned
}

// wordPattern compiles a whole-word alternation of words followed by suffix.
// Longer words are tried first so multi-word entries win over their parts.
// Returns nil for an empty list.
func wordPattern(words []string, suffix string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]string, 0, len(words))
	for _, w := range words {
		sorted = append(sorted, regexp.QuoteMeta(strings.ToLower(w)))
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	return regexp.MustCompile(`\b(?:` + strings.Join(sorted, "|") + `)\b` + suffix)
}
