package usecase

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/macrolens/nutrilog/internal/domain"
)

// Substring scoring weights
const (
	substringBaseScore       = 0.5
	substringPrefixBonus     = 0.3
	substringPerCharBonus    = 0.05
	substringCompoundPenalty = 0.2
)

// Default acceptance thresholds
const (
	defaultFuzzyThreshold       = 0.7
	defaultSubstringAcceptScore = 0.7
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	FuzzyThreshold       float64 // minimum similarity ratio for a fuzzy candidate
	SubstringAcceptScore float64 // substring score at or above which fuzzy matching is skipped
	EnableDebugLogging   bool
}

// matchTier is one exact-style stage of the resolution cascade
type matchTier struct {
	tier  domain.MatchTier
	match func(idx *SearchIndex, query string) (string, bool)
}

// exactTiers run in order before the scored stages
var exactTiers = []matchTier{
	{domain.TierExact, matchFullName},
	{domain.TierWord, matchWord},
	{domain.TierCaseInsensitive, matchCaseInsensitive},
	{domain.TierPhrase, matchPhrase},
}

// MatchingService resolves free-text fragments to canonical reference food names
type MatchingService struct {
	index                *SearchIndex
	preprocessor         *QueryPreprocessor
	fuzzyThreshold       float64
	substringAcceptScore float64
	enableDebugLogging   bool
}

// NewMatchingService creates a matching service over idx with the given configuration
func NewMatchingService(idx *SearchIndex, preprocessor *QueryPreprocessor, config MatchConfig) *MatchingService {
	fuzzy := config.FuzzyThreshold
	if fuzzy <= 0 || fuzzy > 1 {
		fuzzy = defaultFuzzyThreshold
	}

	accept := config.SubstringAcceptScore
	if accept <= 0 {
		accept = defaultSubstringAcceptScore
	}

	return &MatchingService{
		index:                idx,
		preprocessor:         preprocessor,
		fuzzyThreshold:       fuzzy,
		substringAcceptScore: accept,
		enableDebugLogging:   config.EnableDebugLogging,
	}
}

// Resolve returns the best reference food for fragment, or false when nothing matches.
// Tiers are tried in order: exact name, word index, case-insensitive name, phrase
// containment, scored substring, and a fuzzy fallback bounded by the similarity threshold.
func (s *MatchingService) Resolve(fragment string) (domain.MatchResult, bool) {
	query := s.preprocessor.Normalize(fragment)
	if query == "" {
		return domain.MatchResult{}, false
	}

	for _, t := range exactTiers {
		if food, ok := t.match(s.index, query); ok {
			return s.found(domain.MatchResult{Query: query, Food: food, Tier: t.tier, Score: 1})
		}
	}

	result := domain.MatchResult{Query: query, Tier: domain.TierSubstring}
	result.Food, result.Score = scoreSubstrings(s.index, query)

	if result.Score < s.substringAcceptScore {
		if food, ratio := bestFuzzy(s.index, query, result.Score, s.fuzzyThreshold); food != "" {
			result.Food, result.Score, result.Tier = food, ratio, domain.TierFuzzy
		}
	}

	if result.Food == "" {
		if s.enableDebugLogging {
			log.Printf("[MATCH] No match for %q", query)
		}
		return domain.MatchResult{}, false
	}

	return s.found(result)
}

func (s *MatchingService) found(result domain.MatchResult) (domain.MatchResult, bool) {
	if s.enableDebugLogging {
		log.Printf("[MATCH] %q -> %q (tier: %s, score: %.2f)", result.Query, result.Food, result.Tier, result.Score)
	}
	return result, true
}

func matchFullName(idx *SearchIndex, query string) (string, bool) {
	return idx.FullName(query)
}

func matchWord(idx *SearchIndex, query string) (string, bool) {
	return idx.Word(query)
}

func matchCaseInsensitive(idx *SearchIndex, query string) (string, bool) {
	for i, name := range idx.lowered {
		if name == query {
			return idx.foods[i].Name, true
		}
	}
	return "", false
}

// matchPhrase matches multi-word queries against names containing the whole query.
// Names that only contain the words apart are left to substring scoring.
func matchPhrase(idx *SearchIndex, query string) (string, bool) {
	words := strings.Fields(query)
	if len(words) < 2 {
		return "", false
	}

	for i, name := range idx.lowered {
		if strings.Contains(name, query) {
			return idx.foods[i].Name, true
		}
	}
	return "", false
}

// scoreSubstrings scores every name containing a query word and returns the
// strictly best candidate; table order breaks ties.
func scoreSubstrings(idx *SearchIndex, query string) (string, float64) {
	words := strings.Fields(query)
	singleWordQuery := len(words) == 1

	best, bestScore := "", 0.0
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		if wordLen < minIndexedWordLen {
			continue
		}

		for i, name := range idx.lowered {
			if !strings.Contains(name, word) {
				continue
			}

			score := substringBaseScore
			if strings.HasPrefix(name, word) {
				score += substringPrefixBonus
			}
			score += float64(wordLen) * substringPerCharBonus
			// a bare generic word should not land on an unrelated compound dish
			if idx.multi[i] && singleWordQuery {
				score -= substringCompoundPenalty
			}

			if score > bestScore {
				best, bestScore = idx.foods[i].Name, score
			}
		}
	}

	return best, bestScore
}

// bestFuzzy returns the name with the highest similarity ratio that beats floor
// and reaches threshold, or "" when none does.
func bestFuzzy(idx *SearchIndex, query string, floor, threshold float64) (string, float64) {
	best, bestRatio := "", floor
	for i, name := range idx.lowered {
		ratio := similarityRatio(query, name)
		if ratio > bestRatio && ratio >= threshold {
			best, bestRatio = idx.foods[i].Name, ratio
		}
	}
	return best, bestRatio
}
