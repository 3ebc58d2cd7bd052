package domain

// MatchTier names the resolution stage that produced a match
type MatchTier string

const (
	TierExact           MatchTier = "exact"
	TierWord            MatchTier = "word"
	TierCaseInsensitive MatchTier = "case_insensitive"
	TierPhrase          MatchTier = "phrase"
	TierSubstring       MatchTier = "substring"
	TierFuzzy           MatchTier = "fuzzy"
)

// MatchResult represents the result of resolving one fragment to a reference food
type MatchResult struct {
	Query string    `json:"query"` // normalized fragment
	Food  string    `json:"food"`
	Tier  MatchTier `json:"tier"`
	Score float64   `json:"score"` // 1 for exact tiers, substring score or similarity ratio otherwise
}
