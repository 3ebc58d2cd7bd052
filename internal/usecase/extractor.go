package usecase

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/macrolens/nutrilog/internal/domain"
)

// minSegmentLen is the shortest trimmed segment considered a food candidate
const minSegmentLen = 3

// quantityPattern binds a leading quantity (group 1) and food text (group 2) to a unit
type quantityPattern struct {
	unit domain.Unit
	re   *regexp.Regexp
}

// quantityPatterns are tried in priority order; the bare number comes last
var quantityPatterns = []quantityPattern{
	{domain.UnitCup, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*cups?\s+(.+)`)},
	{domain.UnitSlice, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*slices?\s+(.+)`)},
	{domain.UnitBowl, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*bowls?\s+(.+)`)},
	{domain.UnitTbsp, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:tbsp|tablespoons?)\s+(.+)`)},
	{domain.UnitCount, regexp.MustCompile(`(\d+(?:\.\d+)?)\s+(.+)`)},
}

type segmentOutcome int

const (
	segmentResolved segmentOutcome = iota
	segmentUnresolved
	segmentSkipped // explicit zero quantity
)

// Extractor splits meal text into segments and turns each into a food mention
type Extractor struct {
	matcher            *MatchingService
	mealLabelPattern   *regexp.Regexp
	connectorPattern   *regexp.Regexp
	enableDebugLogging bool
}

// NewExtractor creates an extractor that resolves segments with matcher
func NewExtractor(matcher *MatchingService, lex domain.Lexicon, enableDebugLogging bool) *Extractor {
	return &Extractor{
		matcher:            matcher,
		mealLabelPattern:   wordPattern(lex.MealLabels, `:\s*`),
		connectorPattern:   wordPattern(lex.Connectors, ""),
		enableDebugLogging: enableDebugLogging,
	}
}

// Extract returns the deduplicated food mentions in text, in input order, and the
// segments that resolved to nothing. When the same food appears twice the first
// mention is kept and the later one dropped.
func (e *Extractor) Extract(text string) ([]domain.FoodMention, []domain.UnresolvedFragment) {
	var (
		mentions   []domain.FoodMention
		unresolved []domain.UnresolvedFragment
		seen       = make(map[string]bool)
	)

	for _, segment := range e.Segment(text) {
		mention, outcome := e.resolveSegment(segment)

		switch outcome {
		case segmentUnresolved:
			unresolved = append(unresolved, domain.UnresolvedFragment{Text: segment})
		case segmentResolved:
			if seen[mention.Food] {
				if e.enableDebugLogging {
					log.Printf("[EXTRACT] Duplicate %q from %q dropped", mention.Food, segment)
				}
				continue
			}
			seen[mention.Food] = true
			mentions = append(mentions, mention)
		}
	}

	return mentions, unresolved
}

// Segment lowercases text, turns meal labels and connector words into breaks, and
// splits on newlines, commas and periods. Whitespace inside a segment is collapsed to
// single spaces and segments shorter than three characters are dropped.
func (e *Extractor) Segment(text string) []string {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return nil
	}

	if e.mealLabelPattern != nil {
		text = e.mealLabelPattern.ReplaceAllString(text, "\n")
	}
	if e.connectorPattern != nil {
		text = e.connectorPattern.ReplaceAllString(text, ",")
	}

	var segments []string
	for _, part := range splitSegments(text) {
		part = strings.Join(strings.Fields(part), " ")
		if utf8.RuneCountInString(part) < minSegmentLen {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// resolveSegment tries each quantity pattern in turn; a pattern whose food text does
// not resolve falls through to the next. Without a usable pattern the whole segment is
// resolved as one serving.
func (e *Extractor) resolveSegment(segment string) (domain.FoodMention, segmentOutcome) {
	for _, p := range quantityPatterns {
		m := p.re.FindStringSubmatch(segment)
		if m == nil {
			continue
		}

		qty, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if qty <= 0 {
			if e.enableDebugLogging {
				log.Printf("[EXTRACT] Zero quantity in %q skipped", segment)
			}
			return domain.FoodMention{}, segmentSkipped
		}

		if res, ok := e.matcher.Resolve(m[2]); ok {
			return domain.FoodMention{
				Food:       res.Food,
				Quantity:   qty,
				Unit:       p.unit,
				SourceText: strings.TrimSpace(m[2]),
			}, segmentResolved
		}
	}

	if res, ok := e.matcher.Resolve(segment); ok {
		return domain.FoodMention{
			Food:       res.Food,
			Quantity:   1.0,
			Unit:       domain.UnitServing,
			SourceText: segment,
		}, segmentResolved
	}

	if e.enableDebugLogging {
		log.Printf("[EXTRACT] Unresolved segment %q", segment)
	}
	return domain.FoodMention{}, segmentUnresolved
}

// splitSegments splits on newlines, commas and periods. A period between two
// digits is a decimal point and does not split.
func splitSegments(text string) []string {
	runes := []rune(text)
	var (
		parts []string
		start int
	)

	for i, r := range runes {
		switch r {
		case '\n', ',':
		case '.':
			if i > 0 && i+1 < len(runes) && isDigit(runes[i-1]) && isDigit(runes[i+1]) {
				continue
			}
		default:
			continue
		}
		parts = append(parts, string(runes[start:i]))
		start = i + 1
	}

	return append(parts, string(runes[start:]))
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
