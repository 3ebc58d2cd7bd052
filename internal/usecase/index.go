package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/macrolens/nutrilog/internal/domain"
)

// minIndexedWordLen is the shortest word that gets a word-index slot or a substring score
const minIndexedWordLen = 3

// wordEntry is the food currently holding a word-index slot
type wordEntry struct {
	food       string
	singleWord bool
}

// preferWordEntry decides whether candidate takes a word slot held by existing.
// Single-word foods always take the slot; a multi-word food only fills an empty one.
func preferWordEntry(existing *wordEntry, candidate wordEntry) bool {
	if existing == nil {
		return true
	}
	return candidate.singleWord
}

// SearchIndex is the immutable lookup structure derived from a reference table
type SearchIndex struct {
	foods    []domain.ReferenceFood
	lowered  []string          // lowercased names, parallel to foods
	multi    []bool            // name has more than one word, parallel to foods
	byName   map[string]int    // canonical name -> row
	fullName map[string]string // lowercased name -> canonical name
	words    map[string]wordEntry
}

// BuildIndex derives the full-name and word indexes from foods, preserving table order
func BuildIndex(foods []domain.ReferenceFood) *SearchIndex {
	idx := &SearchIndex{
		foods:    make([]domain.ReferenceFood, len(foods)),
		lowered:  make([]string, len(foods)),
		multi:    make([]bool, len(foods)),
		byName:   make(map[string]int, len(foods)),
		fullName: make(map[string]string, len(foods)),
		words:    make(map[string]wordEntry),
	}
	copy(idx.foods, foods)

	for i, food := range idx.foods {
		name := strings.ToLower(food.Name)
		idx.lowered[i] = name
		idx.fullName[name] = food.Name
		if _, exists := idx.byName[food.Name]; !exists {
			idx.byName[food.Name] = i
		}

		words := strings.Fields(name)
		idx.multi[i] = len(words) > 1
		candidate := wordEntry{food: food.Name, singleWord: len(words) == 1}
		for _, word := range words {
			if utf8.RuneCountInString(word) < minIndexedWordLen {
				continue
			}
			var existing *wordEntry
			if e, ok := idx.words[word]; ok {
				existing = &e
			}
			if preferWordEntry(existing, candidate) {
				idx.words[word] = candidate
			}
		}
	}

	return idx
}

// Len returns the number of reference foods
func (idx *SearchIndex) Len() int {
	return len(idx.foods)
}

// Foods returns a copy of the reference table in load order
func (idx *SearchIndex) Foods() []domain.ReferenceFood {
	out := make([]domain.ReferenceFood, len(idx.foods))
	copy(out, idx.foods)
	return out
}

// Lookup returns the reference row for a canonical name
func (idx *SearchIndex) Lookup(name string) (domain.ReferenceFood, bool) {
	i, ok := idx.byName[name]
	if !ok {
		return domain.ReferenceFood{}, false
	}
	return idx.foods[i], true
}

// FirstContaining returns the first row, in load order, whose lowercased name
// contains term
func (idx *SearchIndex) FirstContaining(term string) (domain.ReferenceFood, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return domain.ReferenceFood{}, false
	}
	for i, name := range idx.lowered {
		if strings.Contains(name, term) {
			return idx.foods[i], true
		}
	}
	return domain.ReferenceFood{}, false
}

// FullName looks up an exact lowercased name
func (idx *SearchIndex) FullName(lowered string) (string, bool) {
	name, ok := idx.fullName[lowered]
	return name, ok
}

// Word looks up the food holding a word slot
func (idx *SearchIndex) Word(word string) (string, bool) {
	e, ok := idx.words[word]
	return e.food, ok
}
