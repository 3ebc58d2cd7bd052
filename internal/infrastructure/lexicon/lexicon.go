package lexicon

import (
	"fmt"
	"os"
	"strings"

	"github.com/macrolens/nutrilog/internal/domain"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// file mirrors the YAML layout. Pointers distinguish an absent key from an empty list.
type file struct {
	Modifiers  *[]string `yaml:"modifiers"`
	Connectors *[]string `yaml:"connectors"`
	MealLabels *[]string `yaml:"meal_labels"`
}

// Load returns the default lexicon with any lists named in the YAML file at path replaced.
// An empty path yields the defaults.
func Load(path string) (domain.Lexicon, error) {
	lex := domain.DefaultLexicon()
	if path == "" {
		return lex, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Lexicon{}, fmt.Errorf("%w: %v", domain.ErrInvalidLexicon, err)
	}

	return Parse(data)
}

// Parse applies YAML overrides to the default lexicon
func Parse(data []byte) (domain.Lexicon, error) {
	lex := domain.DefaultLexicon()

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Lexicon{}, fmt.Errorf("%w: %v", domain.ErrInvalidLexicon, err)
	}

	if f.Modifiers != nil {
		lex.Modifiers = normalizeWords(*f.Modifiers)
	}
	if f.Connectors != nil {
		lex.Connectors = normalizeWords(*f.Connectors)
	}
	if f.MealLabels != nil {
		lex.MealLabels = normalizeWords(*f.MealLabels)
	}

	for _, w := range lex.Connectors {
		if strings.ContainsAny(w, " \t") {
			return domain.Lexicon{}, fmt.Errorf("%w: connector %q must be a single word", domain.ErrInvalidLexicon, w)
		}
	}

	return lex, nil
}

// normalizeWords lowercases, trims and drops blanks and duplicates
func normalizeWords(words []string) []string {
	cleaned := lo.Map(words, func(w string, _ int) string {
		return strings.ToLower(strings.TrimSpace(w))
	})
	return lo.Uniq(lo.Compact(cleaned))
}
