package usecase

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// similarityRatio returns the Ratcliff/Obershelp similarity of a and b in [0, 1]:
// twice the number of characters in matching blocks over the total length.
func similarityRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(splitChars(a), splitChars(b))
	return m.Ratio()
}

// splitChars splits s into one element per character
func splitChars(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}
