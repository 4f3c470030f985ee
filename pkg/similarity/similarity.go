// Package similarity scores how close two usernames are on a 0-100 scale.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Max is the score of two identical strings.
const Max = 100

// Scorer returns a similarity ratio in [0, 100] for two strings.
// Implementations must be deterministic and symmetric.
type Scorer func(a, b string) int

// Ratio is the Levenshtein ratio of a and b scaled to 100, rounded half up.
// It is case-sensitive. Two empty strings score 100; an empty string against
// a non-empty one scores 0.
func Ratio(a, b string) int {
	if a == b {
		return Max
	}
	n := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	d := levenshtein.ComputeDistance(a, b)
	return (Max*(n-d) + n/2) / n
}

// Lower wraps s so that both inputs are lowercased before scoring.
func Lower(s Scorer) Scorer {
	return func(a, b string) int {
		return s(strings.ToLower(a), strings.ToLower(b))
	}
}
