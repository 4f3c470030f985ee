// Package compare compares the following lists of every pair of platforms.
package compare

import (
	"slices"

	"github.com/codeGROOVE-dev/crossmap/pkg/card"
	"github.com/codeGROOVE-dev/crossmap/pkg/similarity"
)

// DefaultThreshold is the inclusive minimum similarity for a fuzzy match.
const DefaultThreshold = 70

// Status describes whether a comparison had enough data to run.
type Status string

// Status values.
const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
)

// FuzzyMatch is a pair of distinct usernames whose lowercased forms are similar.
type FuzzyMatch struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Score  int    `json:"score"`
}

// Pair is the comparison of two platforms' following sets.
type Pair struct {
	First      string       `json:"first"`
	Second     string       `json:"second"`
	Exact      []string     `json:"exact"`
	Fuzzy      []FuzzyMatch `json:"fuzzy"`
	OnlyFirst  []string     `json:"only_first"`
	OnlySecond []string     `json:"only_second"`
}

// Result holds one Pair per unordered platform pair.
type Result struct {
	Status    Status   `json:"status"`
	Threshold int      `json:"threshold"`
	Platforms []string `json:"platforms"`
	Pairs     []Pair   `json:"pairs"`
}

// Compare builds the per-pair comparison of following sets.
//
// Cards sharing a platform are merged by set union. Platforms are ordered by
// the first card that contributes a non-empty following list. Exact matches
// and the only-in sets are case-sensitive; fuzzy matches lowercase both
// usernames before scoring and report every pair at or above threshold.
func Compare(cards []card.Card, threshold int, score similarity.Scorer) Result {
	if score == nil {
		score = similarity.Ratio
	}
	score = similarity.Lower(score)

	platforms, following := followingSets(cards)
	res := Result{
		Status:    StatusInsufficientData,
		Threshold: threshold,
		Platforms: platforms,
		Pairs:     []Pair{},
	}
	if len(platforms) < 2 {
		return res
	}
	res.Status = StatusOK

	for i, p1 := range platforms {
		for _, p2 := range platforms[i+1:] {
			res.Pairs = append(res.Pairs, comparePair(p1, p2, following[p1], following[p2], threshold, score))
		}
	}
	return res
}

func comparePair(p1, p2 string, set1, set2 map[string]bool, threshold int, score similarity.Scorer) Pair {
	users1 := sortedKeys(set1)
	users2 := sortedKeys(set2)

	pair := Pair{
		First:      p1,
		Second:     p2,
		Exact:      []string{},
		Fuzzy:      []FuzzyMatch{},
		OnlyFirst:  []string{},
		OnlySecond: []string{},
	}

	for _, u := range users1 {
		if set2[u] {
			pair.Exact = append(pair.Exact, u)
		} else {
			pair.OnlyFirst = append(pair.OnlyFirst, u)
		}
	}
	for _, u := range users2 {
		if !set1[u] {
			pair.OnlySecond = append(pair.OnlySecond, u)
		}
	}

	// All pairs above threshold, not a 1:1 assignment.
	for _, u1 := range users1 {
		for _, u2 := range users2 {
			if u1 == u2 {
				continue
			}
			if s := score(u1, u2); s >= threshold {
				pair.Fuzzy = append(pair.Fuzzy, FuzzyMatch{First: u1, Second: u2, Score: s})
			}
		}
	}
	return pair
}

// followingSets returns platforms in discovery order and their merged following sets.
func followingSets(cards []card.Card) ([]string, map[string]map[string]bool) {
	var platforms []string
	sets := make(map[string]map[string]bool)
	for i := range cards {
		c := &cards[i]
		if len(c.Following) == 0 {
			continue
		}
		set, ok := sets[c.Platform]
		if !ok {
			set = make(map[string]bool, len(c.Following))
			sets[c.Platform] = set
			platforms = append(platforms, c.Platform)
		}
		for _, u := range c.Following {
			set[u] = true
		}
	}
	if platforms == nil {
		platforms = []string{}
	}
	return platforms, sets
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
