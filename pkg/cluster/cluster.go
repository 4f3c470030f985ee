// Package cluster groups usernames across platforms that likely belong to one person.
//
// Clustering is a greedy single pass: each (platform, username) observation
// joins the first existing cluster that holds any member scoring at or above
// the threshold against it. Because one similar member is enough, chains form:
// if A~B and B~C, then A and C can share a cluster even when A and C are not
// similar. Results depend on input order.
package cluster

import (
	"cmp"
	"slices"

	"github.com/codeGROOVE-dev/crossmap/pkg/card"
	"github.com/codeGROOVE-dev/crossmap/pkg/similarity"
)

// DefaultThreshold is the inclusive minimum similarity for joining a cluster.
const DefaultThreshold = 70

// Status describes whether clustering had any input.
type Status string

// Status values.
const (
	StatusOK     Status = "ok"
	StatusNoData Status = "no_data"
)

// Member is one (platform, username) observation inside a cluster.
type Member struct {
	Platform   string `json:"platform"`
	Username   string `json:"username"`
	Confidence int    `json:"confidence"` // Best score against any other member
}

// Identity is a cluster of two or more observations.
type Identity struct {
	Members       []Member `json:"members"`
	Platforms     []string `json:"platforms"`
	CrossPlatform bool     `json:"cross_platform"`
}

// Result holds the clusters with two or more members, in creation order.
type Result struct {
	Status       Status     `json:"status"`
	Threshold    int        `json:"threshold"`
	Observations int        `json:"observations"`
	Singletons   int        `json:"singletons"`
	Identities   []Identity `json:"identities"`
}

type observation struct {
	platform string
	username string
}

// Cluster groups the following entries of cards using original-case scores.
// Followers, mutual connections, and commenters are not considered.
func Cluster(cards []card.Card, threshold int, score similarity.Scorer) Result {
	if score == nil {
		score = similarity.Ratio
	}

	obs := flatten(cards)
	res := Result{
		Status:       StatusNoData,
		Threshold:    threshold,
		Observations: len(obs),
		Identities:   []Identity{},
	}
	if len(obs) == 0 {
		return res
	}
	res.Status = StatusOK

	for _, group := range assign(obs, threshold, score) {
		if len(group) < 2 {
			res.Singletons++
			continue
		}
		res.Identities = append(res.Identities, identity(group, score))
	}
	return res
}

func flatten(cards []card.Card) []observation {
	var obs []observation
	for i := range cards {
		for _, u := range cards[i].Following {
			obs = append(obs, observation{platform: cards[i].Platform, username: u})
		}
	}
	return obs
}

// assign performs the first-match-wins pass over obs.
func assign(obs []observation, threshold int, score similarity.Scorer) [][]observation {
	var groups [][]observation
	for _, o := range obs {
		joined := false
		for gi, g := range groups {
			if slices.ContainsFunc(g, func(m observation) bool {
				return score(o.username, m.username) >= threshold
			}) {
				groups[gi] = append(groups[gi], o)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, []observation{o})
		}
	}
	return groups
}

func identity(group []observation, score similarity.Scorer) Identity {
	members := make([]Member, len(group))
	platforms := make([]string, 0, len(group))
	for i, o := range group {
		best := 0
		for j, other := range group {
			if i != j {
				best = max(best, score(o.username, other.username))
			}
		}
		members[i] = Member{Platform: o.platform, Username: o.username, Confidence: best}
		platforms = append(platforms, o.platform)
	}

	slices.SortStableFunc(members, func(a, b Member) int {
		if c := cmp.Compare(a.Platform, b.Platform); c != 0 {
			return c
		}
		return cmp.Compare(a.Username, b.Username)
	})
	slices.Sort(platforms)
	platforms = slices.Compact(platforms)

	return Identity{
		Members:       members,
		Platforms:     platforms,
		CrossPlatform: len(platforms) > 1,
	}
}
