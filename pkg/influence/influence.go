// Package influence merges relationship observations into per-identity profiles
// and ranks them by a cross-platform influence score.
package influence

import (
	"cmp"
	"slices"
	"strings"

	"github.com/codeGROOVE-dev/crossmap/pkg/card"
	"github.com/codeGROOVE-dev/crossmap/pkg/similarity"
)

// Defaults.
const (
	DefaultThreshold   = 70
	DefaultBridgeLimit = 15
)

// Score weights.
const (
	platformWeight       = 10.0
	connectionTypeWeight = 5.0
	followerWeight       = 1.5
	mutualWeight         = 2.0
	followingWeight      = 0.5
)

// Status describes whether the analysis had any observations.
type Status string

// Status values.
const (
	StatusOK     Status = "ok"
	StatusNoData Status = "no_data"
)

// Options controls an analysis run.
type Options struct {
	Threshold   int // Inclusive minimum similarity between identity keys
	BridgeLimit int // Maximum bridges reported; 0 means unlimited
}

// DefaultOptions returns the default threshold and bridge limit.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, BridgeLimit: DefaultBridgeLimit}
}

// Profile is the merged view of one resolved identity.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Profile struct {
	// Key is the normalized username the profile was created with.
	Key string `json:"key"`

	// Names, Platforms, and ConnectionTypes keep first-seen order.
	Names           []string              `json:"names"`
	Platforms       []string              `json:"platforms"`
	ConnectionTypes []card.ConnectionType `json:"connection_types"`

	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`
	MutualCount    int `json:"mutual_count"`

	// PlatformConnections lists every observation's type per platform, repeats included.
	PlatformConnections map[string][]card.ConnectionType `json:"platform_connections"`

	NetworkScore   float64 `json:"network_score"`
	InfluenceScore float64 `json:"influence_score"`
}

// TypeCount is the number of profiles carrying a connection type.
type TypeCount struct {
	Type     card.ConnectionType `json:"type"`
	Profiles int                 `json:"profiles"`
}

// Stats aggregates the profile set.
type Stats struct {
	TotalProfiles          int         `json:"total_profiles"`
	MultiPlatform          int         `json:"multi_platform"`
	MultiPlatformPercent   float64     `json:"multi_platform_percent"`
	AvgPlatformsPerProfile float64     `json:"avg_platforms_per_profile"`
	ConnectionDistribution []TypeCount `json:"connection_distribution"`
}

// Result holds the ranked profiles, bridge identities, and statistics.
type Result struct {
	Status       Status     `json:"status"`
	Threshold    int        `json:"threshold"`
	Observations int        `json:"observations"`
	Ranked       []*Profile `json:"ranked"`
	Bridges      []*Profile `json:"bridges"`
	Stats        Stats      `json:"stats"`
}

// NormalizeKey lowercases and trims a username for matching.
func NormalizeKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Analyze builds profiles from the followers, following, and mutual lists of cards.
//
// Each observation joins the first profile (in creation order) whose key
// scores at or above the threshold against the observation's normalized key;
// otherwise it starts a new profile.
func Analyze(cards []card.Card, opts Options, score similarity.Scorer) Result {
	if score == nil {
		score = similarity.Ratio
	}

	a := &analyzer{threshold: opts.Threshold, score: score}
	for i := range cards {
		c := &cards[i]
		for _, ct := range card.ConnectionTypes {
			for _, u := range c.Connections(ct) {
				a.observe(u, ct, c.Platform)
			}
		}
	}

	res := Result{
		Status:       StatusNoData,
		Threshold:    opts.Threshold,
		Observations: a.observations,
		Ranked:       []*Profile{},
		Bridges:      []*Profile{},
		Stats:        Stats{ConnectionDistribution: []TypeCount{}},
	}
	if a.observations == 0 {
		return res
	}
	res.Status = StatusOK

	for _, p := range a.profiles {
		p.NetworkScore = float64(p.FollowerCount)*followerWeight +
			float64(p.MutualCount)*mutualWeight +
			float64(p.FollowingCount)*followingWeight
		p.InfluenceScore = float64(len(p.Platforms))*platformWeight +
			float64(len(p.ConnectionTypes))*connectionTypeWeight +
			p.NetworkScore
	}

	res.Ranked = rank(a.profiles)
	res.Bridges = bridges(res.Ranked, opts.BridgeLimit)
	res.Stats = stats(a.profiles)
	return res
}

type analyzer struct {
	score        similarity.Scorer
	profiles     []*Profile
	threshold    int
	observations int
}

func (a *analyzer) observe(username string, ct card.ConnectionType, platform string) {
	a.observations++
	key := NormalizeKey(username)

	var p *Profile
	for _, existing := range a.profiles {
		if a.score(key, existing.Key) >= a.threshold {
			p = existing
			break
		}
	}
	if p == nil {
		p = &Profile{Key: key, PlatformConnections: map[string][]card.ConnectionType{}}
		a.profiles = append(a.profiles, p)
	}

	p.Names = appendUnique(p.Names, username)
	p.Platforms = appendUnique(p.Platforms, platform)
	p.ConnectionTypes = appendUnique(p.ConnectionTypes, ct)
	switch ct {
	case card.Follower:
		p.FollowerCount++
	case card.Following:
		p.FollowingCount++
	case card.Mutual:
		p.MutualCount++
	}
	p.PlatformConnections[platform] = append(p.PlatformConnections[platform], ct)
}

func appendUnique[T comparable](s []T, v T) []T {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}

// rank sorts by influence score, highest first; equal scores keep creation order.
func rank(profiles []*Profile) []*Profile {
	ranked := slices.Clone(profiles)
	slices.SortStableFunc(ranked, func(a, b *Profile) int {
		return cmp.Compare(b.InfluenceScore, a.InfluenceScore)
	})
	return ranked
}

func bridges(ranked []*Profile, limit int) []*Profile {
	out := []*Profile{}
	for _, p := range ranked {
		if limit > 0 && len(out) == limit {
			break
		}
		if len(p.Platforms) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

func stats(profiles []*Profile) Stats {
	s := Stats{TotalProfiles: len(profiles), ConnectionDistribution: []TypeCount{}}
	if len(profiles) == 0 {
		return s
	}

	var platforms int
	counts := make(map[card.ConnectionType]int)
	for _, p := range profiles {
		platforms += len(p.Platforms)
		if len(p.Platforms) > 1 {
			s.MultiPlatform++
		}
		for _, ct := range p.ConnectionTypes {
			counts[ct]++
		}
	}
	s.MultiPlatformPercent = float64(s.MultiPlatform) / float64(s.TotalProfiles) * 100
	s.AvgPlatformsPerProfile = float64(platforms) / float64(s.TotalProfiles)

	for _, ct := range card.ConnectionTypes {
		if n := counts[ct]; n > 0 {
			s.ConnectionDistribution = append(s.ConnectionDistribution, TypeCount{Type: ct, Profiles: n})
		}
	}
	slices.SortStableFunc(s.ConnectionDistribution, func(a, b TypeCount) int {
		return cmp.Compare(b.Profiles, a.Profiles)
	})
	return s
}
