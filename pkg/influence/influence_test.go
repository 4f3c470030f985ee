package influence

import (
	"math"
	"testing"

	"github.com/codeGROOVE-dev/crossmap/pkg/card"
	"github.com/codeGROOVE-dev/crossmap/pkg/similarity"
	"github.com/google/go-cmp/cmp"
)

func keys(profiles []*Profile) []string {
	var out []string
	for _, p := range profiles {
		out = append(out, p.Key)
	}
	return out
}

func TestAnalyzeInfluenceScore(t *testing.T) {
	cards := []card.Card{
		{Platform: "instagram", Network: "clearnet", Followers: []string{"Alice"}, MutualUsernames: []string{"ALICE"}},
		{Platform: "behance", Network: "clearnet", Followers: []string{" alice "}},
	}

	got := Analyze(cards, DefaultOptions(), similarity.Ratio)

	if got.Status != StatusOK {
		t.Fatalf("Status = %q, want %q", got.Status, StatusOK)
	}
	if len(got.Ranked) != 1 {
		t.Fatalf("got %d profiles, want 1: %v", len(got.Ranked), keys(got.Ranked))
	}

	want := &Profile{
		Key:             "alice",
		Names:           []string{"Alice", "ALICE", " alice "},
		Platforms:       []string{"instagram", "behance"},
		ConnectionTypes: []card.ConnectionType{card.Follower, card.Mutual},
		FollowerCount:   2,
		MutualCount:     1,
		PlatformConnections: map[string][]card.ConnectionType{
			"instagram": {card.Follower, card.Mutual},
			"behance":   {card.Follower},
		},
		NetworkScore:   5,
		InfluenceScore: 35,
	}
	if diff := cmp.Diff(want, got.Ranked[0]); diff != "" {
		t.Errorf("Profile mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeStableRanking(t *testing.T) {
	cards := []card.Card{
		{Platform: "instagram", Network: "clearnet", Followers: []string{"bob", "xavier", "carol"}},
		{Platform: "behance", Network: "clearnet", MutualUsernames: []string{"carol"}},
	}

	got := Analyze(cards, DefaultOptions(), similarity.Ratio)

	// carol scores 33.5; bob and xavier tie at 16.5 and keep creation order.
	if diff := cmp.Diff([]string{"carol", "bob", "xavier"}, keys(got.Ranked)); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
	if got.Ranked[1].InfluenceScore != got.Ranked[2].InfluenceScore {
		t.Errorf("expected a tie, got %v and %v", got.Ranked[1].InfluenceScore, got.Ranked[2].InfluenceScore)
	}
	if diff := cmp.Diff([]string{"carol"}, keys(got.Bridges)); diff != "" {
		t.Errorf("bridges mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeStats(t *testing.T) {
	cards := []card.Card{
		{Platform: "instagram", Network: "clearnet", Followers: []string{"bob", "xavier", "carol"}},
		{Platform: "behance", Network: "clearnet", MutualUsernames: []string{"carol"}},
	}

	got := Analyze(cards, DefaultOptions(), similarity.Ratio).Stats

	if got.TotalProfiles != 3 || got.MultiPlatform != 1 {
		t.Errorf("TotalProfiles, MultiPlatform = %d, %d; want 3, 1", got.TotalProfiles, got.MultiPlatform)
	}
	if math.Abs(got.MultiPlatformPercent-100.0/3) > 1e-9 {
		t.Errorf("MultiPlatformPercent = %v, want 33.33", got.MultiPlatformPercent)
	}
	if math.Abs(got.AvgPlatformsPerProfile-4.0/3) > 1e-9 {
		t.Errorf("AvgPlatformsPerProfile = %v, want 1.33", got.AvgPlatformsPerProfile)
	}
	want := []TypeCount{{Type: card.Follower, Profiles: 3}, {Type: card.Mutual, Profiles: 1}}
	if diff := cmp.Diff(want, got.ConnectionDistribution); diff != "" {
		t.Errorf("ConnectionDistribution mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeDistributionSortedByCount(t *testing.T) {
	cards := []card.Card{
		{
			Platform:        "instagram",
			Network:         "clearnet",
			Followers:       []string{"dave"},
			Following:       []string{"erin", "frank", "grace"},
			MutualUsernames: []string{"heidi", "erin"},
		},
	}

	got := Analyze(cards, DefaultOptions(), similarity.Ratio).Stats.ConnectionDistribution

	want := []TypeCount{
		{Type: card.Following, Profiles: 3},
		{Type: card.Mutual, Profiles: 2},
		{Type: card.Follower, Profiles: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ConnectionDistribution mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeBridgeLimit(t *testing.T) {
	users := []string{"dave", "erin", "heidi"}
	cards := []card.Card{
		{Platform: "instagram", Network: "clearnet", Following: users},
		{Platform: "behance", Network: "clearnet", Following: users},
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"capped", 2, []string{"dave", "erin"}},
		{"unlimited", 0, []string{"dave", "erin", "heidi"}},
		{"above count", 15, []string{"dave", "erin", "heidi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(cards, Options{Threshold: DefaultThreshold, BridgeLimit: tt.limit}, similarity.Ratio)
			if diff := cmp.Diff(tt.want, keys(got.Bridges)); diff != "" {
				t.Errorf("Bridges mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnalyzeFirstMatchWins(t *testing.T) {
	// "aaaaaaabbb" is similar to both earlier keys; it joins the first one.
	cards := []card.Card{
		{Platform: "instagram", Network: "clearnet", Following: []string{"aaaaaaaaaa", "aaaabbbbbb", "AAAAAAABBB"}},
	}

	got := Analyze(cards, DefaultOptions(), similarity.Ratio)

	if len(got.Ranked) != 2 {
		t.Fatalf("got %d profiles, want 2", len(got.Ranked))
	}
	first := got.Ranked[0]
	if first.Key != "aaaaaaaaaa" {
		t.Fatalf("first profile key = %q, want aaaaaaaaaa", first.Key)
	}
	if diff := cmp.Diff([]string{"aaaaaaaaaa", "AAAAAAABBB"}, first.Names); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeIgnoresCommenters(t *testing.T) {
	cards := []card.Card{{Platform: "instagram", Network: "clearnet", Commenters: []string{"bob"}}}

	got := Analyze(cards, DefaultOptions(), similarity.Ratio)

	if got.Status != StatusNoData {
		t.Errorf("Status = %q, want %q", got.Status, StatusNoData)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	got := Analyze(nil, DefaultOptions(), nil)

	want := Result{
		Status:    StatusNoData,
		Threshold: DefaultThreshold,
		Ranked:    []*Profile{},
		Bridges:   []*Profile{},
		Stats:     Stats{ConnectionDistribution: []TypeCount{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Analyze(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Alice", "alice"},
		{"  BOB\t", "bob"},
		{"", ""},
		{"jane.Smith ", "jane.smith"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
