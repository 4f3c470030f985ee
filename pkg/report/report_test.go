package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/codeGROOVE-dev/crossmap/pkg/card"
	"github.com/codeGROOVE-dev/crossmap/pkg/cluster"
	"github.com/codeGROOVE-dev/crossmap/pkg/compare"
	"github.com/codeGROOVE-dev/crossmap/pkg/influence"
	"github.com/google/go-cmp/cmp"
)

func testStore(t *testing.T) *card.Store {
	t.Helper()
	s := card.NewStore()
	cards := []card.Card{
		{
			Platform:  "instagram",
			Network:   "clearnet",
			WebLinks:  []string{"https://www.instagram.com/grapheine"},
			Followers: []string{"Alice", "bob"},
			Following: []string{"john_doe", "jane.smith", "carol"},
			PostLikes: "1.2k",
		},
		{
			Platform:        "behance",
			Network:         "clearnet",
			Following:       []string{"johndoe", "janesmith", "dave"},
			MutualUsernames: []string{"alice"},
			Commenters:      []string{"erin"},
		},
		{
			Platform:  "vimeo",
			Network:   "clearnet",
			Following: []string{"John_Doe", "unrelated_user"},
			Views:     "300",
		},
	}
	for _, c := range cards {
		if err := s.Add(c); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	return s
}

func TestBuildEmptyStore(t *testing.T) {
	r := New(card.NewStore()).Build()

	if r.CardCount != 0 || len(r.Cards) != 0 {
		t.Errorf("CardCount = %d, Cards = %v; want empty", r.CardCount, r.Cards)
	}
	if r.Comparison.Status != compare.StatusInsufficientData {
		t.Errorf("Comparison.Status = %q", r.Comparison.Status)
	}
	if r.Clusters.Status != cluster.StatusNoData {
		t.Errorf("Clusters.Status = %q", r.Clusters.Status)
	}
	if r.Influence.Status != influence.StatusNoData {
		t.Errorf("Influence.Status = %q", r.Influence.Status)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if err := WriteText(&buf, r); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
}

func TestBuildIdempotent(t *testing.T) {
	b := New(testStore(t))

	var first, second bytes.Buffer
	if err := WriteJSON(&first, b.Build()); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if err := WriteJSON(&second, b.Build()); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("repeated builds differ:\n%s", cmp.Diff(first.String(), second.String()))
	}
}

func TestBuildDoesNotMutateStore(t *testing.T) {
	s := testStore(t)
	before := s.All()

	_ = New(s).Build()

	if diff := cmp.Diff(before, s.All()); diff != "" {
		t.Errorf("store changed during Build (-before +after):\n%s", diff)
	}
}

func TestBuildContents(t *testing.T) {
	r := New(testStore(t), WithThreshold(70), WithBridgeLimit(5)).Build()

	if r.CardCount != 3 || r.Threshold != 70 || r.BridgeLimit != 5 {
		t.Errorf("header = %d cards, threshold %d, limit %d", r.CardCount, r.Threshold, r.BridgeLimit)
	}
	if got := len(r.Comparison.Pairs); got != 3 {
		t.Errorf("got %d comparison pairs, want 3", got)
	}
	if len(r.Clusters.Identities) == 0 {
		t.Fatal("expected at least one identity cluster")
	}

	wantSummary := CardSummary{
		Platform:   "behance",
		Network:    "clearnet",
		Following:  3,
		Mutual:     1,
		Commenters: 1,
	}
	if diff := cmp.Diff(wantSummary, r.Cards[1]); diff != "" {
		t.Errorf("card summary mismatch (-want +got):\n%s", diff)
	}

	var bridgeKeys []string
	for _, p := range r.Influence.Bridges {
		bridgeKeys = append(bridgeKeys, p.Key)
	}
	for _, want := range []string{"alice", "john_doe"} {
		found := false
		for _, k := range bridgeKeys {
			if k == want {
				found = true
			}
		}
		if !found {
			t.Errorf("bridge %q missing from %v", want, bridgeKeys)
		}
	}
	if len(r.Influence.Bridges) > 5 {
		t.Errorf("got %d bridges, limit is 5", len(r.Influence.Bridges))
	}
}

func TestBuildCustomScorer(t *testing.T) {
	exact := func(a, b string) int {
		if a == b {
			return 100
		}
		return 0
	}

	r := New(testStore(t), WithScorer(exact)).Build()

	for _, id := range r.Clusters.Identities {
		first := id.Members[0].Username
		for _, m := range id.Members {
			if m.Username != first {
				t.Errorf("exact scorer clustered %q with %q", first, m.Username)
			}
		}
	}
}

func TestFingerprint(t *testing.T) {
	s := testStore(t)
	b := New(s)

	fp1, cards := b.Fingerprint()
	fp2, _ := b.Fingerprint()
	if fp1 != fp2 {
		t.Errorf("Fingerprint() not stable: %s != %s", fp1, fp2)
	}
	if len(cards) != 3 {
		t.Errorf("Fingerprint() snapshot has %d cards, want 3", len(cards))
	}

	if got := Fingerprint(cards, 80, influence.DefaultBridgeLimit); got == fp1 {
		t.Error("Fingerprint() ignores the threshold")
	}

	if err := s.Add(card.Card{Platform: "facebook", Network: "clearnet"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if fp3, _ := b.Fingerprint(); fp3 == fp1 {
		t.Error("Fingerprint() ignores new cards")
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, New(testStore(t)).Build()); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"instagram <-> behance",
		"john_doe ~ johndoe",
		"likes=1.2k",
		"views=300",
		"bridges (top 15):",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteText() output missing %q:\n%s", want, out)
		}
	}
}
