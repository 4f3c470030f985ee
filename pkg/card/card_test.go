package card

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		card    Card
		wantErr bool
	}{
		{"valid", Card{Platform: "instagram", Network: "clearnet"}, false},
		{"only required fields", Card{Platform: "x", Network: "y"}, false},
		{"missing platform", Card{Network: "clearnet"}, true},
		{"missing network", Card{Platform: "instagram"}, true},
		{"both missing", Card{}, true},
		{"blank platform", Card{Platform: "   ", Network: "clearnet"}, true},
		{"blank network", Card{Platform: "instagram", Network: "\t"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("Validate() error = %T, want *ValidationError", err)
			}
			if !IsValidationError(err) {
				t.Error("IsValidationError() = false, want true")
			}
		})
	}
}

func TestNewCopiesSlices(t *testing.T) {
	following := []string{"alice", "bob"}
	c, err := New(Card{Platform: "instagram", Network: "clearnet", Following: following})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	following[0] = "mallory"
	if c.Following[0] != "alice" {
		t.Errorf("New() shares backing array with caller: Following[0] = %q", c.Following[0])
	}
}

func TestConnections(t *testing.T) {
	c := Card{
		Followers:       []string{"a"},
		Following:       []string{"b"},
		MutualUsernames: []string{"c"},
		Commenters:      []string{"d"},
	}
	got := map[ConnectionType][]string{}
	for _, ct := range ConnectionTypes {
		got[ct] = c.Connections(ct)
	}
	want := map[ConnectionType][]string{
		Follower:  {"a"},
		Following: {"b"},
		Mutual:    {"c"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Connections() mismatch (-want +got):\n%s", diff)
	}
	if c.Connections("commenter") != nil {
		t.Error("Connections(commenter) should be nil")
	}
}

func TestStore(t *testing.T) {
	s := NewStore()

	if err := s.Add(Card{Platform: "instagram", Network: "clearnet", Following: []string{"a"}}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add(Card{Platform: "behance"}); !IsValidationError(err) {
		t.Fatalf("Add() error = %v, want ValidationError", err)
	}
	if err := s.Add(Card{Platform: "instagram", Network: "clearnet", Following: []string{"a"}}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if got := s.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2 (invalid card must not be stored, duplicates must be)", got)
	}

	snapshot := s.All()
	s.Clear()

	if got := s.Len(); got != 0 {
		t.Errorf("Len() after Clear = %d, want 0", got)
	}
	if len(s.All()) != 0 {
		t.Errorf("All() after Clear = %v, want empty", s.All())
	}
	if len(snapshot) != 2 {
		t.Errorf("snapshot taken before Clear changed: len = %d, want 2", len(snapshot))
	}
}

func TestStoreInsertionOrder(t *testing.T) {
	s := NewStore()
	platforms := []string{"instagram", "behance", "vimeo", "facebook"}
	for _, p := range platforms {
		if err := s.Add(Card{Platform: p, Network: "clearnet"}); err != nil {
			t.Fatalf("Add(%q) error = %v", p, err)
		}
	}

	var got []string
	for _, c := range s.All() {
		got = append(got, c.Platform)
	}
	if diff := cmp.Diff(platforms, got); diff != "" {
		t.Errorf("All() order mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreConcurrentAdd(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Add(Card{Platform: "instagram", Network: "clearnet"}); err != nil {
				t.Errorf("Add() error = %v", err)
			}
			_ = s.All()
		}()
	}
	wg.Wait()

	if got := s.Len(); got != 50 {
		t.Errorf("Len() = %d, want 50", got)
	}
}
