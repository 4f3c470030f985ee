package card

import (
	"log/slog"
	"slices"
	"sync"
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// Store is an append-only, insertion-ordered collection of cards.
// Insertion order is visible: analyses use it to break ties.
// It is safe for concurrent use from multiple goroutines.
type Store struct {
	logger *slog.Logger
	cards  []Card
	mu     sync.RWMutex
}

// NewStore creates an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates c and appends it. Cards are never deduplicated.
// A *ValidationError leaves the store untouched.
func (s *Store) Add(c Card) error {
	stored, err := New(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cards = append(s.cards, stored)
	n := len(s.cards)
	s.mu.Unlock()

	s.logger.Debug("card added", "platform", stored.Platform, "network", stored.Network, "cards", n)
	return nil
}

// All returns a snapshot of the cards in insertion order.
// The snapshot is unaffected by later Add or Clear calls; its cards must not be modified.
func (s *Store) All() []Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cards)
}

// Len returns the number of stored cards.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

// Clear removes every card.
func (s *Store) Clear() {
	s.mu.Lock()
	n := len(s.cards)
	s.cards = nil
	s.mu.Unlock()

	s.logger.Debug("cards cleared", "removed", n)
}
