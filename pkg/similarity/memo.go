package similarity

import (
	"context"
	"fmt"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"
)

// Memo caches the results of a Scorer. Scorers are symmetric, so (a, b) and
// (b, a) share one entry.
type Memo struct {
	cache *sfcache.TieredCache[string, int]
	score Scorer
}

// NewMemo returns an in-memory memoizing wrapper around s.
func NewMemo(s Scorer) *Memo {
	tc, err := sfcache.NewTiered[string, int](null.New[string, int]())
	if err != nil {
		panic("sfcache.NewTiered with null store: " + err.Error())
	}
	return &Memo{cache: tc, score: s}
}

// Score returns the cached score for a and b, computing it on first use.
func (m *Memo) Score(a, b string) int {
	if a > b {
		a, b = b, a
	}
	key := fmt.Sprintf("%d:%s\x00%s", len(a), a, b)
	v, err := m.cache.GetSet(context.Background(), key, func(context.Context) (int, error) {
		return m.score(a, b), nil
	})
	if err != nil {
		// The loader cannot fail; fall back to a direct computation anyway.
		return m.score(a, b)
	}
	return v
}

// Scorer returns m.Score as a Scorer.
func (m *Memo) Scorer() Scorer {
	return m.Score
}

// Close releases the underlying cache.
func (m *Memo) Close() error {
	return m.cache.Close()
}
