// Package report assembles comparison, clustering, and influence results into
// a single serializable value.
//
// Basic usage:
//
//	store := card.NewStore()
//	_ = store.Add(card.Card{Platform: "instagram", Network: "clearnet", Following: []string{"john_doe"}})
//	r := report.New(store, report.WithThreshold(75)).Build()
//	_ = report.WriteJSON(os.Stdout, r)
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/codeGROOVE-dev/crossmap/pkg/card"
	"github.com/codeGROOVE-dev/crossmap/pkg/cluster"
	"github.com/codeGROOVE-dev/crossmap/pkg/compare"
	"github.com/codeGROOVE-dev/crossmap/pkg/influence"
	"github.com/codeGROOVE-dev/crossmap/pkg/similarity"
)

// Report is the externally consumed result of one analysis run.
type Report struct {
	Threshold   int              `json:"threshold"`
	BridgeLimit int              `json:"bridge_limit"`
	CardCount   int              `json:"card_count"`
	Cards       []CardSummary    `json:"cards"`
	Comparison  compare.Result   `json:"comparison"`
	Clusters    cluster.Result   `json:"clusters"`
	Influence   influence.Result `json:"influence"`
}

// CardSummary describes one ingested card without its username lists.
//
//nolint:govet // fieldalignment: intentional layout for readability
type CardSummary struct {
	Platform     string   `json:"platform"`
	Network      string   `json:"network"`
	WebLinks     []string `json:"web_links,omitempty"`
	ContentType  []string `json:"content_type,omitempty"`
	Content      string   `json:"content,omitempty"`
	ChannelURL   string   `json:"channel_url,omitempty"`
	Followers    int      `json:"followers"`
	Following    int      `json:"following"`
	Mutual       int      `json:"mutual"`
	Commenters   int      `json:"commenters"`
	PostLikes    string   `json:"post_likes,omitempty"`
	PostComments string   `json:"post_comments,omitempty"`
	PostShares   string   `json:"post_shares,omitempty"`
	PostViews    string   `json:"post_views,omitempty"`
	Views        string   `json:"views,omitempty"`
}

// Option configures a Builder.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	scorer      similarity.Scorer
	threshold   int
	bridgeLimit int
}

// WithThreshold sets the inclusive similarity threshold used by every analysis.
func WithThreshold(threshold int) Option {
	return func(c *config) { c.threshold = threshold }
}

// WithBridgeLimit caps the number of bridge identities reported; 0 means unlimited.
func WithBridgeLimit(limit int) Option {
	return func(c *config) { c.bridgeLimit = limit }
}

// WithScorer replaces the Levenshtein ratio scorer.
func WithScorer(s similarity.Scorer) Option {
	return func(c *config) { c.scorer = s }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Builder produces reports from a card store.
type Builder struct {
	store *card.Store
	cfg   config
}

// New creates a Builder reading from store.
func New(store *card.Store, opts ...Option) *Builder {
	cfg := config{
		logger:      slog.Default(),
		scorer:      similarity.Ratio,
		threshold:   compare.DefaultThreshold,
		bridgeLimit: influence.DefaultBridgeLimit,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Builder{store: store, cfg: cfg}
}

// Build snapshots the store and runs every analysis against the snapshot.
// It never fails: missing data is reported through each result's status.
func (b *Builder) Build() *Report {
	return b.build(b.store.All())
}

func (b *Builder) build(cards []card.Card) *Report {
	memo := similarity.NewMemo(b.cfg.scorer)
	defer func() {
		if err := memo.Close(); err != nil {
			b.cfg.logger.Debug("failed to close score cache", "error", err)
		}
	}()
	score := memo.Scorer()

	r := &Report{
		Threshold:   b.cfg.threshold,
		BridgeLimit: b.cfg.bridgeLimit,
		CardCount:   len(cards),
		Cards:       Summarize(cards),
		Comparison:  compare.Compare(cards, b.cfg.threshold, score),
		Clusters:    cluster.Cluster(cards, b.cfg.threshold, score),
		Influence: influence.Analyze(cards, influence.Options{
			Threshold:   b.cfg.threshold,
			BridgeLimit: b.cfg.bridgeLimit,
		}, score),
	}

	b.cfg.logger.Debug("report built",
		"cards", r.CardCount,
		"comparison", r.Comparison.Status, "pairs", len(r.Comparison.Pairs),
		"clusters", r.Clusters.Status, "identities", len(r.Clusters.Identities),
		"influence", r.Influence.Status, "profiles", r.Influence.Stats.TotalProfiles)
	return r
}

// Fingerprint returns a cache key for the report the given inputs would produce.
func (b *Builder) Fingerprint() (string, []card.Card) {
	cards := b.store.All()
	return Fingerprint(cards, b.cfg.threshold, b.cfg.bridgeLimit), cards
}

// BuildFrom builds a report from an explicit snapshot, typically the one
// returned alongside Fingerprint.
func (b *Builder) BuildFrom(cards []card.Card) *Report {
	return b.build(cards)
}

// Fingerprint hashes the analysis inputs. Equal fingerprints yield identical reports
// when the default scorer is used.
func Fingerprint(cards []card.Card, threshold, bridgeLimit int) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	// Encoding plain structs of strings cannot fail.
	_ = enc.Encode(struct { //nolint:errcheck // see above
		Cards       []card.Card `json:"cards"`
		Threshold   int         `json:"threshold"`
		BridgeLimit int         `json:"bridge_limit"`
	}{cards, threshold, bridgeLimit})
	return hex.EncodeToString(h.Sum(nil))
}

// Summarize converts cards into summaries, preserving order.
func Summarize(cards []card.Card) []CardSummary {
	out := make([]CardSummary, len(cards))
	for i := range cards {
		c := &cards[i]
		out[i] = CardSummary{
			Platform:     c.Platform,
			Network:      c.Network,
			WebLinks:     c.WebLinks,
			ContentType:  c.ContentType,
			Content:      c.Content,
			ChannelURL:   c.ChannelURL,
			Followers:    len(c.Followers),
			Following:    len(c.Following),
			Mutual:       len(c.MutualUsernames),
			Commenters:   len(c.Commenters),
			PostLikes:    c.PostLikes,
			PostComments: c.PostComments,
			PostShares:   c.PostShares,
			PostViews:    c.PostViews,
			Views:        c.Views,
		}
	}
	return out
}
