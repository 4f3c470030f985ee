// Package card defines the relationship snapshots ("cards") ingested from scrapers.
package card

import (
	"errors"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ConnectionType tags how a username relates to the scraped account.
type ConnectionType string

// Connection type constants, in the order cards are consumed by the influence analyzer.
const (
	Follower  ConnectionType = "follower"
	Following ConnectionType = "following"
	Mutual    ConnectionType = "mutual"
)

// ConnectionTypes lists every connection type in canonical order.
var ConnectionTypes = []ConnectionType{Follower, Following, Mutual}

// Card is one relationship snapshot for one platform.
//
// Username lists are not guaranteed unique or normalized; they may contain
// case and whitespace variants of the same handle.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Card struct {
	// Metadata
	Platform    string   `json:"platform"`               // "instagram", "behance", ...
	Network     string   `json:"network"`                // Transport tag: "clearnet", "tor", ...
	WebLinks    []string `json:"web_links,omitempty"`    // Pages the snapshot was taken from
	ContentType []string `json:"content_type,omitempty"` // Tags describing what was captured
	Content     string   `json:"content,omitempty"`      // Free-text summary
	ChannelURL  string   `json:"channel_url,omitempty"`  // Channel or profile URL, if any

	// Relationship lists
	Followers       []string `json:"followers,omitempty"`
	Following       []string `json:"following,omitempty"`
	MutualUsernames []string `json:"mutual_usernames,omitempty"`
	Commenters      []string `json:"commenters,omitempty"`

	// Opaque metrics, passed through untouched
	PostLikes    string `json:"post_likes,omitempty"`
	PostComments string `json:"post_comments,omitempty"`
	PostShares   string `json:"post_shares,omitempty"`
	PostViews    string `json:"post_views,omitempty"`
	Views        string `json:"views,omitempty"`
}

// ValidationError reports a card that is missing a required field.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid card: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks that platform and network are present.
func (c *Card) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Platform, validation.Required, validation.By(notBlank)),
		validation.Field(&c.Network, validation.Required, validation.By(notBlank)),
	)
	if err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// New validates c and returns a copy that shares no backing arrays with it.
func New(c Card) (Card, error) {
	if err := c.Validate(); err != nil {
		return Card{}, err
	}
	c.WebLinks = slices.Clone(c.WebLinks)
	c.ContentType = slices.Clone(c.ContentType)
	c.Followers = slices.Clone(c.Followers)
	c.Following = slices.Clone(c.Following)
	c.MutualUsernames = slices.Clone(c.MutualUsernames)
	c.Commenters = slices.Clone(c.Commenters)
	return c, nil
}

// Connections returns the username list for a connection type.
// Commenters have no connection type and are never returned.
func (c *Card) Connections(t ConnectionType) []string {
	switch t {
	case Follower:
		return c.Followers
	case Following:
		return c.Following
	case Mutual:
		return c.MutualUsernames
	default:
		return nil
	}
}

// notBlank rejects whitespace-only strings, which Required lets through.
func notBlank(value any) error {
	if s, ok := value.(string); ok && s != "" && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}
