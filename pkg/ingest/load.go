package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/sync/errgroup"
)

// Option configures Load.
type Option func(*config)

type config struct {
	client *http.Client
	logger *slog.Logger
	stdin  io.Reader
	limit  int
}

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.client = client }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithStdin sets the reader used for the "-" source.
func WithStdin(r io.Reader) Option {
	return func(c *config) { c.stdin = r }
}

// WithConcurrency limits how many sources are read at once.
func WithConcurrency(n int) Option {
	return func(c *config) { c.limit = n }
}

// HTTPError represents an HTTP error response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// IsURL reports whether a source names an HTTP(S) resource.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads sources concurrently: file paths, http(s) URLs, or "-" for stdin.
// Batches are returned in the order of sources so that store insertion order
// does not depend on scheduling. The first read failure cancels the rest.
func Load(ctx context.Context, sources []string, opts ...Option) ([]*Batch, error) {
	cfg := &config{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
		stdin:  os.Stdin,
		limit:  4,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	batches := make([]*Batch, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.limit, 1))
	for i, src := range sources {
		g.Go(func() error {
			b, err := loadOne(ctx, src, cfg)
			if err != nil {
				return err
			}
			cfg.logger.Debug("source loaded", "source", src, "cards", len(b.Cards), "rejected", len(b.Rejected))
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func loadOne(ctx context.Context, src string, cfg *config) (*Batch, error) {
	switch {
	case src == "-":
		return Decode(cfg.stdin, "stdin")
	case IsURL(src):
		return Fetch(ctx, cfg.client, src, cfg.logger)
	default:
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open cards: %w", err)
		}
		defer f.Close() //nolint:errcheck // read-only file
		return Decode(f, src)
	}
}

// Fetch downloads and decodes a remote card feed, retrying transient failures once.
func Fetch(ctx context.Context, client *http.Client, url string, logger *slog.Logger) (*Batch, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Limit total retry time.
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/x-ndjson, application/json")

	return retry.DoWithData(
		func() (*Batch, error) {
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close() //nolint:errcheck // intentional

			if resp.StatusCode != http.StatusOK {
				return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
			}
			return Decode(resp.Body, url)
		},
		retry.Context(ctx),
		retry.Attempts(2),                     // single retry
		retry.Delay(200*time.Millisecond),     // delay before retry
		retry.MaxJitter(100*time.Millisecond), // small jitter
		retry.RetryIf(isRetryableError),       // only retry transient errors
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("retrying card fetch", "attempt", n+1, "url", url, "error", err)
		}),
	)
}

// isRetryableError returns true for transient errors that should be retried.
func isRetryableError(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false // 4xx errors (except 429) are permanent
		}
	}
	// Network errors, timeouts, etc. are retryable
	return true
}
