// Package ingest reads cards produced by scrapers from files, URLs, and streams.
//
// Cards are encoded as JSON Lines (one card object per line) or as a single
// JSON array of cards. A record that fails to decode or validate is rejected
// on its own; the rest of the source is still ingested.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/codeGROOVE-dev/crossmap/pkg/card"
)

// maxLineSize bounds a single JSON Lines record; relationship lists can be long.
const maxLineSize = 32 << 20

// Rejection records a card that was skipped.
type Rejection struct {
	Err    error
	Source string
	Line   int // 1-based line, or array index + 1 for JSON arrays
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s:%d: %v", r.Source, r.Line, r.Err)
}

func (r Rejection) Unwrap() error {
	return r.Err
}

// Batch is the result of reading one source.
type Batch struct {
	Source   string
	Cards    []card.Card
	Rejected []Rejection
}

// Decode reads every card from r. Only read failures are returned as errors.
func Decode(r io.Reader, source string) (*Batch, error) {
	br := bufio.NewReader(r)
	b := &Batch{Source: source}

	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	if first == '[' {
		var records []json.RawMessage
		if err := json.NewDecoder(br).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode %s: %w", source, err)
		}
		for i, raw := range records {
			b.add(raw, i+1)
		}
		return b, nil
	}

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		b.add(raw, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return b, nil
}

func (b *Batch) add(raw []byte, line int) {
	var c card.Card
	if err := json.Unmarshal(raw, &c); err != nil {
		b.Rejected = append(b.Rejected, Rejection{Source: b.Source, Line: line, Err: err})
		return
	}
	valid, err := card.New(c)
	if err != nil {
		b.Rejected = append(b.Rejected, Rejection{Source: b.Source, Line: line, Err: err})
		return
	}
	b.Cards = append(b.Cards, valid)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return c, nil
	}
}

// AddTo inserts the batch's cards into store in order and returns how many were added.
// Rejections, including any from the store itself, are logged at warn level.
func (b *Batch) AddTo(store *card.Store, logger *slog.Logger) (added int, rejected []Rejection) {
	if logger == nil {
		logger = slog.Default()
	}
	rejected = append(rejected, b.Rejected...)
	for i := range b.Cards {
		if err := store.Add(b.Cards[i]); err != nil {
			rejected = append(rejected, Rejection{Source: b.Source, Err: err})
			continue
		}
		added++
	}
	for _, r := range rejected {
		logger.Warn("card rejected", "source", r.Source, "line", r.Line, "error", r.Err)
	}
	logger.Debug("source ingested", "source", b.Source, "added", added, "rejected", len(rejected))
	return added, rejected
}
