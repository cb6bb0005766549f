// Package session owns one document's persisted handle and its current
// index. Tools receive a Session explicitly instead of reaching shared state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docedit/internal/docstore"
	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/indexer"
	"github.com/dgallion1/docedit/internal/metrics"
)

// ErrImagesUnsupported is returned when the store cannot embed images.
var ErrImagesUnsupported = errors.New("document does not support images")

// Session serializes access to one document. Each mutation holds the lock
// through the write and the rebuild, so callers never see a partial index.
type Session struct {
	path    string
	store   docstore.Store
	indexer *indexer.Indexer
	log     *slog.Logger

	mu    sync.Mutex
	index *doctree.Index
}

func New(path string, store docstore.Store, ix *indexer.Indexer, log *slog.Logger) *Session {
	if ix == nil {
		ix = indexer.New()
	}
	return &Session{
		path:    path,
		store:   store,
		indexer: ix,
		log:     log.With("document", path),
	}
}

func (s *Session) Path() string { return s.path }

// Index returns the current index, building it on first use.
func (s *Session) Index(ctx context.Context) (*doctree.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		return s.index, nil
	}
	return s.rebuildLocked(ctx)
}

// Reindex discards the cached index and rebuilds it from the store.
func (s *Session) Reindex(ctx context.Context) (*doctree.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked(ctx)
}

// UpdateParagraph replaces the text of the paragraph at anchor. It reports
// false when the anchor is not in the current index or the stored paragraph
// no longer matches the indexed text.
func (s *Session) UpdateParagraph(ctx context.Context, anchor doctree.Anchor, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		if _, err := s.rebuildLocked(ctx); err != nil {
			return false, err
		}
	}
	p, ok := s.index.FindByAnchor(anchor)
	if !ok {
		return false, nil
	}

	err := s.store.ReplaceParagraph(ctx, anchor.Location, p.Text, text)
	switch {
	case errors.Is(err, docstore.ErrNotFound), errors.Is(err, docstore.ErrStale):
		s.log.Warn("paragraph mismatch", "anchor", anchor.String(), "error", err)
		// The stored document drifted from the cached index.
		s.index = nil
		return false, nil
	case err != nil:
		return false, fmt.Errorf("update paragraph: %w", err)
	}

	if _, err := s.rebuildLocked(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// InsertContent appends Markdown content, preceded by title when non-empty,
// and returns the number of paragraphs added.
func (s *Session) InsertContent(ctx context.Context, content, title string) (int, error) {
	blocks := docstore.SectionBlocks(content, title)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.AppendParagraphs(ctx, blocks); err != nil {
		return 0, fmt.Errorf("insert content: %w", err)
	}
	if _, err := s.rebuildLocked(ctx); err != nil {
		return len(blocks), err
	}
	return len(blocks), nil
}

// InsertImage appends img at the end of the document.
func (s *Session) InsertImage(ctx context.Context, img []byte, widthInches float64) error {
	appender, ok := s.store.(docstore.ImageAppender)
	if !ok {
		return ErrImagesUnsupported
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := appender.AppendImage(ctx, img, widthInches); err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	_, err := s.rebuildLocked(ctx)
	return err
}

func (s *Session) rebuildLocked(ctx context.Context) (*doctree.Index, error) {
	start := time.Now()
	body, err := s.store.Load(ctx)
	if err != nil {
		s.index = nil
		return nil, fmt.Errorf("load document: %w", err)
	}
	s.index = s.indexer.Build(body)

	elapsed := time.Since(start)
	metrics.IndexBuilds.Inc()
	metrics.IndexBuildDuration.Observe(elapsed.Seconds())
	s.log.Debug("document indexed", "paragraphs", s.index.Len(), "headings", len(s.index.Outline()), "duration_ms", elapsed.Milliseconds())
	return s.index, nil
}
