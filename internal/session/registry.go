package session

import (
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dgallion1/docedit/internal/docstore"
	"github.com/dgallion1/docedit/internal/indexer"
)

// Opener resolves a document path to its store.
type Opener interface {
	Open(path string) (docstore.Store, error)
}

// Keyer maps path aliases to one canonical key. Openers that implement it
// get one session per document rather than one per spelling.
type Keyer interface {
	Key(path string) string
}

// Registry hands out one Session per document path, evicting the least
// recently used when full.
type Registry struct {
	opener  Opener
	indexer *indexer.Indexer
	log     *slog.Logger

	mu    sync.Mutex
	cache *lru.Cache[string, *Session]
}

func NewRegistry(opener Opener, ix *indexer.Indexer, size int, log *slog.Logger) (*Registry, error) {
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Registry{opener: opener, indexer: ix, log: log, cache: cache}, nil
}

// Get returns the session for path, opening it if needed.
func (r *Registry) Get(path string) (*Session, error) {
	key := r.key(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.cache.Get(key); ok {
		return s, nil
	}
	store, err := r.opener.Open(path)
	if err != nil {
		return nil, err
	}
	s := New(path, store, r.indexer, r.log)
	r.cache.Add(key, s)
	return s, nil
}

// Invalidate drops the session for path so the next Get reloads it.
func (r *Registry) Invalidate(path string) {
	r.cache.Remove(r.key(path))
}

func (r *Registry) key(path string) string {
	if k, ok := r.opener.(Keyer); ok {
		return k.Key(path)
	}
	return path
}

func (r *Registry) Len() int {
	return r.cache.Len()
}
