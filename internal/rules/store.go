package rules

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Store hands out the current rule snapshot. Readers never observe a
// partially loaded document: a reload either swaps in a complete snapshot or
// keeps the previous one.
type Store struct {
	path    string
	current atomic.Pointer[Rules]
}

// NewStore loads the document at path. An empty path serves the bundled
// default document and makes Reload a no-op.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if path == "" {
		s.current.Store(Default())
		return s, nil
	}
	r, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(r)
	return s, nil
}

// NewStaticStore wraps an already parsed document.
func NewStaticStore(r *Rules) *Store {
	s := &Store{}
	s.current.Store(r)
	return s
}

// Current returns the active snapshot. Callers must not mutate it.
func (s *Store) Current() *Rules {
	return s.current.Load()
}

// Path returns the file the store reads from, or "" for a static store.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the document from disk. On failure the previous snapshot
// stays active and the error is returned.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	r, err := Load(s.path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", s.path, err)
	}
	s.current.Store(r)
	sum := r.Summarize()
	slog.Info("rules reloaded",
		"path", s.path,
		"domains", sum.Domains,
		"resources", sum.Resources,
		"recommendations", sum.Recommendations,
	)
	return nil
}
