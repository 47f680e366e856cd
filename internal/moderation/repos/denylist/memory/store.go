// Package memory provides the default in-process denylist store.
package memory

import (
	"sync"

	"github.com/haukened/commentguard/internal/moderation/domain"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist"
)

type memoryStore struct {
	mu       sync.RWMutex
	words    map[string]struct{}
	patterns map[string]struct{}
	version  uint64
	updated  int64
}

// New returns an empty in-memory Store.
func New() denylist.Store {
	return &memoryStore{
		words:    make(map[string]struct{}),
		patterns: make(map[string]struct{}),
	}
}

func (s *memoryStore) Contains(term string) (bool, error) {
	s.mu.RLock()
	_, ok := s.words[term]
	s.mu.RUnlock()
	return ok, nil
}

func (s *memoryStore) Rebuild(rules []domain.DenyRule, version uint64, updatedUnix int64) error {
	words := make(map[string]struct{}, len(rules))
	patterns := make(map[string]struct{})
	for _, r := range rules {
		switch r.Kind {
		case domain.RuleWord:
			words[r.Term] = struct{}{}
		case domain.RulePattern:
			patterns[r.Term] = struct{}{}
		}
	}
	s.mu.Lock()
	s.words, s.patterns = words, patterns
	s.version, s.updated = version, updatedUnix
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Stats() denylist.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return denylist.StoreStats{
		Version:     s.version,
		UpdatedUnix: s.updated,
		WordKeys:    uint64(len(s.words)),
		PatternKeys: uint64(len(s.patterns)),
	}
}

func (s *memoryStore) Close() error { return nil }

var _ denylist.Store = (*memoryStore)(nil)
