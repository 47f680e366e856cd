package denylist

import (
	"sort"
	"strings"
	"sync"

	"github.com/haukened/commentguard/internal/moderation/common/log"
	"github.com/haukened/commentguard/internal/moderation/domain"
)

// repository implements Repository by composing a Store, a Bloom filter (via
// factory) and a MatchCache. Reads apply a cache -> bloom -> store pipeline over
// every window of the text whose length equals some word term length.
type repository struct {
	mu      sync.RWMutex
	store   Store
	cache   MatchCache
	bloom   BloomFilter
	lengths []int
	factory BloomFactory
	fpRate  float64
	logger  log.Logger
}

// NewRepository constructs a Repository.
// fpRate is the target false-positive rate for the Bloom filter built by Load.
func NewRepository(store Store, cache MatchCache, factory BloomFactory, fpRate float64, logger log.Logger) Repository {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &repository{store: store, cache: cache, factory: factory, fpRate: fpRate, logger: logger}
}

// Match reports the first denylist word occurring in text, case-insensitively.
// Policy: store errors count as a miss for that window.
func (r *repository) Match(text string) domain.DenyMatch {
	r.mu.RLock()
	bf, lengths := r.bloom, r.lengths
	r.mu.RUnlock()
	if len(lengths) == 0 || text == "" {
		return domain.NoMatch()
	}

	lower := strings.ToLower(text)
	if m, ok := r.cache.Get(lower); ok {
		return m
	}
	m := r.scan(lower, bf, lengths)
	r.cache.Put(lower, m)
	return m
}

// scan walks text positions left to right and, at each, tries the shortest
// term lengths first, so the reported term is the earliest in text order.
func (r *repository) scan(lower string, bf BloomFilter, lengths []int) domain.DenyMatch {
	for i := 0; i < len(lower); i++ {
		for _, n := range lengths {
			if i+n > len(lower) {
				break
			}
			window := lower[i : i+n]
			if bf != nil && !bf.MightContain([]byte(window)) {
				continue
			}
			ok, err := r.store.Contains(window)
			if err != nil {
				r.logger.Warn(map[string]any{"error": err.Error()}, "denylist_store_lookup_failed")
				continue
			}
			if ok {
				return domain.DenyMatch{Matched: true, Term: window}
			}
		}
	}
	return domain.NoMatch()
}

// Load rebuilds the store, builds a fresh Bloom filter over the word terms and
// swaps it in together with the scan lengths, purging the cache.
func (r *repository) Load(rules []domain.DenyRule, version uint64, updatedUnix int64) error {
	if err := r.store.Rebuild(rules, version, updatedUnix); err != nil {
		return err
	}

	seen := make(map[int]struct{})
	var words uint64
	for _, ru := range rules {
		if ru.IsWord() {
			words++
			seen[len(ru.Term)] = struct{}{}
		}
	}
	bf := r.factory.New(words, r.fpRate)
	for _, ru := range rules {
		if ru.IsWord() {
			bf.Add([]byte(ru.Term))
		}
	}
	lengths := make([]int, 0, len(seen))
	for n := range seen {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)

	r.mu.Lock()
	r.bloom = bf
	r.lengths = lengths
	r.cache.Purge()
	r.mu.Unlock()

	r.logger.Info(map[string]any{
		"words":   words,
		"lengths": len(lengths),
		"version": version,
	}, "denylist_loaded")
	return nil
}

// Stats returns cache and store counters.
func (r *repository) Stats() RepoStats {
	r.mu.RLock()
	n := len(r.lengths)
	r.mu.RUnlock()
	return RepoStats{
		Cache:       r.cache.Stats(),
		Store:       r.store.Stats(),
		TermLengths: n,
	}
}
