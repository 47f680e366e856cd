package denylist

import "github.com/haukened/commentguard/internal/moderation/domain"

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// BloomFactory builds filters sized for a dataset.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// MatchCache memoizes match outcomes by lowercased text.
type MatchCache interface {
	Get(text string) (domain.DenyMatch, bool)
	Put(text string, m domain.DenyMatch)
	Len() int
	Purge()
	Stats() CacheStats
}

// Store is the authoritative index of deny rules.
//   - Contains: presence of an exact lowercased word term
//   - Rebuild: replace every rule and the snapshot metadata atomically
type Store interface {
	Contains(term string) (bool, error)
	Rebuild(rules []domain.DenyRule, version uint64, updatedUnix int64) error
	Stats() StoreStats
	Close() error
}

// Repository composes cache -> bloom -> store for substring matching.
// Load is called once at startup; Match is safe for concurrent use.
type Repository interface {
	Match(text string) domain.DenyMatch
	Load(rules []domain.DenyRule, version uint64, updatedUnix int64) error
	Stats() RepoStats
}
