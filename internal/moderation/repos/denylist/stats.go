package denylist

// CacheStats reports lightweight cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Capacity  int    // configured capacity (0 for disabled cache)
	Size      int    // current number of entries
	Hits      uint64 // total cache hits since construction
	Misses    uint64 // total cache misses since construction
	Evictions uint64 // total evictions since construction
}

// StoreStats reports store counts and snapshot metadata.
type StoreStats struct {
	Version     uint64 // snapshot version (0 if never loaded)
	UpdatedUnix int64  // last rebuild, unix seconds (0 if never loaded)
	WordKeys    uint64 // number of word terms
	PatternKeys uint64 // number of pattern terms
}

// RepoStats exposes repository-level counters.
type RepoStats struct {
	Cache       CacheStats
	Store       StoreStats
	TermLengths int // distinct word lengths scanned per text
}
