package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 32

// store is a sharded concurrent map of cache entries, weight-bounded
// against a total budget shared across all shards (spec §4.5 "Storage").
// Sharding follows the teacher's pattern of a fixed array of
// independently-locked buckets rather than one global mutex, trading exact
// LRU for low contention.
type store struct {
	shards    [shardCount]*shard
	maxWeight int64

	mu           sync.Mutex // guards totalWeight only
	totalWeight  int64
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	// order tracks approximate recency: each access re-appends the key,
	// stale earlier entries are skipped as they're encountered during
	// eviction (approximate LRU, spec §4.5 allows either approximate LRU
	// or W-TinyLFU).
	order []string
}

func newStore(maxWeight int64) *store {
	s := &store{maxWeight: maxWeight}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*Entry)}
	}
	return s
}

func shardFor(s *store, key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()%shardCount]
}

// get returns the entry for key if present, applying the read-time TTI
// slide and recency bump.
func (s *store) get(key string, now time.Time) (*Entry, bool) {
	sh := shardFor(s, key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		delete(sh.entries, key)
		s.addWeight(-e.Weight)
		return nil, false
	}
	e.NextExpiry = onRead(now, e.TTI, e.NextExpiry)
	e.lastAccess = now
	sh.order = append(sh.order, key)
	return e, true
}

// put inserts or replaces the entry for key, evicting least-recently-used
// entries across shards if the insert would exceed maxWeight.
func (s *store) put(key string, e *Entry) {
	sh := shardFor(s, key)

	sh.mu.Lock()
	var delta int64
	if old, ok := sh.entries[key]; ok {
		delta = e.Weight - old.Weight
	} else {
		delta = e.Weight
	}
	sh.entries[key] = e
	sh.order = append(sh.order, key)
	sh.mu.Unlock()

	s.addWeight(delta)
	s.evictIfNeeded()
}

// delete removes key if present.
func (s *store) delete(key string) {
	sh := shardFor(s, key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if e, ok := sh.entries[key]; ok {
		delete(sh.entries, key)
		s.addWeight(-e.Weight)
	}
}

func (s *store) addWeight(delta int64) {
	if delta == 0 {
		return
	}
	s.mu.Lock()
	s.totalWeight += delta
	s.mu.Unlock()
}

func (s *store) weight() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalWeight
}

// evictIfNeeded walks shards round-robin, evicting their oldest
// still-present key, until total weight is back under budget or the cache
// is empty. maxWeight<=0 disables eviction (unbounded cache).
func (s *store) evictIfNeeded() {
	if s.maxWeight <= 0 {
		return
	}
	for s.weight() > s.maxWeight {
		evictedAny := false
		for _, sh := range s.shards {
			if s.evictOneFrom(sh) {
				evictedAny = true
			}
			if s.weight() <= s.maxWeight {
				return
			}
		}
		if !evictedAny {
			return
		}
	}
}

// evictOneFrom removes the oldest recency entry in sh that is still
// present, skipping stale order entries left behind by prior evictions,
// overwrites or later accesses of the same key.
func (s *store) evictOneFrom(sh *shard) bool {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	for len(sh.order) > 0 {
		key := sh.order[0]
		sh.order = sh.order[1:]
		e, ok := sh.entries[key]
		if !ok {
			continue
		}
		reaccessed := false
		for _, k := range sh.order {
			if k == key {
				reaccessed = true
				break
			}
		}
		if reaccessed {
			continue
		}
		delete(sh.entries, key)
		s.addWeight(-e.Weight)
		return true
	}
	return false
}
