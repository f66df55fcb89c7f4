package store

import (
	"encoding/binary"
	"hash/maphash"
	"sync"

	xxhash "github.com/cespare/xxhash/v2"
)

type (
	// mapShard holds the records whose keys hash to it.
	mapShard[K comparable, V any] struct {
		// records maps keys to their live record.
		records map[K]V
		// mu protects records.
		mu sync.RWMutex
	}

	// shardTable is the lazily created backing structure of a MapStore.
	// RemoveAll replaces the whole table instead of clearing shards one by one,
	// so readers never observe a partially cleared store.
	shardTable[K comparable, V any] struct {
		shards []*mapShard[K, V]
	}

	// shardHashFunc hashes a key to pick its shard.
	shardHashFunc[K comparable] func(key K) uint64
)

// newShardTable allocates count empty shards.
func newShardTable[K comparable, V any](count int) *shardTable[K, V] {
	shards := make([]*mapShard[K, V], count)
	for i := range shards {
		shards[i] = &mapShard[K, V]{
			records: make(map[K]V),
		}
	}

	return &shardTable[K, V]{shards: shards}
}

// newShardHashFunc selects the hash used to spread keys over shards.
// String and integer keys go through xxhash, which is fast and keeps the
// distribution uniform; any other comparable key falls back to maphash,
// which is correct for every comparable type.
func newShardHashFunc[K comparable]() shardHashFunc[K] {
	seed := maphash.MakeSeed()

	return func(key K) uint64 {
		switch k := any(key).(type) {
		case string:
			return xxhash.Sum64String(k)
		case int:
			return integerShardHash(uint64(k))
		case int64:
			return integerShardHash(uint64(k))
		case int32:
			return integerShardHash(uint64(k))
		case uint:
			return integerShardHash(uint64(k))
		case uint64:
			return integerShardHash(k)
		case uint32:
			return integerShardHash(uint64(k))
		default:
			return maphash.Comparable(seed, key)
		}
	}
}

// integerShardHash hashes the little-endian encoding of v with xxhash.
func integerShardHash(v uint64) uint64 {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], v)

	return xxhash.Sum64(buf[:])
}

// shardFor returns the shard owning key.
func (t *shardTable[K, V]) shardFor(hash shardHashFunc[K], key K) *mapShard[K, V] {
	if len(t.shards) == 1 {
		return t.shards[0]
	}

	return t.shards[hash(key)%uint64(len(t.shards))]
}

// size returns the number of records across all shards.
// Shards are counted one at a time, so the total is only weakly consistent.
func (t *shardTable[K, V]) size() int {
	var total int

	for _, shard := range t.shards {
		total += shard.entryCount()
	}

	return total
}

// entryCount safely reads the number of records in a shard.
func (sh *mapShard[K, V]) entryCount() int {
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	return len(sh.records)
}

// appendRecords appends a copy of the shard's records to buffer while
// holding the shard read lock, so delivery can happen without the lock.
func (sh *mapShard[K, V]) appendRecords(buffer []V) []V {
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	for _, record := range sh.records {
		buffer = append(buffer, record)
	}

	return buffer
}
