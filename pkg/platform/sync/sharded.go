// Package sync provides per-key locking on top of the standard sync package.
package sync

import (
	"hash/fnv"
	"sync"
)

const shardCount = 32

// ShardedMutex locks by key. Keys hash onto a fixed set of mutexes, so two
// keys may share a shard but one key always maps to the same one.
type ShardedMutex struct {
	shards [shardCount]sync.Mutex
}

func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

func (m *ShardedMutex) Lock(key string) {
	m.shards[shardFor(key)].Lock()
}

func (m *ShardedMutex) Unlock(key string) {
	m.shards[shardFor(key)].Unlock()
}

func shardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}
