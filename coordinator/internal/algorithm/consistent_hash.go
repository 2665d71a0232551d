package algorithm

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
	"strconv"
	"sync"

	"github.com/distkv/distkv/coordinator/internal/model"
)

// DefaultVirtualNodes is the number of ring positions each worker occupies
const DefaultVirtualNodes = 100

// ConsistentHasher implements consistent hashing with virtual nodes.
// Positions are signed 64-bit values kept in ascending order; a worker's
// positions are inserted and removed as one group under the write lock.
type ConsistentHasher struct {
	ring         []model.VirtualNode // Sorted by Hash, insertion order on ties
	workers      map[string]struct{}
	virtualNodes int
	mu           sync.RWMutex
}

// NewConsistentHasher creates a new consistent hasher
func NewConsistentHasher(virtualNodes int) *ConsistentHasher {
	if virtualNodes <= 0 {
		virtualNodes = DefaultVirtualNodes
	}
	return &ConsistentHasher{
		ring:         make([]model.VirtualNode, 0),
		workers:      make(map[string]struct{}),
		virtualNodes: virtualNodes,
	}
}

// AddWorker inserts the worker's virtual nodes. Adding a worker that is
// already on the ring is a no-op.
func (ch *ConsistentHasher) AddWorker(workerID string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if _, exists := ch.workers[workerID]; exists {
		return
	}

	for i := 0; i < ch.virtualNodes; i++ {
		ch.ring = append(ch.ring, model.VirtualNode{
			Hash:     Hash(workerID + strconv.Itoa(i)),
			WorkerID: workerID,
		})
	}
	ch.workers[workerID] = struct{}{}
	sort.SliceStable(ch.ring, func(i, j int) bool { return ch.ring[i].Hash < ch.ring[j].Hash })
}

// RemoveWorker deletes every position mapped to the worker
func (ch *ConsistentHasher) RemoveWorker(workerID string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if _, exists := ch.workers[workerID]; !exists {
		return
	}

	newRing := make([]model.VirtualNode, 0, len(ch.ring))
	for _, vnode := range ch.ring {
		if vnode.WorkerID != workerID {
			newRing = append(newRing, vnode)
		}
	}
	ch.ring = newRing
	delete(ch.workers, workerID)
}

// Primary returns the worker owning the first position at or after the
// key's hash, wrapping to the smallest position. ok is false on an empty ring.
func (ch *ConsistentHasher) Primary(key string) (workerID string, ok bool) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.ring) == 0 {
		return "", false
	}
	return ch.ring[ch.search(Hash(key))].WorkerID, true
}

// Replicas walks the ring clockwise from the key's hash and returns up to n
// distinct workers in the order they are first encountered.
func (ch *ConsistentHasher) Replicas(key string, n int) []string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.ring) == 0 || n <= 0 {
		return nil
	}

	if n > len(ch.workers) {
		n = len(ch.workers)
	}

	idx := ch.search(Hash(key))
	replicas := make([]string, 0, n)
	seen := make(map[string]bool, n)

	for i := 0; i < len(ch.ring) && len(replicas) < n; i++ {
		workerID := ch.ring[(idx+i)%len(ch.ring)].WorkerID
		if !seen[workerID] {
			replicas = append(replicas, workerID)
			seen[workerID] = true
		}
	}

	return replicas
}

// search returns the index of the first position >= hash, wrapping to 0.
// Caller must hold the lock.
func (ch *ConsistentHasher) search(hash int64) int {
	idx := sort.Search(len(ch.ring), func(i int) bool {
		return ch.ring[i].Hash >= hash
	})
	if idx >= len(ch.ring) {
		idx = 0
	}
	return idx
}

// Contains reports whether the worker is on the ring
func (ch *ConsistentHasher) Contains(workerID string) bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	_, ok := ch.workers[workerID]
	return ok
}

// Positions returns a copy of the ring in ascending order
func (ch *ConsistentHasher) Positions() []model.VirtualNode {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	out := make([]model.VirtualNode, len(ch.ring))
	copy(out, ch.ring)
	return out
}

// WorkerCount returns the number of workers on the ring
func (ch *ConsistentHasher) WorkerCount() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.workers)
}

// Hash computes SHA-256 of s and reads the first 8 bytes as a big-endian
// signed integer.
func Hash(s string) int64 {
	sum := sha256.Sum256([]byte(s))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
