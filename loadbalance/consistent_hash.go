package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"

	"dapcore/registry"
)

// ConsistentHashBalancer maps a session key (e.g. a workspace path) to an
// adapter instance using a hash ring, so the same key always resolves to
// the same instance as long as the ring doesn't change — useful for
// reconnect affinity when an adapter keeps per-session state.
//
// Each real instance is placed on the ring at 100 virtual node positions,
// which keeps load roughly uniform even with few instances.
type ConsistentHashBalancer struct {
	replicas int
	ring     []uint32
	nodes    map[uint32]*registry.AdapterInstance
}

// NewConsistentHashBalancer creates an empty hash ring.
func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{
		replicas: 100,
		nodes:    make(map[uint32]*registry.AdapterInstance),
	}
}

// Add places instance onto the ring.
func (b *ConsistentHashBalancer) Add(instance *registry.AdapterInstance) {
	key := instance.Addr
	if key == "" {
		key = instance.Command
	}
	for i := 0; i < b.replicas; i++ {
		vkey := fmt.Sprintf("%s#%d", key, i)
		hash := crc32.ChecksumIEEE([]byte(vkey))
		b.ring = append(b.ring, hash)
		b.nodes[hash] = instance
	}
	sort.Slice(b.ring, func(i, j int) bool { return b.ring[i] < b.ring[j] })
}

// PickKey finds the instance responsible for key. Unlike the other
// balancers, consistent hashing is key-based, not list-based, so it does
// not implement the Balancer interface.
func (b *ConsistentHashBalancer) PickKey(key string) (*registry.AdapterInstance, error) {
	hash := crc32.ChecksumIEEE([]byte(key))

	idx := sort.Search(len(b.ring), func(i int) bool { return b.ring[i] >= hash })
	if idx == len(b.ring) {
		idx = 0
	}

	return b.nodes[b.ring[idx]], nil
}

func (b *ConsistentHashBalancer) Name() string { return "ConsistentHash" }
