package loadbalance

import (
	"sync/atomic"

	"dapcore/registry"

	"github.com/roadrunner-server/errors"
)

// RoundRobinBalancer distributes sessions evenly across all instances in
// order, using an atomic counter for lock-free selection.
type RoundRobinBalancer struct {
	counter int64
}

func (b *RoundRobinBalancer) Pick(instances []registry.AdapterInstance) (*registry.AdapterInstance, error) {
	if len(instances) == 0 {
		return nil, errors.E(errors.Op("loadbalance.RoundRobinBalancer.Pick"), errors.Str("no instances available"))
	}
	index := atomic.AddInt64(&b.counter, 1) % int64(len(instances))
	return &instances[index], nil
}

func (b *RoundRobinBalancer) Name() string { return "RoundRobin" }
