// Package loadbalance selects one AdapterInstance from the list a
// registry.Registry discovers, for the common case of several instances
// of the same adapter ID (e.g. a pool of "python" adapter processes).
//
// Three strategies are implemented:
//   - RoundRobin:      equal-capacity adapter instances
//   - WeightedRandom:  heterogeneous instances
//   - ConsistentHash:  session affinity (same debug session always lands
//     on the same adapter instance across reconnects)
package loadbalance

import "dapcore/registry"

// Balancer is the interface for load balancing strategies. A host calls
// Pick before launching or attaching to a session.
type Balancer interface {
	Pick(instances []registry.AdapterInstance) (*registry.AdapterInstance, error)
	Name() string
}
