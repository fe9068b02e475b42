package loadbalance

import (
	"math/rand"

	"dapcore/registry"

	"github.com/roadrunner-server/errors"
)

// WeightedRandomBalancer selects an instance probabilistically based on
// its Weight: an instance with weight 10 gets roughly 2x the traffic of
// one with weight 5. Best for heterogeneous adapter hosts.
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Pick(instances []registry.AdapterInstance) (*registry.AdapterInstance, error) {
	if len(instances) == 0 {
		return nil, errors.E(errors.Op("loadbalance.WeightedRandomBalancer.Pick"), errors.Str("no instances available"))
	}

	totalWeight := 0
	for _, v := range instances {
		totalWeight += v.Weight
	}
	if totalWeight <= 0 {
		return &instances[rand.Intn(len(instances))], nil
	}

	r := rand.Intn(totalWeight)
	for i := range instances {
		r -= instances[i].Weight
		if r < 0 {
			return &instances[i], nil
		}
	}

	return nil, errors.E(errors.Op("loadbalance.WeightedRandomBalancer.Pick"), errors.Str("unexpected error in weighted random selection"))
}

func (b *WeightedRandomBalancer) Name() string { return "WeightedRandom" }
