// etcd_registry.go implements Registry on top of etcd v3, used as a
// distributed phonebook of adapter instances:
//
//	Key:   /dapcore/{AdapterID}/{Addr-or-Command}
//	Value: JSON-encoded AdapterInstance
//
// Registration uses TTL-based leases: if a host crashes, its lease expires
// and the entry disappears on its own.
package registry

import (
	"context"
	"encoding/json"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const etcdKeyPrefix = "/dapcore/"

// EtcdRegistry implements Registry using etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client
}

// NewEtcdRegistry connects to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{Endpoints: endpoints})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

func instanceKey(adapterID string, instance AdapterInstance) string {
	id := instance.Addr
	if id == "" {
		id = instance.Command
	}
	return etcdKeyPrefix + adapterID + "/" + id
}

// Register stores instance under a TTL lease and starts background
// KeepAlive renewal. leaseID is kept local, never stored on the struct, so
// concurrent Register calls sharing one EtcdRegistry never race.
func (r *EtcdRegistry) Register(adapterID string, instance AdapterInstance, ttl int64) error {
	ctx := context.TODO()

	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}

	val, err := json.Marshal(instance)
	if err != nil {
		return err
	}

	key := instanceKey(adapterID, instance)
	if _, err := r.client.Put(ctx, key, string(val), clientv3.WithLease(lease.ID)); err != nil {
		return err
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
		}
	}()
	return nil
}

// Deregister removes an instance from etcd by address.
func (r *EtcdRegistry) Deregister(adapterID string, addr string) error {
	ctx := context.TODO()
	_, err := r.client.Delete(ctx, etcdKeyPrefix+adapterID+"/"+addr)
	return err
}

// Watch monitors an adapter ID's key prefix, emitting the full instance
// list whenever anything under it changes.
func (r *EtcdRegistry) Watch(adapterID string) <-chan []AdapterInstance {
	ctx := context.TODO()
	ch := make(chan []AdapterInstance, 1)
	prefix := etcdKeyPrefix + adapterID + "/"

	go func() {
		watchChan := r.client.Watch(ctx, prefix, clientv3.WithPrefix())
		for range watchChan {
			instances, _ := r.Discover(adapterID)
			ch <- instances
		}
	}()

	return ch
}

// Discover returns every instance registered for adapterID.
func (r *EtcdRegistry) Discover(adapterID string) ([]AdapterInstance, error) {
	ctx := context.TODO()
	prefix := etcdKeyPrefix + adapterID + "/"

	resp, err := r.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	instances := make([]AdapterInstance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var instance AdapterInstance
		if err := json.Unmarshal(kv.Value, &instance); err != nil {
			continue
		}
		instances = append(instances, instance)
	}
	return instances, nil
}
