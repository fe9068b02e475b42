package registry

import (
	"testing"
	"time"
)

// These tests require a live etcd at localhost:2379; they mirror the
// adapter-registration flow a host would use against a real cluster.
func TestRegisterAndDiscover(t *testing.T) {
	if testing.Short() {
		t.Skip("requires a live etcd instance")
	}

	reg, err := NewEtcdRegistry([]string{"localhost:2379"})
	if err != nil {
		t.Fatal(err)
	}

	inst1 := AdapterInstance{AdapterID: "python", Addr: "127.0.0.1:8001", Weight: 10}
	inst2 := AdapterInstance{AdapterID: "python", Addr: "127.0.0.1:8002", Weight: 5}

	if err := reg.Register("python", inst1, 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("python", inst2, 10); err != nil {
		t.Fatal(err)
	}

	instances, err := reg.Discover("python")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 2 {
		t.Fatalf("expect 2 instances, got %d", len(instances))
	}

	if err := reg.Deregister("python", inst1.Addr); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)

	instances, err = reg.Discover("python")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 {
		t.Fatalf("expect 1 instance after deregister, got %d", len(instances))
	}
	if instances[0].Addr != inst2.Addr {
		t.Fatalf("expect %s, got %s", inst2.Addr, instances[0].Addr)
	}

	reg.Deregister("python", inst2.Addr)
}
