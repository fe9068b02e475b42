package transport

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"dapcore/client"
	"dapcore/fakeadapter"
	"dapcore/message"
)

func TestConnPoolRoundTripWithClient(t *testing.T) {
	srv := fakeadapter.NewServer(fakeadapter.Script{
		"initialize": {Success: true, Body: json.RawMessage(`{"supportsConfigurationDoneRequest":true}`)},
	})
	go srv.Serve("tcp", "127.0.0.1:0")
	time.Sleep(50 * time.Millisecond)
	defer srv.Shutdown()

	addr := srv.Addr()
	if addr == nil {
		t.Fatal("fake adapter did not start listening in time")
	}

	pool := NewConnPool(addr.String(), 2, func() (net.Conn, error) {
		return net.Dial("tcp", addr.String())
	})
	defer pool.Close()

	pconn, err := pool.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer pool.Put(pconn)

	c := client.NewClient(client.DefaultConfig())
	if _, err := pconn.Write(c.Send()); err != nil {
		t.Fatalf("write initialize request: %v", err)
	}

	buf := make([]byte, 4096)
	n, err := pconn.Read(buf)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	var got []client.LogicalEvent
	for levt := range c.Recv(buf[:n]) {
		got = append(got, levt)
	}
	if len(got) != 1 || got[0].Kind != client.Lifecycle || got[0].Event != string(message.EventInitialized) {
		t.Fatalf("expected synthetic initialized event, got %+v", got)
	}
	if c.State() != client.Normal {
		t.Fatalf("expected Normal state, got %s", c.State())
	}
}

func TestConnPoolExhaustion(t *testing.T) {
	calls := 0
	pool := NewConnPool("mock", 1, func() (net.Conn, error) {
		calls++
		c1, c2 := net.Pipe()
		go drainConn(c2)
		return c1, nil
	})

	first, err := pool.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	done := make(chan struct{})
	go func() {
		second, err := pool.Get()
		if err != nil {
			t.Errorf("blocked Get: %v", err)
			return
		}
		pool.Put(second)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("second Get should have blocked while pool was exhausted")
	default:
	}

	pool.Put(first)
	<-done

	if calls != 1 {
		t.Fatalf("expected exactly one connection to be created, got %d", calls)
	}
}

func drainConn(c net.Conn) {
	buf := make([]byte, 4096)
	for {
		if _, err := c.Read(buf); err != nil {
			return
		}
	}
}
