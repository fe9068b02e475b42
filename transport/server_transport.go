package transport

import (
	"context"
	"io"
	"net"
	"slices"
	"sync"

	"dapcore/client"
	"dapcore/loadbalance"
	"dapcore/middleware"
	"dapcore/registry"

	"github.com/roadrunner-server/errors"
	"go.uber.org/zap"
)

// ErrClosed is returned by Call when the transport is closed while a
// request is still outstanding.
var ErrClosed = errors.Str("transport: server transport closed")

// ServerTransport drives a *client.Client against a server-mode adapter:
// one discovered through a registry.Registry, chosen with a
// loadbalance.Balancer, and reached over a connection borrowed from a
// ConnPool. It owns the client exactly like StdioTransport does — one
// background goroutine (readLoop) owns every read from the connection, and
// readLoop, Do and Flush all touch the client only while holding mu — but
// additionally demultiplexes responses
// to their issuing caller by seq, a pending-map/recvLoop shape, since Call
// (unlike StdioTransport's Events-channel model) is a synchronous
// request/response primitive meant to sit under a middleware.Chain.
type ServerTransport struct {
	pool *ConnPool
	conn *PoolConn

	logger *zap.Logger

	client *client.Client
	mu     sync.Mutex // guards every access to client, host and readLoop alike

	writeMu sync.Mutex

	waiters sync.Map // map[client.Seq]chan client.LogicalEvent

	out   chan client.LogicalEvent // adapter events, reverse requests, lifecycle transitions
	done  chan struct{}
	errMu sync.Mutex
	err   error
}

// NewServerTransport discovers the instances registered under adapterID in
// reg, picks one with bal, and dials it through a ConnPool of the given
// size. Like NewStdioTransport, it takes ownership of c.
func NewServerTransport(c *client.Client, logger *zap.Logger, reg registry.Registry, bal loadbalance.Balancer, adapterID string, poolSize int) (*ServerTransport, error) {
	const op = errors.Op("transport.NewServerTransport")

	instances, err := reg.Discover(adapterID)
	if err != nil {
		return nil, errors.E(op, err)
	}
	instance, err := bal.Pick(instances)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if instance.Addr == "" {
		return nil, errors.E(op, errors.Str("picked instance for "+adapterID+" has no server address: "+instance.Command))
	}

	addr := instance.Addr
	pool := NewConnPool(addr, poolSize, func() (net.Conn, error) {
		return net.Dial("tcp", addr)
	})

	conn, err := pool.Get()
	if err != nil {
		pool.Close()
		return nil, errors.E(op, err)
	}

	t := &ServerTransport{
		pool:   pool,
		conn:   conn,
		logger: logger,
		client: c,
		out:    make(chan client.LogicalEvent, 64),
		done:   make(chan struct{}),
	}

	if err := t.Flush(); err != nil {
		pool.Put(conn)
		pool.Close()
		return nil, errors.E(op, err)
	}

	go t.readLoop()
	return t, nil
}

// Do runs fn with exclusive access to the client, serializing it against
// readLoop's decoding of adapter bytes.
func (t *ServerTransport) Do(fn func(c *client.Client)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.client)
}

// Flush writes whatever the client has queued in its outbound buffer to
// the adapter connection.
func (t *ServerTransport) Flush() error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	out := t.client.Send()
	t.mu.Unlock()

	if len(out) == 0 {
		return nil
	}
	if _, err := t.conn.Write(out); err != nil {
		t.conn.MarkUnusable()
		return err
	}
	return nil
}

// Call issues req.Command with req.Arguments, flushes it to the adapter,
// and blocks until the matching response arrives on the connection (or ctx
// is done). It is the CallFunc a middleware.Chain wraps — the only blocking
// request/response primitive this sans-I/O client gets, built the same
// Send-then-wait-on-a-per-seq-channel way any RPC client correlates a
// request with its eventual response.
func (t *ServerTransport) Call(ctx context.Context, req middleware.Request) (client.LogicalEvent, error) {
	var seq client.Seq
	var issueErr error
	t.Do(func(c *client.Client) {
		seq, issueErr = c.IssueCommand(req.Command, req.Arguments)
	})
	if issueErr != nil {
		return client.LogicalEvent{}, issueErr
	}

	wait := make(chan client.LogicalEvent, 1)
	t.waiters.Store(seq, wait)

	if err := t.Flush(); err != nil {
		t.waiters.Delete(seq)
		return client.LogicalEvent{}, err
	}

	select {
	case levt := <-wait:
		return levt, nil
	case <-ctx.Done():
		return client.LogicalEvent{}, ctx.Err()
	case <-t.done:
		return client.LogicalEvent{}, ErrClosed
	}
}

// Unsolicited returns the channel of LogicalEvent values that Call did not
// consume: adapter events, reverse requests, and the synthetic lifecycle
// transitions (including the "initialized" event answering the initialize
// request issued by NewClient before any Call was made to wait for it).
func (t *ServerTransport) Unsolicited() <-chan client.LogicalEvent { return t.out }

// Err returns the error that ended readLoop, if any.
func (t *ServerTransport) Err() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.err
}

func (t *ServerTransport) readLoop() {
	defer close(t.out)
	buf := make([]byte, 4096)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			t.mu.Lock()
			levts := slices.Collect(t.client.Recv(buf[:n]))
			t.mu.Unlock()

			for _, levt := range levts {
				t.dispatch(levt)
			}
		}
		if err != nil {
			if err != io.EOF {
				t.logger.Warn("server adapter read failed", zap.Error(err))
				t.errMu.Lock()
				t.err = err
				t.errMu.Unlock()
			}
			t.conn.MarkUnusable()
			t.failWaiters(err)
			return
		}
	}
}

// dispatch routes a ResponseDelivery event to the Call that is waiting on
// its RequestSeq, if any; everything else (and any ResponseDelivery no Call
// is waiting on — an unsolicited response) goes to out.
func (t *ServerTransport) dispatch(levt client.LogicalEvent) {
	if levt.Kind == client.ResponseDelivery {
		if w, ok := t.waiters.LoadAndDelete(levt.RequestSeq); ok {
			w.(chan client.LogicalEvent) <- levt
			return
		}
	}
	select {
	case t.out <- levt:
	case <-t.done:
	}
}

func (t *ServerTransport) failWaiters(err error) {
	t.waiters.Range(func(key, value any) bool {
		value.(chan client.LogicalEvent) <- client.LogicalEvent{Message: err.Error()}
		t.waiters.Delete(key)
		return true
	})
}

// Close stops the read loop and tears down the pool, discarding the
// connection readLoop was using rather than recycling it — a closed
// transport's connection is not fit to hand to the next caller.
func (t *ServerTransport) Close() error {
	close(t.done)
	t.conn.MarkUnusable()
	t.pool.Put(t.conn)
	return t.pool.Close()
}
