// Pool.go provides a borrow/return TCP connection pool, used when a DAP
// adapter runs in server mode (listening on a TCP port) rather than being
// spawned as a subprocess over stdio. Each connection is used exclusively
// by one session at a time.
package transport

import (
	"net"
	"sync"

	"github.com/roadrunner-server/errors"
)

// ConnPool manages a pool of reusable TCP connections to a single
// server-mode adapter address.
type ConnPool struct {
	mu       sync.Mutex
	conns    chan *PoolConn
	addr     string
	maxConns int
	curConns int
	factory  func() (net.Conn, error)
}

// PoolConn wraps a net.Conn with pool metadata.
type PoolConn struct {
	net.Conn
	pool     *ConnPool
	unusable bool
}

// NewConnPool creates a connection pool with the given max size.
// Connections are created lazily.
func NewConnPool(addr string, maxConns int, factory func() (net.Conn, error)) *ConnPool {
	return &ConnPool{
		conns:    make(chan *PoolConn, maxConns),
		addr:     addr,
		maxConns: maxConns,
		factory:  factory,
	}
}

// Get retrieves a connection from the pool, creating one if under the
// limit, or blocking until one is returned if at capacity.
func (p *ConnPool) Get() (*PoolConn, error) {
	select {
	case conn := <-p.conns:
		if conn.unusable {
			return p.createNew()
		}
		return conn, nil
	default:
		p.mu.Lock()
		underLimit := p.curConns < p.maxConns
		p.mu.Unlock()
		if underLimit {
			return p.createNew()
		}
		conn := <-p.conns
		return conn, nil
	}
}

// Put returns a connection to the pool, or discards it if marked unusable.
func (p *ConnPool) Put(conn *PoolConn) {
	if conn.unusable {
		conn.Close()
		p.mu.Lock()
		p.curConns--
		p.mu.Unlock()
		return
	}
	p.conns <- conn
}

// MarkUnusable flags conn so the next Put discards rather than recycles
// it, used after an I/O error on the connection.
func (c *PoolConn) MarkUnusable() { c.unusable = true }

// Close shuts down the pool and every connection it holds.
func (p *ConnPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	close(p.conns)
	for conn := range p.conns {
		conn.Close()
		p.curConns--
	}
	return nil
}

func (p *ConnPool) createNew() (*PoolConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.curConns >= p.maxConns {
		return nil, errors.E(errors.Op("transport.ConnPool.createNew"), errors.Str("connection pool exhausted: "+p.addr))
	}

	netConn, err := p.factory()
	if err != nil {
		return nil, err
	}

	p.curConns++
	return &PoolConn{Conn: netConn, pool: p}, nil
}
