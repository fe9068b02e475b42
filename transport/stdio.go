// Package transport hosts the sans-I/O client engine (dapcore/client)
// against real I/O: a spawned adapter subprocess over stdio, or a
// registry-discovered, load-balanced pool of TCP connections to
// server-mode adapters. Everything here owns goroutines and logging; the
// core engine it drives stays pure and, by itself, is not safe for
// concurrent use. Both transports in this package act as the single owner
// the core requires: every read of the adapter's bytes and every
// host-issued mutation of the client passes through the same mutex, so a
// host goroutine and the transport's background reader never touch the
// client at the same time.
package transport

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"slices"
	"sync"

	"dapcore/client"

	"github.com/roadrunner-server/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// StdioTransport spawns a DAP adapter as a subprocess and pumps bytes
// between its stdin/stdout and a *client.Client. One background goroutine
// (readLoop) continuously reads from the adapter's stdout and feeds bytes
// into the client; Do and Flush, called by the host, are the only other
// ways the client is touched. All three take mu, so the client never sees
// concurrent access.
type StdioTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	logger *zap.Logger

	client *client.Client
	mu     sync.Mutex // guards every access to client, host and readLoop alike

	writeMu sync.Mutex

	events chan client.LogicalEvent
	done   chan struct{}
	errMu  sync.Mutex
	err    error
}

// NewStdioTransport starts name with args as a subprocess, wiring its
// stdin/stdout for framed DAP traffic, and takes ownership of c: after
// this call, a host must not touch c directly — only through Do and Flush.
// The caller is responsible for eventually calling Close.
func NewStdioTransport(ctx context.Context, c *client.Client, logger *zap.Logger, name string, args ...string) (*StdioTransport, error) {
	const op = errors.Op("transport.NewStdioTransport")

	cmd := exec.CommandContext(ctx, name, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.E(op, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.E(op, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.E(op, err)
	}

	t := &StdioTransport{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		logger: logger,
		client: c,
		events: make(chan client.LogicalEvent, 64),
		done:   make(chan struct{}),
	}

	if err := t.Flush(); err != nil {
		return nil, errors.E(op, err)
	}

	go t.readLoop()
	return t, nil
}

// Do runs fn with exclusive access to the client, serializing it against
// readLoop's decoding of adapter bytes. Every host-issued operation on the
// client — Launch, ConfigurationDone, Disconnect, whatever — must go
// through Do rather than holding a *client.Client reference of its own.
func (t *StdioTransport) Do(fn func(c *client.Client)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.client)
}

// Flush writes whatever the client has queued in its outbound buffer to
// the adapter's stdin. Call it after any Do that might have produced
// outbound bytes.
func (t *StdioTransport) Flush() error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	out := t.client.Send()
	t.mu.Unlock()

	if len(out) == 0 {
		return nil
	}
	_, err := t.stdin.Write(out)
	return err
}

// Events returns the channel of LogicalEvent values produced as the
// adapter's stdout is decoded. It is closed when the subprocess's stdout
// reaches EOF or an unrecoverable read error occurs; call Err afterward to
// distinguish the two.
func (t *StdioTransport) Events() <-chan client.LogicalEvent { return t.events }

// Err returns the error that ended readLoop, if any.
func (t *StdioTransport) Err() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.err
}

func (t *StdioTransport) readLoop() {
	defer close(t.events)
	reader := bufio.NewReaderSize(t.stdout, 4096)
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			t.mu.Lock()
			levts := slices.Collect(t.client.Recv(buf[:n]))
			t.mu.Unlock()

			for _, levt := range levts {
				select {
				case t.events <- levt:
				case <-t.done:
					return
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				t.logger.Warn("adapter stdout read failed", zap.Error(err))
				t.errMu.Lock()
				t.err = err
				t.errMu.Unlock()
			}
			return
		}
	}
}

// Close stops the read loop and terminates the adapter subprocess,
// returning every error encountered along the way combined into one.
func (t *StdioTransport) Close() error {
	close(t.done)
	var err error
	err = multierr.Append(err, t.stdin.Close())
	err = multierr.Append(err, t.stdout.Close())
	if t.cmd.Process != nil {
		err = multierr.Append(err, t.cmd.Process.Kill())
	}
	err = multierr.Append(err, t.cmd.Wait())
	return err
}
