// Package client implements the DAP client state machine: the
// initialization handshake, normal-operation request catalog, and the
// shutdown sequence, on top of the protocol and message packages. It is
// sans-I/O: Client owns an inbound and an outbound byte buffer and nothing
// else that touches the outside world. A host drives it by alternating
// Recv(bytes) and Send() calls.
//
// A Client is not safe for concurrent use: its pending table is a plain
// map, so a host that calls it from more than one goroutine must serialize
// every call itself.
package client

import (
	"encoding/json"
	"iter"

	"dapcore/message"
	"dapcore/protocol"

	"github.com/roadrunner-server/errors"
)

// Seq is an outbound or inbound sequence number. DAP mandates the first
// message carry seq = 1; this engine follows that rather than the quirk
// of seq starting at 0 seen in some client implementations (see DESIGN.md).
type Seq int64

// Config carries the construction-time inputs to NewClient. Use
// DefaultConfig as a starting point: LinesStartAt1 and ColumnsStartAt1
// default to true and PathFormat to "path", and a zero-value Config would
// silently disable them.
type Config struct {
	ClientID   string
	ClientName string
	AdapterID  string
	Locale     string

	LinesStartAt1   bool
	ColumnsStartAt1 bool
	PathFormat      string

	SupportsVariableType          bool
	SupportsVariablePaging        bool
	SupportsRunInTerminalRequest  bool
	SupportsMemoryReferences      bool
	SupportsProgressReporting     bool
	SupportsInvalidatedEvent      bool
	SupportsMemoryEvent           bool
}

// DefaultConfig returns a Config with DAP's usual defaults: lines/columns
// start at 1, path format is "path", and every optional capability flag is
// false.
func DefaultConfig() Config {
	return Config{
		LinesStartAt1:   true,
		ColumnsStartAt1: true,
		PathFormat:      "path",
	}
}

type initializeArguments struct {
	ClientID                     string `json:"clientID,omitempty"`
	ClientName                   string `json:"clientName,omitempty"`
	AdapterID                    string `json:"adapterID,omitempty"`
	Locale                       string `json:"locale,omitempty"`
	LinesStartAt1                bool   `json:"linesStartAt1"`
	ColumnsStartAt1              bool   `json:"columnsStartAt1"`
	PathFormat                   string `json:"pathFormat,omitempty"`
	SupportsVariableType         bool   `json:"supportsVariableType,omitempty"`
	SupportsVariablePaging       bool   `json:"supportsVariablePaging,omitempty"`
	SupportsRunInTerminalRequest bool   `json:"supportsRunInTerminalRequest,omitempty"`
	SupportsMemoryReferences     bool   `json:"supportsMemoryReferences,omitempty"`
	SupportsProgressReporting    bool   `json:"supportsProgressReporting,omitempty"`
	SupportsInvalidatedEvent     bool   `json:"supportsInvalidatedEvent,omitempty"`
	SupportsMemoryEvent          bool   `json:"supportsMemoryEvent,omitempty"`
}

// Client is the sans-I/O DAP client engine. Zero value is not usable; build
// one with NewClient.
type Client struct {
	state State
	seq   Seq

	inbound  []byte
	outbound []byte

	pending *pendingTable

	clientCapabilities  json.RawMessage
	adapterCapabilities json.RawMessage
}

// NewClient constructs a Client and immediately enqueues the initialize
// request, moving it to WaitingForInitialized. Call Send to drain the
// initialize request onto the wire.
func NewClient(cfg Config) *Client {
	c := &Client{
		state:   NotInitialized,
		pending: newPendingTable(),
	}

	args := initializeArguments{
		ClientID:                     cfg.ClientID,
		ClientName:                   cfg.ClientName,
		AdapterID:                    cfg.AdapterID,
		Locale:                       cfg.Locale,
		LinesStartAt1:                cfg.LinesStartAt1,
		ColumnsStartAt1:              cfg.ColumnsStartAt1,
		PathFormat:                   cfg.PathFormat,
		SupportsVariableType:         cfg.SupportsVariableType,
		SupportsVariablePaging:       cfg.SupportsVariablePaging,
		SupportsRunInTerminalRequest: cfg.SupportsRunInTerminalRequest,
		SupportsMemoryReferences:     cfg.SupportsMemoryReferences,
		SupportsProgressReporting:    cfg.SupportsProgressReporting,
		SupportsInvalidatedEvent:     cfg.SupportsInvalidatedEvent,
		SupportsMemoryEvent:          cfg.SupportsMemoryEvent,
	}
	c.clientCapabilities, _ = json.Marshal(args)

	// Bypasses the public guard: NotInitialized is only ever valid for this
	// one call, made once, from inside the constructor.
	c.enqueueRequest(string(message.CommandInitialize), c.clientCapabilities)
	c.state = WaitingForInitialized

	return c
}

// State returns the client's current position in the session lifecycle.
func (c *Client) State() State { return c.state }

// Capabilities returns the client capabilities shipped with the initialize
// request, verbatim, as JSON.
func (c *Client) Capabilities() json.RawMessage { return c.clientCapabilities }

// AdapterCapabilities returns the body of the initialize response, verbatim,
// as JSON. It is nil until the initialize response has been received.
func (c *Client) AdapterCapabilities() json.RawMessage { return c.adapterCapabilities }

// Pending reports whether seq is still an outstanding request, and if so,
// the command it was issued for.
func (c *Client) Pending(seq Seq) (command string, ok bool) {
	e, ok := c.pending.peek(seq)
	return e.Command, ok
}

// PendingCount returns the number of outstanding requests.
func (c *Client) PendingCount() int { return c.pending.len() }

// PendingSeqs returns the seq of every outstanding request, in no
// particular order. Useful for a host shutting down to log or cancel
// whatever never got a response.
func (c *Client) PendingSeqs() []Seq { return c.pending.seqs() }

// Send drains the outbound buffer. A subsequent call with no intervening
// operation returns an empty slice.
func (c *Client) Send() []byte {
	out := c.outbound
	c.outbound = nil
	return out
}

// enqueueRequest allocates the next seq, records the pending entry, and
// appends the framed request to the outbound buffer. It performs no state
// guard — callers are responsible for calling guard first.
func (c *Client) enqueueRequest(command string, arguments json.RawMessage) Seq {
	c.seq++
	seq := c.seq
	env := message.NewRequest(int64(seq), command, arguments)
	c.appendEnvelope(env)
	c.pending.insert(seq, command, c.state)
	return seq
}

func (c *Client) appendEnvelope(env message.Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		// Envelope's fields are all controlled internally; a marshal
		// failure here would mean a programming error, not a runtime
		// condition callers can act on.
		panic("dapcore/client: failed to marshal outbound envelope: " + err.Error())
	}
	c.outbound = append(c.outbound, protocol.EncodeFrame(body)...)
}

// guard enforces the operation guards: every request-issuing operation
// other than cancel requires Normal; cancel is permitted in any
// non-terminal state.
func (c *Client) guard(op errors.Op, command string) error {
	if message.Command(command) == message.CommandCancel {
		if c.state.terminal() {
			return invalidStateError(op, command, c.state)
		}
		return nil
	}
	if c.state != Normal {
		return invalidStateError(op, command, c.state)
	}
	return nil
}

// issueRequest is the shared path for every public request-issuing
// operation: it guards, marshals arguments, and enqueues. On a guard
// failure no seq is consumed and no bytes are emitted.
func (c *Client) issueRequest(op errors.Op, command string, arguments any) (Seq, error) {
	if err := c.guard(op, command); err != nil {
		return 0, err
	}
	var raw json.RawMessage
	if arguments != nil {
		marshalled, err := json.Marshal(arguments)
		if err != nil {
			return 0, newError(op, KindDecode, "failed to marshal arguments: "+err.Error())
		}
		raw = marshalled
	}
	return c.enqueueRequest(command, raw), nil
}

// Recv feeds inbound bytes and returns a lazy, single-pass sequence of
// logical events completed by this call. The sequence must be consumed at
// most once; ranging over it twice returns no events the second time (the
// buffer has already been advanced).
//
// Recv reports no errors. A frame whose Content-Length header is missing or
// malformed clears the whole inbound buffer and ends the sequence; a frame
// whose body cannot be decoded is dropped and parsing continues after it.
// Neither case yields an event or returns a KindFrame/KindDecode error.
func (c *Client) Recv(data []byte) iter.Seq[LogicalEvent] {
	c.inbound = append(c.inbound, data...)

	return func(yield func(LogicalEvent) bool) {
		for {
			hdr, body, consumed, err := protocol.DecodeFrame(c.inbound)
			if err != nil {
				// FrameError: the frame boundary itself could not be
				// established, so nothing in the buffer can be trusted.
				// Discard it all and stop; the next Recv call starts clean.
				c.inbound = c.inbound[:0]
				return
			}
			if consumed == 0 {
				return // not enough bytes yet
			}

			text, decErr := protocol.DecodeBody(body, hdr.Encoding)
			var envelopes []message.Envelope
			if decErr == nil {
				envelopes, decErr = message.ParseBody([]byte(text))
			}

			// The frame's exact boundary is known regardless of whether its
			// body decoded successfully, so we can always advance past it —
			// a DecodeError only drops this one frame, not the whole buffer.
			c.inbound = c.inbound[consumed:]

			if decErr != nil {
				continue
			}

			for _, env := range envelopes {
				levt, ok := c.handleEnvelope(env)
				if !ok {
					continue
				}
				if !yield(levt) {
					return
				}
			}
		}
	}
}

// handleEnvelope advances the state machine for one decoded inbound
// message and produces the LogicalEvent to surface, if any, per the
// lifecycle transition table and response-correlation rules.
func (c *Client) handleEnvelope(env message.Envelope) (LogicalEvent, bool) {
	switch env.Type {
	case message.TypeEvent:
		return c.handleAdapterEvent(env)
	case message.TypeRequest:
		return LogicalEvent{
			Kind:      AdapterRequest,
			Seq:       Seq(env.Seq),
			Command:   env.Command,
			Arguments: env.Arguments,
		}, true
	case message.TypeResponse:
		return c.handleResponse(env)
	default:
		return LogicalEvent{}, false
	}
}

func (c *Client) handleAdapterEvent(env message.Envelope) (LogicalEvent, bool) {
	switch env.Event {
	case string(message.EventExited):
		c.state = Exited
	case string(message.EventTerminated):
		c.state = Shutdown
	}
	return LogicalEvent{
		Kind:  AdapterEvent,
		Seq:   Seq(env.Seq),
		Event: env.Event,
		Body:  env.Body,
	}, true
}

func (c *Client) handleResponse(env message.Envelope) (LogicalEvent, bool) {
	requestSeq := Seq(env.RequestSeq)
	entry, wasPending := c.pending.takeFor(requestSeq)

	command := env.Command
	if wasPending {
		command = entry.Command
	}

	if wasPending && command == string(message.CommandInitialize) {
		if env.Success {
			c.adapterCapabilities = env.Body
			c.state = Normal
			return LogicalEvent{
				Kind:  Lifecycle,
				Seq:   Seq(env.Seq),
				Event: string(message.EventInitialized),
				Body:  env.Body,
			}, true
		}
		c.state = Exited
		return c.responseDeliveryEvent(env, command, requestSeq, !wasPending), true
	}

	if wasPending && command == string(message.CommandDisconnect) {
		c.state = Shutdown
		return LogicalEvent{
			Kind:  Lifecycle,
			Seq:   Seq(env.Seq),
			Event: string(message.EventTerminated),
			Body:  env.Body,
		}, true
	}

	return c.responseDeliveryEvent(env, command, requestSeq, !wasPending), true
}

func (c *Client) responseDeliveryEvent(env message.Envelope, command string, requestSeq Seq, unsolicited bool) LogicalEvent {
	return LogicalEvent{
		Kind:            ResponseDelivery,
		Seq:             Seq(env.Seq),
		RequestSeq:      requestSeq,
		ResponseCommand: command,
		Success:         env.Success,
		Message:         env.Message,
		Body:            env.Body,
		Unsolicited:     unsolicited,
	}
}
