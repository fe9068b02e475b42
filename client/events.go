package client

import "encoding/json"

// EventKind discriminates the four shapes a LogicalEvent can take in the
// logical event stream surfaced to a host.
type EventKind int

const (
	// AdapterEvent is a decoded adapter-originated Event, passed through
	// unchanged.
	AdapterEvent EventKind = iota
	// AdapterRequest is a decoded adapter-originated Request (rare —
	// reverse requests like runInTerminal), passed through for host
	// handling.
	AdapterRequest
	// Lifecycle is a synthetic event the state machine itself produces:
	// "initialized" after a successful initialize response, "terminated"
	// after any response to a pending disconnect request.
	Lifecycle
	// ResponseDelivery is the generic event for every response that isn't
	// handled specially by the state machine (i.e. every response except a
	// successful initialize response and a disconnect response). A failed
	// initialize response is delivered this way.
	ResponseDelivery
)

// LogicalEvent is the value Client.Recv yields, one per completed inbound
// message (or per state-machine-synthesized lifecycle transition).
type LogicalEvent struct {
	Kind EventKind
	Seq  Seq

	// Populated for AdapterEvent and Lifecycle.
	Event string
	Body  json.RawMessage

	// Populated for AdapterRequest.
	Command   string
	Arguments json.RawMessage

	// Populated for ResponseDelivery, alongside Body (the response's raw
	// body, same field as above).
	RequestSeq      Seq
	ResponseCommand string
	Success         bool
	Message         string
	Unsolicited     bool
}
