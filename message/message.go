// Package message defines the DAP protocol message envelope: the tagged
// request/response/event union exchanged between client and debug adapter,
// plus a few structured argument/body helpers the wire format leaves
// semi-structured.
//
// Every message is a JSON object discriminated by "type". Envelope is a
// single Go struct covering all three cases rather than three separate
// types, because a generic client only ever needs to look at a handful of
// fields to route and correlate a message — the rest of the payload
// (arguments/body) is opaque JSON the caller decodes into whatever shape
// it expects for a given command or event.
package message

import (
	"encoding/json"

	"github.com/roadrunner-server/errors"
)

// Type discriminates the three DAP message kinds.
type Type string

const (
	TypeRequest  Type = "request"
	TypeResponse Type = "response"
	TypeEvent    Type = "event"
)

// Reserved Response.Message tokens.
const (
	MessageCancelled  = "cancelled"
	MessageNotStopped = "notStopped"
)

// Envelope is the wire shape of every DAP protocol message. Only the
// fields relevant to the message's Type are populated; the rest are left
// at their zero value and omitted on encode.
type Envelope struct {
	Seq  int64
	Type Type

	// Request fields
	Command   string
	Arguments json.RawMessage

	// Response fields
	RequestSeq int64
	Success    bool
	Message    string // reserved values: MessageCancelled, MessageNotStopped
	Body       json.RawMessage

	// Event fields
	Event string
	// Body is shared between Response and Event.
}

// wireEnvelope is the literal JSON shape, used only inside MarshalJSON /
// UnmarshalJSON so that Envelope's Go-facing field names (RequestSeq,
// etc.) can differ from the wire's snake_case without a struct tag per
// field duplicating the logic below.
type wireEnvelope struct {
	Seq        int64           `json:"seq"`
	Type       Type            `json:"type"`
	Command    string          `json:"command,omitempty"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	RequestSeq int64           `json:"request_seq,omitempty"`
	// Success is a pointer so a Response with Success == false still emits
	// "success":false on encode; omitempty on a plain bool would drop the
	// field entirely for every error response. Request and Event messages
	// leave it nil, which omitempty does drop — they have no success field.
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
	Event   string          `json:"event,omitempty"`
}

// MarshalJSON emits only the fields relevant to e.Type, omitting optional
// fields that are unset for that type.
func (e Envelope) MarshalJSON() ([]byte, error) {
	w := wireEnvelope{Seq: e.Seq, Type: e.Type}
	switch e.Type {
	case TypeRequest:
		w.Command = e.Command
		w.Arguments = e.Arguments
	case TypeResponse:
		w.RequestSeq = e.RequestSeq
		w.Command = e.Command
		success := e.Success
		w.Success = &success
		w.Message = e.Message
		w.Body = e.Body
	case TypeEvent:
		w.Event = e.Event
		w.Body = e.Body
	}
	return json.Marshal(w)
}

// UnmarshalJSON dispatches on "type" and tolerates extra fields simply by
// virtue of decoding into a struct with named fields.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	const op = errors.Op("message.Envelope.UnmarshalJSON")

	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.E(op, err)
	}

	switch w.Type {
	case TypeRequest, TypeResponse, TypeEvent:
	default:
		return errors.E(op, errors.Str("unknown message type: "+string(w.Type)))
	}

	*e = Envelope{
		Seq:        w.Seq,
		Type:       w.Type,
		Command:    w.Command,
		Arguments:  w.Arguments,
		RequestSeq: w.RequestSeq,
		Success:    w.Success != nil && *w.Success,
		Message:    w.Message,
		Body:       w.Body,
		Event:      w.Event,
	}
	return nil
}

// NewRequest builds a Request envelope. arguments may be nil.
func NewRequest(seq int64, command string, arguments json.RawMessage) Envelope {
	return Envelope{Seq: seq, Type: TypeRequest, Command: command, Arguments: arguments}
}

// NewResponse builds a Response envelope.
func NewResponse(seq, requestSeq int64, command string, success bool, respMessage string, body json.RawMessage) Envelope {
	return Envelope{
		Seq: seq, Type: TypeResponse, RequestSeq: requestSeq, Command: command,
		Success: success, Message: respMessage, Body: body,
	}
}

// NewEvent builds an Event envelope.
func NewEvent(seq int64, event string, body json.RawMessage) Envelope {
	return Envelope{Seq: seq, Type: TypeEvent, Event: event, Body: body}
}

// ParseBody decodes a frame's JSON body into one or more Envelopes. A JSON
// array body is a batch: each element is an independent message, returned
// in array order.
func ParseBody(body []byte) ([]Envelope, error) {
	const op = errors.Op("message.ParseBody")

	trimmed := trimLeadingSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, errors.E(op, err)
		}
		envelopes := make([]Envelope, 0, len(raw))
		for _, r := range raw {
			var e Envelope
			if err := json.Unmarshal(r, &e); err != nil {
				return nil, errors.E(op, err)
			}
			envelopes = append(envelopes, e)
		}
		return envelopes, nil
	}

	var e Envelope
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, errors.E(op, err)
	}
	return []Envelope{e}, nil
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		}
		break
	}
	return b[i:]
}
