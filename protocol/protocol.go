// Package protocol implements the wire framing for the Debug Adapter
// Protocol: a Content-Length-prefixed header followed by a JSON body.
//
// It solves the same sticky-packet problem mini-RPC's fixed 14-byte header
// solves, but DAP's envelope is text, not binary:
//
//	Content-Length: <N>\r\n
//	[<other header>: <value>\r\n]*
//	\r\n
//	<N bytes of body>
//
// DecodeFrame is pure and buffer-peeking rather than io.Reader-blocking: it
// never asks for more bytes than are already available, so the caller (the
// client package) can feed it whatever has arrived so far and get told
// either "here is one frame, and how much of your buffer it consumed" or
// "not enough bytes yet, try again after the next Recv".
package protocol

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/roadrunner-server/errors"
)

// DefaultEncoding is used whenever a frame omits Content-Type, which is the
// common case: the encoder in this package never emits Content-Type at all,
// for maximum compatibility with adapters that only parse Content-Length.
const DefaultEncoding = "utf-8"

const headerTerminator = "\r\n\r\n"

// Header is the parsed metadata that precedes a frame's JSON body.
type Header struct {
	ContentLength int
	Encoding      string // resolved from Content-Type's charset, defaults to utf-8
}

// EncodeFrame wraps body in a Content-Length header. Content-Type is
// deliberately omitted.
func EncodeFrame(body []byte) []byte {
	frame := make([]byte, 0, len(body)+32)
	frame = append(frame, "Content-Length: "...)
	frame = strconv.AppendInt(frame, int64(len(body)), 10)
	frame = append(frame, "\r\n\r\n"...)
	frame = append(frame, body...)
	return frame
}

// DecodeFrame attempts to extract exactly one frame from the front of buf.
//
// Return values:
//   - consumed == 0, err == nil: not enough bytes yet, try again after more
//     are appended. buf is never modified.
//   - consumed > 0, err == nil: a complete frame was found; body is the raw
//     (not yet JSON-decoded) payload and consumed is how many bytes of buf
//     (header + body) it occupied.
//   - err != nil: the header was malformed beyond recovery (missing or
//     non-integer Content-Length). consumed is meaningless in this case;
//     the caller should discard the whole buffer, since the frame boundary
//     itself could not be established.
func DecodeFrame(buf []byte) (hdr Header, body []byte, consumed int, err error) {
	const op = errors.Op("protocol.DecodeFrame")

	idx := bytes.Index(buf, []byte(headerTerminator))
	if idx < 0 {
		return Header{}, nil, 0, nil
	}

	headerBlock := buf[:idx]
	encoding := DefaultEncoding
	contentLength := -1

	for _, line := range bytes.Split(headerBlock, []byte("\r\n")) {
		if len(line) == 0 {
			continue
		}
		name, value, ok := splitHeaderLine(string(line))
		if !ok {
			continue
		}
		switch strings.ToLower(name) {
		case "content-length":
			n, convErr := strconv.Atoi(strings.TrimSpace(value))
			if convErr != nil {
				return Header{}, nil, 0, errors.E(op, errors.Str("invalid Content-Length: "+value))
			}
			contentLength = n
		case "content-type":
			if enc, ok := parseCharset(value); ok {
				encoding = enc
			}
		}
	}

	if contentLength < 0 {
		return Header{}, nil, 0, errors.E(op, errors.Str("missing Content-Length header"))
	}

	bodyStart := idx + len(headerTerminator)
	available := len(buf) - bodyStart
	if available < contentLength {
		// Whole frame not in yet; leave buf untouched.
		return Header{}, nil, 0, nil
	}

	frameBody := buf[bodyStart : bodyStart+contentLength]
	return Header{ContentLength: contentLength, Encoding: encoding}, frameBody, bodyStart + contentLength, nil
}

// splitHeaderLine splits "Name: value" on the first ": " separator, the
// same requirement the DAP header grammar imposes.
func splitHeaderLine(line string) (name, value string, ok bool) {
	i := strings.Index(line, ": ")
	if i < 0 {
		return "", "", false
	}
	return line[:i], line[i+2:], true
}

// parseCharset extracts charset=<enc> out of a Content-Type value such as
// "application/vscode-jsonrpc; charset=utf-8".
func parseCharset(contentType string) (string, bool) {
	parts := strings.Split(contentType, ";")
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(strings.ToLower(p), "charset=") {
			return strings.Trim(p[len("charset="):], `"`), true
		}
	}
	return "", false
}
