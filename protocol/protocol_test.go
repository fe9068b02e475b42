package protocol

import (
	"bytes"
	"strconv"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	body := []byte(`{"type":"event","seq":2,"event":"output"}`)
	frame := EncodeFrame(body)

	hdr, decoded, consumed, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if consumed != len(frame) {
		t.Errorf("consumed mismatch: got %d, want %d", consumed, len(frame))
	}
	if hdr.ContentLength != len(body) {
		t.Errorf("ContentLength mismatch: got %d, want %d", hdr.ContentLength, len(body))
	}
	if !bytes.Equal(decoded, body) {
		t.Errorf("body mismatch: got %s, want %s", decoded, body)
	}
}

func TestDecodeFrameNeedsMoreBytes(t *testing.T) {
	// No header terminator yet.
	hdr, body, consumed, err := DecodeFrame([]byte("Content-Length: 10\r\n"))
	if err != nil || consumed != 0 || body != nil || hdr != (Header{}) {
		t.Fatalf("expected need-more-bytes, got hdr=%v body=%v consumed=%d err=%v", hdr, body, consumed, err)
	}
}

func TestDecodeFramePartialBody(t *testing.T) {
	full := EncodeFrame([]byte(`{"type":"event","seq":1,"event":"stopped"}`))
	partial := full[:len(full)-10]

	_, body, consumed, err := DecodeFrame(partial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumed != 0 || body != nil {
		t.Fatalf("expected to wait for more bytes, got consumed=%d body=%v", consumed, body)
	}
}

func TestDecodeFrameZeroLengthBody(t *testing.T) {
	frame := []byte("Content-Length: 0\r\n\r\n")
	hdr, body, consumed, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hdr.ContentLength != 0 || len(body) != 0 || consumed != len(frame) {
		t.Fatalf("expected empty-body frame, got hdr=%v body=%v consumed=%d", hdr, body, consumed)
	}
}

func TestDecodeFrameMissingContentLength(t *testing.T) {
	frame := []byte("X-Custom: 1\r\n\r\nbody")
	_, _, _, err := DecodeFrame(frame)
	if err == nil {
		t.Fatal("expected error for missing Content-Length")
	}
}

func TestDecodeFrameCaseInsensitiveHeaders(t *testing.T) {
	body := []byte(`{"type":"event","seq":1,"event":"initialized"}`)
	frame := []byte("content-LENGTH: " + strconv.Itoa(len(body)) + "\r\n\r\n")
	frame = append(frame, body...)

	hdr, decoded, consumed, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hdr.ContentLength != len(body) || consumed != len(frame) || !bytes.Equal(decoded, body) {
		t.Fatalf("case-insensitive header parse failed: hdr=%v consumed=%d decoded=%s", hdr, consumed, decoded)
	}
}

func TestDecodeFrameWithContentType(t *testing.T) {
	body := []byte(`{"type":"event","seq":1,"event":"output"}`)
	frame := []byte("Content-Length: " + strconv.Itoa(len(body)) + "\r\n" +
		"Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n\r\n")
	frame = append(frame, body...)

	hdr, decoded, consumed, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hdr.Encoding != "utf-8" || consumed != len(frame) || !bytes.Equal(decoded, body) {
		t.Fatalf("content-type parse failed: hdr=%v", hdr)
	}
}

func TestDecodeFrameTwoFramesInOneChunk(t *testing.T) {
	a := EncodeFrame([]byte(`{"type":"event","seq":1,"event":"stopped"}`))
	b := EncodeFrame([]byte(`{"type":"event","seq":2,"event":"initialized"}`))
	chunk := append(append([]byte{}, a...), b...)

	_, firstBody, consumed1, err := DecodeFrame(chunk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumed1 != len(a) {
		t.Fatalf("expected to consume only the first frame, got %d want %d", consumed1, len(a))
	}

	rest := chunk[consumed1:]
	_, secondBody, consumed2, err := DecodeFrame(rest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumed2 != len(b) {
		t.Fatalf("expected to consume the second frame, got %d want %d", consumed2, len(b))
	}
	if bytes.Contains(firstBody, []byte("initialized")) || bytes.Contains(secondBody, []byte("stopped")) {
		t.Fatalf("frames got mixed up: first=%s second=%s", firstBody, secondBody)
	}
}

func TestDecodeBodyUTF8(t *testing.T) {
	text := `{"text":"héllo 🌍"}`
	got, err := DecodeBody([]byte(text), "utf-8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != text {
		t.Fatalf("got %q want %q", got, text)
	}
}
