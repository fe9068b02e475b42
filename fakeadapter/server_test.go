package fakeadapter

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"dapcore/message"
	"dapcore/protocol"
)

func TestServerAnswersScriptedRequest(t *testing.T) {
	srv := NewServer(Script{
		"initialize": {Success: true, Body: json.RawMessage(`{"supportsConfigurationDoneRequest":true}`)},
	})

	go srv.Serve("tcp", "127.0.0.1:0")
	time.Sleep(50 * time.Millisecond)
	defer srv.Shutdown()

	addr := srv.Addr()
	if addr == nil {
		t.Fatal("server did not start listening in time")
	}

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := message.NewRequest(1, string(message.CommandInitialize), nil)
	body, _ := json.Marshal(req)
	if _, err := conn.Write(protocol.EncodeFrame(body)); err != nil {
		t.Fatalf("write request: %v", err)
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	_, respBody, consumed, err := protocol.DecodeFrame(buf[:n])
	if err != nil || consumed == 0 {
		t.Fatalf("decode response frame: %v", err)
	}

	envs, err := message.ParseBody(respBody)
	if err != nil || len(envs) != 1 {
		t.Fatalf("parse response body: %v", err)
	}
	if !envs[0].Success || envs[0].RequestSeq != 1 || envs[0].Command != string(message.CommandInitialize) {
		t.Fatalf("unexpected response envelope: %+v", envs[0])
	}
}

func TestServerDefaultsUnscriptedCommandToSuccess(t *testing.T) {
	srv := NewServer(Script{})

	go srv.Serve("tcp", "127.0.0.1:0")
	time.Sleep(50 * time.Millisecond)
	defer srv.Shutdown()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := message.NewRequest(1, string(message.CommandThreads), nil)
	body, _ := json.Marshal(req)
	conn.Write(protocol.EncodeFrame(body))

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	_, respBody, _, err := protocol.DecodeFrame(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	envs, err := message.ParseBody(respBody)
	if err != nil || !envs[0].Success {
		t.Fatalf("expected default success response, got %+v err=%v", envs, err)
	}
}
