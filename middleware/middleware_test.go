package middleware

import (
	"context"
	"testing"
	"time"

	"dapcore/client"

	"go.uber.org/zap"
)

func echoCall(ctx context.Context, req Request) (client.LogicalEvent, error) {
	return client.LogicalEvent{Kind: client.ResponseDelivery, ResponseCommand: req.Command, Success: true}, nil
}

func slowCall(ctx context.Context, req Request) (client.LogicalEvent, error) {
	time.Sleep(200 * time.Millisecond)
	return client.LogicalEvent{Kind: client.ResponseDelivery, ResponseCommand: req.Command, Success: true}, nil
}

func TestLoggingMiddleware(t *testing.T) {
	call := LoggingMiddleware(zap.NewNop())(echoCall)

	levt, err := call(context.Background(), Request{Command: "evaluate"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !levt.Success {
		t.Fatal("expected success response")
	}
}

func TestTimeoutMiddlewarePass(t *testing.T) {
	call := TimeoutMiddleware(500 * time.Millisecond)(echoCall)

	levt, err := call(context.Background(), Request{Command: "evaluate"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !levt.Success {
		t.Fatal("expected success response")
	}
}

func TestTimeoutMiddlewareExceeded(t *testing.T) {
	call := TimeoutMiddleware(50 * time.Millisecond)(slowCall)

	_, err := call(context.Background(), Request{Command: "evaluate"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	call := RateLimitMiddleware(1, 2)(echoCall)
	req := Request{Command: "evaluate"}

	for i := 0; i < 2; i++ {
		if _, err := call(context.Background(), req); err != nil {
			t.Fatalf("request %d should pass, got %v", i, err)
		}
	}

	if _, err := call(context.Background(), req); err == nil {
		t.Fatal("expected third request to be rate limited")
	}
}

func TestRetryMiddleware(t *testing.T) {
	attempts := 0
	flaky := func(ctx context.Context, req Request) (client.LogicalEvent, error) {
		attempts++
		return client.LogicalEvent{Kind: client.ResponseDelivery, Success: attempts >= 3}, nil
	}

	call := RetryMiddleware(5, time.Millisecond)(flaky)
	levt, err := call(context.Background(), Request{Command: "evaluate"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !levt.Success {
		t.Fatal("expected eventual success after retries")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestChain(t *testing.T) {
	chained := Chain(LoggingMiddleware(zap.NewNop()), TimeoutMiddleware(500*time.Millisecond))
	call := chained(echoCall)

	levt, err := call(context.Background(), Request{Command: "evaluate"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !levt.Success {
		t.Fatal("expected success response")
	}
}
