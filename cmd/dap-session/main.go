// Command dap-session drives one debug session against a DAP adapter: it
// runs the initialize/launch handshake and logs every adapter event through
// a zap production logger. On SIGINT or SIGTERM it logs any outstanding
// requests and closes the transport; it does not send a disconnect request
// first. Two modes are supported: "stdio"
// spawns the adapter as a subprocess (the common case — most adapters,
// e.g. debugpy, run this way); "server" discovers a running server-mode
// adapter through a registry and talks to it over TCP, which is where the
// registry/loadbalance/middleware stack earns its keep.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dapcore/client"
	"dapcore/loadbalance"
	"dapcore/middleware"
	"dapcore/registry"
	"dapcore/transport"

	"go.uber.org/zap"
)

func main() {
	mode := flag.String("mode", "stdio", "\"stdio\" to spawn -adapter as a subprocess, \"server\" to discover a TCP adapter via -registry")
	adapterCmd := flag.String("adapter", "", "stdio mode: adapter executable to launch")
	registryPath := flag.String("registry", "", "server mode: path to a YAML adapter registry (see registry.LoadConfigRegistry)")
	adapterID := flag.String("adapter-id", "", "server mode: adapter ID to discover in the registry")
	poolSize := flag.Int("pool-size", 4, "server mode: max pooled connections to the adapter")
	program := flag.String("program", "", "program argument passed to the adapter's launch request")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "stdio":
		if *adapterCmd == "" {
			fmt.Fprintln(os.Stderr, "usage: dap-session -mode stdio -adapter <path> -program <path>")
			os.Exit(2)
		}
		runStdio(ctx, logger, *adapterCmd, *program)
	case "server":
		if *registryPath == "" || *adapterID == "" {
			fmt.Fprintln(os.Stderr, "usage: dap-session -mode server -registry <path.yaml> -adapter-id <id> -program <path>")
			os.Exit(2)
		}
		runServer(ctx, logger, *registryPath, *adapterID, *program, *poolSize)
	default:
		fmt.Fprintln(os.Stderr, "unknown -mode:", *mode)
		os.Exit(2)
	}
}

func newSessionConfig() client.Config {
	cfg := client.DefaultConfig()
	cfg.ClientID = "dap-session"
	cfg.ClientName = "dap-session"
	return cfg
}

// runStdio drives a subprocess adapter. StdioTransport owns the client; the
// host never touches it except through t.Do/t.Flush, which serializes it
// against the transport's own background reader.
func runStdio(ctx context.Context, logger *zap.Logger, adapterCmd, program string) {
	c := client.NewClient(newSessionConfig())

	t, err := transport.NewStdioTransport(ctx, c, logger, adapterCmd)
	if err != nil {
		logger.Fatal("failed to start adapter", zap.Error(err))
	}
	defer t.Close()

	for {
		select {
		case <-ctx.Done():
			logPending(t.Do, logger)
			return
		case levt, ok := <-t.Events():
			if !ok {
				if err := t.Err(); err != nil {
					logger.Error("adapter transport ended with error", zap.Error(err))
				}
				return
			}
			handleStdioEvent(t, levt, program, logger)
		}
	}
}

func handleStdioEvent(t *transport.StdioTransport, levt client.LogicalEvent, program string, logger *zap.Logger) {
	switch levt.Kind {
	case client.Lifecycle:
		logger.Info("lifecycle", zap.String("event", levt.Event))
		if levt.Event == "initialized" {
			var launchErr error
			t.Do(func(c *client.Client) {
				_, launchErr = c.Launch(map[string]any{"program": program})
			})
			if launchErr != nil {
				logger.Error("launch failed", zap.Error(launchErr))
				return
			}
			flushStdio(t, logger)
		}
		if levt.Event == "terminated" {
			os.Exit(0)
		}
	case client.AdapterEvent:
		var body json.RawMessage = levt.Body
		logger.Info("event", zap.String("event", levt.Event), zap.ByteString("body", body))
	case client.ResponseDelivery:
		if levt.ResponseCommand == "launch" && levt.Success {
			var confErr error
			t.Do(func(c *client.Client) {
				_, confErr = c.ConfigurationDone()
			})
			if confErr != nil {
				logger.Error("configurationDone failed", zap.Error(confErr))
			}
			flushStdio(t, logger)
		}
	case client.AdapterRequest:
		logger.Info("reverse request", zap.String("command", levt.Command))
	}
}

func flushStdio(t *transport.StdioTransport, logger *zap.Logger) {
	if err := t.Flush(); err != nil {
		logger.Error("flush to adapter failed", zap.Error(err))
	}
}

// runServer drives a server-mode adapter discovered through reg and chosen
// with a round-robin balancer. Every request goes through a middleware
// chain wrapping ServerTransport.Call, the blocking request/response
// primitive built for exactly this purpose.
func runServer(ctx context.Context, logger *zap.Logger, registryPath, adapterID, program string, poolSize int) {
	reg, err := registry.LoadConfigRegistry(registryPath)
	if err != nil {
		logger.Fatal("failed to load adapter registry", zap.Error(err))
	}
	bal := &loadbalance.RoundRobinBalancer{}

	c := client.NewClient(newSessionConfig())

	st, err := transport.NewServerTransport(c, logger, reg, bal, adapterID, poolSize)
	if err != nil {
		logger.Fatal("failed to reach adapter", zap.Error(err))
	}
	defer st.Close()

	call := middleware.Chain(
		middleware.LoggingMiddleware(logger),
		middleware.RetryMiddleware(3, 200*time.Millisecond),
		middleware.RateLimitMiddleware(50, 10),
		middleware.TimeoutMiddleware(10*time.Second),
	)(st.Call)

	for {
		select {
		case <-ctx.Done():
			logPending(st.Do, logger)
			return
		case levt, ok := <-st.Unsolicited():
			if !ok {
				if err := st.Err(); err != nil {
					logger.Error("adapter transport ended with error", zap.Error(err))
				}
				return
			}
			handleServerEvent(ctx, call, levt, program, logger)
		}
	}
}

func handleServerEvent(ctx context.Context, call middleware.CallFunc, levt client.LogicalEvent, program string, logger *zap.Logger) {
	switch levt.Kind {
	case client.Lifecycle:
		logger.Info("lifecycle", zap.String("event", levt.Event))
		if levt.Event == "initialized" {
			resp, err := call(ctx, middleware.Request{Command: "launch", Arguments: map[string]any{"program": program}})
			if err != nil {
				logger.Error("launch failed", zap.Error(err))
				return
			}
			if resp.Success {
				if _, err := call(ctx, middleware.Request{Command: "configurationDone"}); err != nil {
					logger.Error("configurationDone failed", zap.Error(err))
				}
			}
		}
		if levt.Event == "terminated" {
			os.Exit(0)
		}
	case client.AdapterEvent:
		var body json.RawMessage = levt.Body
		logger.Info("event", zap.String("event", levt.Event), zap.ByteString("body", body))
	case client.AdapterRequest:
		logger.Info("reverse request", zap.String("command", levt.Command))
	case client.ResponseDelivery:
		logger.Info("unsolicited response", zap.String("command", levt.ResponseCommand))
	}
}

// logPending warns about any request still outstanding when the session is
// asked to shut down — a host can't wait forever for an adapter that will
// never answer.
func logPending(do func(func(*client.Client)), logger *zap.Logger) {
	do(func(c *client.Client) {
		if n := c.PendingCount(); n > 0 {
			logger.Warn("shutting down with outstanding requests", zap.Int("count", n), zap.Any("seqs", c.PendingSeqs()))
		}
	})
}
