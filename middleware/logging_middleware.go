package middleware

import (
	"context"
	"time"

	"dapcore/client"

	"go.uber.org/zap"
)

// LoggingMiddleware records the command, duration, and success of each
// call at debug level, and logs adapter-reported failures at warn level.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, req Request) (client.LogicalEvent, error) {
			start := time.Now()
			levt, err := next(ctx, req)
			duration := time.Since(start)

			if err != nil {
				logger.Warn("call failed",
					zap.String("command", req.Command),
					zap.Duration("duration", duration),
					zap.Error(err),
				)
				return levt, err
			}

			logger.Debug("call completed",
				zap.String("command", req.Command),
				zap.Duration("duration", duration),
				zap.Bool("success", levt.Success),
			)
			if !levt.Success {
				logger.Warn("adapter rejected request",
					zap.String("command", req.Command),
					zap.String("message", levt.Message),
				)
			}
			return levt, err
		}
	}
}
