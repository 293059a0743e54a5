package app

import (
	"context"

	"github.com/five82/wreath/internal/logging"
	"github.com/five82/wreath/internal/memorial"
)

// logRequest returns a memorial.Client OnRequest hook.
func logRequest(ctx context.Context, log logging.Logger) func(memorial.RequestInfo) {
	return func(info memorial.RequestInfo) {
		log.Debug(ctx, "gateway request",
			"request_id", info.ID,
			"operation", string(info.Operation),
			"method", info.Method,
			"url", info.URL,
			"body_bytes", len(info.Body),
		)
	}
}

// logResponse returns a memorial.Client OnResponse hook. Failures are logged
// at warn level with the normalized message.
func logResponse(ctx context.Context, log logging.Logger) func(memorial.ResponseInfo) {
	return func(info memorial.ResponseInfo) {
		args := []any{
			"request_id", info.ID,
			"operation", string(info.Operation),
			"status", info.Status,
			"code", info.Code,
			"duration_ms", info.Duration.Milliseconds(),
		}
		if info.Success {
			if info.Dropped > 0 {
				log.Warn(ctx, "gateway dropped invalid items", append(args, "dropped", info.Dropped)...)
				return
			}
			log.Debug(ctx, "gateway response", args...)
			return
		}
		args = append(args, "message", info.Message)
		if info.Err != nil {
			args = append(args, "error", info.Err)
		}
		log.Warn(ctx, "gateway call failed", args...)
	}
}
