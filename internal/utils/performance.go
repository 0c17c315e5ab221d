package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// OperationTimer provides a defer-friendly way to measure operation duration.
// Provider fetches use it so slow upstreams show up in the logs.
//
// Usage:
//
//	func (c *Client) FetchChart(...) {
//	    defer utils.OperationTimer("fetch_chart", c.log)()
//	}
func OperationTimer(operation string, log zerolog.Logger) func() {
	start := time.Now()

	return func() {
		duration := time.Since(start)

		log.Debug().
			Str("operation", operation).
			Dur("duration_ms", duration).
			Msg("Operation completed")

		// Provider timeouts cap out at 10s; anything past half of that is
		// worth surfacing.
		if duration > 5*time.Second {
			log.Warn().
				Str("operation", operation).
				Dur("duration", duration).
				Msg("Slow operation detected")
		}
	}
}
