// internal/common/database/retry.go
package database

import (
	"context"
	"fmt"
	"time"

	"talent-matching-workers/internal/common/logger"
)

// Connect calls dial until it succeeds, doubling the delay between attempts.
// Backing services often start after the workers in local stacks.
func Connect(ctx context.Context, log logger.Logger, name string, attempts int, delay time.Duration, dial func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = dial(ctx); err == nil {
			log.Info(name+" connected", map[string]interface{}{"attempt": i})
			return nil
		}
		if i == attempts {
			break
		}

		log.Warn(name+" connection failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i,
			"maxAttempts": attempts,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
		delay *= 2
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, err)
}
