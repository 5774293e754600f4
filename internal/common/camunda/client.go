// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client owns the gateway connection shared by all job workers.
type Client struct {
	zeebe  zbc.Client
	config ClientConfig
	logger logger.Logger
}

type ClientConfig struct {
	GatewayAddress    string
	Plaintext         bool
	ConnectionTimeout time.Duration
	Retry             RetryConfig
}

// RetryConfig bounds the backoff applied to transient gateway failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetry = RetryConfig{
	MaxRetries: 5,
	BaseDelay:  time.Second,
	MaxDelay:   15 * time.Second,
}

// Connect opens the gateway connection and waits until the topology answers.
func Connect(ctx context.Context, cfg ClientConfig, log logger.Logger) (*Client, error) {
	if cfg.ConnectionTimeout <= 0 {
		cfg.ConnectionTimeout = 10 * time.Second
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry = DefaultRetry
	}

	zc, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.Plaintext,
	})
	if err != nil {
		return nil, errors.NewExternalServiceError("zeebe", fmt.Errorf("create client: %w", err))
	}

	c := &Client{
		zeebe:  zc,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"gateway": cfg.GatewayAddress}),
	}

	brokers, err := Retry(ctx, c, "topology", func(ctx context.Context) (int, error) {
		ctx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
		defer cancel()
		resp, err := zc.NewTopologyCommand().Send(ctx)
		if err != nil {
			return 0, err
		}
		return len(resp.GetBrokers()), nil
	})
	if err != nil {
		_ = zc.Close()
		return nil, err
	}

	c.logger.Info("zeebe gateway connected", map[string]interface{}{"brokers": brokers})
	return c, nil
}

// Zeebe exposes the underlying client for opening job workers.
func (c *Client) Zeebe() zbc.Client {
	return c.zeebe
}

func (c *Client) Close() error {
	return c.zeebe.Close()
}

// HealthCheck asks the gateway for its topology once.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.zeebe.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Retry runs fn until it succeeds, fails permanently or the retry budget is
// spent. Failures come back as StandardErrors.
func Retry[T any](ctx context.Context, c *Client, operation string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	rc := c.config.Retry

	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !isTransient(err) || attempt >= rc.MaxRetries {
			return zero, mapZeebeError(err, operation, attempt)
		}

		delay := rc.BaseDelay << attempt
		if delay > rc.MaxDelay || delay <= 0 {
			delay = rc.MaxDelay
		}
		if c.logger != nil {
			c.logger.Warn("zeebe call failed, retrying", map[string]interface{}{
				"operation": operation,
				"attempt":   attempt + 1,
				"delayMs":   delay.Milliseconds(),
				"error":     err.Error(),
			})
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, fmt.Errorf("zeebe %s cancelled after %d attempts: %w", operation, attempt+1, ctx.Err())
		}
	}
}

var transientPhrases = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"deadline exceeded",
	"unavailable",
	"unreachable",
	"broken pipe",
}

func isTransient(err error) bool {
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			return true
		default:
			return false
		}
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range transientPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func grpcCode(err error) codes.Code {
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return s.Code()
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return codes.DeadlineExceeded
	case strings.Contains(msg, "not found"):
		return codes.NotFound
	case strings.Contains(msg, "already exists"):
		return codes.AlreadyExists
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "unauthorized"), strings.Contains(msg, "unauthenticated"):
		return codes.PermissionDenied
	default:
		return codes.Unavailable
	}
}

func mapZeebeError(err error, operation string, attempt int) error {
	summary := fmt.Sprintf("zeebe %s failed", operation)
	if attempt > 0 {
		summary += fmt.Sprintf(" after %d attempts", attempt)
	}
	wrapped := fmt.Errorf("%s: %w", summary, err)

	switch grpcCode(err) {
	case codes.DeadlineExceeded:
		return errors.NewTimeoutError("zeebe", wrapped)
	case codes.NotFound:
		return errors.NewResourceNotFoundError("zeebe", wrapped.Error())
	case codes.AlreadyExists:
		return errors.NewBusinessRuleError(wrapped.Error(), "Resource already exists")
	case codes.PermissionDenied, codes.Unauthenticated:
		return errors.NewAuthenticationError(wrapped.Error())
	default:
		return errors.NewExternalServiceError("zeebe", wrapped)
	}
}
