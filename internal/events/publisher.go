package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
)

// sender is the part of Connection the publisher needs.
type sender interface {
	PublishJSON(ctx context.Context, routingKey string, data any) error
	Close() error
}

// PublisherConfig tunes delivery retries.
type PublisherConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultPublisherConfig returns the daemon's retry policy
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
	}
}

// AMQPPublisher publishes events through a Connection. Transient failures are
// retried with exponential backoff; after repeated failures the circuit opens
// and publishes fail fast until the broker recovers.
type AMQPPublisher struct {
	conn    sender
	retrier retry.Retry[struct{}]
	breaker circuitbreaker.CircuitBreaker[struct{}]
}

// NewAMQPPublisher wraps conn with retry and circuit breaking.
func NewAMQPPublisher(conn *Connection, cfg PublisherConfig) *AMQPPublisher {
	return newPublisher(conn, cfg)
}

func newPublisher(conn sender, cfg PublisherConfig) *AMQPPublisher {
	def := DefaultPublisherConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = max(def.MaxDelay, cfg.InitialDelay)
	}

	return &AMQPPublisher{
		conn: conn,
		retrier: retry.New[struct{}](retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			MaxDelay:      cfg.MaxDelay,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable: func(err error) bool {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			},
		}),
		breaker: circuitbreaker.New[struct{}](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    30 * time.Second,
			Timeout:     15 * time.Second,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				slog.Warn("event publisher circuit state change", "from", from.String(), "to", to.String())
			},
		}),
	}
}

// Publish sends e with its type as the routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	_, err := p.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return p.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.conn.PublishJSON(ctx, string(e.Type), e)
		})
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}

	slog.Debug("published event", "event_id", e.ID, "type", e.Type, "user_id", e.UserID)
	return nil
}

// Close closes the underlying connection
func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}
