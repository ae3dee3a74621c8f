package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one delivered event. A returned error rejects the
// message without requeueing it.
type Handler func(ctx context.Context, e Event) error

// Subscriber consumes events through a private, auto-deleted queue bound to
// the events exchange.
type Subscriber struct {
	conn    *Connection
	pattern string
}

// NewSubscriber creates a subscriber for routing keys matching pattern
// ("#" for everything, "plan.*" for plan events).
func NewSubscriber(conn *Connection, pattern string) *Subscriber {
	if pattern == "" {
		pattern = "#"
	}
	return &Subscriber{conn: conn, pattern: pattern}
}

// Run delivers events to handle until ctx is cancelled or the delivery
// channel closes.
func (s *Subscriber) Run(ctx context.Context, handle Handler) error {
	ch := s.conn.Channel()
	if ch == nil {
		return fmt.Errorf("subscribe: not connected")
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, s.pattern, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.Info("subscribed to events", "queue", q.Name, "pattern", s.pattern)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			s.process(ctx, msg, handle)
		}
	}
}

func (s *Subscriber) process(ctx context.Context, msg amqp.Delivery, handle Handler) {
	var e Event
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		slog.Error("failed to unmarshal event", "routing_key", msg.RoutingKey, "error", err)
		_ = msg.Reject(false)
		return
	}

	if err := handle(ctx, e); err != nil {
		slog.Warn("event handler failed", "event_id", e.ID, "type", e.Type, "error", err)
		_ = msg.Reject(false)
		return
	}
	_ = msg.Ack(false)
}
