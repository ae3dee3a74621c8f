//go:build integration

package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/felixgeelhaar/skillquest/internal/events"
)

// setupRabbitMQ creates a RabbitMQ container for testing
func setupRabbitMQ(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	if err != nil {
		t.Fatalf("failed to start RabbitMQ container: %v", err)
	}

	amqpURL, err := container.AmqpURL(ctx)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to get AMQP URL: %v", err)
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return amqpURL, cleanup
}

func TestIntegration_Dial_InvalidURL(t *testing.T) {
	if _, err := events.Dial("amqp://invalid:5672"); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestIntegration_PublishAndSubscribe(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	pubConn, err := events.Dial(amqpURL)
	if err != nil {
		t.Fatalf("failed to connect publisher: %v", err)
	}
	publisher := events.NewAMQPPublisher(pubConn, events.DefaultPublisherConfig())
	defer publisher.Close()

	subConn, err := events.Dial(amqpURL)
	if err != nil {
		t.Fatalf("failed to connect subscriber: %v", err)
	}
	defer subConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	received := make(chan events.Event, 4)
	go func() {
		_ = events.NewSubscriber(subConn, "plan.*").Run(ctx, func(_ context.Context, e events.Event) error {
			received <- e
			return nil
		})
	}()

	// Give the subscriber time to bind its queue.
	time.Sleep(500 * time.Millisecond)

	userID, planID := uuid.New(), uuid.New()
	if err := publisher.Publish(ctx, events.New(events.EvaluationCreated, userID, uuid.New(), nil)); err != nil {
		t.Fatalf("Publish(evaluation) error = %v", err)
	}
	if err := publisher.Publish(ctx, events.New(events.PlanCreated, userID, planID, map[string]any{"items": 4})); err != nil {
		t.Fatalf("Publish(plan) error = %v", err)
	}

	select {
	case e := <-received:
		if e.Type != events.PlanCreated || e.SubjectID != planID {
			t.Errorf("received %+v, want plan.created for %v", e, planID)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}

	select {
	case e := <-received:
		t.Errorf("unexpected event %s delivered to plan.* subscriber", e.Type)
	case <-time.After(500 * time.Millisecond):
	}
}
