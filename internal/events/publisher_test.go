package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeSender struct {
	mu       sync.Mutex
	failures int
	calls    int
	keys     []string
	closed   bool
}

func (f *fakeSender) PublishJSON(_ context.Context, routingKey string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("broker unavailable")
	}
	f.keys = append(f.keys, routingKey)
	return nil
}

func (f *fakeSender) Close() error {
	f.closed = true
	return nil
}

func fastConfig() PublisherConfig {
	return PublisherConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestPublisher_Publish(t *testing.T) {
	f := &fakeSender{}
	p := newPublisher(f, fastConfig())

	if err := p.Publish(context.Background(), New(PlanCreated, uuid.New(), uuid.New(), nil)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(f.keys) != 1 || f.keys[0] != "plan.created" {
		t.Errorf("routing keys = %v, want [plan.created]", f.keys)
	}

	if err := p.Close(); err != nil || !f.closed {
		t.Errorf("Close() error = %v, closed = %v", err, f.closed)
	}
}

func TestPublisher_RetriesTransientFailures(t *testing.T) {
	f := &fakeSender{failures: 2}
	p := newPublisher(f, fastConfig())

	if err := p.Publish(context.Background(), New(EvaluationCreated, uuid.New(), uuid.New(), nil)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if f.calls != 3 {
		t.Errorf("calls = %d, want 3", f.calls)
	}
}

func TestPublisher_GivesUp(t *testing.T) {
	f := &fakeSender{failures: 100}
	p := newPublisher(f, fastConfig())

	err := p.Publish(context.Background(), New(EvaluationCreated, uuid.New(), uuid.New(), nil))
	if err == nil {
		t.Fatal("Publish() should fail when every attempt fails")
	}
	if f.calls != 3 {
		t.Errorf("calls = %d, want 3", f.calls)
	}
}

func TestDefaultPublisherConfig(t *testing.T) {
	cfg := DefaultPublisherConfig()
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		t.Errorf("MaxDelay %v < InitialDelay %v", cfg.MaxDelay, cfg.InitialDelay)
	}
}
