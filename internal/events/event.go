// Package events publishes domain events to RabbitMQ so other services can
// react to new evaluations and plans.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ExchangeName is the topic exchange events are published to. The event
// type is the routing key.
const ExchangeName = "skillquest.events"

// Type identifies what happened.
type Type string

const (
	UserRegistered      Type = "user.registered"
	AssessmentSubmitted Type = "assessment.submitted"
	EvaluationCreated   Type = "evaluation.created"
	PlanCreated         Type = "plan.created"
	PlanStarted         Type = "plan.started"
)

// Event is the message body published for every domain change.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Type       Type           `json:"type"`
	UserID     uuid.UUID      `json:"userId"`
	SubjectID  uuid.UUID      `json:"subjectId"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// New creates an event about subject, owned by user.
func New(typ Type, userID, subjectID uuid.UUID, data map[string]any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		UserID:     userID,
		SubjectID:  subjectID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
