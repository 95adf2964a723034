// Package telemetry carries the audit event schema and tracing setup for the
// dev backend.
package telemetry

import (
	"context"
	"log"
	"time"

	"storechat/internal/rabbitmq"
)

// AuditEnvelope is the versioned audit record published to the broker.
type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *int         `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

// AuditPayload is the free-form body of an audit record.
type AuditPayload struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// AuditEmitter publishes audit records for one service instance.
type AuditEmitter struct {
	publisher   rabbitmq.Publisher
	routingKey  string
	environment string
}

// NewAuditEmitter wires an emitter to a publisher.
func NewAuditEmitter(publisher rabbitmq.Publisher, routingKey, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		environment: environment,
	}
}

// Emit publishes one audit record; failures are logged, never fatal.
func (e *AuditEmitter) Emit(ctx context.Context, level, text, requestID string, userID *int) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       "storefront-devserver",
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload: AuditPayload{
			Level: level,
			Text:  text,
		},
	}

	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		log.Printf("audit publish failed: %v", err)
	}
}
