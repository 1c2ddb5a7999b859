package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is raised by an aggregate when something business-relevant
// happened, e.g. a ledger entry was settled or a package session consumed.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// BaseDomainEvent is the envelope every concrete event embeds. The JSON tags
// are the stored outbox payload format and must stay stable across releases.
type BaseDomainEvent struct {
	EvtID       uuid.UUID `json:"id"`
	EvtType     string    `json:"type"`
	EvtTime     time.Time `json:"timestamp"`
	EvtAggID    uuid.UUID `json:"aggregate_id"`
	EvtAggType  string    `json:"aggregate_type"`
	EvtTenantID uuid.UUID `json:"tenant_id"`
}

// NewBaseDomainEvent stamps a fresh envelope with identity and occurrence time.
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		EvtID:       uuid.New(),
		EvtType:     eventType,
		EvtTime:     time.Now(),
		EvtAggID:    aggID,
		EvtAggType:  aggType,
		EvtTenantID: tenantID,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.EvtID }
func (e *BaseDomainEvent) EventType() string      { return e.EvtType }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.EvtTime }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.EvtAggID }
func (e *BaseDomainEvent) AggregateType() string  { return e.EvtAggType }
func (e *BaseDomainEvent) TenantID() uuid.UUID    { return e.EvtTenantID }

// EventHandler consumes domain events delivered by the bus.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants. Empty means all.
	EventTypes() []string
}

// EventPublisher publishes domain events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// OutboxEventSaver writes domain events to the outbox inside the same
// transaction as the aggregate change. Repositories call it on save.
type OutboxEventSaver interface {
	// SaveEvents persists the events; txProvider is the *gorm.DB transaction.
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
