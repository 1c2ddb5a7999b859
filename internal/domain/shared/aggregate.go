// Package shared holds the building blocks common to every salon domain:
// tenant-scoped aggregates, domain events and the transactional outbox
// contract that carries those events out of the database.
package shared

import (
	"time"

	"github.com/google/uuid"
)

// TenantAggregateRoot is the consistency boundary every financial record in
// the system descends from. It pins the aggregate to one salon, carries the
// optimistic-lock version and collects the domain events raised while the
// aggregate mutates; repositories pick those events up on save and hand them
// to the outbox.
type TenantAggregateRoot struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int        `gorm:"not null;default:1"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`

	domainEvents []DomainEvent `gorm:"-"`
}

// NewTenantAggregateRoot creates a version-1 aggregate owned by the tenant.
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	now := time.Now()
	return TenantAggregateRoot{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
		TenantID:  tenantID,
	}
}

// IncrementVersion bumps the optimistic-lock counter and touches UpdatedAt.
// Aggregates call it on every state mutation.
func (a *TenantAggregateRoot) IncrementVersion() {
	a.Version++
	a.UpdatedAt = time.Now()
}

// AddDomainEvent records an event for publication after the save commits.
func (a *TenantAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the events recorded since the last clear.
func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops the recorded events, called once they are handed
// to the outbox.
func (a *TenantAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
