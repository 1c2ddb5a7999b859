package packs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/shared"
)

// PackagePurchaseCreatedEvent is raised when a client buys a package
type PackagePurchaseCreatedEvent struct {
	shared.BaseDomainEvent
	PurchaseID  uuid.UUID       `json:"purchase_id"`
	ClientID    uuid.UUID       `json:"client_id"`
	PackageID   uuid.UUID       `json:"package_id"`
	PackageName string          `json:"package_name"`
	Sessions    int             `json:"sessions"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

// EventType returns the event type name
func (e *PackagePurchaseCreatedEvent) EventType() string {
	return "PackagePurchaseCreated"
}

// NewPackagePurchaseCreatedEvent creates a new PackagePurchaseCreatedEvent
func NewPackagePurchaseCreatedEvent(p *PackagePurchase) *PackagePurchaseCreatedEvent {
	return &PackagePurchaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PackagePurchaseCreated", "PackagePurchase", p.ID, p.TenantID),
		PurchaseID:      p.ID,
		ClientID:        p.ClientID,
		PackageID:       p.PackageID,
		PackageName:     p.PackageName,
		Sessions:        p.SessionsContracted,
		TotalAmount:     p.TotalAmount,
		ExpiresAt:       p.ExpiresAt,
	}
}

// SessionConsumedEvent is raised when one session of a purchase is used
type SessionConsumedEvent struct {
	shared.BaseDomainEvent
	PurchaseID        uuid.UUID  `json:"purchase_id"`
	ClientID          uuid.UUID  `json:"client_id"`
	AppointmentID     *uuid.UUID `json:"appointment_id,omitempty"`
	SessionNumber     int        `json:"session_number"`
	SessionsRemaining int        `json:"sessions_remaining"`
}

// EventType returns the event type name
func (e *SessionConsumedEvent) EventType() string {
	return "SessionConsumed"
}

// NewSessionConsumedEvent creates a new SessionConsumedEvent
func NewSessionConsumedEvent(p *PackagePurchase, entry HistoryEntry) *SessionConsumedEvent {
	return &SessionConsumedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("SessionConsumed", "PackagePurchase", p.ID, p.TenantID),
		PurchaseID:        p.ID,
		ClientID:          p.ClientID,
		AppointmentID:     entry.AppointmentID,
		SessionNumber:     entry.SessionNumber,
		SessionsRemaining: p.SessionsRemaining,
	}
}

// PackagePurchaseCompletedEvent is raised when the last session is consumed
type PackagePurchaseCompletedEvent struct {
	shared.BaseDomainEvent
	PurchaseID   uuid.UUID `json:"purchase_id"`
	ClientID     uuid.UUID `json:"client_id"`
	SessionsUsed int       `json:"sessions_used"`
}

// EventType returns the event type name
func (e *PackagePurchaseCompletedEvent) EventType() string {
	return "PackagePurchaseCompleted"
}

// NewPackagePurchaseCompletedEvent creates a new PackagePurchaseCompletedEvent
func NewPackagePurchaseCompletedEvent(p *PackagePurchase) *PackagePurchaseCompletedEvent {
	return &PackagePurchaseCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PackagePurchaseCompleted", "PackagePurchase", p.ID, p.TenantID),
		PurchaseID:      p.ID,
		ClientID:        p.ClientID,
		SessionsUsed:    p.SessionsUsed,
	}
}

// PackagePurchaseExtendedEvent is raised when the expiry date is pushed forward
type PackagePurchaseExtendedEvent struct {
	shared.BaseDomainEvent
	PurchaseID     uuid.UUID  `json:"purchase_id"`
	PreviousExpiry *time.Time `json:"previous_expiry,omitempty"`
	NewExpiry      *time.Time `json:"new_expiry,omitempty"`
	Reason         string     `json:"reason,omitempty"`
}

// EventType returns the event type name
func (e *PackagePurchaseExtendedEvent) EventType() string {
	return "PackagePurchaseExtended"
}

// NewPackagePurchaseExtendedEvent creates a new PackagePurchaseExtendedEvent
func NewPackagePurchaseExtendedEvent(p *PackagePurchase, entry HistoryEntry) *PackagePurchaseExtendedEvent {
	return &PackagePurchaseExtendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PackagePurchaseExtended", "PackagePurchase", p.ID, p.TenantID),
		PurchaseID:      p.ID,
		PreviousExpiry:  entry.PreviousExpiry,
		NewExpiry:       entry.NewExpiry,
		Reason:          entry.Reason,
	}
}

// PackagePurchaseCancelledEvent is raised when a purchase is cancelled
type PackagePurchaseCancelledEvent struct {
	shared.BaseDomainEvent
	PurchaseID   uuid.UUID `json:"purchase_id"`
	ClientID     uuid.UUID `json:"client_id"`
	CancelReason string    `json:"cancel_reason"`
}

// EventType returns the event type name
func (e *PackagePurchaseCancelledEvent) EventType() string {
	return "PackagePurchaseCancelled"
}

// NewPackagePurchaseCancelledEvent creates a new PackagePurchaseCancelledEvent
func NewPackagePurchaseCancelledEvent(p *PackagePurchase) *PackagePurchaseCancelledEvent {
	return &PackagePurchaseCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PackagePurchaseCancelled", "PackagePurchase", p.ID, p.TenantID),
		PurchaseID:      p.ID,
		ClientID:        p.ClientID,
		CancelReason:    p.CancelReason,
	}
}

// PackagePurchaseExpiredEvent is raised when a purchase passes its expiry date
type PackagePurchaseExpiredEvent struct {
	shared.BaseDomainEvent
	PurchaseID        uuid.UUID  `json:"purchase_id"`
	ClientID          uuid.UUID  `json:"client_id"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	SessionsRemaining int        `json:"sessions_remaining"`
}

// EventType returns the event type name
func (e *PackagePurchaseExpiredEvent) EventType() string {
	return "PackagePurchaseExpired"
}

// NewPackagePurchaseExpiredEvent creates a new PackagePurchaseExpiredEvent
func NewPackagePurchaseExpiredEvent(p *PackagePurchase) *PackagePurchaseExpiredEvent {
	return &PackagePurchaseExpiredEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("PackagePurchaseExpired", "PackagePurchase", p.ID, p.TenantID),
		PurchaseID:        p.ID,
		ClientID:          p.ClientID,
		ExpiresAt:         p.ExpiresAt,
		SessionsRemaining: p.SessionsRemaining,
	}
}
