package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/shared"
)

// LedgerEntryCreatedEvent is raised when a new ledger entry is created
type LedgerEntryCreatedEvent struct {
	shared.BaseDomainEvent
	EntryID     uuid.UUID       `json:"entry_id"`
	EntryType   EntryType       `json:"entry_type"`
	Category    EntryCategory   `json:"category"`
	Description string          `json:"description"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	EntryDate   time.Time       `json:"entry_date"`
}

// EventType returns the event type name
func (e *LedgerEntryCreatedEvent) EventType() string {
	return "LedgerEntryCreated"
}

// NewLedgerEntryCreatedEvent creates a new LedgerEntryCreatedEvent
func NewLedgerEntryCreatedEvent(entry *LedgerEntry) *LedgerEntryCreatedEvent {
	return &LedgerEntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryCreated", "LedgerEntry", entry.ID, entry.TenantID),
		EntryID:         entry.ID,
		EntryType:       entry.Type,
		Category:        entry.Category,
		Description:     entry.Description,
		FinalAmount:     entry.FinalAmount,
		EntryDate:       entry.EntryDate,
	}
}

// LedgerEntryPaidEvent is raised when an entry becomes fully paid
type LedgerEntryPaidEvent struct {
	shared.BaseDomainEvent
	EntryID     uuid.UUID       `json:"entry_id"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Method      PaymentMethod   `json:"method"`
	PaidAt      time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *LedgerEntryPaidEvent) EventType() string {
	return "LedgerEntryPaid"
}

// NewLedgerEntryPaidEvent creates a new LedgerEntryPaidEvent
func NewLedgerEntryPaidEvent(entry *LedgerEntry) *LedgerEntryPaidEvent {
	paidAt := time.Now()
	if entry.PaidAt != nil {
		paidAt = *entry.PaidAt
	}
	method := PaymentMethod("")
	if entry.PaymentMethod != nil {
		method = *entry.PaymentMethod
	}
	return &LedgerEntryPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryPaid", "LedgerEntry", entry.ID, entry.TenantID),
		EntryID:         entry.ID,
		FinalAmount:     entry.FinalAmount,
		Method:          method,
		PaidAt:          paidAt,
	}
}

// LedgerEntryPartiallyPaidEvent is raised when a payment leaves a balance outstanding
type LedgerEntryPartiallyPaidEvent struct {
	shared.BaseDomainEvent
	EntryID        uuid.UUID       `json:"entry_id"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	CumulativePaid decimal.Decimal `json:"cumulative_paid"`
}

// EventType returns the event type name
func (e *LedgerEntryPartiallyPaidEvent) EventType() string {
	return "LedgerEntryPartiallyPaid"
}

// NewLedgerEntryPartiallyPaidEvent creates a new LedgerEntryPartiallyPaidEvent
func NewLedgerEntryPartiallyPaidEvent(entry *LedgerEntry, cumulativePaid decimal.Decimal) *LedgerEntryPartiallyPaidEvent {
	return &LedgerEntryPartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryPartiallyPaid", "LedgerEntry", entry.ID, entry.TenantID),
		EntryID:         entry.ID,
		FinalAmount:     entry.FinalAmount,
		CumulativePaid:  cumulativePaid,
	}
}

// LedgerEntryCancelledEvent is raised when an entry is cancelled or reversed
type LedgerEntryCancelledEvent struct {
	shared.BaseDomainEvent
	EntryID        uuid.UUID   `json:"entry_id"`
	PreviousStatus EntryStatus `json:"previous_status"`
	NewStatus      EntryStatus `json:"new_status"`
	CancelReason   string      `json:"cancel_reason"`
	CancelledAt    time.Time   `json:"cancelled_at"`
}

// EventType returns the event type name
func (e *LedgerEntryCancelledEvent) EventType() string {
	return "LedgerEntryCancelled"
}

// NewLedgerEntryCancelledEvent creates a new LedgerEntryCancelledEvent
func NewLedgerEntryCancelledEvent(entry *LedgerEntry, previousStatus EntryStatus) *LedgerEntryCancelledEvent {
	cancelledAt := time.Now()
	if entry.CancelledAt != nil {
		cancelledAt = *entry.CancelledAt
	}
	return &LedgerEntryCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryCancelled", "LedgerEntry", entry.ID, entry.TenantID),
		EntryID:         entry.ID,
		PreviousStatus:  previousStatus,
		NewStatus:       entry.Status,
		CancelReason:    entry.CancelReason,
		CancelledAt:     cancelledAt,
	}
}

// PaymentRegisteredEvent is raised when a payment is created
type PaymentRegisteredEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	EntryID   uuid.UUID       `json:"payment_entry_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	PaidAt    time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *PaymentRegisteredEvent) EventType() string {
	return "PaymentRegistered"
}

// NewPaymentRegisteredEvent creates a new PaymentRegisteredEvent
func NewPaymentRegisteredEvent(p *Payment) *PaymentRegisteredEvent {
	return &PaymentRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRegistered", "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		EntryID:         p.EntryID,
		Amount:          p.Amount,
		Method:          p.Method,
		PaidAt:          p.PaidAt,
	}
}

// PaymentReversedEvent is raised when a payment is reversed
type PaymentReversedEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID       `json:"payment_id"`
	EntryID        uuid.UUID       `json:"payment_entry_id"`
	Amount         decimal.Decimal `json:"amount"`
	ReversalReason string          `json:"reversal_reason"`
	ReversedAt     time.Time       `json:"reversed_at"`
}

// EventType returns the event type name
func (e *PaymentReversedEvent) EventType() string {
	return "PaymentReversed"
}

// NewPaymentReversedEvent creates a new PaymentReversedEvent
func NewPaymentReversedEvent(p *Payment) *PaymentReversedEvent {
	reversedAt := time.Now()
	if p.ReversedAt != nil {
		reversedAt = *p.ReversedAt
	}
	return &PaymentReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentReversed", "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		EntryID:         p.EntryID,
		Amount:          p.Amount,
		ReversalReason:  p.ReversalReason,
		ReversedAt:      reversedAt,
	}
}
