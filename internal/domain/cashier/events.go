package cashier

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/shared"
)

// CashSessionOpenedEvent is raised when the register opens for a business day
type CashSessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID    uuid.UUID       `json:"session_id"`
	BusinessDay  string          `json:"business_day"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
	OpenedAt     time.Time       `json:"opened_at"`
}

// EventType returns the event type name
func (e *CashSessionOpenedEvent) EventType() string {
	return "CashSessionOpened"
}

// NewCashSessionOpenedEvent creates a new CashSessionOpenedEvent
func NewCashSessionOpenedEvent(s *CashSession) *CashSessionOpenedEvent {
	return &CashSessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CashSessionOpened", "CashSession", s.ID, s.TenantID),
		SessionID:       s.ID,
		BusinessDay:     s.BusinessDay.String(),
		OpeningFloat:    s.OpeningFloat,
		OpenedAt:        s.OpenedAt,
	}
}

// CashAdjustmentRecordedEvent is raised for each sangria or suprimento
type CashAdjustmentRecordedEvent struct {
	shared.BaseDomainEvent
	SessionID      uuid.UUID       `json:"session_id"`
	AdjustmentID   uuid.UUID       `json:"adjustment_id"`
	AdjustmentType AdjustmentType  `json:"adjustment_type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
}

// EventType returns the event type name
func (e *CashAdjustmentRecordedEvent) EventType() string {
	return "CashAdjustmentRecorded"
}

// NewCashAdjustmentRecordedEvent creates a new CashAdjustmentRecordedEvent
func NewCashAdjustmentRecordedEvent(s *CashSession, adj Adjustment) *CashAdjustmentRecordedEvent {
	return &CashAdjustmentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CashAdjustmentRecorded", "CashSession", s.ID, s.TenantID),
		SessionID:       s.ID,
		AdjustmentID:    adj.ID,
		AdjustmentType:  adj.Type,
		Amount:          adj.Amount,
		Reason:          adj.Reason,
	}
}

// CashSessionClosedEvent is raised when the register closes
type CashSessionClosedEvent struct {
	shared.BaseDomainEvent
	SessionID      uuid.UUID       `json:"session_id"`
	BusinessDay    string          `json:"business_day"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	CountedAmount  decimal.Decimal `json:"counted_amount"`
	Difference     decimal.Decimal `json:"difference"`
	ClosedAt       time.Time       `json:"closed_at"`
}

// EventType returns the event type name
func (e *CashSessionClosedEvent) EventType() string {
	return "CashSessionClosed"
}

// NewCashSessionClosedEvent creates a new CashSessionClosedEvent
func NewCashSessionClosedEvent(s *CashSession) *CashSessionClosedEvent {
	closedAt := time.Now()
	if s.ClosedAt != nil {
		closedAt = *s.ClosedAt
	}
	return &CashSessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CashSessionClosed", "CashSession", s.ID, s.TenantID),
		SessionID:       s.ID,
		BusinessDay:     s.BusinessDay.String(),
		ExpectedAmount:  s.ExpectedAmount,
		CountedAmount:   s.CountedAmount,
		Difference:      s.Difference,
		ClosedAt:        closedAt,
	}
}
