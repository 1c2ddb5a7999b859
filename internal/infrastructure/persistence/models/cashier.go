package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/cashier"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
)

// CashSessionModel is the persistence model for the CashSession aggregate root.
// The (tenant_id, business_day) unique index is the invariant that keeps one
// register session per day.
type CashSessionModel struct {
	TenantAggregateModel
	BusinessDay  string                `gorm:"type:varchar(10);not null;uniqueIndex:idx_cash_sessions_tenant_day,priority:2"`
	Status       cashier.SessionStatus `gorm:"type:varchar(10);not null;default:'ABERTO';index"`
	OpeningFloat decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	OpenedAt     time.Time             `gorm:"not null"`

	Adjustments cashier.Adjustments `gorm:"type:jsonb;default:'[]'"`

	ClosedAt       *time.Time
	CountedAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExpectedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Difference     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	OpeningEntryID *uuid.UUID `gorm:"type:uuid"`
	ClosingEntryID *uuid.UUID `gorm:"type:uuid"`

	Notes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CashSessionModel) TableName() string {
	return "cash_sessions"
}

// ToDomain converts the persistence model to a domain CashSession entity.
func (m *CashSessionModel) ToDomain() (*cashier.CashSession, error) {
	day, err := valueobject.ParseBusinessDay(m.BusinessDay)
	if err != nil {
		return nil, err
	}

	s := &cashier.CashSession{
		BusinessDay:    day,
		Status:         m.Status,
		OpeningFloat:   m.OpeningFloat,
		OpenedAt:       m.OpenedAt,
		Adjustments:    m.Adjustments,
		ClosedAt:       m.ClosedAt,
		CountedAmount:  m.CountedAmount,
		ExpectedAmount: m.ExpectedAmount,
		Difference:     m.Difference,
		OpeningEntryID: m.OpeningEntryID,
		ClosingEntryID: m.ClosingEntryID,
		Notes:          m.Notes,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s, nil
}

// FromDomain populates the persistence model from a domain CashSession entity.
func (m *CashSessionModel) FromDomain(s *cashier.CashSession) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.BusinessDay = s.BusinessDay.String()
	m.Status = s.Status
	m.OpeningFloat = s.OpeningFloat
	m.OpenedAt = s.OpenedAt
	m.Adjustments = s.Adjustments
	m.ClosedAt = s.ClosedAt
	m.CountedAmount = s.CountedAmount
	m.ExpectedAmount = s.ExpectedAmount
	m.Difference = s.Difference
	m.OpeningEntryID = s.OpeningEntryID
	m.ClosingEntryID = s.ClosingEntryID
	m.Notes = s.Notes
}

// CashSessionModelFromDomain creates a new persistence model from a domain CashSession.
func CashSessionModelFromDomain(s *cashier.CashSession) *CashSessionModel {
	m := &CashSessionModel{}
	m.FromDomain(s)
	return m
}
