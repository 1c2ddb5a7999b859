package cashier

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
)

// SessionStatus represents the lifecycle of a cash register session
type SessionStatus string

const (
	SessionStatusAberto  SessionStatus = "ABERTO"
	SessionStatusFechado SessionStatus = "FECHADO"
)

// IsValid checks if the status is a valid SessionStatus
func (s SessionStatus) IsValid() bool {
	return s == SessionStatusAberto || s == SessionStatusFechado
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// DayStatus is the read-side status of a business day's register. Days with no
// session report NAO_ABERTO; it is never stored.
type DayStatus string

const (
	DayStatusAberto    DayStatus = "ABERTO"
	DayStatusFechado   DayStatus = "FECHADO"
	DayStatusNaoAberto DayStatus = "NAO_ABERTO"
)

// AdjustmentType tags a mid-day cash drawer movement
type AdjustmentType string

const (
	AdjustmentSangria    AdjustmentType = "SANGRIA"    // Cash removed from the drawer
	AdjustmentSuprimento AdjustmentType = "SUPRIMENTO" // Cash added to the drawer
)

// IsValid checks if the adjustment type is valid
func (t AdjustmentType) IsValid() bool {
	return t == AdjustmentSangria || t == AdjustmentSuprimento
}

// String returns the string representation of AdjustmentType
func (t AdjustmentType) String() string {
	return string(t)
}

// Adjustment is one sangria or suprimento recorded against the session.
// It is a value object within the CashSession aggregate, stored as JSONB.
type Adjustment struct {
	ID            uuid.UUID       `json:"id"`
	Type          AdjustmentType  `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	OccurredAt    time.Time       `json:"occurred_at"`
	LedgerEntryID *uuid.UUID      `json:"ledger_entry_id,omitempty"` // The tagged entry the movement emitted
}

// Adjustments is a slice of Adjustment that implements GORM Scanner/Valuer for JSONB storage
type Adjustments []Adjustment

// Value implements driver.Valuer interface for GORM to store as JSONB
func (a Adjustments) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (a *Adjustments) Scan(value interface{}) error {
	if value == nil {
		*a = Adjustments{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Adjustments: unsupported type")
	}

	if len(bytes) == 0 {
		*a = Adjustments{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// CashSession represents one business day of the cash register.
// At most one session exists per (tenant, business day); the uniqueness is
// enforced by a database constraint, not by scanning entry descriptions.
type CashSession struct {
	shared.TenantAggregateRoot
	BusinessDay  valueobject.BusinessDay `json:"business_day"`
	Status       SessionStatus           `json:"status"`
	OpeningFloat decimal.Decimal         `json:"opening_float"`
	OpenedAt     time.Time               `json:"opened_at"`

	Adjustments Adjustments `json:"adjustments"`

	// Set at close
	ClosedAt       *time.Time      `json:"closed_at"`
	CountedAmount  decimal.Decimal `json:"counted_amount"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	Difference     decimal.Decimal `json:"difference"` // counted - expected

	// References to the tagged ledger entries the session emitted
	OpeningEntryID *uuid.UUID `json:"opening_entry_id"`
	ClosingEntryID *uuid.UUID `json:"closing_entry_id"`

	Notes string `json:"notes"`
}

// OpenCashSession opens the register for a business day with an opening float
func OpenCashSession(tenantID uuid.UUID, day valueobject.BusinessDay, openingFloat valueobject.Money, now time.Time) (*CashSession, error) {
	if day.IsZero() {
		return nil, shared.NewDomainError("INVALID_DAY", "Business day is required")
	}
	if openingFloat.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening float cannot be negative")
	}
	if now.IsZero() {
		now = time.Now()
	}

	s := &CashSession{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BusinessDay:         day,
		Status:              SessionStatusAberto,
		OpeningFloat:        openingFloat.Amount(),
		OpenedAt:            now,
		Adjustments:         Adjustments{},
	}

	s.AddDomainEvent(NewCashSessionOpenedEvent(s))

	return s, nil
}

// LinkOpeningEntry records the tagged ledger entry emitted for the opening
func (s *CashSession) LinkOpeningEntry(entryID uuid.UUID) {
	if entryID != uuid.Nil {
		s.OpeningEntryID = &entryID
	}
}

// RecordAdjustment appends a sangria or suprimento to the open session
func (s *CashSession) RecordAdjustment(kind AdjustmentType, amount valueobject.Money, reason string, ledgerEntryID *uuid.UUID, now time.Time) error {
	if s.Status != SessionStatusAberto {
		return shared.NewDomainError("SESSION_NOT_OPEN", fmt.Sprintf("Cannot record %s on a %s session", kind, s.Status))
	}
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_ADJUSTMENT", "Adjustment type must be SANGRIA or SUPRIMENTO")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Adjustment amount must be positive")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	if now.IsZero() {
		now = time.Now()
	}

	adj := Adjustment{
		ID:            uuid.New(),
		Type:          kind,
		Amount:        amount.Amount(),
		Reason:        reason,
		OccurredAt:    now,
		LedgerEntryID: ledgerEntryID,
	}
	s.Adjustments = append(s.Adjustments, adj)

	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewCashAdjustmentRecordedEvent(s, adj))

	return nil
}

// Close reconciles and closes the session. The expected amount is computed by
// the caller from the day's cash payments; the session records the counted
// amount and the difference.
func (s *CashSession) Close(counted valueobject.Money, expected valueobject.Money, now time.Time) error {
	if s.Status == SessionStatusFechado {
		return shared.NewDomainError("SESSION_ALREADY_CLOSED", "Cash session is already closed")
	}
	if counted.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Counted amount cannot be negative")
	}
	if now.IsZero() {
		now = time.Now()
	}

	s.Status = SessionStatusFechado
	s.ClosedAt = &now
	s.CountedAmount = counted.Amount()
	s.ExpectedAmount = expected.Amount()
	s.Difference = counted.Amount().Sub(expected.Amount())

	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewCashSessionClosedEvent(s))

	return nil
}

// LinkClosingEntry records the tagged ledger entry emitted for the close
func (s *CashSession) LinkClosingEntry(entryID uuid.UUID) {
	if entryID != uuid.Nil {
		s.ClosingEntryID = &entryID
	}
}

// TotalSangrias sums the cash removed from the drawer during the session
func (s *CashSession) TotalSangrias() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Adjustments {
		if a.Type == AdjustmentSangria {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// TotalSuprimentos sums the cash added to the drawer during the session
func (s *CashSession) TotalSuprimentos() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Adjustments {
		if a.Type == AdjustmentSuprimento {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// IsOpen returns true while the session accepts movements
func (s *CashSession) IsOpen() bool {
	return s.Status == SessionStatusAberto
}

// GetOpeningFloatMoney returns the opening float as Money
func (s *CashSession) GetOpeningFloatMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(s.OpeningFloat)
}

/// ExpectedBalance computes the drawer balance the register should hold:
// opening float + cash receipts - cash expenses + suprimentos - sangrias
func ExpectedBalance(openingFloat, cashReceitas, cashDespesas, suprimentos, sangrias decimal.Decimal) decimal.Decimal {
	return openingFloat.Add(cashReceitas).Sub(cashDespesas).Add(suprimentos).Sub(sangrias)
}
