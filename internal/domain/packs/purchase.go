package packs

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

// PurchaseStatus represents the lifecycle of a package purchase
type PurchaseStatus string

const (
	PurchaseStatusAtivo     PurchaseStatus = "ATIVO"
	PurchaseStatusConcluido PurchaseStatus = "CONCLUIDO" // All sessions consumed
	PurchaseStatusCancelado PurchaseStatus = "CANCELADO"
	PurchaseStatusExpirado  PurchaseStatus = "EXPIRADO"
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusAtivo, PurchaseStatusConcluido, PurchaseStatusCancelado, PurchaseStatusExpirado:
		return true
	}
	return false
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the purchase can no longer consume sessions
func (s PurchaseStatus) IsTerminal() bool {
	return s == PurchaseStatusConcluido || s == PurchaseStatusCancelado
}

// HistoryEntryType tags an entry in the purchase history log
type HistoryEntryType string

const (
	HistoryUso          HistoryEntryType = "USO"
	HistoryExtensao     HistoryEntryType = "EXTENSAO"
	HistoryCancelamento HistoryEntryType = "CANCELAMENTO"
)

// IsValid checks if the history entry type is valid
func (t HistoryEntryType) IsValid() bool {
	return t == HistoryUso || t == HistoryExtensao || t == HistoryCancelamento
}

// HistoryEntry is one tagged record in the purchase's append-only history.
// Only the fields relevant to the entry's type are populated:
// USO carries appointment/session data, EXTENSAO carries the expiry change,
// CANCELAMENTO carries the reason.
type HistoryEntry struct {
	ID         uuid.UUID        `json:"id"`
	Type       HistoryEntryType `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`

	// USO fields
	AppointmentID *uuid.UUID       `json:"appointment_id,omitempty"`
	SessionNumber int              `json:"session_number,omitempty"` // 1-based ordinal
	SessionValue  *decimal.Decimal `json:"session_value,omitempty"`
	StaffID       *uuid.UUID       `json:"staff_id,omitempty"`

	// EXTENSAO fields
	PreviousExpiry *time.Time `json:"previous_expiry,omitempty"`
	NewExpiry      *time.Time `json:"new_expiry,omitempty"`

	// EXTENSAO and CANCELAMENTO fields
	Reason string `json:"reason,omitempty"`
	Actor  string `json:"actor,omitempty"`
}

// History is the purchase's event log that implements GORM Scanner/Valuer for JSONB storage
type History []HistoryEntry

// Value implements driver.Valuer interface for GORM to store as JSONB
func (h History) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (h *History) Scan(value interface{}) error {
	if value == nil {
		*h = History{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan History: unsupported type")
	}

	if len(bytes) == 0 {
		*h = History{}
		return nil
	}

	return json.Unmarshal(bytes, h)
}

// Usages returns only the USO entries, in order
func (h History) Usages() []HistoryEntry {
	var out []HistoryEntry
	for _, e := range h {
		if e.Type == HistoryUso {
			out = append(out, e)
		}
	}
	return out
}

// Extensions returns only the EXTENSAO entries, in order
func (h History) Extensions() []HistoryEntry {
	var out []HistoryEntry
	for _, e := range h {
		if e.Type == HistoryExtensao {
			out = append(out, e)
		}
	}
	return out
}

// PackagePurchase represents a client's purchase of a session package.
// Sessions, amounts and installment counters are derived values recomputed at
// every mutation boundary; the history log is append-only.
type PackagePurchase struct {
	shared.TenantAggregateRoot
	ClientID    uuid.UUID `json:"client_id"`
	PackageID   uuid.UUID `json:"package_id"`
	PackageName string    `json:"package_name"` // denormalized; catalog edits must not rewrite sold purchases

	SessionsContracted int `json:"sessions_contracted"`
	SessionsUsed       int `json:"sessions_used"`
	SessionsRemaining  int `json:"sessions_remaining"` // contracted - used, never negative

	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"` // total - paid

	IsInstallment     bool            `json:"is_installment"`
	InstallmentCount  int             `json:"installment_count"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"` // total / count, rounded to cents
	InstallmentsPaid  int             `json:"installments_paid"`  // floor(paid / installment amount)

	Status      PurchaseStatus `json:"status"`
	PurchasedAt time.Time      `json:"purchased_at"`
	ExpiresAt   *time.Time     `json:"expires_at"`

	EventLog History `json:"event_log"`

	CancelledAt  *time.Time `json:"cancelled_at"`
	CancelReason string     `json:"cancel_reason"`
	Notes        string     `json:"notes"`
}

// NewPackagePurchase creates a new active purchase from catalog terms.
// validityDays of zero means the purchase never expires.
func NewPackagePurchase(
	tenantID uuid.UUID,
	clientID uuid.UUID,
	packageID uuid.UUID,
	packageName string,
	sessions int,
	totalAmount valueobject.Money,
	validityDays int,
	purchasedAt time.Time,
) (*PackagePurchase, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if packageID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PACKAGE", "Package ID cannot be empty")
	}
	if packageName == "" {
		return nil, shared.NewDomainError("INVALID_PACKAGE", "Package name cannot be empty")
	}
	if sessions <= 0 {
		return nil, shared.NewDomainError("INVALID_SESSIONS", "Purchase must contain at least one session")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Purchase total amount must be positive")
	}
	if validityDays < 0 {
		return nil, shared.NewDomainError("INVALID_VALIDITY", "Validity days cannot be negative")
	}
	if purchasedAt.IsZero() {
		purchasedAt = time.Now()
	}

	p := &PackagePurchase{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		PackageID:           packageID,
		PackageName:         packageName,
		SessionsContracted:  sessions,
		SessionsUsed:        0,
		SessionsRemaining:   sessions,
		TotalAmount:         totalAmount.Amount(),
		PaidAmount:          decimal.Zero,
		OutstandingAmount:   totalAmount.Amount(),
		Status:              PurchaseStatusAtivo,
		PurchasedAt:         purchasedAt,
		EventLog:            History{},
	}

	if validityDays > 0 {
		expires := purchasedAt.AddDate(0, 0, validityDays)
		p.ExpiresAt = &expires
	}

	p.AddDomainEvent(NewPackagePurchaseCreatedEvent(p))

	return p, nil
}

// WithNotes sets free-form notes on the purchase
func (p *PackagePurchase) WithNotes(notes string) *PackagePurchase {
	p.Notes = notes
	return p
}

// SetInstallmentPlan marks the purchase as payable in installments
func (p *PackagePurchase) SetInstallmentPlan(count int) error {
	if count < 2 {
		return shared.NewDomainError("INVALID_INSTALLMENTS", "Installment count must be at least 2")
	}
	p.IsInstallment = true
	p.InstallmentCount = count
	p.InstallmentAmount = p.TotalAmount.Div(decimal.NewFromInt(int64(count))).Round(2)
	p.recalculateInstallmentsPaid()
	return nil
}

// RegisterPayment adds a payment towards the purchase total
func (p *PackagePurchase) RegisterPayment(amount valueobject.Money) error {
	if p.Status == PurchaseStatusCancelado {
		return shared.NewDomainError("INVALID_STATE", "Cannot register payment on a cancelled purchase")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(p.OutstandingAmount) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING", fmt.Sprintf("Payment amount %s exceeds outstanding amount %s", amount.StringFixed(2), p.OutstandingAmount.StringFixed(2)))
	}

	p.PaidAmount = p.PaidAmount.Add(amount.Amount())
	p.recalculateAmounts()

	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// RecalculateFromPayments resets the paid amount from the cumulative
// active-payment total. Used after a payment reversal shrinks the total.
func (p *PackagePurchase) RecalculateFromPayments(cumulativePaid valueobject.Money) error {
	if cumulativePaid.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Cumulative paid amount cannot be negative")
	}
	p.PaidAmount = cumulativePaid.Amount()
	p.recalculateAmounts()

	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// ConsumeSession uses one session of the package for an appointment.
// A call after the expiry date flips the purchase to EXPIRADO and fails without
// consuming; the caller must persist the flip.
func (p *PackagePurchase) ConsumeSession(appointmentID uuid.UUID, sessionValue decimal.Decimal, staffID *uuid.UUID, now time.Time) error {
	if now.IsZero() {
		now = time.Now()
	}

	switch p.Status {
	case PurchaseStatusCancelado:
		return shared.NewDomainError("PURCHASE_NOT_ACTIVE", "Cannot consume session on a cancelled purchase")
	case PurchaseStatusConcluido:
		return shared.NewDomainError("NO_SESSIONS_REMAINING", "All sessions of this purchase have been used")
	case PurchaseStatusExpirado:
		return shared.NewDomainError("PACKAGE_EXPIRED", "Package has expired")
	}

	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		p.Status = PurchaseStatusExpirado
		p.UpdatedAt = now
		p.IncrementVersion()
		p.AddDomainEvent(NewPackagePurchaseExpiredEvent(p))
		return shared.NewDomainError("PACKAGE_EXPIRED", "Package has expired")
	}

	if p.SessionsRemaining <= 0 {
		return shared.NewDomainError("NO_SESSIONS_REMAINING", "All sessions of this purchase have been used")
	}

	p.SessionsUsed++
	p.recalculateSessions()

	entry := HistoryEntry{
		ID:            uuid.New(),
		Type:          HistoryUso,
		OccurredAt:    now,
		SessionNumber: p.SessionsUsed,
		StaffID:       staffID,
	}
	if appointmentID != uuid.Nil {
		entry.AppointmentID = &appointmentID
	}
	if !sessionValue.IsZero() {
		v := sessionValue
		entry.SessionValue = &v
	}
	p.EventLog = append(p.EventLog, entry)

	p.AddDomainEvent(NewSessionConsumedEvent(p, entry))

	if p.SessionsRemaining == 0 {
		p.Status = PurchaseStatusConcluido
		p.AddDomainEvent(NewPackagePurchaseCompletedEvent(p))
	}

	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// ExtendExpiry pushes the expiry date forward and reactivates an expired
// purchase that still has sessions remaining
func (p *PackagePurchase) ExtendExpiry(days int, reason, actor string, now time.Time) error {
	if days <= 0 {
		return shared.NewDomainError("INVALID_EXTENSION", "Extension days must be positive")
	}
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot extend purchase in %s status", p.Status))
	}
	if now.IsZero() {
		now = time.Now()
	}

	base := now
	if p.ExpiresAt != nil {
		base = *p.ExpiresAt
	}
	newExpiry := base.AddDate(0, 0, days)

	entry := HistoryEntry{
		ID:             uuid.New(),
		Type:           HistoryExtensao,
		OccurredAt:     now,
		PreviousExpiry: p.ExpiresAt,
		NewExpiry:      &newExpiry,
		Reason:         reason,
		Actor:          actor,
	}
	p.EventLog = append(p.EventLog, entry)
	p.ExpiresAt = &newExpiry

	if p.Status == PurchaseStatusExpirado && p.SessionsRemaining > 0 && newExpiry.After(now) {
		p.Status = PurchaseStatusAtivo
	}

	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPackagePurchaseExtendedEvent(p, entry))

	return nil
}

// Cancel voids the purchase. Terminal: no sessions can be consumed afterwards.
func (p *PackagePurchase) Cancel(reason, actor string) error {
	if p.Status == PurchaseStatusCancelado {
		return shared.NewDomainError("INVALID_STATE", "Purchase is already cancelled")
	}
	if p.Status == PurchaseStatusConcluido {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a completed purchase")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	p.EventLog = append(p.EventLog, HistoryEntry{
		ID:         uuid.New(),
		Type:       HistoryCancelamento,
		OccurredAt: now,
		Reason:     reason,
		Actor:      actor,
	})

	p.Status = PurchaseStatusCancelado
	p.CancelledAt = &now
	p.CancelReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPackagePurchaseCancelledEvent(p))

	return nil
}

// MarkExpiredIfPast flips an active purchase past its expiry date to EXPIRADO.
// Returns true when the status changed.
func (p *PackagePurchase) MarkExpiredIfPast(now time.Time) bool {
	if p.Status != PurchaseStatusAtivo || p.ExpiresAt == nil {
		return false
	}
	if now.IsZero() {
		now = time.Now()
	}
	if !now.After(*p.ExpiresAt) {
		return false
	}
	p.Status = PurchaseStatusExpirado
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPackagePurchaseExpiredEvent(p))
	return true
}

func (p *PackagePurchase) recalculateSessions() {
	remaining := p.SessionsContracted - p.SessionsUsed
	if remaining < 0 {
		remaining = 0
	}
	p.SessionsRemaining = remaining
}

func (p *PackagePurchase) recalculateAmounts() {
	p.OutstandingAmount = p.TotalAmount.Sub(p.PaidAmount)
	if p.OutstandingAmount.IsNegative() {
		p.OutstandingAmount = decimal.Zero
	}
	p.recalculateInstallmentsPaid()
}

func (p *PackagePurchase) recalculateInstallmentsPaid() {
	if !p.IsInstallment || p.InstallmentAmount.IsZero() {
		return
	}
	paid := int(p.PaidAmount.Div(p.InstallmentAmount).Floor().IntPart())
	if paid > p.InstallmentCount {
		paid = p.InstallmentCount
	}
	p.InstallmentsPaid = paid
}

// Helper methods

// IsFullyPaid returns true when nothing remains outstanding
func (p *PackagePurchase) IsFullyPaid() bool {
	return p.OutstandingAmount.IsZero()
}

// SessionValue returns the pro-rata value of one session, rounded to cents
func (p *PackagePurchase) SessionValue() decimal.Decimal {
	if p.SessionsContracted == 0 {
		return decimal.Zero
	}
	return p.TotalAmount.Div(decimal.NewFromInt(int64(p.SessionsContracted))).Round(2)
}

// HasConsumedSessions returns true if any session was ever used
func (p *PackagePurchase) HasConsumedSessions() bool {
	return p.SessionsUsed > 0
}

// GetTotalAmountMoney returns the total amount as Money
func (p *PackagePurchase) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(p.TotalAmount)
}

// GetOutstandingAmountMoney returns the outstanding amount as Money
func (p *PackagePurchase) GetOutstandingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(p.OutstandingAmount)
}
