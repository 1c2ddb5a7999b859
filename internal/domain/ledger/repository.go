package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/shared"
)

// EntryFilter defines filtering options for ledger entry queries
type EntryFilter struct {
	shared.Filter
	Type              *EntryType     // Filter by RECEITA / DESPESA
	Category          *EntryCategory // Filter by category
	Status            *EntryStatus   // Filter by status
	ClientID          *uuid.UUID     // Filter by client
	AppointmentID     *uuid.UUID     // Filter by originating appointment
	PackagePurchaseID *uuid.UUID     // Filter by linked package purchase
	StaffID           *uuid.UUID     // Filter by staff member
	FromDate          *time.Time     // Filter by entry date range start (inclusive)
	ToDate            *time.Time     // Filter by entry date range end (exclusive)
}

// MethodMovement is one row of the day's movement breakdown by payment method
type MethodMovement struct {
	Method   PaymentMethod   `json:"method"`
	Receitas decimal.Decimal `json:"receitas"`
	Despesas decimal.Decimal `json:"despesas"`
	Count    int64           `json:"count"`
}

// EntryRepository defines the interface for ledger entry persistence
type EntryRepository interface {
	// FindByID finds a ledger entry by ID for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*LedgerEntry, error)

	// FindAll finds all ledger entries for a tenant with filtering
	FindAll(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) ([]LedgerEntry, error)

	// FindByAppointment finds entries linked to an appointment
	FindByAppointment(ctx context.Context, tenantID, appointmentID uuid.UUID) ([]LedgerEntry, error)

	// FindByPackagePurchase finds entries linked to a package purchase
	FindByPackagePurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) ([]LedgerEntry, error)

	// Save creates or updates a ledger entry
	Save(ctx context.Context, entry *LedgerEntry) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, entry *LedgerEntry) error

	// Delete soft deletes a ledger entry for a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts ledger entries for a tenant with optional filters
	Count(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) (int64, error)

	// SumByTypeForPeriod sums final amounts of non-cancelled entries of the given
	// type whose entry date falls in [from, to)
	SumByTypeForPeriod(ctx context.Context, tenantID uuid.UUID, entryType EntryType, from, to time.Time) (decimal.Decimal, error)

	// SumByCategoryForPeriod sums final amounts of non-cancelled entries of the
	// given category whose entry date falls in [from, to); used for the register's
	// sangria and suprimento totals
	SumByCategoryForPeriod(ctx context.Context, tenantID uuid.UUID, category EntryCategory, from, to time.Time) (decimal.Decimal, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByEntry finds all payments (active and reversed) against an entry
	FindByEntry(ctx context.Context, tenantID, entryID uuid.UUID) ([]Payment, error)

	// SumActiveByEntry sums the active payments against an entry
	SumActiveByEntry(ctx context.Context, tenantID, entryID uuid.UUID) (decimal.Decimal, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SumCashForPeriod sums active DINHEIRO payments in [from, to) split by the
	// owning entry's type; used for the cash register expected balance
	SumCashForPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (receitas, despesas decimal.Decimal, err error)

	// MovementsByMethodForPeriod aggregates active payments in [from, to) by
	// method, split into revenue and expense totals
	MovementsByMethodForPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]MethodMovement, error)
}
