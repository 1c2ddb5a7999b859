package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
	"github.com/studiobeleza/backend/internal/infrastructure/telemetry"
)

// LedgerService handles ledger entry operations
type LedgerService struct {
	entryRepo      ledger.EntryRepository
	paymentRepo    ledger.PaymentRepository
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	entryRepo ledger.EntryRepository,
	paymentRepo ledger.PaymentRepository,
) *LedgerService {
	return &LedgerService{
		entryRepo:   entryRepo,
		paymentRepo: paymentRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents publishes the aggregate's domain events and clears them
func (s *LedgerService) publishEvents(ctx context.Context, entry *ledger.LedgerEntry) {
	if s.eventPublisher == nil {
		return
	}
	events := entry.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Publish errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
	entry.ClearDomainEvents()
}

// CreateEntryRequest represents a request to create a ledger entry
type CreateEntryRequest struct {
	TenantID    uuid.UUID
	Type        ledger.EntryType
	Category    ledger.EntryCategory
	Description string
	GrossAmount decimal.Decimal
	Discount    decimal.Decimal
	EntryDate   time.Time

	ClientID          *uuid.UUID
	AppointmentID     *uuid.UUID
	PackagePurchaseID *uuid.UUID
	StaffID           *uuid.UUID
	Notes             string

	InstallmentCount  int
	CommissionStaffID *uuid.UUID
	CommissionPercent decimal.Decimal
}

// CreateEntry creates a manual ledger entry
func (s *LedgerService) CreateEntry(ctx context.Context, req CreateEntryRequest) (*ledger.LedgerEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_entry")
	defer span.End()

	telemetry.SetAttributes(span,
		"entry_type", string(req.Type),
		"entry_category", string(req.Category),
		telemetry.SpanAttrAmount, req.GrossAmount.String(),
	)

	entryDate := req.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	entry, err := ledger.NewLedgerEntry(
		req.TenantID,
		req.Type,
		req.Category,
		req.Description,
		valueobject.NewMoneyEUR(req.GrossAmount),
		valueobject.NewMoneyEUR(req.Discount),
		entryDate,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.ClientID != nil {
		entry.WithClient(*req.ClientID)
	}
	if req.AppointmentID != nil {
		entry.WithAppointment(*req.AppointmentID)
	}
	if req.PackagePurchaseID != nil {
		entry.WithPackagePurchase(*req.PackagePurchaseID)
	}
	if req.StaffID != nil {
		entry.WithStaff(*req.StaffID)
	}
	if req.Notes != "" {
		entry.WithNotes(req.Notes)
	}

	if req.InstallmentCount > 0 {
		if err := entry.SetInstallmentPlan(req.InstallmentCount); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if req.CommissionStaffID != nil {
		if err := entry.SetCommission(*req.CommissionStaffID, req.CommissionPercent); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	s.publishEvents(ctx, entry)
	return entry, nil
}

// GetEntry returns a ledger entry by ID
func (s *LedgerService) GetEntry(ctx context.Context, tenantID, entryID uuid.UUID) (*ledger.LedgerEntry, error) {
	return s.entryRepo.FindByID(ctx, tenantID, entryID)
}

// ListEntriesResult represents a paginated list of ledger entries
type ListEntriesResult struct {
	Entries []ledger.LedgerEntry
	Total   int64
}

// ListEntries lists ledger entries for a tenant with filtering
func (s *LedgerService) ListEntries(ctx context.Context, tenantID uuid.UUID, filter ledger.EntryFilter) (*ListEntriesResult, error) {
	entries, err := s.entryRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	total, err := s.entryRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	return &ListEntriesResult{Entries: entries, Total: total}, nil
}

// CancelEntryRequest represents a request to cancel a ledger entry
type CancelEntryRequest struct {
	TenantID uuid.UUID
	EntryID  uuid.UUID
	Reason   string
}

// CancelEntry cancels a ledger entry. Fully paid entries become ESTORNADO,
// anything else becomes CANCELADO.
func (s *LedgerService) CancelEntry(ctx context.Context, req CancelEntryRequest) (*ledger.LedgerEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "cancel_entry")
	defer span.End()

	entry, err := s.entryRepo.FindByID(ctx, req.TenantID, req.EntryID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := entry.Cancel(req.Reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.entryRepo.SaveWithLock(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	telemetry.AddEvent(span, "entry_cancelled", "entry_id", entry.ID.String(), "status", string(entry.Status))
	s.publishEvents(ctx, entry)
	return entry, nil
}

// PeriodSummary aggregates the financial movement of a period
type PeriodSummary struct {
	From     time.Time
	To       time.Time
	Receitas decimal.Decimal
	Despesas decimal.Decimal
	Saldo    decimal.Decimal
	Methods  []ledger.MethodMovement
}

// GetPeriodSummary returns totals of non-cancelled entries in [from, to) plus
// the active payment movement split by method
func (s *LedgerService) GetPeriodSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*PeriodSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "period_summary")
	defer span.End()

	if !to.After(from) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end must be after period start")
	}

	receitas, err := s.entryRepo.SumByTypeForPeriod(ctx, tenantID, ledger.EntryTypeReceita, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	despesas, err := s.entryRepo.SumByTypeForPeriod(ctx, tenantID, ledger.EntryTypeDespesa, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}

	methods, err := s.paymentRepo.MovementsByMethodForPeriod(ctx, tenantID, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to aggregate payment methods: %w", err)
	}

	return &PeriodSummary{
		From:     from,
		To:       to,
		Receitas: receitas,
		Despesas: despesas,
		Saldo:    receitas.Sub(despesas),
		Methods:  methods,
	}, nil
}
