package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/packs"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
	"github.com/studiobeleza/backend/internal/infrastructure/telemetry"
)

// idempotencyTTL bounds how long a processed payment key blocks replays
const idempotencyTTL = 24 * time.Hour

// PaymentService registers and reverses payments against ledger entries.
// A payment and the entry state it derives are written in one transaction;
// entries that fund a package purchase keep the purchase's paid totals in
// the same transaction too.
type PaymentService struct {
	entryRepo      ledger.EntryRepository
	paymentRepo    ledger.PaymentRepository
	purchaseRepo   packs.PurchaseRepository
	txManager      shared.TransactionManager
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	entryRepo ledger.EntryRepository,
	paymentRepo ledger.PaymentRepository,
	purchaseRepo packs.PurchaseRepository,
	txManager shared.TransactionManager,
) *PaymentService {
	return &PaymentService{
		entryRepo:    entryRepo,
		paymentRepo:  paymentRepo,
		purchaseRepo: purchaseRepo,
		txManager:    txManager,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore sets the store used to deduplicate replayed requests
func (s *PaymentService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

func (s *PaymentService) publishEvents(ctx context.Context, aggregates ...interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}) {
	if s.eventPublisher == nil {
		return
	}
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = s.eventPublisher.Publish(ctx, events...)
		agg.ClearDomainEvents()
	}
}

// RegisterPaymentRequest represents a request to register a payment
type RegisterPaymentRequest struct {
	TenantID       uuid.UUID
	EntryID        uuid.UUID
	Amount         decimal.Decimal
	Method         ledger.PaymentMethod
	Details        ledger.PaymentDetails
	PaidAt         time.Time
	Notes          string
	IdempotencyKey string
}

// RegisterPaymentResult represents the outcome of registering a payment
type RegisterPaymentResult struct {
	Payment        *ledger.Payment
	Entry          *ledger.LedgerEntry
	CumulativePaid decimal.Decimal
}

// RegisterPayment records a payment against a ledger entry and updates the
// entry's derived state from the cumulative total of active payments
func (s *PaymentService) RegisterPayment(ctx context.Context, req RegisterPaymentRequest) (*RegisterPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "register")
	defer span.End()

	telemetry.SetAttributes(span,
		"entry_id", req.EntryID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		"payment_method", string(req.Method),
	)

	if req.IdempotencyKey != "" && s.idempotency != nil {
		key := fmt.Sprintf("payment:%s:%s", req.TenantID, req.IdempotencyKey)
		fresh, err := s.idempotency.MarkProcessed(ctx, key, idempotencyTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !fresh {
			err := shared.NewDomainError("DUPLICATE_REQUEST", "This payment was already processed")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	var result *RegisterPaymentResult
	var purchase *packs.PackagePurchase
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		entry, err := s.entryRepo.FindByID(txCtx, req.TenantID, req.EntryID)
		if err != nil {
			return err
		}

		payment, err := ledger.NewPayment(req.TenantID, entry.ID, valueobject.NewMoneyEUR(req.Amount), req.Method, req.Details, paidAt)
		if err != nil {
			return err
		}
		if req.Notes != "" {
			payment.WithNotes(req.Notes)
		}

		alreadyPaid, err := s.paymentRepo.SumActiveByEntry(txCtx, req.TenantID, entry.ID)
		if err != nil {
			return fmt.Errorf("failed to sum payments: %w", err)
		}
		cumulative := alreadyPaid.Add(req.Amount)

		if err := entry.RegisterPayment(valueobject.NewMoneyEUR(cumulative), req.Method, paidAt); err != nil {
			return err
		}

		if err := s.paymentRepo.Save(txCtx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if err := s.entryRepo.SaveWithLock(txCtx, entry); err != nil {
			return err
		}

		// An entry funding a package purchase carries the purchase's paid
		// totals along with it
		if entry.PackagePurchaseID != nil && entry.Category == ledger.CategoryPacote {
			purchase, err = s.purchaseRepo.FindByID(txCtx, req.TenantID, *entry.PackagePurchaseID)
			if err != nil {
				return err
			}
			if err := purchase.RegisterPayment(valueobject.NewMoneyEUR(req.Amount)); err != nil {
				return err
			}
			if err := s.purchaseRepo.SaveWithLock(txCtx, purchase); err != nil {
				return err
			}
		}

		result = &RegisterPaymentResult{
			Payment:        payment,
			Entry:          entry,
			CumulativePaid: cumulative,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "payment_registered",
		telemetry.SpanAttrPaymentID, result.Payment.ID.String(),
		"entry_status", string(result.Entry.Status),
	)

	s.publishEvents(ctx, result.Payment, result.Entry)
	if purchase != nil {
		s.publishEvents(ctx, purchase)
	}
	return result, nil
}

// ReversePaymentRequest represents a request to reverse a payment
type ReversePaymentRequest struct {
	TenantID  uuid.UUID
	PaymentID uuid.UUID
	Reason    string
}

// ReversePaymentResult represents the outcome of reversing a payment
type ReversePaymentResult struct {
	Payment        *ledger.Payment
	Entry          *ledger.LedgerEntry
	CumulativePaid decimal.Decimal
}

// ReversePayment marks a payment ESTORNADO and recomputes the entry's paid
// state from the remaining active payments
func (s *PaymentService) ReversePayment(ctx context.Context, req ReversePaymentRequest) (*ReversePaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "reverse")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, req.PaymentID.String())

	var result *ReversePaymentResult
	var purchase *packs.PackagePurchase
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		payment, err := s.paymentRepo.FindByID(txCtx, req.TenantID, req.PaymentID)
		if err != nil {
			return err
		}

		if err := payment.Reverse(req.Reason); err != nil {
			return err
		}
		if err := s.paymentRepo.Save(txCtx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		entry, err := s.entryRepo.FindByID(txCtx, req.TenantID, payment.EntryID)
		if err != nil {
			return err
		}

		cumulative, err := s.paymentRepo.SumActiveByEntry(txCtx, req.TenantID, entry.ID)
		if err != nil {
			return fmt.Errorf("failed to sum payments: %w", err)
		}

		if err := entry.RecalculateFromPayments(valueobject.NewMoneyEUR(cumulative)); err != nil {
			return err
		}
		if err := s.entryRepo.SaveWithLock(txCtx, entry); err != nil {
			return err
		}

		if entry.PackagePurchaseID != nil && entry.Category == ledger.CategoryPacote {
			purchase, err = s.purchaseRepo.FindByID(txCtx, req.TenantID, *entry.PackagePurchaseID)
			if err != nil {
				return err
			}
			if err := purchase.RecalculateFromPayments(valueobject.NewMoneyEUR(cumulative)); err != nil {
				return err
			}
			if err := s.purchaseRepo.SaveWithLock(txCtx, purchase); err != nil {
				return err
			}
		}

		result = &ReversePaymentResult{
			Payment:        payment,
			Entry:          entry,
			CumulativePaid: cumulative,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "payment_reversed",
		telemetry.SpanAttrPaymentID, result.Payment.ID.String(),
		"entry_status", string(result.Entry.Status),
	)

	s.publishEvents(ctx, result.Payment, result.Entry)
	if purchase != nil {
		s.publishEvents(ctx, purchase)
	}
	return result, nil
}

// ListEntryPayments returns the payments recorded against an entry
func (s *PaymentService) ListEntryPayments(ctx context.Context, tenantID, entryID uuid.UUID) ([]ledger.Payment, error) {
	if _, err := s.entryRepo.FindByID(ctx, tenantID, entryID); err != nil {
		return nil, err
	}
	return s.paymentRepo.FindByEntry(ctx, tenantID, entryID)
}
