package packs

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

// PurchaseService handles the lifecycle of sold packages: selling, session
// consumption, expiry extension and cancellation. A sale writes the purchase
// and its funding ledger entry in one transaction.
type PurchaseService struct {
	definitionRepo packs.DefinitionRepository
	purchaseRepo   packs.PurchaseRepository
	entryRepo      ledger.EntryRepository
	paymentRepo    ledger.PaymentRepository
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	definitionRepo packs.DefinitionRepository,
	purchaseRepo packs.PurchaseRepository,
	entryRepo ledger.EntryRepository,
	paymentRepo ledger.PaymentRepository,
	txManager shared.TransactionManager,
) *PurchaseService {
	return &PurchaseService{
		definitionRepo: definitionRepo,
		purchaseRepo:   purchaseRepo,
		entryRepo:      entryRepo,
		paymentRepo:    paymentRepo,
		txManager:      txManager,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PurchaseService) publishEvents(ctx context.Context, aggregates ...interface {
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

// InitialPayment describes a payment taken at the moment of sale
type InitialPayment struct {
	Amount  decimal.Decimal
	Method  ledger.PaymentMethod
	Details ledger.PaymentDetails
}

// SellPackageRequest represents a request to sell a package to a client.
// ValidityDays, when set, overrides the definition's validity for this sale.
type SellPackageRequest struct {
	TenantID         uuid.UUID
	ClientID         uuid.UUID
	PackageID        uuid.UUID
	PurchasedAt      time.Time
	ValidityDays     *int
	InstallmentCount int
	InitialPayment   *InitialPayment
	Notes            string
}

// SellPackageResult represents the outcome of a package sale
type SellPackageResult struct {
	Purchase *packs.PackagePurchase
	Entry    *ledger.LedgerEntry
	Payment  *ledger.Payment
}

// SellPackage sells a package to a client: creates the purchase, the PACOTE
// revenue entry that funds it and, when provided, the initial payment
func (s *PurchaseService) SellPackage(ctx context.Context, req SellPackageRequest) (*SellPackageResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "package_purchase", "sell")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, req.ClientID.String(),
		"package_id", req.PackageID.String(),
	)

	purchasedAt := req.PurchasedAt
	if purchasedAt.IsZero() {
		purchasedAt = time.Now()
	}

	var result *SellPackageResult
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		definition, err := s.definitionRepo.FindByID(txCtx, req.TenantID, req.PackageID)
		if err != nil {
			return err
		}
		if !definition.Active {
			return shared.NewDomainError("PACKAGE_INACTIVE", "This package is no longer on sale")
		}

		validityDays := definition.ValidityDays
		if req.ValidityDays != nil {
			if *req.ValidityDays <= 0 {
				return shared.NewDomainError("INVALID_VALIDITY", "Validity days must be positive")
			}
			validityDays = *req.ValidityDays
		}

		purchase, err := packs.NewPackagePurchase(
			req.TenantID,
			req.ClientID,
			definition.ID,
			definition.Name,
			definition.Sessions,
			definition.GetTotalValueMoney(),
			validityDays,
			purchasedAt,
		)
		if err != nil {
			return err
		}
		if req.Notes != "" {
			purchase.WithNotes(req.Notes)
		}
		if req.InstallmentCount > 0 {
			if err := purchase.SetInstallmentPlan(req.InstallmentCount); err != nil {
				return err
			}
		}

		entry, err := ledger.NewLedgerEntry(
			req.TenantID,
			ledger.EntryTypeReceita,
			ledger.CategoryPacote,
			fmt.Sprintf("Pacote: %s (%d sessões)", definition.Name, definition.Sessions),
			definition.GetTotalValueMoney(),
			valueobject.ZeroEUR(),
			purchasedAt,
		)
		if err != nil {
			return err
		}
		entry.WithClient(req.ClientID).WithPackagePurchase(purchase.ID)
		if req.InstallmentCount > 0 {
			if err := entry.SetInstallmentPlan(req.InstallmentCount); err != nil {
				return err
			}
		}

		var payment *ledger.Payment
		if req.InitialPayment != nil {
			ip := req.InitialPayment
			payment, err = ledger.NewPayment(req.TenantID, entry.ID, valueobject.NewMoneyEUR(ip.Amount), ip.Method, ip.Details, purchasedAt)
			if err != nil {
				return err
			}
			if err := entry.RegisterPayment(valueobject.NewMoneyEUR(ip.Amount), ip.Method, purchasedAt); err != nil {
				return err
			}
			if err := purchase.RegisterPayment(valueobject.NewMoneyEUR(ip.Amount)); err != nil {
				return err
			}
		}

		if err := s.purchaseRepo.Save(txCtx, purchase); err != nil {
			return fmt.Errorf("failed to save purchase: %w", err)
		}
		if err := s.entryRepo.Save(txCtx, entry); err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
		if payment != nil {
			if err := s.paymentRepo.Save(txCtx, payment); err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}
		}

		result = &SellPackageResult{Purchase: purchase, Entry: entry, Payment: payment}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "package_sold", "purchase_id", result.Purchase.ID.String())
	s.publishEvents(ctx, result.Purchase, result.Entry)
	if result.Payment != nil {
		s.publishEvents(ctx, result.Payment)
	}
	return result, nil
}

// GetPurchase returns a package purchase, lazily expiring it when its
// validity has run out
func (s *PurchaseService) GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*packs.PackagePurchase, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}

	if purchase.MarkExpiredIfPast(time.Now()) {
		// Best effort: a lost race just means another request expired it first
		if err := s.purchaseRepo.SaveWithLock(ctx, purchase); err != nil && !shared.IsDomainError(err, "OPTIMISTIC_LOCK_ERROR") {
			return nil, err
		}
		s.publishEvents(ctx, purchase)
	}
	return purchase, nil
}

// ListPurchasesResult represents a paginated list of package purchases
type ListPurchasesResult struct {
	Purchases []packs.PackagePurchase
	Total     int64
}

// ListPurchases lists package purchases for a tenant with filtering
func (s *PurchaseService) ListPurchases(ctx context.Context, tenantID uuid.UUID, filter packs.PurchaseFilter) (*ListPurchasesResult, error) {
	purchases, err := s.purchaseRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	total, err := s.purchaseRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}
	return &ListPurchasesResult{Purchases: purchases, Total: total}, nil
}

// ListClientActivePurchases lists a client's active purchases, soonest expiry first
func (s *PurchaseService) ListClientActivePurchases(ctx context.Context, tenantID, clientID uuid.UUID) ([]packs.PackagePurchase, error) {
	return s.purchaseRepo.FindActiveByClient(ctx, tenantID, clientID)
}

// ConsumeSessionRequest represents a request to consume one package session
type ConsumeSessionRequest struct {
	TenantID      uuid.UUID
	PurchaseID    uuid.UUID
	AppointmentID uuid.UUID
	StaffID       *uuid.UUID
	SessionValue  *decimal.Decimal
}

// ConsumeSession debits one session from a purchase. The optimistic lock on
// the purchase row guarantees two concurrent consumes of the last session
// cannot both succeed.
func (s *PurchaseService) ConsumeSession(ctx context.Context, req ConsumeSessionRequest) (*packs.PackagePurchase, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "package_purchase", "consume_session")
	defer span.End()

	telemetry.SetAttributes(span,
		"purchase_id", req.PurchaseID.String(),
		"appointment_id", req.AppointmentID.String(),
	)

	purchase, err := s.purchaseRepo.FindByID(ctx, req.TenantID, req.PurchaseID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	sessionValue := purchase.SessionValue()
	if req.SessionValue != nil {
		sessionValue = *req.SessionValue
	}

	consumeErr := purchase.ConsumeSession(req.AppointmentID, sessionValue, req.StaffID, time.Now())
	if consumeErr != nil {
		// Consumption against an expired purchase flips it to EXPIRADO;
		// persist that flip even though the consume itself failed
		if shared.IsDomainError(consumeErr, "PACKAGE_EXPIRED") && purchase.Status == packs.PurchaseStatusExpirado {
			if err := s.purchaseRepo.SaveWithLock(ctx, purchase); err != nil && !shared.IsDomainError(err, "OPTIMISTIC_LOCK_ERROR") {
				telemetry.RecordError(span, err)
				return nil, err
			}
			s.publishEvents(ctx, purchase)
		}
		telemetry.RecordError(span, consumeErr)
		return nil, consumeErr
	}

	if err := s.purchaseRepo.SaveWithLock(ctx, purchase); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "session_consumed",
		"sessions_used", fmt.Sprintf("%d", purchase.SessionsUsed),
		"sessions_remaining", fmt.Sprintf("%d", purchase.SessionsRemaining),
	)
	s.publishEvents(ctx, purchase)
	return purchase, nil
}

// ExtendExpiryRequest represents a request to extend a purchase's validity
type ExtendExpiryRequest struct {
	TenantID   uuid.UUID
	PurchaseID uuid.UUID
	Days       int
	Reason     string
	Actor      string
}

// ExtendExpiry pushes a purchase's expiry date forward, reactivating an
// expired purchase when sessions remain
func (s *PurchaseService) ExtendExpiry(ctx context.Context, req ExtendExpiryRequest) (*packs.PackagePurchase, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "package_purchase", "extend_expiry")
	defer span.End()

	purchase, err := s.purchaseRepo.FindByID(ctx, req.TenantID, req.PurchaseID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := purchase.ExtendExpiry(req.Days, req.Reason, req.Actor, time.Now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.purchaseRepo.SaveWithLock(ctx, purchase); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, purchase)
	return purchase, nil
}

// CancelPurchaseRequest represents a request to cancel a purchase
type CancelPurchaseRequest struct {
	TenantID   uuid.UUID
	PurchaseID uuid.UUID
	Reason     string
	Actor      string
}

// CancelPurchase cancels a purchase and any non-terminal ledger entries
// still linked to it, in one transaction
func (s *PurchaseService) CancelPurchase(ctx context.Context, req CancelPurchaseRequest) (*packs.PackagePurchase, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "package_purchase", "cancel")
	defer span.End()

	var purchase *packs.PackagePurchase
	var cancelled []*ledger.LedgerEntry
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		purchase, err = s.purchaseRepo.FindByID(txCtx, req.TenantID, req.PurchaseID)
		if err != nil {
			return err
		}

		if err := purchase.Cancel(req.Reason, req.Actor); err != nil {
			return err
		}
		if err := s.purchaseRepo.SaveWithLock(txCtx, purchase); err != nil {
			return err
		}

		entries, err := s.entryRepo.FindByPackagePurchase(txCtx, req.TenantID, req.PurchaseID)
		if err != nil {
			return fmt.Errorf("failed to load linked entries: %w", err)
		}
		for i := range entries {
			entry := &entries[i]
			if entry.Status.IsTerminal() {
				continue
			}
			if err := entry.Cancel(req.Reason); err != nil {
				return err
			}
			if err := s.entryRepo.SaveWithLock(txCtx, entry); err != nil {
				return err
			}
			cancelled = append(cancelled, entry)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, purchase)
	for _, entry := range cancelled {
		s.publishEvents(ctx, entry)
	}
	return purchase, nil
}

// DeletePurchase hard deletes a purchase that was created by mistake. A
// purchase with consumed sessions or received payments must be cancelled
// instead, so the financial history stays intact.
func (s *PurchaseService) DeletePurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "package_purchase", "delete")
	defer span.End()

	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		purchase, err := s.purchaseRepo.FindByID(txCtx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		if purchase.HasConsumedSessions() {
			return shared.NewDomainError("PURCHASE_HAS_USAGE", "Cannot delete a purchase with consumed sessions; cancel it instead")
		}

		entries, err := s.entryRepo.FindByPackagePurchase(txCtx, tenantID, purchaseID)
		if err != nil {
			return fmt.Errorf("failed to load linked entries: %w", err)
		}
		for i := range entries {
			paid, err := s.paymentRepo.SumActiveByEntry(txCtx, tenantID, entries[i].ID)
			if err != nil {
				return fmt.Errorf("failed to sum payments: %w", err)
			}
			if paid.IsPositive() {
				return shared.NewDomainError("PURCHASE_HAS_PAYMENTS", "Cannot delete a purchase with registered payments; cancel it instead")
			}
		}
		for i := range entries {
			if err := s.entryRepo.Delete(txCtx, tenantID, entries[i].ID); err != nil {
				return err
			}
		}
		return s.purchaseRepo.Delete(txCtx, tenantID, purchaseID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}
