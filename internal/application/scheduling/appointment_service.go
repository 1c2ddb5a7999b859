package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	ledgerapp "github.com/studiobeleza/backend/internal/application/ledger"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/packs"
	"github.com/studiobeleza/backend/internal/domain/scheduling"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
	"github.com/studiobeleza/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentRegistrar settles service charges through the regular payment
// flow; satisfied by the ledger application PaymentService.
type PaymentRegistrar interface {
	RegisterPayment(ctx context.Context, req ledgerapp.RegisterPaymentRequest) (*ledgerapp.RegisterPaymentResult, error)
}

// AppointmentService handles appointments and the bridge that turns a
// completed appointment into ledger movement: a package-linked appointment
// consumes a session, a priced one raises a pending service charge.
type AppointmentService struct {
	appointmentRepo scheduling.AppointmentRepository
	purchaseRepo    packs.PurchaseRepository
	entryRepo       ledger.EntryRepository
	txManager       shared.TransactionManager
	eventPublisher  shared.EventPublisher
	payments        PaymentRegistrar
	logger          *zap.Logger
}

// NewAppointmentService creates a new AppointmentService
func NewAppointmentService(
	appointmentRepo scheduling.AppointmentRepository,
	purchaseRepo packs.PurchaseRepository,
	entryRepo ledger.EntryRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		purchaseRepo:    purchaseRepo,
		entryRepo:       entryRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AppointmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPaymentRegistrar sets the payment flow used to settle standalone
// service charges
func (s *AppointmentService) SetPaymentRegistrar(payments PaymentRegistrar) {
	s.payments = payments
}

func (s *AppointmentService) publishEvents(ctx context.Context, aggregates ...interface {
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

// CreateAppointmentRequest represents a request to book an appointment
type CreateAppointmentRequest struct {
	TenantID          uuid.UUID
	ClientID          uuid.UUID
	ServiceName       string
	ScheduledAt       time.Time
	PackagePurchaseID *uuid.UUID
	StandalonePrice   *decimal.Decimal
	StaffID           *uuid.UUID
	Notes             string
}

// CreateAppointment books an appointment. Linking a package purchase only
// checks the purchase exists and is usable; the session is debited at
// completion, not at booking.
func (s *AppointmentService) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*scheduling.Appointment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "appointment", "create")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerID, req.ClientID.String())

	appointment, err := scheduling.NewAppointment(req.TenantID, req.ClientID, req.ServiceName, req.ScheduledAt)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.PackagePurchaseID != nil {
		purchase, err := s.purchaseRepo.FindByID(ctx, req.TenantID, *req.PackagePurchaseID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if purchase.ClientID != req.ClientID {
			err := shared.NewDomainError("PURCHASE_CLIENT_MISMATCH", "Package purchase belongs to another client")
			telemetry.RecordError(span, err)
			return nil, err
		}
		if purchase.Status != packs.PurchaseStatusAtivo {
			err := shared.NewDomainError("PURCHASE_NOT_ACTIVE", "Package purchase is not active")
			telemetry.RecordError(span, err)
			return nil, err
		}
		appointment.WithPackagePurchase(purchase.ID)
	}
	if req.StandalonePrice != nil {
		appointment.WithStandalonePrice(valueobject.NewMoneyEUR(*req.StandalonePrice))
	}
	if req.StaffID != nil {
		appointment.WithStaff(*req.StaffID)
	}
	if req.Notes != "" {
		appointment.WithNotes(req.Notes)
	}

	if err := s.appointmentRepo.Save(ctx, appointment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save appointment: %w", err)
	}

	s.publishEvents(ctx, appointment)
	return appointment, nil
}

// GetAppointment returns an appointment by ID
func (s *AppointmentService) GetAppointment(ctx context.Context, tenantID, appointmentID uuid.UUID) (*scheduling.Appointment, error) {
	return s.appointmentRepo.FindByID(ctx, tenantID, appointmentID)
}

// ListAppointments lists appointments for a tenant with filtering
func (s *AppointmentService) ListAppointments(ctx context.Context, tenantID uuid.UUID, filter scheduling.AppointmentFilter) ([]scheduling.Appointment, error) {
	return s.appointmentRepo.FindAll(ctx, tenantID, filter)
}

// CompleteAppointmentResult represents the outcome of completing an appointment
type CompleteAppointmentResult struct {
	Appointment *scheduling.Appointment
	Purchase    *packs.PackagePurchase
	Entry       *ledger.LedgerEntry
}

// CompleteAppointment marks an appointment REALIZADO and settles it:
//   - package-linked: one session is consumed from the purchase and the
//     appointment is settled at the session's pro-rata value
//   - standalone price: a pending SERVICO revenue entry is raised, to be
//     paid through the regular payment flow
//   - neither: the appointment completes with nothing to charge
func (s *AppointmentService) CompleteAppointment(ctx context.Context, tenantID, appointmentID uuid.UUID) (*CompleteAppointmentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "appointment", "complete")
	defer span.End()

	telemetry.SetAttribute(span, "appointment_id", appointmentID.String())

	now := time.Now()

	var result *CompleteAppointmentResult
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		appointment, err := s.appointmentRepo.FindByID(txCtx, tenantID, appointmentID)
		if err != nil {
			return err
		}

		if err := appointment.Complete(now); err != nil {
			return err
		}

		result = &CompleteAppointmentResult{Appointment: appointment}

		switch {
		case appointment.IsPackageLinked():
			purchase, err := s.purchaseRepo.FindByID(txCtx, tenantID, *appointment.PackagePurchaseID)
			if err != nil {
				return err
			}

			sessionValue := purchase.SessionValue()
			if err := purchase.ConsumeSession(appointment.ID, sessionValue, appointment.StaffID, now); err != nil {
				// The expired flip must survive the rollback of the
				// completion itself, so persist it outside this transaction
				if shared.IsDomainError(err, "PACKAGE_EXPIRED") && purchase.Status == packs.PurchaseStatusExpirado {
					if saveErr := s.purchaseRepo.SaveWithLock(ctx, purchase); saveErr != nil && !shared.IsDomainError(saveErr, "OPTIMISTIC_LOCK_ERROR") {
						return saveErr
					}
					s.publishEvents(ctx, purchase)
				}
				return err
			}
			if err := s.purchaseRepo.SaveWithLock(txCtx, purchase); err != nil {
				return err
			}

			appointment.SettleFromPackage(sessionValue)
			result.Purchase = purchase

		case appointment.HasStandalonePrice():
			entry, err := ledger.NewLedgerEntry(
				tenantID,
				ledger.EntryTypeReceita,
				ledger.CategoryServico,
				fmt.Sprintf("Serviço: %s", appointment.ServiceName),
				valueobject.NewMoneyEUR(*appointment.StandalonePrice),
				valueobject.ZeroEUR(),
				now,
			)
			if err != nil {
				return err
			}
			entry.WithClient(appointment.ClientID).WithAppointment(appointment.ID)
			if appointment.StaffID != nil {
				entry.WithStaff(*appointment.StaffID)
			}

			if err := s.entryRepo.Save(txCtx, entry); err != nil {
				return fmt.Errorf("failed to save service entry: %w", err)
			}

			appointment.MarkChargePending(*appointment.StandalonePrice)
			appointment.LinkLedgerEntry(entry.ID)
			result.Entry = entry

		default:
			s.logger.Warn("Appointment completed with no package and no price; nothing will be charged",
				zap.String("appointment_id", appointment.ID.String()),
				zap.String("tenant_id", tenantID.String()))
			appointment.MarkNoCharge()
		}

		return s.appointmentRepo.SaveWithLock(txCtx, appointment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "appointment_completed",
		"payment_status", string(result.Appointment.PaymentStatus),
	)
	s.publishEvents(ctx, result.Appointment)
	if result.Purchase != nil {
		s.publishEvents(ctx, result.Purchase)
	}
	if result.Entry != nil {
		s.publishEvents(ctx, result.Entry)
	}
	return result, nil
}

// CancelAppointmentRequest represents a request to cancel an appointment
type CancelAppointmentRequest struct {
	TenantID      uuid.UUID
	AppointmentID uuid.UUID
	Reason        string
}

// CancelAppointment cancels a scheduled appointment. Completed appointments
// cannot be cancelled; their financial side is handled through the ledger.
func (s *AppointmentService) CancelAppointment(ctx context.Context, req CancelAppointmentRequest) (*scheduling.Appointment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "appointment", "cancel")
	defer span.End()

	appointment, err := s.appointmentRepo.FindByID(ctx, req.TenantID, req.AppointmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := appointment.Cancel(req.Reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.appointmentRepo.SaveWithLock(ctx, appointment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, appointment)
	return appointment, nil
}

// ServicePaymentRequest represents a payment against an appointment's
// standalone service charge
type ServicePaymentRequest struct {
	TenantID      uuid.UUID
	AppointmentID uuid.UUID
	Amount        *decimal.Decimal
	Method        ledger.PaymentMethod
	Details       ledger.PaymentDetails
	Notes         string

	IdempotencyKey string
}

// ServicePaymentResult represents the outcome of paying a service charge
type ServicePaymentResult struct {
	Appointment *scheduling.Appointment
	Entry       *ledger.LedgerEntry
	Payment     *ledger.Payment
}

// RegisterServicePayment settles a completed appointment's standalone
// charge. The charge entry is raised here when completion did not create
// one, then the payment runs through the regular payment flow; the
// appointment flips to PAGO once its entry does.
func (s *AppointmentService) RegisterServicePayment(ctx context.Context, req ServicePaymentRequest) (*ServicePaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "appointment", "service_payment")
	defer span.End()

	telemetry.SetAttribute(span, "appointment_id", req.AppointmentID.String())

	if s.payments == nil {
		return nil, shared.NewDomainError("PAYMENT_FLOW_UNAVAILABLE", "Payment registration is not configured")
	}

	appointment, err := s.appointmentRepo.FindByID(ctx, req.TenantID, req.AppointmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if !appointment.HasStandalonePrice() {
		err := shared.NewDomainError("NO_STANDALONE_CHARGE", "Appointment has no standalone service price to pay")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if appointment.Status != scheduling.AppointmentStatusRealizado {
		err := shared.NewDomainError("APPOINTMENT_NOT_COMPLETED", "Only completed appointments can have their service charge paid")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if appointment.PaymentStatus == scheduling.PaymentStatePago {
		err := shared.NewDomainError("ALREADY_PAID", "This appointment's service charge is already settled")
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := time.Now()

	if appointment.LedgerEntryID == nil {
		entry, err := ledger.NewLedgerEntry(
			req.TenantID,
			ledger.EntryTypeReceita,
			ledger.CategoryServico,
			fmt.Sprintf("Serviço: %s", appointment.ServiceName),
			valueobject.NewMoneyEUR(*appointment.StandalonePrice),
			valueobject.ZeroEUR(),
			now,
		)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		entry.WithClient(appointment.ClientID).WithAppointment(appointment.ID)
		if appointment.StaffID != nil {
			entry.WithStaff(*appointment.StaffID)
		}
		if err := s.entryRepo.Save(ctx, entry); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save service entry: %w", err)
		}
		appointment.MarkChargePending(*appointment.StandalonePrice)
		appointment.LinkLedgerEntry(entry.ID)
		if err := s.appointmentRepo.SaveWithLock(ctx, appointment); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.publishEvents(ctx, entry)
	}

	amount := *appointment.StandalonePrice
	if req.Amount != nil {
		amount = *req.Amount
	}

	paymentResult, err := s.payments.RegisterPayment(ctx, ledgerapp.RegisterPaymentRequest{
		TenantID:       req.TenantID,
		EntryID:        *appointment.LedgerEntryID,
		Amount:         amount,
		Method:         req.Method,
		Details:        req.Details,
		PaidAt:         now,
		Notes:          req.Notes,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if paymentResult.Entry.Status == ledger.EntryStatusPago {
		appointment.MarkPaid()
		if err := s.appointmentRepo.SaveWithLock(ctx, appointment); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.publishEvents(ctx, appointment)
	}

	telemetry.AddEvent(span, "service_charge_paid",
		"entry_status", string(paymentResult.Entry.Status),
	)
	return &ServicePaymentResult{
		Appointment: appointment,
		Entry:       paymentResult.Entry,
		Payment:     paymentResult.Payment,
	}, nil
}
