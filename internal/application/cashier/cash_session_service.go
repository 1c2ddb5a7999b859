package cashier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/cashier"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
	"github.com/studiobeleza/backend/internal/infrastructure/telemetry"
)

// CashSessionService handles the daily cash register: opening, drawer
// adjustments, closing and the day status read. Every drawer movement
// leaves a tagged ledger entry, written in the same transaction as the
// session it belongs to.
type CashSessionService struct {
	sessionRepo    cashier.SessionRepository
	entryRepo      ledger.EntryRepository
	paymentRepo    ledger.PaymentRepository
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
}

// NewCashSessionService creates a new CashSessionService
func NewCashSessionService(
	sessionRepo cashier.SessionRepository,
	entryRepo ledger.EntryRepository,
	paymentRepo ledger.PaymentRepository,
	txManager shared.TransactionManager,
) *CashSessionService {
	return &CashSessionService{
		sessionRepo: sessionRepo,
		entryRepo:   entryRepo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CashSessionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CashSessionService) publishEvents(ctx context.Context, session *cashier.CashSession) {
	if s.eventPublisher == nil {
		return
	}
	events := session.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	session.ClearDomainEvents()
}

// displayDay formats a business day the way receipts show it
func displayDay(day valueobject.BusinessDay) string {
	return day.Start().Format("02/01/2006")
}

// markSettledInCash flags a register entry as settled in cash on the spot.
// No payment row is written: drawer movements are not receivables, and the
// cash expectation already accounts for them through the session itself.
func markSettledInCash(entry *ledger.LedgerEntry, now time.Time) error {
	return entry.RegisterPayment(entry.GetFinalAmountMoney(), ledger.MethodDinheiro, now)
}

// OpenDayRequest represents a request to open the register for a day
type OpenDayRequest struct {
	TenantID     uuid.UUID
	Day          valueobject.BusinessDay
	OpeningFloat decimal.Decimal
	Notes        string
}

// OpenDayResult represents the outcome of opening the register
type OpenDayResult struct {
	Session *cashier.CashSession
	Entry   *ledger.LedgerEntry
}

// OpenDay opens the register for a business day. The unique constraint on
// (tenant, business day) makes a second open fail with ALREADY_EXISTS even
// under concurrency.
func (s *CashSessionService) OpenDay(ctx context.Context, req OpenDayRequest) (*OpenDayResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "open_day")
	defer span.End()

	day := req.Day
	if day.IsZero() {
		day = valueobject.CurrentBusinessDay()
	}
	telemetry.SetAttributes(span, "business_day", day.String(), telemetry.SpanAttrAmount, req.OpeningFloat.String())

	now := time.Now()

	var result *OpenDayResult
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		session, err := cashier.OpenCashSession(req.TenantID, day, valueobject.NewMoneyEUR(req.OpeningFloat), now)
		if err != nil {
			return err
		}
		if req.Notes != "" {
			session.Notes = req.Notes
		}

		var entry *ledger.LedgerEntry
		if req.OpeningFloat.IsPositive() {
			entry, err = ledger.NewLedgerEntry(
				req.TenantID,
				ledger.EntryTypeReceita,
				ledger.CategoryAberturaCaixa,
				fmt.Sprintf("Abertura de Caixa - %s", displayDay(day)),
				valueobject.NewMoneyEUR(req.OpeningFloat),
				valueobject.ZeroEUR(),
				now,
			)
			if err != nil {
				return err
			}
			if err := markSettledInCash(entry, now); err != nil {
				return err
			}
			session.LinkOpeningEntry(entry.ID)
		}

		if err := s.sessionRepo.Save(txCtx, session); err != nil {
			return err
		}
		if entry != nil {
			if err := s.entryRepo.Save(txCtx, entry); err != nil {
				return fmt.Errorf("failed to save opening entry: %w", err)
			}
		}

		result = &OpenDayResult{Session: session, Entry: entry}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "register_opened", "session_id", result.Session.ID.String())
	s.publishEvents(ctx, result.Session)
	return result, nil
}

// AdjustmentRequest represents a sangria or suprimento on the open register
type AdjustmentRequest struct {
	TenantID uuid.UUID
	Kind     cashier.AdjustmentType
	Amount   decimal.Decimal
	Reason   string
}

// AdjustmentResult represents the outcome of a drawer adjustment
type AdjustmentResult struct {
	Session *cashier.CashSession
	Entry   *ledger.LedgerEntry
}

// RecordAdjustment takes cash out of (sangria) or puts cash into (suprimento)
// the register, leaving a matching ledger entry. An opened register is not
// required: the adjustment stands on its tagged entry alone, and the day status
// and the close derive the totals from those entries either way.
func (s *CashSessionService) RecordAdjustment(ctx context.Context, req AdjustmentRequest) (*AdjustmentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "record_adjustment")
	defer span.End()

	telemetry.SetAttributes(span,
		"adjustment_type", string(req.Kind),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	now := time.Now()

	var result *AdjustmentResult
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		session, err := s.sessionRepo.FindOpen(txCtx, req.TenantID)
		if err != nil {
			if !shared.IsDomainError(err, "NOT_FOUND") {
				return err
			}
			session = nil
		}

		entryType := ledger.EntryTypeDespesa
		category := ledger.CategorySangria
		label := "Sangria"
		if req.Kind == cashier.AdjustmentSuprimento {
			entryType = ledger.EntryTypeReceita
			category = ledger.CategorySuprimento
			label = "Suprimento"
		}

		if !req.Kind.IsValid() {
			return shared.NewDomainError("INVALID_ADJUSTMENT", "Adjustment type must be SANGRIA or SUPRIMENTO")
		}
		if req.Reason == "" {
			return shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
		}

		entry, err := ledger.NewLedgerEntry(
			req.TenantID,
			entryType,
			category,
			fmt.Sprintf("%s - %s", label, req.Reason),
			valueobject.NewMoneyEUR(req.Amount),
			valueobject.ZeroEUR(),
			now,
		)
		if err != nil {
			return err
		}
		if err := markSettledInCash(entry, now); err != nil {
			return err
		}

		if session != nil {
			if err := session.RecordAdjustment(req.Kind, valueobject.NewMoneyEUR(req.Amount), req.Reason, &entry.ID, now); err != nil {
				return err
			}
			if err := s.sessionRepo.SaveWithLock(txCtx, session); err != nil {
				return err
			}
		}
		if err := s.entryRepo.Save(txCtx, entry); err != nil {
			return fmt.Errorf("failed to save adjustment entry: %w", err)
		}

		result = &AdjustmentResult{Session: session, Entry: entry}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if result.Session != nil {
		s.publishEvents(ctx, result.Session)
	}
	return result, nil
}

// CloseDayRequest represents a request to close the open register
type CloseDayRequest struct {
	TenantID      uuid.UUID
	CountedAmount decimal.Decimal
	Notes         string
}

// CloseDayResult represents the outcome of closing the register
type CloseDayResult struct {
	Session  *cashier.CashSession
	Entry    *ledger.LedgerEntry
	Expected decimal.Decimal
}

// CloseDay closes the open register, computing the expected cash balance
// from the opening float, the day's cash payments and the drawer adjustments
func (s *CashSessionService) CloseDay(ctx context.Context, req CloseDayRequest) (*CloseDayResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "close_day")
	defer span.End()

	telemetry.SetAttribute(span, "counted_amount", req.CountedAmount.String())

	now := time.Now()

	var result *CloseDayResult
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		session, err := s.sessionRepo.FindOpen(txCtx, req.TenantID)
		if err != nil {
			if shared.IsDomainError(err, "NOT_FOUND") {
				return shared.NewDomainError("SESSION_NOT_OPEN", "No open cash session to close")
			}
			return err
		}

		day := session.BusinessDay
		cashReceitas, cashDespesas, err := s.paymentRepo.SumCashForPeriod(txCtx, req.TenantID, day.Start(), day.End())
		if err != nil {
			return fmt.Errorf("failed to sum cash movement: %w", err)
		}
		sangrias, suprimentos, err := s.sumAdjustments(txCtx, req.TenantID, day)
		if err != nil {
			return err
		}

		expected := cashier.ExpectedBalance(
			session.OpeningFloat,
			cashReceitas,
			cashDespesas,
			suprimentos,
			sangrias,
		)

		if err := session.Close(valueobject.NewMoneyEUR(req.CountedAmount), valueobject.NewMoneyEUR(expected), now); err != nil {
			return err
		}

		// The closing entry is written on every close; a zero counted
		// amount still documents that the drawer was reconciled.
		entry, err := ledger.NewRegisterClosingEntry(
			req.TenantID,
			fmt.Sprintf("Fechamento de Caixa - %s", displayDay(day)),
			valueobject.NewMoneyEUR(req.CountedAmount),
			now,
		)
		if err != nil {
			return err
		}
		notes := fmt.Sprintf("Esperado: %s | Contado: %s | Diferença: %s",
			expected.StringFixed(2), req.CountedAmount.StringFixed(2), session.Difference.StringFixed(2))
		if req.Notes != "" {
			notes = notes + " | " + req.Notes
		}
		entry.WithNotes(notes)
		session.LinkClosingEntry(entry.ID)

		if err := s.sessionRepo.SaveWithLock(txCtx, session); err != nil {
			return err
		}
		if err := s.entryRepo.Save(txCtx, entry); err != nil {
			return fmt.Errorf("failed to save closing entry: %w", err)
		}

		result = &CloseDayResult{Session: session, Entry: entry, Expected: expected}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "register_closed",
		"expected", result.Expected.String(),
		"difference", result.Session.Difference.String(),
	)
	s.publishEvents(ctx, result.Session)
	return result, nil
}

// DayStatusResult is the read model of one business day's register
type DayStatusResult struct {
	Day             valueobject.BusinessDay
	Status          cashier.DayStatus
	Session         *cashier.CashSession
	OpeningFloat    decimal.Decimal
	CashReceitas    decimal.Decimal
	CashDespesas    decimal.Decimal
	Sangrias        decimal.Decimal
	Suprimentos     decimal.Decimal
	ExpectedBalance decimal.Decimal
	Movements       []ledger.MethodMovement
}

// sumAdjustments totals the day's sangria and suprimento entries. Adjustments
// may exist without a session, so they are read from the ledger, not from the
// session's own records.
func (s *CashSessionService) sumAdjustments(ctx context.Context, tenantID uuid.UUID, day valueobject.BusinessDay) (sangrias, suprimentos decimal.Decimal, err error) {
	sangrias, err = s.entryRepo.SumByCategoryForPeriod(ctx, tenantID, ledger.CategorySangria, day.Start(), day.End())
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum sangrias: %w", err)
	}
	suprimentos, err = s.entryRepo.SumByCategoryForPeriod(ctx, tenantID, ledger.CategorySuprimento, day.Start(), day.End())
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum suprimentos: %w", err)
	}
	return sangrias, suprimentos, nil
}

// GetDayStatus returns the register status of a business day without
// mutating anything. Days never opened report NAO_ABERTO, but still expose the
// expected balance of whatever cash moved, so a drawer that only saw a sangria
// reports a negative expectation.
func (s *CashSessionService) GetDayStatus(ctx context.Context, tenantID uuid.UUID, day valueobject.BusinessDay) (*DayStatusResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "day_status")
	defer span.End()

	if day.IsZero() {
		day = valueobject.CurrentBusinessDay()
	}
	telemetry.SetAttribute(span, "business_day", day.String())

	result := &DayStatusResult{Day: day, Status: cashier.DayStatusNaoAberto}

	session, err := s.sessionRepo.FindByDay(ctx, tenantID, day)
	if err != nil && !shared.IsDomainError(err, "NOT_FOUND") {
		telemetry.RecordError(span, err)
		return nil, err
	}

	cashReceitas, cashDespesas, err := s.paymentRepo.SumCashForPeriod(ctx, tenantID, day.Start(), day.End())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum cash movement: %w", err)
	}
	result.CashReceitas = cashReceitas
	result.CashDespesas = cashDespesas

	sangrias, suprimentos, err := s.sumAdjustments(ctx, tenantID, day)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result.Sangrias = sangrias
	result.Suprimentos = suprimentos

	movements, err := s.paymentRepo.MovementsByMethodForPeriod(ctx, tenantID, day.Start(), day.End())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to aggregate payment methods: %w", err)
	}
	result.Movements = movements

	if session == nil {
		result.ExpectedBalance = cashier.ExpectedBalance(
			decimal.Zero,
			cashReceitas,
			cashDespesas,
			suprimentos,
			sangrias,
		)
		return result, nil
	}

	result.Session = session
	result.OpeningFloat = session.OpeningFloat
	if session.IsOpen() {
		result.Status = cashier.DayStatusAberto
		result.ExpectedBalance = cashier.ExpectedBalance(
			session.OpeningFloat,
			cashReceitas,
			cashDespesas,
			suprimentos,
			sangrias,
		)
	} else {
		result.Status = cashier.DayStatusFechado
		result.ExpectedBalance = session.ExpectedAmount
	}
	return result, nil
}

// ListRecentSessions returns the most recent sessions, newest first
func (s *CashSessionService) ListRecentSessions(ctx context.Context, tenantID uuid.UUID, limit int) ([]cashier.CashSession, error) {
	return s.sessionRepo.FindRecent(ctx, tenantID, limit)
}
