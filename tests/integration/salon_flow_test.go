// Package integration provides integration tests for the salon financial flows.
// This file tests the critical business flows:
// - Package sale creates the purchase and its funding ledger entry
// - Session consumption drives the purchase to completion
// - Concurrent consumption of the last session is serialized by the optimistic lock
// - Payment registration moves entries through PENDENTE/PARCIAL/PAGO
// - Cash register day cycle (open, sangria, close with difference)
package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cashierapp "github.com/studiobeleza/backend/internal/application/cashier"
	ledgerapp "github.com/studiobeleza/backend/internal/application/ledger"
	packsapp "github.com/studiobeleza/backend/internal/application/packs"
	"github.com/studiobeleza/backend/internal/domain/cashier"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/packs"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
	"github.com/studiobeleza/backend/internal/infrastructure/persistence"
)

// SalonTestSetup provides test infrastructure wired against a real database
type SalonTestSetup struct {
	DB              *TestDB
	PurchaseService *packsapp.PurchaseService
	LedgerService   *ledgerapp.LedgerService
	PaymentService  *ledgerapp.PaymentService
	CashierService  *cashierapp.CashSessionService
	TenantID        uuid.UUID
	ClientID        uuid.UUID
	PackageID       uuid.UUID
}

// NewSalonTestSetup creates the full service stack on top of a fresh container
func NewSalonTestSetup(t *testing.T) *SalonTestSetup {
	t.Helper()

	testDB := NewTestDB(t)

	entryRepo := persistence.NewGormLedgerEntryRepository(testDB.DB)
	paymentRepo := persistence.NewGormPaymentRepository(testDB.DB)
	definitionRepo := persistence.NewGormPackageDefinitionRepository(testDB.DB)
	purchaseRepo := persistence.NewGormPackagePurchaseRepository(testDB.DB)
	sessionRepo := persistence.NewGormCashSessionRepository(testDB.DB)
	txManager := persistence.NewGormTransactionManager(testDB.DB)

	tenantID := uuid.New()
	clientID := uuid.New()
	packageID := uuid.New()

	testDB.CreateTestPackageDefinition(tenantID, packageID)

	return &SalonTestSetup{
		DB:              testDB,
		PurchaseService: packsapp.NewPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo, txManager),
		LedgerService:   ledgerapp.NewLedgerService(entryRepo, paymentRepo),
		PaymentService:  ledgerapp.NewPaymentService(entryRepo, paymentRepo, purchaseRepo, txManager),
		CashierService:  cashierapp.NewCashSessionService(sessionRepo, entryRepo, paymentRepo, txManager),
		TenantID:        tenantID,
		ClientID:        clientID,
		PackageID:       packageID,
	}
}

// ==================== Package Lifecycle Tests ====================

func TestPackageLifecycle_SellConsumeComplete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewSalonTestSetup(t)
	ctx := context.Background()

	// Sell the package, fully paid up front in cash
	result, err := setup.PurchaseService.SellPackage(ctx, packsapp.SellPackageRequest{
		TenantID:  setup.TenantID,
		ClientID:  setup.ClientID,
		PackageID: setup.PackageID,
		InitialPayment: &packsapp.InitialPayment{
			Amount: decimal.NewFromFloat(500.00),
			Method: ledger.MethodDinheiro,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Purchase)
	require.NotNil(t, result.Entry)
	require.NotNil(t, result.Payment)

	assert.Equal(t, packs.PurchaseStatusAtivo, result.Purchase.Status)
	assert.Equal(t, 10, result.Purchase.SessionsRemaining)
	assert.True(t, result.Purchase.OutstandingAmount.IsZero())
	assert.Equal(t, ledger.EntryStatusPago, result.Entry.Status)
	assert.Equal(t, ledger.CategoryPacote, result.Entry.Category)

	// Consume every contracted session
	purchaseID := result.Purchase.ID
	var purchase *packs.PackagePurchase
	for i := 0; i < 10; i++ {
		purchase, err = setup.PurchaseService.ConsumeSession(ctx, packsapp.ConsumeSessionRequest{
			TenantID:      setup.TenantID,
			PurchaseID:    purchaseID,
			AppointmentID: uuid.New(),
		})
		require.NoError(t, err, "consume %d should succeed", i+1)
	}

	assert.Equal(t, packs.PurchaseStatusConcluido, purchase.Status)
	assert.Equal(t, 0, purchase.SessionsRemaining)
	assert.Equal(t, 10, purchase.SessionsUsed)

	// One more consume must be rejected
	_, err = setup.PurchaseService.ConsumeSession(ctx, packsapp.ConsumeSessionRequest{
		TenantID:      setup.TenantID,
		PurchaseID:    purchaseID,
		AppointmentID: uuid.New(),
	})
	require.Error(t, err)
}

func TestPackageLifecycle_ConcurrentLastSession(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewSalonTestSetup(t)
	ctx := context.Background()

	result, err := setup.PurchaseService.SellPackage(ctx, packsapp.SellPackageRequest{
		TenantID:  setup.TenantID,
		ClientID:  setup.ClientID,
		PackageID: setup.PackageID,
	})
	require.NoError(t, err)
	purchaseID := result.Purchase.ID

	// Burn down to the last session
	for i := 0; i < 9; i++ {
		_, err = setup.PurchaseService.ConsumeSession(ctx, packsapp.ConsumeSessionRequest{
			TenantID:      setup.TenantID,
			PurchaseID:    purchaseID,
			AppointmentID: uuid.New(),
		})
		require.NoError(t, err)
	}

	// Two clients race for the last session; exactly one may win
	const racers = 2
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = setup.PurchaseService.ConsumeSession(ctx, packsapp.ConsumeSessionRequest{
				TenantID:      setup.TenantID,
				PurchaseID:    purchaseID,
				AppointmentID: uuid.New(),
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent consume may succeed")

	purchase, err := setup.PurchaseService.GetPurchase(ctx, setup.TenantID, purchaseID)
	require.NoError(t, err)
	assert.Equal(t, 0, purchase.SessionsRemaining)
	assert.Equal(t, 10, purchase.SessionsUsed)
	assert.Equal(t, packs.PurchaseStatusConcluido, purchase.Status)
}

// ==================== Payment Flow Tests ====================

func TestPaymentFlow_PartialThenFull(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewSalonTestSetup(t)
	ctx := context.Background()

	entry, err := setup.LedgerService.CreateEntry(ctx, ledgerapp.CreateEntryRequest{
		TenantID:    setup.TenantID,
		Type:        ledger.EntryTypeReceita,
		Category:    ledger.CategoryServico,
		Description: "Limpeza de pele",
		GrossAmount: decimal.NewFromFloat(120.00),
		ClientID:    &setup.ClientID,
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryStatusPendente, entry.Status)

	// First installment by MBWay
	partial, err := setup.PaymentService.RegisterPayment(ctx, ledgerapp.RegisterPaymentRequest{
		TenantID: setup.TenantID,
		EntryID:  entry.ID,
		Amount:   decimal.NewFromFloat(50.00),
		Method:   ledger.MethodMBWay,
		Details:  ledger.PaymentDetails{MBWayPhone: "+351912345678"},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryStatusParcial, partial.Entry.Status)
	assert.True(t, partial.CumulativePaid.Equal(decimal.NewFromFloat(50.00)))

	// Remainder in cash settles the entry
	full, err := setup.PaymentService.RegisterPayment(ctx, ledgerapp.RegisterPaymentRequest{
		TenantID: setup.TenantID,
		EntryID:  entry.ID,
		Amount:   decimal.NewFromFloat(70.00),
		Method:   ledger.MethodDinheiro,
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryStatusPago, full.Entry.Status)
	assert.True(t, full.CumulativePaid.Equal(decimal.NewFromFloat(120.00)))

	// Reversing the cash payment reopens the entry as PARCIAL
	reversed, err := setup.PaymentService.ReversePayment(ctx, ledgerapp.ReversePaymentRequest{
		TenantID:  setup.TenantID,
		PaymentID: full.Payment.ID,
		Reason:    "Valor cobrado em duplicado",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryStatusParcial, reversed.Entry.Status)
	assert.True(t, reversed.CumulativePaid.Equal(decimal.NewFromFloat(50.00)))

	payments, err := setup.PaymentService.ListEntryPayments(ctx, setup.TenantID, entry.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2, "reversed payments stay on record")
}

// ==================== Cash Register Tests ====================

func TestCashRegister_DayCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewSalonTestSetup(t)
	ctx := context.Background()

	opened, err := setup.CashierService.OpenDay(ctx, cashierapp.OpenDayRequest{
		TenantID:     setup.TenantID,
		OpeningFloat: decimal.NewFromFloat(50.00),
	})
	require.NoError(t, err)
	require.NotNil(t, opened.Session)
	assert.True(t, opened.Session.IsOpen())

	// A second open for the same day must fail
	_, err = setup.CashierService.OpenDay(ctx, cashierapp.OpenDayRequest{
		TenantID:     setup.TenantID,
		OpeningFloat: decimal.NewFromFloat(10.00),
	})
	require.Error(t, err)

	// A cash service payment during the day
	entry, err := setup.LedgerService.CreateEntry(ctx, ledgerapp.CreateEntryRequest{
		TenantID:    setup.TenantID,
		Type:        ledger.EntryTypeReceita,
		Category:    ledger.CategoryServico,
		Description: "Manicure",
		GrossAmount: decimal.NewFromFloat(30.00),
		ClientID:    &setup.ClientID,
	})
	require.NoError(t, err)
	_, err = setup.PaymentService.RegisterPayment(ctx, ledgerapp.RegisterPaymentRequest{
		TenantID: setup.TenantID,
		EntryID:  entry.ID,
		Amount:   decimal.NewFromFloat(30.00),
		Method:   ledger.MethodDinheiro,
	})
	require.NoError(t, err)

	// Take 20 out of the drawer
	adjustment, err := setup.CashierService.RecordAdjustment(ctx, cashierapp.AdjustmentRequest{
		TenantID: setup.TenantID,
		Kind:     cashier.AdjustmentSangria,
		Amount:   decimal.NewFromFloat(20.00),
		Reason:   "Depósito bancário",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.CategorySangria, adjustment.Entry.Category)

	status, err := setup.CashierService.GetDayStatus(ctx, setup.TenantID, valueobject.CurrentBusinessDay())
	require.NoError(t, err)
	assert.Equal(t, cashier.DayStatusAberto, status.Status)
	assert.True(t, status.ExpectedBalance.Equal(decimal.NewFromFloat(60.00)),
		"expected 50 float + 30 cash - 20 sangria, got %s", status.ExpectedBalance)

	// Close with a 5 euro shortfall
	closed, err := setup.CashierService.CloseDay(ctx, cashierapp.CloseDayRequest{
		TenantID:      setup.TenantID,
		CountedAmount: decimal.NewFromFloat(55.00),
	})
	require.NoError(t, err)
	assert.True(t, closed.Expected.Equal(decimal.NewFromFloat(60.00)))
	assert.True(t, closed.Session.Difference.Equal(decimal.NewFromFloat(-5.00)))
	require.NotNil(t, closed.Entry)
	assert.Equal(t, ledger.CategoryFechamentoCaixa, closed.Entry.Category)

	// The day now reads FECHADO; closing again fails
	status, err = setup.CashierService.GetDayStatus(ctx, setup.TenantID, valueobject.CurrentBusinessDay())
	require.NoError(t, err)
	assert.Equal(t, cashier.DayStatusFechado, status.Status)

	_, err = setup.CashierService.CloseDay(ctx, cashierapp.CloseDayRequest{
		TenantID:      setup.TenantID,
		CountedAmount: decimal.NewFromFloat(55.00),
	})
	require.Error(t, err)
}

// TestTenantIsolation verifies a tenant cannot read another tenant's records
func TestTenantIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewSalonTestSetup(t)
	ctx := context.Background()

	result, err := setup.PurchaseService.SellPackage(ctx, packsapp.SellPackageRequest{
		TenantID:  setup.TenantID,
		ClientID:  setup.ClientID,
		PackageID: setup.PackageID,
	})
	require.NoError(t, err)

	otherTenant := uuid.New()
	_, err = setup.PurchaseService.GetPurchase(ctx, otherTenant, result.Purchase.ID)
	require.Error(t, err)

	_, err = setup.LedgerService.GetEntry(ctx, otherTenant, result.Entry.ID)
	require.Error(t, err)
}
