package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/packs"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
)

func newTestEntry(t *testing.T, tenantID uuid.UUID, amount string) *ledger.LedgerEntry {
	t.Helper()
	entry, err := ledger.NewLedgerEntry(
		tenantID,
		ledger.EntryTypeReceita,
		ledger.CategoryServico,
		"Limpeza de pele",
		valueobject.NewMoneyEUR(decimal.RequireFromString(amount)),
		valueobject.ZeroEUR(),
		time.Now(),
	)
	require.NoError(t, err)
	entry.ClearDomainEvents()
	return entry
}

func newTestPackageEntry(t *testing.T, tenantID uuid.UUID, purchase *packs.PackagePurchase) *ledger.LedgerEntry {
	t.Helper()
	entry, err := ledger.NewLedgerEntry(
		tenantID,
		ledger.EntryTypeReceita,
		ledger.CategoryPacote,
		"Pacote: Drenagem 10x",
		purchase.GetTotalAmountMoney(),
		valueobject.ZeroEUR(),
		time.Now(),
	)
	require.NoError(t, err)
	entry.WithPackagePurchase(purchase.ID)
	entry.ClearDomainEvents()
	return entry
}

func newTestPurchase(t *testing.T, tenantID uuid.UUID, total string) *packs.PackagePurchase {
	t.Helper()
	purchase, err := packs.NewPackagePurchase(
		tenantID,
		uuid.New(),
		uuid.New(),
		"Drenagem 10x",
		10,
		valueobject.NewMoneyEUR(decimal.RequireFromString(total)),
		90,
		time.Now(),
	)
	require.NoError(t, err)
	purchase.ClearDomainEvents()
	return purchase
}

func TestPaymentService_RegisterPayment_FullPayment(t *testing.T) {
	tenantID := uuid.New()
	entry := newTestEntry(t, tenantID, "80.00")

	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)
	purchaseRepo := new(MockPurchaseRepository)

	entryRepo.On("FindByID", mock.Anything, tenantID, entry.ID).Return(entry, nil)
	paymentRepo.On("SumActiveByEntry", mock.Anything, tenantID, entry.ID).Return(decimal.Zero, nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Payment")).Return(nil)
	entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)

	service := NewPaymentService(entryRepo, paymentRepo, purchaseRepo, fakeTxManager{})

	result, err := service.RegisterPayment(context.Background(), RegisterPaymentRequest{
		TenantID: tenantID,
		EntryID:  entry.ID,
		Amount:   decimal.RequireFromString("80.00"),
		Method:   ledger.MethodMBWay,
		Details:  ledger.PaymentDetails{MBWayPhone: "+351912345678"},
	})

	require.NoError(t, err)
	assert.Equal(t, ledger.EntryStatusPago, result.Entry.Status)
	assert.True(t, result.CumulativePaid.Equal(decimal.RequireFromString("80.00")))
	assert.Equal(t, ledger.PaymentStatusAtivo, result.Payment.Status)
	entryRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
	purchaseRepo.AssertNotCalled(t, "FindByID")
}

func TestPaymentService_RegisterPayment_PartialThenCumulative(t *testing.T) {
	tenantID := uuid.New()
	entry := newTestEntry(t, tenantID, "100.00")

	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)
	purchaseRepo := new(MockPurchaseRepository)

	entryRepo.On("FindByID", mock.Anything, tenantID, entry.ID).Return(entry, nil)
	// 60 already registered by an earlier payment
	paymentRepo.On("SumActiveByEntry", mock.Anything, tenantID, entry.ID).Return(decimal.RequireFromString("60.00"), nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Payment")).Return(nil)
	entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)

	service := NewPaymentService(entryRepo, paymentRepo, purchaseRepo, fakeTxManager{})

	result, err := service.RegisterPayment(context.Background(), RegisterPaymentRequest{
		TenantID: tenantID,
		EntryID:  entry.ID,
		Amount:   decimal.RequireFromString("20.00"),
		Method:   ledger.MethodDinheiro,
	})

	require.NoError(t, err)
	assert.Equal(t, ledger.EntryStatusParcial, result.Entry.Status)
	assert.True(t, result.CumulativePaid.Equal(decimal.RequireFromString("80.00")))
}

func TestPaymentService_RegisterPayment_PackageEntryUpdatesPurchase(t *testing.T) {
	tenantID := uuid.New()
	purchase := newTestPurchase(t, tenantID, "300.00")
	entry := newTestPackageEntry(t, tenantID, purchase)

	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)
	purchaseRepo := new(MockPurchaseRepository)

	entryRepo.On("FindByID", mock.Anything, tenantID, entry.ID).Return(entry, nil)
	paymentRepo.On("SumActiveByEntry", mock.Anything, tenantID, entry.ID).Return(decimal.Zero, nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Payment")).Return(nil)
	entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)
	purchaseRepo.On("FindByID", mock.Anything, tenantID, purchase.ID).Return(purchase, nil)
	purchaseRepo.On("SaveWithLock", mock.Anything, purchase).Return(nil)

	service := NewPaymentService(entryRepo, paymentRepo, purchaseRepo, fakeTxManager{})

	result, err := service.RegisterPayment(context.Background(), RegisterPaymentRequest{
		TenantID: tenantID,
		EntryID:  entry.ID,
		Amount:   decimal.RequireFromString("100.00"),
		Method:   ledger.MethodMultibanco,
		Details:  ledger.PaymentDetails{MultibancoEntity: "12345", MultibancoReference: "123456789"},
	})

	require.NoError(t, err)
	assert.Equal(t, ledger.EntryStatusParcial, result.Entry.Status)
	assert.True(t, purchase.PaidAmount.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, purchase.OutstandingAmount.Equal(decimal.RequireFromString("200.00")))
	purchaseRepo.AssertExpectations(t)
}

func TestPaymentService_RegisterPayment_DuplicateIdempotencyKey(t *testing.T) {
	tenantID := uuid.New()
	entry := newTestEntry(t, tenantID, "50.00")

	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)
	purchaseRepo := new(MockPurchaseRepository)

	entryRepo.On("FindByID", mock.Anything, tenantID, entry.ID).Return(entry, nil)
	paymentRepo.On("SumActiveByEntry", mock.Anything, tenantID, entry.ID).Return(decimal.Zero, nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Payment")).Return(nil)
	entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)

	service := NewPaymentService(entryRepo, paymentRepo, purchaseRepo, fakeTxManager{})
	service.SetIdempotencyStore(newFakeIdempotencyStore())

	req := RegisterPaymentRequest{
		TenantID:       tenantID,
		EntryID:        entry.ID,
		Amount:         decimal.RequireFromString("50.00"),
		Method:         ledger.MethodDinheiro,
		IdempotencyKey: "abc-123",
	}

	_, err := service.RegisterPayment(context.Background(), req)
	require.NoError(t, err)

	_, err = service.RegisterPayment(context.Background(), req)
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, "DUPLICATE_REQUEST"))
	paymentRepo.AssertNumberOfCalls(t, "Save", 1)
}

func TestPaymentService_RegisterPayment_CancelledEntry(t *testing.T) {
	tenantID := uuid.New()
	entry := newTestEntry(t, tenantID, "50.00")
	require.NoError(t, entry.Cancel("engano"))
	entry.ClearDomainEvents()

	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)
	purchaseRepo := new(MockPurchaseRepository)

	entryRepo.On("FindByID", mock.Anything, tenantID, entry.ID).Return(entry, nil)
	paymentRepo.On("SumActiveByEntry", mock.Anything, tenantID, entry.ID).Return(decimal.Zero, nil)

	service := NewPaymentService(entryRepo, paymentRepo, purchaseRepo, fakeTxManager{})

	_, err := service.RegisterPayment(context.Background(), RegisterPaymentRequest{
		TenantID: tenantID,
		EntryID:  entry.ID,
		Amount:   decimal.RequireFromString("50.00"),
		Method:   ledger.MethodDinheiro,
	})

	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, "INVALID_STATE"))
	paymentRepo.AssertNotCalled(t, "Save")
	entryRepo.AssertNotCalled(t, "SaveWithLock")
}

func TestPaymentService_ReversePayment_RecomputesEntry(t *testing.T) {
	tenantID := uuid.New()
	entry := newTestEntry(t, tenantID, "100.00")
	require.NoError(t, entry.RegisterPayment(valueobject.NewMoneyEURFromFloat(100), ledger.MethodDinheiro, time.Now()))
	entry.ClearDomainEvents()

	payment, err := ledger.NewPayment(tenantID, entry.ID, valueobject.NewMoneyEURFromFloat(100), ledger.MethodDinheiro, ledger.PaymentDetails{}, time.Now())
	require.NoError(t, err)
	payment.ClearDomainEvents()

	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)
	purchaseRepo := new(MockPurchaseRepository)

	paymentRepo.On("FindByID", mock.Anything, tenantID, payment.ID).Return(payment, nil)
	paymentRepo.On("Save", mock.Anything, payment).Return(nil)
	entryRepo.On("FindByID", mock.Anything, tenantID, entry.ID).Return(entry, nil)
	// After the reversal nothing active remains
	paymentRepo.On("SumActiveByEntry", mock.Anything, tenantID, entry.ID).Return(decimal.Zero, nil)
	entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)

	service := NewPaymentService(entryRepo, paymentRepo, purchaseRepo, fakeTxManager{})

	result, err := service.ReversePayment(context.Background(), ReversePaymentRequest{
		TenantID:  tenantID,
		PaymentID: payment.ID,
		Reason:    "valor errado",
	})

	require.NoError(t, err)
	assert.Equal(t, ledger.PaymentStatusEstornado, result.Payment.Status)
	assert.Equal(t, ledger.EntryStatusPendente, result.Entry.Status)
	assert.Nil(t, result.Entry.PaidAt)
}

func TestPaymentService_ReversePayment_AlreadyReversed(t *testing.T) {
	tenantID := uuid.New()
	entry := newTestEntry(t, tenantID, "100.00")

	payment, err := ledger.NewPayment(tenantID, entry.ID, valueobject.NewMoneyEURFromFloat(100), ledger.MethodDinheiro, ledger.PaymentDetails{}, time.Now())
	require.NoError(t, err)
	require.NoError(t, payment.Reverse("primeira"))
	payment.ClearDomainEvents()

	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)
	purchaseRepo := new(MockPurchaseRepository)

	paymentRepo.On("FindByID", mock.Anything, tenantID, payment.ID).Return(payment, nil)

	service := NewPaymentService(entryRepo, paymentRepo, purchaseRepo, fakeTxManager{})

	_, err = service.ReversePayment(context.Background(), ReversePaymentRequest{
		TenantID:  tenantID,
		PaymentID: payment.ID,
		Reason:    "segunda",
	})

	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, "ALREADY_REVERSED"))
	paymentRepo.AssertNotCalled(t, "Save")
}
