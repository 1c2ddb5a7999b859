package packs

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

func newTestDefinition(t *testing.T, tenantID uuid.UUID) *packs.PackageDefinition {
	t.Helper()
	definition, err := packs.NewPackageDefinition(
		tenantID,
		"Massagem Relaxante 10x",
		"Dez sessões de massagem relaxante",
		10,
		valueobject.NewMoneyEURFromFloat(450),
		90,
	)
	require.NoError(t, err)
	return definition
}

func newActivePurchase(t *testing.T, tenantID uuid.UUID, sessions int, total string, validityDays int) *packs.PackagePurchase {
	t.Helper()
	purchase, err := packs.NewPackagePurchase(
		tenantID,
		uuid.New(),
		uuid.New(),
		"Massagem Relaxante 10x",
		sessions,
		valueobject.NewMoneyEUR(decimal.RequireFromString(total)),
		validityDays,
		time.Now(),
	)
	require.NoError(t, err)
	purchase.ClearDomainEvents()
	return purchase
}

func newPurchaseService(definitionRepo *MockDefinitionRepository, purchaseRepo *MockPurchaseRepository, entryRepo *MockEntryRepository, paymentRepo *MockPaymentRepository) *PurchaseService {
	return NewPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo, fakeTxManager{})
}

func TestPurchaseService_SellPackage_CreatesPurchaseAndEntry(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()
	definition := newTestDefinition(t, tenantID)

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	definitionRepo.On("FindByID", mock.Anything, tenantID, definition.ID).Return(definition, nil)
	purchaseRepo.On("Save", mock.Anything, mock.AnythingOfType("*packs.PackagePurchase")).Return(nil)
	entryRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.LedgerEntry")).Return(nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	result, err := service.SellPackage(context.Background(), SellPackageRequest{
		TenantID:  tenantID,
		ClientID:  clientID,
		PackageID: definition.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, packs.PurchaseStatusAtivo, result.Purchase.Status)
	assert.Equal(t, 10, result.Purchase.SessionsRemaining)
	assert.True(t, result.Purchase.TotalAmount.Equal(decimal.NewFromInt(450)))
	require.NotNil(t, result.Purchase.ExpiresAt)

	assert.Equal(t, ledger.CategoryPacote, result.Entry.Category)
	assert.Equal(t, ledger.EntryStatusPendente, result.Entry.Status)
	require.NotNil(t, result.Entry.PackagePurchaseID)
	assert.Equal(t, result.Purchase.ID, *result.Entry.PackagePurchaseID)
	assert.Nil(t, result.Payment)
	paymentRepo.AssertNotCalled(t, "Save")
}

func TestPurchaseService_SellPackage_WithInitialPayment(t *testing.T) {
	tenantID := uuid.New()
	definition := newTestDefinition(t, tenantID)

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	definitionRepo.On("FindByID", mock.Anything, tenantID, definition.ID).Return(definition, nil)
	purchaseRepo.On("Save", mock.Anything, mock.AnythingOfType("*packs.PackagePurchase")).Return(nil)
	entryRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.LedgerEntry")).Return(nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Payment")).Return(nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	result, err := service.SellPackage(context.Background(), SellPackageRequest{
		TenantID:         tenantID,
		ClientID:         uuid.New(),
		PackageID:        definition.ID,
		InstallmentCount: 3,
		InitialPayment: &InitialPayment{
			Amount: decimal.NewFromInt(150),
			Method: ledger.MethodDinheiro,
		},
	})

	require.NoError(t, err)
	require.NotNil(t, result.Payment)
	assert.Equal(t, ledger.EntryStatusParcial, result.Entry.Status)
	assert.True(t, result.Purchase.PaidAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, result.Purchase.OutstandingAmount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 1, result.Purchase.InstallmentsPaid)
	paymentRepo.AssertExpectations(t)
}

func TestPurchaseService_SellPackage_ValidityOverride(t *testing.T) {
	tenantID := uuid.New()
	definition := newTestDefinition(t, tenantID) // definition says 90 days

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	definitionRepo.On("FindByID", mock.Anything, tenantID, definition.ID).Return(definition, nil)
	purchaseRepo.On("Save", mock.Anything, mock.AnythingOfType("*packs.PackagePurchase")).Return(nil)
	entryRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.LedgerEntry")).Return(nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	purchasedAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	days := 30
	result, err := service.SellPackage(context.Background(), SellPackageRequest{
		TenantID:     tenantID,
		ClientID:     uuid.New(),
		PackageID:    definition.ID,
		PurchasedAt:  purchasedAt,
		ValidityDays: &days,
	})

	require.NoError(t, err)
	require.NotNil(t, result.Purchase.ExpiresAt)
	assert.Equal(t, purchasedAt.AddDate(0, 0, 30), *result.Purchase.ExpiresAt)

	zero := 0
	_, err = service.SellPackage(context.Background(), SellPackageRequest{
		TenantID:     tenantID,
		ClientID:     uuid.New(),
		PackageID:    definition.ID,
		ValidityDays: &zero,
	})
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, "INVALID_VALIDITY"))
}

func TestPurchaseService_SellPackage_InactiveDefinition(t *testing.T) {
	tenantID := uuid.New()
	definition := newTestDefinition(t, tenantID)
	definition.Deactivate()

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	definitionRepo.On("FindByID", mock.Anything, tenantID, definition.ID).Return(definition, nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	_, err := service.SellPackage(context.Background(), SellPackageRequest{
		TenantID:  tenantID,
		ClientID:  uuid.New(),
		PackageID: definition.ID,
	})

	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, "PACKAGE_INACTIVE"))
	purchaseRepo.AssertNotCalled(t, "Save")
}

func TestPurchaseService_ConsumeSession_DebitsOneSession(t *testing.T) {
	tenantID := uuid.New()
	purchase := newActivePurchase(t, tenantID, 10, "450.00", 90)

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	purchaseRepo.On("FindByID", mock.Anything, tenantID, purchase.ID).Return(purchase, nil)
	purchaseRepo.On("SaveWithLock", mock.Anything, purchase).Return(nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	result, err := service.ConsumeSession(context.Background(), ConsumeSessionRequest{
		TenantID:      tenantID,
		PurchaseID:    purchase.ID,
		AppointmentID: uuid.New(),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SessionsUsed)
	assert.Equal(t, 9, result.SessionsRemaining)
	require.Len(t, result.EventLog, 1)
	assert.Equal(t, packs.HistoryUso, result.EventLog[0].Type)
	require.NotNil(t, result.EventLog[0].SessionValue)
	assert.True(t, result.EventLog[0].SessionValue.Equal(decimal.RequireFromString("45.00")))
	purchaseRepo.AssertExpectations(t)
}

func TestPurchaseService_ConsumeSession_StaleVersionConflict(t *testing.T) {
	tenantID := uuid.New()
	purchase := newActivePurchase(t, tenantID, 1, "45.00", 90)

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	purchaseRepo.On("FindByID", mock.Anything, tenantID, purchase.ID).Return(purchase, nil)
	purchaseRepo.On("SaveWithLock", mock.Anything, purchase).
		Return(shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction"))

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	_, err := service.ConsumeSession(context.Background(), ConsumeSessionRequest{
		TenantID:      tenantID,
		PurchaseID:    purchase.ID,
		AppointmentID: uuid.New(),
	})

	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, "OPTIMISTIC_LOCK_ERROR"))
}

func TestPurchaseService_ConsumeSession_PersistsExpiredFlip(t *testing.T) {
	tenantID := uuid.New()
	purchase := newActivePurchase(t, tenantID, 10, "450.00", 90)
	past := time.Now().Add(-24 * time.Hour)
	purchase.ExpiresAt = &past

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	purchaseRepo.On("FindByID", mock.Anything, tenantID, purchase.ID).Return(purchase, nil)
	purchaseRepo.On("SaveWithLock", mock.Anything, purchase).Return(nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	_, err := service.ConsumeSession(context.Background(), ConsumeSessionRequest{
		TenantID:      tenantID,
		PurchaseID:    purchase.ID,
		AppointmentID: uuid.New(),
	})

	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, "PACKAGE_EXPIRED"))
	assert.Equal(t, packs.PurchaseStatusExpirado, purchase.Status)
	// The flip to EXPIRADO was written even though the consume failed
	purchaseRepo.AssertCalled(t, "SaveWithLock", mock.Anything, purchase)
}

func TestPurchaseService_CancelPurchase_CancelsLinkedEntries(t *testing.T) {
	tenantID := uuid.New()
	purchase := newActivePurchase(t, tenantID, 10, "450.00", 90)

	entry, err := ledger.NewLedgerEntry(
		tenantID,
		ledger.EntryTypeReceita,
		ledger.CategoryPacote,
		"Pacote: Massagem Relaxante 10x (10 sessões)",
		valueobject.NewMoneyEURFromFloat(450),
		valueobject.ZeroEUR(),
		time.Now(),
	)
	require.NoError(t, err)
	entry.WithPackagePurchase(purchase.ID)
	entry.ClearDomainEvents()

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	purchaseRepo.On("FindByID", mock.Anything, tenantID, purchase.ID).Return(purchase, nil)
	purchaseRepo.On("SaveWithLock", mock.Anything, purchase).Return(nil)
	entryRepo.On("FindByPackagePurchase", mock.Anything, tenantID, purchase.ID).Return([]ledger.LedgerEntry{*entry}, nil)
	entryRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.LedgerEntry")).Return(nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	result, err := service.CancelPurchase(context.Background(), CancelPurchaseRequest{
		TenantID:   tenantID,
		PurchaseID: purchase.ID,
		Reason:     "cliente desistiu",
		Actor:      "recepcao",
	})

	require.NoError(t, err)
	assert.Equal(t, packs.PurchaseStatusCancelado, result.Status)
	entryRepo.AssertCalled(t, "SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.LedgerEntry"))
}

func TestPurchaseService_DeletePurchase_BlockedByUsage(t *testing.T) {
	tenantID := uuid.New()
	purchase := newActivePurchase(t, tenantID, 10, "450.00", 90)
	require.NoError(t, purchase.ConsumeSession(uuid.New(), decimal.RequireFromString("45.00"), nil, time.Now()))
	purchase.ClearDomainEvents()

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	purchaseRepo.On("FindByID", mock.Anything, tenantID, purchase.ID).Return(purchase, nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	err := service.DeletePurchase(context.Background(), tenantID, purchase.ID)

	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, "PURCHASE_HAS_USAGE"))
	purchaseRepo.AssertNotCalled(t, "Delete")
}

func TestPurchaseService_DeletePurchase_BlockedByPayments(t *testing.T) {
	tenantID := uuid.New()
	purchase := newActivePurchase(t, tenantID, 10, "450.00", 90)

	entry, err := ledger.NewLedgerEntry(
		tenantID,
		ledger.EntryTypeReceita,
		ledger.CategoryPacote,
		"Pacote: Massagem Relaxante 10x (10 sessões)",
		valueobject.NewMoneyEURFromFloat(450),
		valueobject.ZeroEUR(),
		time.Now(),
	)
	require.NoError(t, err)
	entry.WithPackagePurchase(purchase.ID)

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	purchaseRepo.On("FindByID", mock.Anything, tenantID, purchase.ID).Return(purchase, nil)
	entryRepo.On("FindByPackagePurchase", mock.Anything, tenantID, purchase.ID).Return([]ledger.LedgerEntry{*entry}, nil)
	paymentRepo.On("SumActiveByEntry", mock.Anything, tenantID, entry.ID).Return(decimal.NewFromInt(100), nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	err = service.DeletePurchase(context.Background(), tenantID, purchase.ID)

	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, "PURCHASE_HAS_PAYMENTS"))
	purchaseRepo.AssertNotCalled(t, "Delete")
}

func TestPurchaseService_DeletePurchase_CleanPurchase(t *testing.T) {
	tenantID := uuid.New()
	purchase := newActivePurchase(t, tenantID, 10, "450.00", 90)

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	purchaseRepo.On("FindByID", mock.Anything, tenantID, purchase.ID).Return(purchase, nil)
	entryRepo.On("FindByPackagePurchase", mock.Anything, tenantID, purchase.ID).Return([]ledger.LedgerEntry{}, nil)
	purchaseRepo.On("Delete", mock.Anything, tenantID, purchase.ID).Return(nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	err := service.DeletePurchase(context.Background(), tenantID, purchase.ID)

	require.NoError(t, err)
	purchaseRepo.AssertExpectations(t)
}

func TestPurchaseService_ExtendExpiry_ReactivatesExpired(t *testing.T) {
	tenantID := uuid.New()
	purchase := newActivePurchase(t, tenantID, 10, "450.00", 90)
	past := time.Now().Add(-24 * time.Hour)
	purchase.ExpiresAt = &past
	purchase.MarkExpiredIfPast(time.Now())
	purchase.ClearDomainEvents()
	require.Equal(t, packs.PurchaseStatusExpirado, purchase.Status)

	definitionRepo := new(MockDefinitionRepository)
	purchaseRepo := new(MockPurchaseRepository)
	entryRepo := new(MockEntryRepository)
	paymentRepo := new(MockPaymentRepository)

	purchaseRepo.On("FindByID", mock.Anything, tenantID, purchase.ID).Return(purchase, nil)
	purchaseRepo.On("SaveWithLock", mock.Anything, purchase).Return(nil)

	service := newPurchaseService(definitionRepo, purchaseRepo, entryRepo, paymentRepo)

	result, err := service.ExtendExpiry(context.Background(), ExtendExpiryRequest{
		TenantID:   tenantID,
		PurchaseID: purchase.ID,
		Days:       30,
		Reason:     "cortesia",
		Actor:      "gerente",
	})

	require.NoError(t, err)
	assert.Equal(t, packs.PurchaseStatusAtivo, result.Status)
	require.NotNil(t, result.ExpiresAt)
	assert.True(t, result.ExpiresAt.After(time.Now()))
}
