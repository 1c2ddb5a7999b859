package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/packs"
	"github.com/studiobeleza/backend/internal/domain/shared"
)

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter ledger.EntryFilter) ([]ledger.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) FindByAppointment(ctx context.Context, tenantID, appointmentID uuid.UUID) ([]ledger.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) FindByPackagePurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) ([]ledger.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) Save(ctx context.Context, entry *ledger.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) SaveWithLock(ctx context.Context, entry *ledger.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockEntryRepository) Count(ctx context.Context, tenantID uuid.UUID, filter ledger.EntryFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntryRepository) SumByTypeForPeriod(ctx context.Context, tenantID uuid.UUID, entryType ledger.EntryType, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, entryType, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockEntryRepository) SumByCategoryForPeriod(ctx context.Context, tenantID uuid.UUID, category ledger.EntryCategory, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, category, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByEntry(ctx context.Context, tenantID, entryID uuid.UUID) ([]ledger.Payment, error) {
	args := m.Called(ctx, tenantID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumActiveByEntry(ctx context.Context, tenantID, entryID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, entryID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SumCashForPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockPaymentRepository) MovementsByMethodForPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]ledger.MethodMovement, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.MethodMovement), args.Error(1)
}

type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*packs.PackagePurchase, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*packs.PackagePurchase), args.Error(1)
}

func (m *MockPurchaseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter packs.PurchaseFilter) ([]packs.PackagePurchase, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]packs.PackagePurchase), args.Error(1)
}

func (m *MockPurchaseRepository) FindActiveByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]packs.PackagePurchase, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]packs.PackagePurchase), args.Error(1)
}

func (m *MockPurchaseRepository) Save(ctx context.Context, purchase *packs.PackagePurchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseRepository) SaveWithLock(ctx context.Context, purchase *packs.PackagePurchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPurchaseRepository) Count(ctx context.Context, tenantID uuid.UUID, filter packs.PurchaseFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// fakeTxManager runs the callback directly, with no real transaction
type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeIdempotencyStore remembers keys in memory
type fakeIdempotencyStore struct {
	seen map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: map[string]bool{}}
}

func (f *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return f.seen[key], nil
}

func (f *fakeIdempotencyStore) Close() error { return nil }

var _ shared.IdempotencyStore = (*fakeIdempotencyStore)(nil)
