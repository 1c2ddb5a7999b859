package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID for a tenant
func (r *GormPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEntry finds all payments against an entry, oldest first
func (r *GormPaymentRepository) FindByEntry(ctx context.Context, tenantID, entryID uuid.UUID) ([]ledger.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND entry_id = ?", tenantID, entryID).
		Order("paid_at ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]ledger.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// SumActiveByEntry sums the active payments against an entry
func (r *GormPaymentRepository) SumActiveByEntry(ctx context.Context, tenantID, entryID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("tenant_id = ? AND entry_id = ? AND status = ?", tenantID, entryID, ledger.PaymentStatusAtivo).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return conn(ctx, r.db).Save(model).Error
}

// SumCashForPeriod sums active DINHEIRO payments in [from, to) split by the owning entry's type
func (r *GormPaymentRepository) SumCashForPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var result struct {
		Receitas decimal.Decimal
		Despesas decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Table("payments").
		Select("COALESCE(SUM(CASE WHEN ledger_entries.type = ? THEN payments.amount ELSE 0 END), 0) as receitas, "+
			"COALESCE(SUM(CASE WHEN ledger_entries.type = ? THEN payments.amount ELSE 0 END), 0) as despesas",
			ledger.EntryTypeReceita, ledger.EntryTypeDespesa).
		Joins("JOIN ledger_entries ON ledger_entries.id = payments.entry_id").
		Where("payments.tenant_id = ? AND payments.status = ? AND payments.method = ? AND payments.paid_at >= ? AND payments.paid_at < ?",
			tenantID, ledger.PaymentStatusAtivo, ledger.MethodDinheiro, from, to).
		Scan(&result).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return result.Receitas, result.Despesas, nil
}

// MovementsByMethodForPeriod aggregates active payments in [from, to) by method
func (r *GormPaymentRepository) MovementsByMethodForPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]ledger.MethodMovement, error) {
	var rows []struct {
		Method   ledger.PaymentMethod
		Receitas decimal.Decimal
		Despesas decimal.Decimal
		Count    int64
	}
	if err := conn(ctx, r.db).
		Table("payments").
		Select("payments.method as method, "+
			"COALESCE(SUM(CASE WHEN ledger_entries.type = ? THEN payments.amount ELSE 0 END), 0) as receitas, "+
			"COALESCE(SUM(CASE WHEN ledger_entries.type = ? THEN payments.amount ELSE 0 END), 0) as despesas, "+
			"COUNT(*) as count",
			ledger.EntryTypeReceita, ledger.EntryTypeDespesa).
		Joins("JOIN ledger_entries ON ledger_entries.id = payments.entry_id").
		Where("payments.tenant_id = ? AND payments.status = ? AND payments.paid_at >= ? AND payments.paid_at < ?",
			tenantID, ledger.PaymentStatusAtivo, from, to).
		Group("payments.method").
		Order("payments.method ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	movements := make([]ledger.MethodMovement, len(rows))
	for i, row := range rows {
		movements[i] = ledger.MethodMovement{
			Method:   row.Method,
			Receitas: row.Receitas,
			Despesas: row.Despesas,
			Count:    row.Count,
		}
	}
	return movements, nil
}

// Ensure GormPaymentRepository implements ledger.PaymentRepository
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
