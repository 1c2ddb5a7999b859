package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements ledger.EntryRepository using GORM
type GormLedgerEntryRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormLedgerEntryRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a ledger entry by ID for a tenant
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var model models.LedgerEntryModel
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

// FindAll finds all ledger entries for a tenant with filtering
func (r *GormLedgerEntryRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter ledger.EntryFilter) ([]ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	query := conn(ctx, r.db).Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyEntryFilter(query, filter)

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]ledger.LedgerEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// FindByAppointment finds entries linked to an appointment
func (r *GormLedgerEntryRepository) FindByAppointment(ctx context.Context, tenantID, appointmentID uuid.UUID) ([]ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND appointment_id = ?", tenantID, appointmentID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]ledger.LedgerEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// FindByPackagePurchase finds entries linked to a package purchase
func (r *GormLedgerEntryRepository) FindByPackagePurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) ([]ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND package_purchase_id = ?", tenantID, purchaseID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]ledger.LedgerEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Save creates or updates a ledger entry. When an outbox saver is configured,
// the entry's pending domain events are written to the outbox in the same
// transaction as the entry itself.
func (r *GormLedgerEntryRepository) Save(ctx context.Context, entry *ledger.LedgerEntry) error {
	tx := conn(ctx, r.db)
	model := models.LedgerEntryModelFromDomain(entry)
	if err := tx.Save(model).Error; err != nil {
		return err
	}

	if r.outboxSaver != nil {
		if events := entry.GetDomainEvents(); len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
	}
	return nil
}

// SaveWithLock saves with optimistic locking
func (r *GormLedgerEntryRepository) SaveWithLock(ctx context.Context, entry *ledger.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	result := conn(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", entry.ID, entry.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Delete soft deletes a ledger entry for a tenant
func (r *GormLedgerEntryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.LedgerEntryModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts ledger entries for a tenant
func (r *GormLedgerEntryRepository) Count(ctx context.Context, tenantID uuid.UUID, filter ledger.EntryFilter) (int64, error) {
	var count int64
	query := conn(ctx, r.db).Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyEntryFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumByTypeForPeriod sums final amounts of non-cancelled entries of the given type in [from, to)
func (r *GormLedgerEntryRepository) SumByTypeForPeriod(ctx context.Context, tenantID uuid.UUID, entryType ledger.EntryType, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Model(&models.LedgerEntryModel{}).
		Select("COALESCE(SUM(final_amount), 0) as total").
		Where("tenant_id = ? AND type = ? AND entry_date >= ? AND entry_date < ? AND status NOT IN ?",
			tenantID, entryType, from, to,
			[]ledger.EntryStatus{ledger.EntryStatusCancelado, ledger.EntryStatusEstornado}).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumByCategoryForPeriod sums final amounts of non-cancelled entries of the given category in [from, to)
func (r *GormLedgerEntryRepository) SumByCategoryForPeriod(ctx context.Context, tenantID uuid.UUID, category ledger.EntryCategory, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Model(&models.LedgerEntryModel{}).
		Select("COALESCE(SUM(final_amount), 0) as total").
		Where("tenant_id = ? AND category = ? AND entry_date >= ? AND entry_date < ? AND status NOT IN ?",
			tenantID, category, from, to,
			[]ledger.EntryStatus{ledger.EntryStatusCancelado, ledger.EntryStatusEstornado}).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyEntryFilter applies filter options to the query
func (r *GormLedgerEntryRepository) applyEntryFilter(query *gorm.DB, filter ledger.EntryFilter) *gorm.DB {
	query = r.applyEntryFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, LedgerEntrySortFields, "entry_date")
		orderDir := ValidateSortOrder(filter.OrderDir)
		query = query.Order(orderBy + " " + orderDir)
	} else {
		query = query.Order("entry_date DESC, created_at DESC")
	}

	return query
}

// applyEntryFilterWithoutPagination applies filter options without pagination
func (r *GormLedgerEntryRepository) applyEntryFilterWithoutPagination(query *gorm.DB, filter ledger.EntryFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("description ILIKE ? OR notes ILIKE ?", searchPattern, searchPattern)
	}

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.AppointmentID != nil {
		query = query.Where("appointment_id = ?", *filter.AppointmentID)
	}
	if filter.PackagePurchaseID != nil {
		query = query.Where("package_purchase_id = ?", *filter.PackagePurchaseID)
	}
	if filter.StaffID != nil {
		query = query.Where("staff_id = ?", *filter.StaffID)
	}
	if filter.FromDate != nil {
		query = query.Where("entry_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("entry_date < ?", *filter.ToDate)
	}

	return query
}

// Ensure GormLedgerEntryRepository implements ledger.EntryRepository
var _ ledger.EntryRepository = (*GormLedgerEntryRepository)(nil)
