package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/studiobeleza/backend/internal/domain/packs"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPackagePurchaseRepository implements packs.PurchaseRepository using GORM
type GormPackagePurchaseRepository struct {
	db *gorm.DB
}

// NewGormPackagePurchaseRepository creates a new GormPackagePurchaseRepository
func NewGormPackagePurchaseRepository(db *gorm.DB) *GormPackagePurchaseRepository {
	return &GormPackagePurchaseRepository{db: db}
}

// FindByID finds a package purchase by ID for a tenant
func (r *GormPackagePurchaseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*packs.PackagePurchase, error) {
	var model models.PackagePurchaseModel
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

// FindAll finds all package purchases for a tenant with filtering
func (r *GormPackagePurchaseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter packs.PurchaseFilter) ([]packs.PackagePurchase, error) {
	var purchaseModels []models.PackagePurchaseModel
	query := conn(ctx, r.db).Model(&models.PackagePurchaseModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyPurchaseFilter(query, filter)

	if err := query.Find(&purchaseModels).Error; err != nil {
		return nil, err
	}
	purchases := make([]packs.PackagePurchase, len(purchaseModels))
	for i, model := range purchaseModels {
		purchases[i] = *model.ToDomain()
	}
	return purchases, nil
}

// FindActiveByClient finds the client's ATIVO purchases ordered by expiry
func (r *GormPackagePurchaseRepository) FindActiveByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]packs.PackagePurchase, error) {
	var purchaseModels []models.PackagePurchaseModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND client_id = ? AND status = ?", tenantID, clientID, packs.PurchaseStatusAtivo).
		Order("expires_at ASC NULLS LAST").
		Find(&purchaseModels).Error; err != nil {
		return nil, err
	}
	purchases := make([]packs.PackagePurchase, len(purchaseModels))
	for i, model := range purchaseModels {
		purchases[i] = *model.ToDomain()
	}
	return purchases, nil
}

// Save creates or updates a package purchase
func (r *GormPackagePurchaseRepository) Save(ctx context.Context, purchase *packs.PackagePurchase) error {
	model := models.PackagePurchaseModelFromDomain(purchase)
	return conn(ctx, r.db).Save(model).Error
}

// SaveWithLock saves with optimistic locking. A stale version means another
// request consumed a session (or mutated the purchase) first; the caller
// reloads and retries or surfaces the conflict.
func (r *GormPackagePurchaseRepository) SaveWithLock(ctx context.Context, purchase *packs.PackagePurchase) error {
	model := models.PackagePurchaseModelFromDomain(purchase)
	result := conn(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", purchase.ID, purchase.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Delete hard deletes a package purchase
func (r *GormPackagePurchaseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := conn(ctx, r.db).Unscoped().Delete(&models.PackagePurchaseModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts package purchases for a tenant
func (r *GormPackagePurchaseRepository) Count(ctx context.Context, tenantID uuid.UUID, filter packs.PurchaseFilter) (int64, error) {
	var count int64
	query := conn(ctx, r.db).Model(&models.PackagePurchaseModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyPurchaseFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyPurchaseFilter applies filter options to the query
func (r *GormPackagePurchaseRepository) applyPurchaseFilter(query *gorm.DB, filter packs.PurchaseFilter) *gorm.DB {
	query = r.applyPurchaseFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, PackagePurchaseSortFields, "purchased_at")
		orderDir := ValidateSortOrder(filter.OrderDir)
		query = query.Order(orderBy + " " + orderDir)
	} else {
		query = query.Order("purchased_at DESC")
	}

	return query
}

// applyPurchaseFilterWithoutPagination applies filter options without pagination
func (r *GormPackagePurchaseRepository) applyPurchaseFilterWithoutPagination(query *gorm.DB, filter packs.PurchaseFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("package_name ILIKE ?", searchPattern)
	}

	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.PackageID != nil {
		query = query.Where("package_id = ?", *filter.PackageID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("purchased_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("purchased_at < ?", *filter.ToDate)
	}

	return query
}

// Ensure GormPackagePurchaseRepository implements packs.PurchaseRepository
var _ packs.PurchaseRepository = (*GormPackagePurchaseRepository)(nil)
