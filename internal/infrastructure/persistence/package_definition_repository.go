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

// GormPackageDefinitionRepository implements packs.DefinitionRepository using GORM
type GormPackageDefinitionRepository struct {
	db *gorm.DB
}

// NewGormPackageDefinitionRepository creates a new GormPackageDefinitionRepository
func NewGormPackageDefinitionRepository(db *gorm.DB) *GormPackageDefinitionRepository {
	return &GormPackageDefinitionRepository{db: db}
}

// FindByID finds a package definition by ID for a tenant
func (r *GormPackageDefinitionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*packs.PackageDefinition, error) {
	var model models.PackageDefinitionModel
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

// FindAll finds all package definitions for a tenant
func (r *GormPackageDefinitionRepository) FindAll(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]packs.PackageDefinition, error) {
	var definitionModels []models.PackageDefinitionModel
	query := conn(ctx, r.db).
		Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("name ASC").Find(&definitionModels).Error; err != nil {
		return nil, err
	}
	definitions := make([]packs.PackageDefinition, len(definitionModels))
	for i, model := range definitionModels {
		definitions[i] = *model.ToDomain()
	}
	return definitions, nil
}

// Save creates or updates a package definition
func (r *GormPackageDefinitionRepository) Save(ctx context.Context, definition *packs.PackageDefinition) error {
	model := models.PackageDefinitionModelFromDomain(definition)
	return conn(ctx, r.db).Save(model).Error
}

// Delete soft deletes a package definition for a tenant
func (r *GormPackageDefinitionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.PackageDefinitionModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPackageDefinitionRepository implements packs.DefinitionRepository
var _ packs.DefinitionRepository = (*GormPackageDefinitionRepository)(nil)
