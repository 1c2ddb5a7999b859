package packs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/packs"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
)

// PackageService handles the package catalog (definitions clients can buy)
type PackageService struct {
	definitionRepo packs.DefinitionRepository
}

// NewPackageService creates a new PackageService
func NewPackageService(definitionRepo packs.DefinitionRepository) *PackageService {
	return &PackageService{definitionRepo: definitionRepo}
}

// CreatePackageRequest represents a request to create a package definition
type CreatePackageRequest struct {
	TenantID     uuid.UUID
	Name         string
	Description  string
	Sessions     int
	TotalValue   decimal.Decimal
	ValidityDays int
}

// CreatePackage creates a new package definition
func (s *PackageService) CreatePackage(ctx context.Context, req CreatePackageRequest) (*packs.PackageDefinition, error) {
	definition, err := packs.NewPackageDefinition(
		req.TenantID,
		req.Name,
		req.Description,
		req.Sessions,
		valueobject.NewMoneyEUR(req.TotalValue),
		req.ValidityDays,
	)
	if err != nil {
		return nil, err
	}

	if err := s.definitionRepo.Save(ctx, definition); err != nil {
		return nil, fmt.Errorf("failed to save package: %w", err)
	}
	return definition, nil
}

// UpdatePackageRequest represents a request to update a package definition
type UpdatePackageRequest struct {
	TenantID     uuid.UUID
	PackageID    uuid.UUID
	Name         string
	Description  string
	Sessions     int
	TotalValue   decimal.Decimal
	ValidityDays int
}

// UpdatePackage updates an existing package definition. Purchases already
// sold keep the terms they were sold under.
func (s *PackageService) UpdatePackage(ctx context.Context, req UpdatePackageRequest) (*packs.PackageDefinition, error) {
	definition, err := s.definitionRepo.FindByID(ctx, req.TenantID, req.PackageID)
	if err != nil {
		return nil, err
	}

	if err := definition.Update(req.Name, req.Description, req.Sessions, valueobject.NewMoneyEUR(req.TotalValue), req.ValidityDays); err != nil {
		return nil, err
	}

	if err := s.definitionRepo.Save(ctx, definition); err != nil {
		return nil, fmt.Errorf("failed to save package: %w", err)
	}
	return definition, nil
}

// SetPackageActive activates or deactivates a package definition
func (s *PackageService) SetPackageActive(ctx context.Context, tenantID, packageID uuid.UUID, active bool) (*packs.PackageDefinition, error) {
	definition, err := s.definitionRepo.FindByID(ctx, tenantID, packageID)
	if err != nil {
		return nil, err
	}

	if active {
		definition.Activate()
	} else {
		definition.Deactivate()
	}

	if err := s.definitionRepo.Save(ctx, definition); err != nil {
		return nil, fmt.Errorf("failed to save package: %w", err)
	}
	return definition, nil
}

// GetPackage returns a package definition by ID
func (s *PackageService) GetPackage(ctx context.Context, tenantID, packageID uuid.UUID) (*packs.PackageDefinition, error) {
	return s.definitionRepo.FindByID(ctx, tenantID, packageID)
}

// ListPackages lists package definitions for a tenant
func (s *PackageService) ListPackages(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]packs.PackageDefinition, error) {
	return s.definitionRepo.FindAll(ctx, tenantID, activeOnly)
}

// DeletePackage soft deletes a package definition
func (s *PackageService) DeletePackage(ctx context.Context, tenantID, packageID uuid.UUID) error {
	return s.definitionRepo.Delete(ctx, tenantID, packageID)
}
