package packs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studiobeleza/backend/internal/domain/shared"
)

// PurchaseFilter defines filtering options for package purchase queries
type PurchaseFilter struct {
	shared.Filter
	ClientID  *uuid.UUID      // Filter by client
	PackageID *uuid.UUID      // Filter by package definition
	Status    *PurchaseStatus // Filter by status
	FromDate  *time.Time      // Filter by purchase date range start (inclusive)
	ToDate    *time.Time      // Filter by purchase date range end (exclusive)
}

// DefinitionRepository defines the interface for package definition persistence
type DefinitionRepository interface {
	// FindByID finds a package definition by ID for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PackageDefinition, error)

	// FindAll finds all package definitions for a tenant; activeOnly limits to
	// packages currently on sale
	FindAll(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]PackageDefinition, error)

	// Save creates or updates a package definition
	Save(ctx context.Context, definition *PackageDefinition) error

	// Delete soft deletes a package definition for a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PurchaseRepository defines the interface for package purchase persistence
type PurchaseRepository interface {
	// FindByID finds a package purchase by ID for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PackagePurchase, error)

	// FindAll finds all package purchases for a tenant with filtering
	FindAll(ctx context.Context, tenantID uuid.UUID, filter PurchaseFilter) ([]PackagePurchase, error)

	// FindActiveByClient finds the client's ATIVO purchases ordered by expiry
	FindActiveByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]PackagePurchase, error)

	// Save creates or updates a package purchase
	Save(ctx context.Context, purchase *PackagePurchase) error

	// SaveWithLock saves with optimistic locking (version check); a stale
	// version returns CONCURRENCY_CONFLICT so concurrent session consumption
	// can never drive the remaining count below zero
	SaveWithLock(ctx context.Context, purchase *PackagePurchase) error

	// Delete hard deletes a package purchase; eligibility rules live in the
	// application layer
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts package purchases for a tenant with optional filters
	Count(ctx context.Context, tenantID uuid.UUID, filter PurchaseFilter) (int64, error)
}
