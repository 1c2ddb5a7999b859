package cashier

import (
	"context"

	"github.com/google/uuid"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
)

// SessionRepository defines the interface for cash session persistence.
// The backing table carries a unique index on (tenant_id, business_day); Save
// surfaces a violation as ALREADY_EXISTS so two concurrent opens cannot both
// succeed.
type SessionRepository interface {
	// FindByID finds a cash session by ID for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CashSession, error)

	// FindByDay finds the session for a business day, or NOT_FOUND
	FindByDay(ctx context.Context, tenantID uuid.UUID, day valueobject.BusinessDay) (*CashSession, error)

	// FindOpen finds the currently open session for a tenant, or NOT_FOUND
	FindOpen(ctx context.Context, tenantID uuid.UUID) (*CashSession, error)

	// FindRecent returns the most recent sessions, newest first
	FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]CashSession, error)

	// Save creates or updates a cash session
	Save(ctx context.Context, session *CashSession) error

	// SaveWithLock saves with optimistic locking (version check); closes racing
	// against adjustments fail with CONCURRENCY_CONFLICT instead of losing writes
	SaveWithLock(ctx context.Context, session *CashSession) error
}
