package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/studiobeleza/backend/internal/domain/cashier"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
	"github.com/studiobeleza/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCashSessionRepository implements cashier.SessionRepository using GORM
type GormCashSessionRepository struct {
	db *gorm.DB
}

// NewGormCashSessionRepository creates a new GormCashSessionRepository
func NewGormCashSessionRepository(db *gorm.DB) *GormCashSessionRepository {
	return &GormCashSessionRepository{db: db}
}

// FindByID finds a cash session by ID for a tenant
func (r *GormCashSessionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*cashier.CashSession, error) {
	var model models.CashSessionModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByDay finds the session for a business day, if one was ever opened
func (r *GormCashSessionRepository) FindByDay(ctx context.Context, tenantID uuid.UUID, day valueobject.BusinessDay) (*cashier.CashSession, error) {
	var model models.CashSessionModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND business_day = ?", tenantID, day.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindOpen finds the currently open session for a tenant, if any
func (r *GormCashSessionRepository) FindOpen(ctx context.Context, tenantID uuid.UUID) (*cashier.CashSession, error) {
	var model models.CashSessionModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND status = ?", tenantID, cashier.SessionStatusAberto).
		Order("business_day DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindRecent returns the most recent sessions, newest business day first
func (r *GormCashSessionRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]cashier.CashSession, error) {
	if limit <= 0 {
		limit = 30
	}
	var sessionModels []models.CashSessionModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		Order("business_day DESC").
		Limit(limit).
		Find(&sessionModels).Error; err != nil {
		return nil, err
	}
	sessions := make([]cashier.CashSession, len(sessionModels))
	for i, model := range sessionModels {
		session, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		sessions[i] = *session
	}
	return sessions, nil
}

// Save creates or updates a cash session. A unique index on
// (tenant_id, business_day) guarantees at most one session per day;
// the violation is surfaced as ALREADY_EXISTS so two concurrent opens
// cannot both succeed.
func (r *GormCashSessionRepository) Save(ctx context.Context, session *cashier.CashSession) error {
	model := models.CashSessionModelFromDomain(session)
	if err := conn(ctx, r.db).Save(model).Error; err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.NewDomainError("ALREADY_EXISTS", "A cash session already exists for this business day")
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking
func (r *GormCashSessionRepository) SaveWithLock(ctx context.Context, session *cashier.CashSession) error {
	model := models.CashSessionModelFromDomain(session)
	result := conn(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", session.ID, session.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Ensure GormCashSessionRepository implements cashier.SessionRepository
var _ cashier.SessionRepository = (*GormCashSessionRepository)(nil)
