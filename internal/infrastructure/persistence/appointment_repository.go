package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/studiobeleza/backend/internal/domain/scheduling"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAppointmentRepository implements scheduling.AppointmentRepository using GORM
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewGormAppointmentRepository creates a new GormAppointmentRepository
func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// FindByID finds an appointment by ID for a tenant
func (r *GormAppointmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*scheduling.Appointment, error) {
	var model models.AppointmentModel
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

// FindAll finds all appointments for a tenant with filtering
func (r *GormAppointmentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter scheduling.AppointmentFilter) ([]scheduling.Appointment, error) {
	var appointmentModels []models.AppointmentModel
	query := conn(ctx, r.db).Model(&models.AppointmentModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyAppointmentFilter(query, filter)

	if err := query.Find(&appointmentModels).Error; err != nil {
		return nil, err
	}
	appointments := make([]scheduling.Appointment, len(appointmentModels))
	for i, model := range appointmentModels {
		appointments[i] = *model.ToDomain()
	}
	return appointments, nil
}

// FindByPackagePurchase finds appointments settled against a package purchase
func (r *GormAppointmentRepository) FindByPackagePurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) ([]scheduling.Appointment, error) {
	var appointmentModels []models.AppointmentModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND package_purchase_id = ?", tenantID, purchaseID).
		Order("scheduled_at ASC").
		Find(&appointmentModels).Error; err != nil {
		return nil, err
	}
	appointments := make([]scheduling.Appointment, len(appointmentModels))
	for i, model := range appointmentModels {
		appointments[i] = *model.ToDomain()
	}
	return appointments, nil
}

// Save creates or updates an appointment
func (r *GormAppointmentRepository) Save(ctx context.Context, appointment *scheduling.Appointment) error {
	model := models.AppointmentModelFromDomain(appointment)
	return conn(ctx, r.db).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormAppointmentRepository) SaveWithLock(ctx context.Context, appointment *scheduling.Appointment) error {
	model := models.AppointmentModelFromDomain(appointment)
	result := conn(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", appointment.ID, appointment.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Delete soft deletes an appointment for a tenant
func (r *GormAppointmentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.AppointmentModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyAppointmentFilter applies filter options to the query
func (r *GormAppointmentRepository) applyAppointmentFilter(query *gorm.DB, filter scheduling.AppointmentFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("service_name ILIKE ? OR notes ILIKE ?", searchPattern, searchPattern)
	}

	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.StaffID != nil {
		query = query.Where("staff_id = ?", *filter.StaffID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("scheduled_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("scheduled_at < ?", *filter.ToDate)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, AppointmentSortFields, "scheduled_at")
		orderDir := ValidateSortOrder(filter.OrderDir)
		query = query.Order(orderBy + " " + orderDir)
	} else {
		query = query.Order("scheduled_at DESC")
	}

	return query
}

// Ensure GormAppointmentRepository implements scheduling.AppointmentRepository
var _ scheduling.AppointmentRepository = (*GormAppointmentRepository)(nil)
