package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studiobeleza/backend/internal/domain/shared"
)

// AppointmentFilter defines filtering options for appointment queries
type AppointmentFilter struct {
	shared.Filter
	ClientID *uuid.UUID         // Filter by client
	StaffID  *uuid.UUID         // Filter by staff member
	Status   *AppointmentStatus // Filter by status
	FromDate *time.Time         // Filter by scheduled time range start (inclusive)
	ToDate   *time.Time         // Filter by scheduled time range end (exclusive)
}

// AppointmentRepository defines the interface for appointment persistence
type AppointmentRepository interface {
	// FindByID finds an appointment by ID for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error)

	// FindAll finds all appointments for a tenant with filtering
	FindAll(ctx context.Context, tenantID uuid.UUID, filter AppointmentFilter) ([]Appointment, error)

	// FindByPackagePurchase finds appointments linked to a package purchase
	FindByPackagePurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) ([]Appointment, error)

	// Save creates or updates an appointment
	Save(ctx context.Context, appointment *Appointment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, appointment *Appointment) error

	// Delete soft deletes an appointment for a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
