package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/scheduling"
)

// AppointmentModel is the persistence model for the Appointment aggregate root.
type AppointmentModel struct {
	TenantAggregateModel
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ServiceName string    `gorm:"type:varchar(150);not null"`
	ScheduledAt time.Time `gorm:"not null;index"`

	PackagePurchaseID *uuid.UUID       `gorm:"type:uuid;index"`
	StandalonePrice   *decimal.Decimal `gorm:"type:decimal(18,4)"`
	StaffID           *uuid.UUID       `gorm:"type:uuid;index"`

	Status        scheduling.AppointmentStatus `gorm:"type:varchar(20);not null;default:'AGENDADO';index"`
	PaymentStatus scheduling.PaymentState      `gorm:"type:varchar(20);not null;default:'PENDENTE'"`
	ChargedAmount decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	LedgerEntryID *uuid.UUID                   `gorm:"type:uuid"`

	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
	Notes        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AppointmentModel) TableName() string {
	return "appointments"
}

// ToDomain converts the persistence model to a domain Appointment entity.
func (m *AppointmentModel) ToDomain() *scheduling.Appointment {
	a := &scheduling.Appointment{
		ClientID:          m.ClientID,
		ServiceName:       m.ServiceName,
		ScheduledAt:       m.ScheduledAt,
		PackagePurchaseID: m.PackagePurchaseID,
		StandalonePrice:   m.StandalonePrice,
		StaffID:           m.StaffID,
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		ChargedAmount:     m.ChargedAmount,
		LedgerEntryID:     m.LedgerEntryID,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Notes:             m.Notes,
	}
	m.PopulateTenantAggregateRoot(&a.TenantAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Appointment entity.
func (m *AppointmentModel) FromDomain(a *scheduling.Appointment) {
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.ClientID = a.ClientID
	m.ServiceName = a.ServiceName
	m.ScheduledAt = a.ScheduledAt
	m.PackagePurchaseID = a.PackagePurchaseID
	m.StandalonePrice = a.StandalonePrice
	m.StaffID = a.StaffID
	m.Status = a.Status
	m.PaymentStatus = a.PaymentStatus
	m.ChargedAmount = a.ChargedAmount
	m.LedgerEntryID = a.LedgerEntryID
	m.CompletedAt = a.CompletedAt
	m.CancelledAt = a.CancelledAt
	m.CancelReason = a.CancelReason
	m.Notes = a.Notes
}

// AppointmentModelFromDomain creates a new persistence model from a domain Appointment.
func AppointmentModelFromDomain(a *scheduling.Appointment) *AppointmentModel {
	m := &AppointmentModel{}
	m.FromDomain(a)
	return m
}
