package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/packs"
)

// PackageDefinitionModel is the persistence model for the PackageDefinition aggregate root.
type PackageDefinitionModel struct {
	TenantAggregateModel
	Name         string          `gorm:"type:varchar(100);not null"`
	Description  string          `gorm:"type:text"`
	Sessions     int             `gorm:"not null"`
	TotalValue   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ValidityDays int             `gorm:"not null;default:0"`
	Active       bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PackageDefinitionModel) TableName() string {
	return "package_definitions"
}

// ToDomain converts the persistence model to a domain PackageDefinition entity.
func (m *PackageDefinitionModel) ToDomain() *packs.PackageDefinition {
	d := &packs.PackageDefinition{
		Name:         m.Name,
		Description:  m.Description,
		Sessions:     m.Sessions,
		TotalValue:   m.TotalValue,
		ValidityDays: m.ValidityDays,
		Active:       m.Active,
	}
	m.PopulateTenantAggregateRoot(&d.TenantAggregateRoot)
	return d
}

// FromDomain populates the persistence model from a domain PackageDefinition entity.
func (m *PackageDefinitionModel) FromDomain(d *packs.PackageDefinition) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.Name = d.Name
	m.Description = d.Description
	m.Sessions = d.Sessions
	m.TotalValue = d.TotalValue
	m.ValidityDays = d.ValidityDays
	m.Active = d.Active
}

// PackageDefinitionModelFromDomain creates a new persistence model from a domain PackageDefinition.
func PackageDefinitionModelFromDomain(d *packs.PackageDefinition) *PackageDefinitionModel {
	m := &PackageDefinitionModel{}
	m.FromDomain(d)
	return m
}

// PackagePurchaseModel is the persistence model for the PackagePurchase aggregate root.
type PackagePurchaseModel struct {
	TenantAggregateModel
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PackageID   uuid.UUID `gorm:"type:uuid;not null;index"`
	PackageName string    `gorm:"type:varchar(100);not null"`

	SessionsContracted int `gorm:"not null"`
	SessionsUsed       int `gorm:"not null;default:0"`
	SessionsRemaining  int `gorm:"not null"`

	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OutstandingAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	IsInstallment     bool            `gorm:"not null;default:false"`
	InstallmentCount  int             `gorm:"not null;default:0"`
	InstallmentAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InstallmentsPaid  int             `gorm:"not null;default:0"`

	Status      packs.PurchaseStatus `gorm:"type:varchar(20);not null;default:'ATIVO';index"`
	PurchasedAt time.Time            `gorm:"not null;index"`
	ExpiresAt   *time.Time           `gorm:"index"`

	EventLog packs.History `gorm:"type:jsonb;default:'[]'"`

	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
	Notes        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PackagePurchaseModel) TableName() string {
	return "package_purchases"
}

// ToDomain converts the persistence model to a domain PackagePurchase entity.
func (m *PackagePurchaseModel) ToDomain() *packs.PackagePurchase {
	p := &packs.PackagePurchase{
		ClientID:           m.ClientID,
		PackageID:          m.PackageID,
		PackageName:        m.PackageName,
		SessionsContracted: m.SessionsContracted,
		SessionsUsed:       m.SessionsUsed,
		SessionsRemaining:  m.SessionsRemaining,
		TotalAmount:        m.TotalAmount,
		PaidAmount:         m.PaidAmount,
		OutstandingAmount:  m.OutstandingAmount,
		IsInstallment:      m.IsInstallment,
		InstallmentCount:   m.InstallmentCount,
		InstallmentAmount:  m.InstallmentAmount,
		InstallmentsPaid:   m.InstallmentsPaid,
		Status:             m.Status,
		PurchasedAt:        m.PurchasedAt,
		ExpiresAt:          m.ExpiresAt,
		EventLog:           m.EventLog,
		CancelledAt:        m.CancelledAt,
		CancelReason:       m.CancelReason,
		Notes:              m.Notes,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain PackagePurchase entity.
func (m *PackagePurchaseModel) FromDomain(p *packs.PackagePurchase) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.ClientID = p.ClientID
	m.PackageID = p.PackageID
	m.PackageName = p.PackageName
	m.SessionsContracted = p.SessionsContracted
	m.SessionsUsed = p.SessionsUsed
	m.SessionsRemaining = p.SessionsRemaining
	m.TotalAmount = p.TotalAmount
	m.PaidAmount = p.PaidAmount
	m.OutstandingAmount = p.OutstandingAmount
	m.IsInstallment = p.IsInstallment
	m.InstallmentCount = p.InstallmentCount
	m.InstallmentAmount = p.InstallmentAmount
	m.InstallmentsPaid = p.InstallmentsPaid
	m.Status = p.Status
	m.PurchasedAt = p.PurchasedAt
	m.ExpiresAt = p.ExpiresAt
	m.EventLog = p.EventLog
	m.CancelledAt = p.CancelledAt
	m.CancelReason = p.CancelReason
	m.Notes = p.Notes
}

// PackagePurchaseModelFromDomain creates a new persistence model from a domain PackagePurchase.
func PackagePurchaseModelFromDomain(p *packs.PackagePurchase) *PackagePurchaseModel {
	m := &PackagePurchaseModel{}
	m.FromDomain(p)
	return m
}
