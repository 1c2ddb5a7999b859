package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/ledger"
)

// LedgerEntryModel is the persistence model for the LedgerEntry aggregate root.
type LedgerEntryModel struct {
	TenantAggregateModel
	Type        ledger.EntryType     `gorm:"type:varchar(10);not null;index"`
	Category    ledger.EntryCategory `gorm:"type:varchar(30);not null;index"`
	Description string               `gorm:"type:varchar(255);not null"`
	Notes       string               `gorm:"type:text"`

	GrossAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	FinalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	Status        ledger.EntryStatus    `gorm:"type:varchar(20);not null;default:'PENDENTE';index"`
	PaymentMethod *ledger.PaymentMethod `gorm:"type:varchar(20)"`
	EntryDate     time.Time             `gorm:"not null;index"`
	PaidAt        *time.Time

	AppointmentID     *uuid.UUID `gorm:"type:uuid;index"`
	ClientID          *uuid.UUID `gorm:"type:uuid;index"`
	PackagePurchaseID *uuid.UUID `gorm:"type:uuid;index"`
	StaffID           *uuid.UUID `gorm:"type:uuid;index"`

	IsInstallment    bool `gorm:"not null;default:false"`
	InstallmentCount int  `gorm:"not null;default:0"`
	InstallmentsPaid int  `gorm:"not null;default:0"`

	Commission *ledger.Commission `gorm:"type:jsonb"`

	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry entity.
func (m *LedgerEntryModel) ToDomain() *ledger.LedgerEntry {
	e := &ledger.LedgerEntry{
		Type:              m.Type,
		Category:          m.Category,
		Description:       m.Description,
		Notes:             m.Notes,
		GrossAmount:       m.GrossAmount,
		Discount:          m.Discount,
		FinalAmount:       m.FinalAmount,
		Status:            m.Status,
		PaymentMethod:     m.PaymentMethod,
		EntryDate:         m.EntryDate,
		PaidAt:            m.PaidAt,
		AppointmentID:     m.AppointmentID,
		ClientID:          m.ClientID,
		PackagePurchaseID: m.PackagePurchaseID,
		StaffID:           m.StaffID,
		IsInstallment:     m.IsInstallment,
		InstallmentCount:  m.InstallmentCount,
		InstallmentsPaid:  m.InstallmentsPaid,
		Commission:        m.Commission,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}
	m.PopulateTenantAggregateRoot(&e.TenantAggregateRoot)
	return e
}

// FromDomain populates the persistence model from a domain LedgerEntry entity.
func (m *LedgerEntryModel) FromDomain(e *ledger.LedgerEntry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.Type = e.Type
	m.Category = e.Category
	m.Description = e.Description
	m.Notes = e.Notes
	m.GrossAmount = e.GrossAmount
	m.Discount = e.Discount
	m.FinalAmount = e.FinalAmount
	m.Status = e.Status
	m.PaymentMethod = e.PaymentMethod
	m.EntryDate = e.EntryDate
	m.PaidAt = e.PaidAt
	m.AppointmentID = e.AppointmentID
	m.ClientID = e.ClientID
	m.PackagePurchaseID = e.PackagePurchaseID
	m.StaffID = e.StaffID
	m.IsInstallment = e.IsInstallment
	m.InstallmentCount = e.InstallmentCount
	m.InstallmentsPaid = e.InstallmentsPaid
	m.Commission = e.Commission
	m.CancelledAt = e.CancelledAt
	m.CancelReason = e.CancelReason
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry.
func LedgerEntryModelFromDomain(e *ledger.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	TenantAggregateModel
	EntryID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Method         ledger.PaymentMethod  `gorm:"type:varchar(20);not null;index"`
	Details        ledger.PaymentDetails `gorm:"type:jsonb;default:'{}'"`
	Status         ledger.PaymentStatus  `gorm:"type:varchar(20);not null;default:'ATIVO';index"`
	PaidAt         time.Time             `gorm:"not null;index"`
	Notes          string                `gorm:"type:text"`
	ReversedAt     *time.Time
	ReversalReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	p := &ledger.Payment{
		EntryID:        m.EntryID,
		Amount:         m.Amount,
		Method:         m.Method,
		Details:        m.Details,
		Status:         m.Status,
		PaidAt:         m.PaidAt,
		Notes:          m.Notes,
		ReversedAt:     m.ReversedAt,
		ReversalReason: m.ReversalReason,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.EntryID = p.EntryID
	m.Amount = p.Amount
	m.Method = p.Method
	m.Details = p.Details
	m.Status = p.Status
	m.PaidAt = p.PaidAt
	m.Notes = p.Notes
	m.ReversedAt = p.ReversedAt
	m.ReversalReason = p.ReversalReason
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
