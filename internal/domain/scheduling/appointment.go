package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
)

// AppointmentStatus represents the scheduling lifecycle
type AppointmentStatus string

const (
	AppointmentStatusAgendado  AppointmentStatus = "AGENDADO"
	AppointmentStatusRealizado AppointmentStatus = "REALIZADO"
	AppointmentStatusCancelado AppointmentStatus = "CANCELADO"
)

// IsValid checks if the status is a valid AppointmentStatus
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusAgendado, AppointmentStatusRealizado, AppointmentStatusCancelado:
		return true
	}
	return false
}

// String returns the string representation of AppointmentStatus
func (s AppointmentStatus) String() string {
	return string(s)
}

// PaymentState tracks how the appointment's charge was settled
type PaymentState string

const (
	PaymentStatePendente     PaymentState = "PENDENTE"
	PaymentStatePago         PaymentState = "PAGO"
	PaymentStateNaoAplicavel PaymentState = "NAO_APLICAVEL"
)

// IsValid checks if the payment state is valid
func (s PaymentState) IsValid() bool {
	switch s {
	case PaymentStatePendente, PaymentStatePago, PaymentStateNaoAplicavel:
		return true
	}
	return false
}

// String returns the string representation of PaymentState
func (s PaymentState) String() string {
	return string(s)
}

// Appointment is the scheduling-side aggregate that bridges into the ledger
// when completed: package-linked appointments consume a session, priced
// standalone appointments leave a pending charge, unpriced ones have no
// financial effect.
type Appointment struct {
	shared.TenantAggregateRoot
	ClientID    uuid.UUID `json:"client_id"`
	ServiceName string    `json:"service_name"`
	ScheduledAt time.Time `json:"scheduled_at"`

	PackagePurchaseID *uuid.UUID       `json:"package_purchase_id"`
	StandalonePrice   *decimal.Decimal `json:"standalone_price"`
	StaffID           *uuid.UUID       `json:"staff_id"`

	Status        AppointmentStatus `json:"status"`
	PaymentStatus PaymentState      `json:"payment_status"`
	ChargedAmount decimal.Decimal   `json:"charged_amount"`
	LedgerEntryID *uuid.UUID        `json:"ledger_entry_id"`

	CompletedAt  *time.Time `json:"completed_at"`
	CancelledAt  *time.Time `json:"cancelled_at"`
	CancelReason string     `json:"cancel_reason"`
	Notes        string     `json:"notes"`
}

// NewAppointment creates a scheduled appointment
func NewAppointment(
	tenantID uuid.UUID,
	clientID uuid.UUID,
	serviceName string,
	scheduledAt time.Time,
) (*Appointment, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if serviceName == "" {
		return nil, shared.NewDomainError("INVALID_SERVICE", "Service name cannot be empty")
	}
	if scheduledAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Scheduled time is required")
	}

	return &Appointment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		ServiceName:         serviceName,
		ScheduledAt:         scheduledAt,
		Status:              AppointmentStatusAgendado,
		PaymentStatus:       PaymentStatePendente,
		ChargedAmount:       decimal.Zero,
	}, nil
}

// WithPackagePurchase links the appointment to a package purchase; its
// completion will consume one session instead of creating a charge
func (a *Appointment) WithPackagePurchase(purchaseID uuid.UUID) *Appointment {
	if purchaseID != uuid.Nil {
		a.PackagePurchaseID = &purchaseID
	}
	return a
}

// WithStandalonePrice sets the price charged when the appointment is not
// covered by a package
func (a *Appointment) WithStandalonePrice(price valueobject.Money) *Appointment {
	amount := price.Amount()
	a.StandalonePrice = &amount
	return a
}

// WithStaff assigns the staff member performing the service
func (a *Appointment) WithStaff(staffID uuid.UUID) *Appointment {
	if staffID != uuid.Nil {
		a.StaffID = &staffID
	}
	return a
}

// WithNotes sets free-form notes on the appointment
func (a *Appointment) WithNotes(notes string) *Appointment {
	a.Notes = notes
	return a
}

// IsPackageLinked returns true when completion should consume a package session
func (a *Appointment) IsPackageLinked() bool {
	return a.PackagePurchaseID != nil
}

// HasStandalonePrice returns true when the appointment carries its own price
func (a *Appointment) HasStandalonePrice() bool {
	return a.StandalonePrice != nil && a.StandalonePrice.IsPositive()
}

// Complete transitions the appointment to REALIZADO
func (a *Appointment) Complete(now time.Time) error {
	if a.Status != AppointmentStatusAgendado {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete appointment in %s status", a.Status))
	}
	if now.IsZero() {
		now = time.Now()
	}

	a.Status = AppointmentStatusRealizado
	a.CompletedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()

	return nil
}

// SettleFromPackage records that the session value was covered by a package
func (a *Appointment) SettleFromPackage(sessionValue decimal.Decimal) {
	a.ChargedAmount = sessionValue
	a.PaymentStatus = PaymentStatePago
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// MarkChargePending records that a standalone charge awaits payment
func (a *Appointment) MarkChargePending(amount decimal.Decimal) {
	a.ChargedAmount = amount
	a.PaymentStatus = PaymentStatePendente
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// MarkNoCharge records that the appointment has no financial effect
func (a *Appointment) MarkNoCharge() {
	a.ChargedAmount = decimal.Zero
	a.PaymentStatus = PaymentStateNaoAplicavel
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// MarkPaid records that the standalone charge was settled
func (a *Appointment) MarkPaid() {
	a.PaymentStatus = PaymentStatePago
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// LinkLedgerEntry records the ledger entry created for the appointment's charge
func (a *Appointment) LinkLedgerEntry(entryID uuid.UUID) {
	if entryID != uuid.Nil {
		a.LedgerEntryID = &entryID
	}
}

// Cancel voids a scheduled appointment
func (a *Appointment) Cancel(reason string) error {
	if a.Status != AppointmentStatusAgendado {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel appointment in %s status", a.Status))
	}

	now := time.Now()
	a.Status = AppointmentStatusCancelado
	a.CancelledAt = &now
	a.CancelReason = reason
	a.UpdatedAt = now
	a.IncrementVersion()

	return nil
}
