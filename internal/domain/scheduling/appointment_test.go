package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
)

func createTestAppointment(t *testing.T) *Appointment {
	a, err := NewAppointment(uuid.New(), uuid.New(), "Limpeza de pele", time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	return a
}

func TestNewAppointment(t *testing.T) {
	a := createTestAppointment(t)

	assert.Equal(t, AppointmentStatusAgendado, a.Status)
	assert.Equal(t, PaymentStatePendente, a.PaymentStatus)
	assert.False(t, a.IsPackageLinked())
	assert.False(t, a.HasStandalonePrice())
}

func TestNewAppointment_ValidationErrors(t *testing.T) {
	_, err := NewAppointment(uuid.New(), uuid.Nil, "servico", time.Now())
	assert.Error(t, err)

	_, err = NewAppointment(uuid.New(), uuid.New(), "", time.Now())
	assert.Error(t, err)

	_, err = NewAppointment(uuid.New(), uuid.New(), "servico", time.Time{})
	assert.Error(t, err)
}

func TestAppointment_Builders(t *testing.T) {
	purchaseID := uuid.New()
	staffID := uuid.New()
	a := createTestAppointment(t).
		WithPackagePurchase(purchaseID).
		WithStaff(staffID).
		WithNotes("preferencia: sala 2")

	assert.True(t, a.IsPackageLinked())
	assert.Equal(t, purchaseID, *a.PackagePurchaseID)
	assert.Equal(t, staffID, *a.StaffID)

	b := createTestAppointment(t).WithStandalonePrice(valueobject.NewMoneyEURFromFloat(60.00))
	assert.True(t, b.HasStandalonePrice())
}

func TestAppointment_Complete(t *testing.T) {
	a := createTestAppointment(t)
	now := time.Now()

	require.NoError(t, a.Complete(now))

	assert.Equal(t, AppointmentStatusRealizado, a.Status)
	require.NotNil(t, a.CompletedAt)
	assert.True(t, a.CompletedAt.Equal(now))
}

func TestAppointment_Complete_Twice(t *testing.T) {
	a := createTestAppointment(t)
	require.NoError(t, a.Complete(time.Now()))
	assert.Error(t, a.Complete(time.Now()))
}

func TestAppointment_Complete_Cancelled(t *testing.T) {
	a := createTestAppointment(t)
	require.NoError(t, a.Cancel("cliente desmarcou"))
	assert.Error(t, a.Complete(time.Now()))
}

func TestAppointment_SettleFromPackage(t *testing.T) {
	a := createTestAppointment(t).WithPackagePurchase(uuid.New())
	require.NoError(t, a.Complete(time.Now()))

	a.SettleFromPackage(decimal.NewFromFloat(50.00))

	assert.Equal(t, PaymentStatePago, a.PaymentStatus)
	assert.True(t, a.ChargedAmount.Equal(decimal.NewFromFloat(50.00)))
}

func TestAppointment_MarkChargePending(t *testing.T) {
	a := createTestAppointment(t).WithStandalonePrice(valueobject.NewMoneyEURFromFloat(60.00))
	require.NoError(t, a.Complete(time.Now()))

	a.MarkChargePending(decimal.NewFromFloat(60.00))

	assert.Equal(t, PaymentStatePendente, a.PaymentStatus)
	assert.True(t, a.ChargedAmount.Equal(decimal.NewFromFloat(60.00)))

	a.MarkPaid()
	assert.Equal(t, PaymentStatePago, a.PaymentStatus)
}

func TestAppointment_MarkNoCharge(t *testing.T) {
	a := createTestAppointment(t)
	require.NoError(t, a.Complete(time.Now()))

	a.MarkNoCharge()

	assert.Equal(t, PaymentStateNaoAplicavel, a.PaymentStatus)
	assert.True(t, a.ChargedAmount.IsZero())
}

func TestAppointment_Cancel(t *testing.T) {
	a := createTestAppointment(t)

	require.NoError(t, a.Cancel("cliente doente"))

	assert.Equal(t, AppointmentStatusCancelado, a.Status)
	assert.Equal(t, "cliente doente", a.CancelReason)
	assert.NotNil(t, a.CancelledAt)

	assert.Error(t, a.Cancel("de novo"))
}
