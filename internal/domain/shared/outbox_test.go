package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outboxTestEvent struct {
	BaseDomainEvent
}

func newOutboxTestEvent(tenantID uuid.UUID) *outboxTestEvent {
	return &outboxTestEvent{
		BaseDomainEvent: NewBaseDomainEvent("PaymentRegistered", "Payment", uuid.New(), tenantID),
	}
}

func TestNewOutboxEntry(t *testing.T) {
	tenantID := uuid.New()
	evt := newOutboxTestEvent(tenantID)
	payload := []byte(`{"amount":"35.00"}`)

	entry := NewOutboxEntry(tenantID, evt, payload)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, tenantID, entry.TenantID)
	assert.Equal(t, evt.EventID(), entry.EventID)
	assert.Equal(t, "PaymentRegistered", entry.EventType)
	assert.Equal(t, evt.AggregateID(), entry.AggregateID)
	assert.Equal(t, "Payment", entry.AggregateType)
	assert.Equal(t, payload, entry.Payload)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_CanRetry(t *testing.T) {
	tests := []struct {
		name       string
		status     OutboxStatus
		retryCount int
		want       bool
	}{
		{"pending cannot retry", OutboxStatusPending, 0, false},
		{"failed with budget left", OutboxStatusFailed, 2, true},
		{"failed at max retries", OutboxStatusFailed, 5, false},
		{"dead cannot retry", OutboxStatusDead, 5, false},
		{"sent cannot retry", OutboxStatusSent, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &OutboxEntry{Status: tt.status, RetryCount: tt.retryCount, MaxRetries: 5}
			assert.Equal(t, tt.want, entry.CanRetry())
		})
	}
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusFailed} {
		entry := &OutboxEntry{Status: status}
		require.NoError(t, entry.MarkProcessing())
		assert.Equal(t, OutboxStatusProcessing, entry.Status)
	}

	sent := &OutboxEntry{Status: OutboxStatusSent}
	require.Error(t, sent.MarkProcessing())
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing}

	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.ProcessedAt)
}

func TestOutboxEntry_MarkFailed_SchedulesRetry(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing, MaxRetries: 5}

	entry.MarkFailed("broker unavailable")

	assert.Equal(t, OutboxStatusFailed, entry.Status)
	assert.Equal(t, 1, entry.RetryCount)
	assert.Equal(t, "broker unavailable", entry.LastError)
	require.NotNil(t, entry.NextRetryAt)
	assert.True(t, entry.NextRetryAt.After(time.Now()))
	assert.True(t, entry.NextRetryAt.Before(time.Now().Add(2*time.Second)))
}

func TestOutboxEntry_MarkFailed_ExponentialBackoff(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing, RetryCount: 3, MaxRetries: 5}

	before := time.Now()
	entry.MarkFailed("still failing")

	// Fourth attempt backs off 2^3 seconds
	require.NotNil(t, entry.NextRetryAt)
	assert.True(t, entry.NextRetryAt.After(before.Add(7*time.Second)))
	assert.True(t, entry.NextRetryAt.Before(before.Add(10*time.Second)))
}

func TestOutboxEntry_MarkFailed_ExhaustedGoesDead(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing, RetryCount: 4, MaxRetries: 5}

	entry.MarkFailed("gave up")

	assert.Equal(t, OutboxStatusDead, entry.Status)
	assert.Equal(t, 5, entry.RetryCount)
	assert.True(t, entry.IsDead())
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	entry := &OutboxEntry{
		Status:     OutboxStatusDead,
		RetryCount: 5,
		MaxRetries: 5,
		LastError:  "gave up",
	}

	require.NoError(t, entry.ResetForRetry())

	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Empty(t, entry.LastError)
	assert.Nil(t, entry.NextRetryAt)

	alive := &OutboxEntry{Status: OutboxStatusFailed}
	require.Error(t, alive.ResetForRetry())
}
