package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPaymentEvent(tenantID uuid.UUID) *ledger.PaymentRegisteredEvent {
	paymentID := uuid.New()
	return &ledger.PaymentRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRegistered", "Payment", paymentID, tenantID),
		PaymentID:       paymentID,
		EntryID:         uuid.New(),
		Amount:          decimal.NewFromFloat(35.00),
		Method:          ledger.MethodMultibanco,
		PaidAt:          time.Now(),
	}
}

// recordingHandler captures delivered events for assertions.
type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panics {
		panic("handler blew up")
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) delivered() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_PublishDeliversToSubscriber(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler("PaymentRegistered")
	bus.Subscribe(handler)

	evt := newPaymentEvent(uuid.New())
	require.NoError(t, bus.Publish(context.Background(), evt))

	delivered := handler.delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, evt, delivered[0])
}

func TestInMemoryEventBus_SubscribeUsesHandlerEventTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler("PaymentRegistered")
	// No explicit types: the bus asks the handler
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newPaymentEvent(uuid.New())))
	assert.Len(t, handler.delivered(), 1)
}

func TestInMemoryEventBus_MultipleHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	first := newRecordingHandler("PaymentRegistered")
	second := newRecordingHandler("PaymentRegistered")
	bus.Subscribe(first)
	bus.Subscribe(second)

	require.NoError(t, bus.Publish(context.Background(), newPaymentEvent(uuid.New())))

	assert.Len(t, first.delivered(), 1)
	assert.Len(t, second.delivered(), 1)
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	wildcard := newRecordingHandler()
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newPaymentEvent(uuid.New())))
	assert.Len(t, wildcard.delivered(), 1)
}

func TestInMemoryEventBus_HandlerErrorDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newRecordingHandler("PaymentRegistered")
	failing.err = errors.New("handler error")
	healthy := newRecordingHandler("PaymentRegistered")
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newPaymentEvent(uuid.New())))

	assert.Len(t, failing.delivered(), 1)
	assert.Len(t, healthy.delivered(), 1)
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := newRecordingHandler("PaymentRegistered")
	panicking.panics = true
	healthy := newRecordingHandler("PaymentRegistered")
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		require.NoError(t, bus.Publish(context.Background(), newPaymentEvent(uuid.New())))
	})
	assert.Len(t, healthy.delivered(), 1)
}

func TestInMemoryEventBus_NoMatchingHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler("SessionConsumed")
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newPaymentEvent(uuid.New())))
	assert.Empty(t, handler.delivered())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))

	handler := newRecordingHandler("PaymentRegistered")
	bus.Subscribe(handler)
	require.NoError(t, bus.Publish(ctx, newPaymentEvent(uuid.New())))
	assert.Len(t, handler.delivered(), 1)

	require.NoError(t, bus.Stop(ctx))
}
