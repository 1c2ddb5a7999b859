package event

import (
	"context"

	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/packs"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// BusinessMetricsHandler feeds the business counters from the event stream.
// It subscribes to the bus instead of being called inline by the services,
// so outbox redelivery keeps the counters consistent with what was actually
// committed. Wrap it in an idempotent handler when subscribing: the outbox
// delivers at least once.
type BusinessMetricsHandler struct {
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
}

// NewBusinessMetricsHandler creates a handler that records business metrics.
func NewBusinessMetricsHandler(metrics *telemetry.BusinessMetrics, logger *zap.Logger) *BusinessMetricsHandler {
	return &BusinessMetricsHandler{
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes lists the events that move a business counter.
func (h *BusinessMetricsHandler) EventTypes() []string {
	return []string{
		"LedgerEntryCreated",
		"PaymentRegistered",
		"SessionConsumed",
	}
}

// Handle records the counter matching the event. Unknown events are ignored
// so a wildcard subscription stays safe.
func (h *BusinessMetricsHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	switch e := evt.(type) {
	case *ledger.LedgerEntryCreatedEvent:
		h.metrics.RecordEntryWithAmount(ctx, e.TenantID(), string(e.EntryType), e.FinalAmount)
	case *ledger.PaymentRegisteredEvent:
		h.metrics.RecordPayment(ctx, e.TenantID(), string(e.Method), telemetry.PaymentStatusSuccess)
	case *packs.SessionConsumedEvent:
		h.metrics.RecordSessionConsumed(ctx, e.TenantID(), e.PurchaseID)
	default:
		h.logger.Debug("no business counter for event",
			zap.String("event_type", evt.EventType()),
		)
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetricsHandler)(nil)
