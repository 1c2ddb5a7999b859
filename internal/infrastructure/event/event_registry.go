package event

import (
	"github.com/studiobeleza/backend/internal/domain/cashier"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/packs"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Ledger domain - entry events
	serializer.Register("LedgerEntryCreated", &ledger.LedgerEntryCreatedEvent{})
	serializer.Register("LedgerEntryPaid", &ledger.LedgerEntryPaidEvent{})
	serializer.Register("LedgerEntryPartiallyPaid", &ledger.LedgerEntryPartiallyPaidEvent{})
	serializer.Register("LedgerEntryCancelled", &ledger.LedgerEntryCancelledEvent{})

	// Ledger domain - payment events
	serializer.Register("PaymentRegistered", &ledger.PaymentRegisteredEvent{})
	serializer.Register("PaymentReversed", &ledger.PaymentReversedEvent{})

	// Packs domain - purchase lifecycle events
	serializer.Register("PackagePurchaseCreated", &packs.PackagePurchaseCreatedEvent{})
	serializer.Register("SessionConsumed", &packs.SessionConsumedEvent{})
	serializer.Register("PackagePurchaseCompleted", &packs.PackagePurchaseCompletedEvent{})
	serializer.Register("PackagePurchaseExtended", &packs.PackagePurchaseExtendedEvent{})
	serializer.Register("PackagePurchaseCancelled", &packs.PackagePurchaseCancelledEvent{})
	serializer.Register("PackagePurchaseExpired", &packs.PackagePurchaseExpiredEvent{})

	// Cashier domain - register session events
	serializer.Register("CashSessionOpened", &cashier.CashSessionOpenedEvent{})
	serializer.Register("CashAdjustmentRecorded", &cashier.CashAdjustmentRecordedEvent{})
	serializer.Register("CashSessionClosed", &cashier.CashSessionClosedEvent{})
}
