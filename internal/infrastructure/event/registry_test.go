package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_TypedRegistration(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler("LedgerEntryCreated", "LedgerEntryPaid")

	registry.Register(handler, "LedgerEntryCreated", "LedgerEntryPaid")

	assert.Len(t, registry.GetHandlers("LedgerEntryCreated"), 1)
	assert.Len(t, registry.GetHandlers("LedgerEntryPaid"), 1)
	assert.Empty(t, registry.GetHandlers("LedgerEntryCancelled"))
}

func TestHandlerRegistry_WildcardReceivesEverything(t *testing.T) {
	registry := NewHandlerRegistry()
	wildcard := newRecordingHandler()

	registry.Register(wildcard)

	assert.Len(t, registry.GetHandlers("LedgerEntryCreated"), 1)
	assert.Len(t, registry.GetHandlers("CashSessionClosed"), 1)
}

func TestHandlerRegistry_TypedAndWildcardCombined(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newRecordingHandler("SessionConsumed")
	wildcard := newRecordingHandler()

	registry.Register(typed, "SessionConsumed")
	registry.Register(wildcard)

	assert.Len(t, registry.GetHandlers("SessionConsumed"), 2)

	handlers := registry.GetHandlers("PaymentReversed")
	assert.Len(t, handlers, 1)
	assert.Equal(t, wildcard, handlers[0])
}
