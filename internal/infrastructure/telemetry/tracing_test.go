package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// withGlobalTracer installs a recording tracer provider as the global one,
// since StartServiceSpan resolves its tracer through otel.GetTracerProvider.
func withGlobalTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestStartServiceSpan(t *testing.T) {
	sr := withGlobalTracer(t)

	ctx, span := StartServiceSpan(context.Background(), "package_purchase", "sell")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "package_purchase.sell", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	assert.NotNil(t, ctx)
}

func TestSetAttributes(t *testing.T) {
	sr := withGlobalTracer(t)

	paymentID := uuid.New()
	_, span := StartServiceSpan(context.Background(), "payment", "register")
	SetAttributes(span,
		SpanAttrPaymentID, paymentID.String(),
		SpanAttrAmount, 150.0,
		"payments_count", 2,
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	got, ok := queryAttr(spans[0], SpanAttrPaymentID)
	require.True(t, ok)
	assert.Equal(t, paymentID.String(), got.AsString())

	amount, ok := queryAttr(spans[0], SpanAttrAmount)
	require.True(t, ok)
	assert.Equal(t, 150.0, amount.AsFloat64())

	count, ok := queryAttr(spans[0], "payments_count")
	require.True(t, ok)
	assert.Equal(t, int64(2), count.AsInt64())
}

func TestSetAttributes_SkipsNonStringKeys(t *testing.T) {
	sr := withGlobalTracer(t)

	_, span := StartServiceSpan(context.Background(), "ledger", "create_entry")
	SetAttributes(span, 42, "value", "valid_key", "kept")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	_, ok := queryAttr(spans[0], "42")
	assert.False(t, ok)
	got, ok := queryAttr(spans[0], "valid_key")
	require.True(t, ok)
	assert.Equal(t, "kept", got.AsString())
}

func TestSetAttribute(t *testing.T) {
	sr := withGlobalTracer(t)

	_, span := StartServiceSpan(context.Background(), "cash_session", "close_day")
	SetAttribute(span, "counted_amount", "350.00")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	got, ok := queryAttr(spans[0], "counted_amount")
	require.True(t, ok)
	assert.Equal(t, "350.00", got.AsString())
}

func TestRecordError(t *testing.T) {
	sr := withGlobalTracer(t)

	_, span := StartServiceSpan(context.Background(), "payment", "register")
	RecordError(span, errors.New("saldo insuficiente"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "saldo insuficiente", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestRecordError_NilError(t *testing.T) {
	sr := withGlobalTracer(t)

	_, span := StartServiceSpan(context.Background(), "payment", "register")
	RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	assert.Empty(t, spans[0].Events())
}

func TestAddEvent(t *testing.T) {
	sr := withGlobalTracer(t)

	purchaseID := uuid.New()
	_, span := StartServiceSpan(context.Background(), "package_purchase", "consume_session")
	AddEvent(span, "session_consumed",
		"purchase_id", purchaseID.String(),
		"sessions_remaining", 4,
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)

	ev := spans[0].Events()[0]
	assert.Equal(t, "session_consumed", ev.Name)

	var sawPurchase bool
	for _, kv := range ev.Attributes {
		if kv.Key == "purchase_id" {
			sawPurchase = true
			assert.Equal(t, purchaseID.String(), kv.Value.AsString())
		}
	}
	assert.True(t, sawPurchase)
}

func TestToAttribute_Conversions(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  attribute.KeyValue
	}{
		{"string", "PIX", attribute.String("k", "PIX")},
		{"int", 3, attribute.Int("k", 3)},
		{"int64", int64(9), attribute.Int64("k", 9)},
		{"float64", 1.5, attribute.Float64("k", 1.5)},
		{"bool", true, attribute.Bool("k", true)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, toAttribute("k", tc.value))
		})
	}
}

func TestToAttribute_Stringer(t *testing.T) {
	id := uuid.New()
	got := toAttribute("k", id)
	assert.Equal(t, attribute.String("k", id.String()), got)
}
