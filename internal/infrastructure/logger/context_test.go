package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func fieldValue(t *testing.T, entry observer.LoggedEntry, key string) string {
	t.Helper()
	for _, f := range entry.Context {
		if f.Key == key {
			return f.String
		}
	}
	t.Fatalf("field %q not found", key)
	return ""
}

func TestWithContext_RoundTrip(t *testing.T) {
	log, _ := newObservedLogger()

	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}

func TestFromContext_MissingLoggerIsNoop(t *testing.T) {
	log := FromContext(context.Background())

	require.NotNil(t, log)
	// Must be safe to use
	log.Info("ignored")
}

func TestWithRequestID(t *testing.T) {
	log, logs := newObservedLogger()

	ctx, enriched := WithRequestID(context.Background(), log, "req-42")
	enriched.Info("handling")

	assert.Equal(t, "req-42", GetRequestID(ctx))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-42", fieldValue(t, logs.All()[0], "request_id"))

	// The enriched logger is also reachable through the context
	assert.Same(t, enriched, FromContext(ctx))
}

func TestWithTenantID(t *testing.T) {
	log, logs := newObservedLogger()

	ctx, enriched := WithTenantID(context.Background(), log, "tenant-1")
	enriched.Info("scoped")

	assert.Equal(t, "tenant-1", GetTenantID(ctx))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "tenant-1", fieldValue(t, logs.All()[0], "tenant_id"))
}

func TestWithUserID(t *testing.T) {
	log, logs := newObservedLogger()

	ctx, enriched := WithUserID(context.Background(), log, "user-7")
	enriched.Info("scoped")

	assert.Equal(t, "user-7", GetUserID(ctx))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "user-7", fieldValue(t, logs.All()[0], "user_id"))
}

func TestEnrichmentStacks(t *testing.T) {
	log, logs := newObservedLogger()

	ctx, enriched := WithRequestID(context.Background(), log, "req-1")
	ctx, enriched = WithTenantID(ctx, enriched, "tenant-1")
	ctx, enriched = WithUserID(ctx, enriched, "user-1")
	enriched.Info("fully scoped")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "tenant-1", GetTenantID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "req-1", fieldValue(t, entry, "request_id"))
	assert.Equal(t, "tenant-1", fieldValue(t, entry, "tenant_id"))
	assert.Equal(t, "user-1", fieldValue(t, entry, "user_id"))
}

func TestGetters_Missing(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
	assert.Empty(t, GetUserID(ctx))
}
