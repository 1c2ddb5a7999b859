package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.False(t, tp.IsEnabled())

	// Shutdown with no provider is a no-op
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	cfg := Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "salon-backend",
		Insecure:          true,
	}

	tp, err := NewTracerProvider(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.True(t, tp.IsEnabled())

	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio    float64
		expected sdktrace.Sampler
	}{
		{1.0, sdktrace.AlwaysSample()},
		{0.0, sdktrace.NeverSample()},
		{0.5, sdktrace.TraceIDRatioBased(0.5)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected.Description(), samplerFor(tt.ratio).Description())
	}
}

func TestServiceResource(t *testing.T) {
	res, err := serviceResource("salon-backend")
	require.NoError(t, err)

	found := false
	for _, attr := range res.Attributes() {
		if attr.Key == "service.name" {
			found = true
			assert.Equal(t, "salon-backend", attr.Value.AsString())
		}
	}
	assert.True(t, found, "resource carries service.name")
}
