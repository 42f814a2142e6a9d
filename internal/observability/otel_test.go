package observability

import (
	"context"
	"testing"

	"pdf-quiz/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClampRatio(t *testing.T) {
	assert.Equal(t, 0.0, clampRatio(-1))
	assert.Equal(t, 0.25, clampRatio(0.25))
	assert.Equal(t, 1.0, clampRatio(3))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown := InitTracing(context.Background(), zap.NewNop(), config.TracingConfig{Enabled: false}, "test")
	assert.NoError(t, shutdown(context.Background()))
}

func TestHasScheme(t *testing.T) {
	assert.True(t, hasScheme("http://collector:4318"))
	assert.True(t, hasScheme("https://otel.example.com/v1/traces"))
	assert.False(t, hasScheme("collector:4318"))
}

func TestBuildExporter_EndpointURL(t *testing.T) {
	ctx := context.Background()
	exporter, err := buildExporter(ctx, config.TracingConfig{Endpoint: "http://localhost:4318", Insecure: true})
	require.NoError(t, err)
	require.NotNil(t, exporter)
	assert.NoError(t, exporter.Shutdown(ctx))
}
