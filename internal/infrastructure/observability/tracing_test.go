package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/Almacen-api/internal/infrastructure/observability"
)

func TestSetupTracing_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := observability.SetupTracing(context.Background(), observability.TracingConfig{ServiceName: "almacen-api"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}
