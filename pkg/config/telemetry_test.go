package config

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestSetupTelemetry(t *testing.T) {
	t.Cleanup(func() { otel.SetMeterProvider(noop.NewMeterProvider()) })
	var buf bytes.Buffer
	ctx := context.Background()

	tel, err := SetupTelemetry(ctx, &buf)
	require.NoError(t, err)
	counter, err := otel.Meter("test").Int64Counter("kartline.test.counter")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	tel.Shutdown(ctx)
	assert.Contains(t, buf.String(), "kartline.test.counter")
	assert.Contains(t, buf.String(), "\"service.name\"")
}
