package config

import (
	"context"
	"io"
	"time"

	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/version"
)

const TelemetryInterval = 10 * time.Second

type Telemetry struct {
	mp *sdkmetric.MeterProvider
}

// SetupTelemetry installs a global meter provider which writes all metrics
// to w. Metrics are written periodically and on Shutdown.
func SetupTelemetry(ctx context.Context, w io.Writer) (*Telemetry, error) {
	exp, err := stdoutmetric.New(
		stdoutmetric.WithWriter(w),
		stdoutmetric.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", "kartline"),
		attribute.String("service.version", version.Version))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp,
			sdkmetric.WithInterval(TelemetryInterval))),
	)
	otel.SetMeterProvider(mp)

	if err := otlpruntime.Start(
		otlpruntime.WithMeterProvider(mp),
		otlpruntime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		log.GetFromContext(ctx).Warn("Could not start runtime metrics", log.ErrorField(err))
	}
	return &Telemetry{mp: mp}, nil
}

func (t *Telemetry) Shutdown(ctx context.Context) {
	if err := t.mp.Shutdown(ctx); err != nil {
		log.GetFromContext(ctx).Warn("Could not shutdown telemetry", log.ErrorField(err))
	}
}
