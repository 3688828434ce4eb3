package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/NaufalH27/inquran-be/internal/config"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime owns the otel providers of one inquran-api process. The logger
// provider comes from NewLogger and is nil unless OTEL_LOGS_ENABLED is set.
type Runtime struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
	LoggerProvider *sdklog.LoggerProvider
}

// InitRuntime installs the global meter and tracer providers. A tracing
// failure shuts the meter provider down again before returning.
func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, lp *sdklog.LoggerProvider) (*Runtime, error) {
	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Join(err, mp.Shutdown(ctx))
	}
	return &Runtime{MeterProvider: mp, TracerProvider: tp, LoggerProvider: lp}, nil
}

// Shutdown flushes spans, then metrics, then logs, so records written while
// the first two shut down are still exported. Safe on a nil Runtime.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var steps []func(context.Context) error
	if r.TracerProvider != nil {
		steps = append(steps, r.TracerProvider.Shutdown)
	}
	if r.MeterProvider != nil {
		steps = append(steps, r.MeterProvider.Shutdown)
	}
	if r.LoggerProvider != nil {
		steps = append(steps, r.LoggerProvider.Shutdown)
	}
	var errs []error
	for _, shutdown := range steps {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
