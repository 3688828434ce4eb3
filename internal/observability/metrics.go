package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/NaufalH27/inquran-be/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "inquran-api"

type AppMetrics struct {
	authLoginCounter        metric.Int64Counter
	authRegisterCounter     metric.Int64Counter
	authRefreshCounter      metric.Int64Counter
	authLogoutCounter       metric.Int64Counter
	accessTokenCounter      metric.Int64Counter
	repositoryOpCounter     metric.Int64Counter
	negativeLookupCounter   metric.Int64Counter
	favoriteMutationCounter metric.Int64Counter
	sessionPruneCounter     metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func newResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
}

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	names := []string{
		"auth.login.attempts",
		"auth.register.attempts",
		"auth.refresh.attempts",
		"auth.logout.attempts",
		"auth.access_token.validations",
		"repository.operations",
		"auth.negative_lookup.events",
		"user.favorite.mutations",
		"session.prune.deleted",
	}
	counters := make([]metric.Int64Counter, len(names))
	for i, name := range names {
		c, err := meter.Int64Counter(name)
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", name, err)
		}
		counters[i] = c
	}
	return &AppMetrics{
		authLoginCounter:        counters[0],
		authRegisterCounter:     counters[1],
		authRefreshCounter:      counters[2],
		authLogoutCounter:       counters[3],
		accessTokenCounter:      counters[4],
		repositoryOpCounter:     counters[5],
		negativeLookupCounter:   counters[6],
		favoriteMutationCounter: counters[7],
		sessionPruneCounter:     counters[8],
	}, nil
}

func currentMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

// RecordAuthLogin counts login attempts per provider ("password", "google").
func RecordAuthLogin(provider, status string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.authLoginCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		),
	)
}

func RecordAuthRegister(provider, status string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.authRegisterCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		),
	)
}

func RecordAuthRefresh(status string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.authRefreshCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAuthLogout(status string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.authLogoutCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAccessTokenValidation(ctx context.Context, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.accessTokenCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordRepositoryOperation(ctx context.Context, repo, op, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.repositoryOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repository", repo),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func RecordNegativeLookup(ctx context.Context, namespace, event string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.negativeLookupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", namespace),
		attribute.String("event", event),
	))
}

func RecordFavoriteMutation(ctx context.Context, action, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.favoriteMutationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

func RecordSessionPrune(ctx context.Context, deleted int64) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.sessionPruneCounter.Add(ctx, deleted)
}
