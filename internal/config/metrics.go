package config

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	stageParse      = "parse"
	stageValidation = "validation"
)

// LoadError reports which stage of Load rejected the environment.
type LoadError struct {
	Stage string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Stage == stageParse {
		return "parse env: " + e.Err.Error()
	}
	return "validate config: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

var (
	loadMetricsOnce sync.Once
	loadCounter     metric.Int64Counter
)

// recordLoad counts Load outcomes. Load usually runs before observability is
// initialized, so those events land on the global no-op provider.
func recordLoad(ctx context.Context, cfg *Config, err error) {
	loadMetricsOnce.Do(func() {
		counter, cerr := otel.Meter("inquran-api").Int64Counter("config.validation.events")
		if cerr == nil {
			loadCounter = counter
		}
	})
	if loadCounter == nil {
		return
	}
	loadCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("profile", normalizeConfigProfile(cfg.AppEnv)),
		attribute.String("database_driver", normalizeConfigProfile(cfg.DatabaseDriver)),
		attribute.String("photo_storage", normalizeConfigProfile(cfg.PhotoStorage)),
		attribute.String("outcome", outcomeOf(err)),
		attribute.String("error_class", classifyConfigLoadError(err)),
	))
}

func normalizeConfigProfile(profile string) string {
	v := strings.TrimSpace(strings.ToLower(profile))
	if v == "" {
		return "unknown"
	}
	return v
}

func classifyConfigLoadError(err error) string {
	if err == nil {
		return "none"
	}
	var le *LoadError
	if errors.As(err, &le) {
		return le.Stage
	}
	return "load"
}

func outcomeOf(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
