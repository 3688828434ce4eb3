package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/NaufalH27/inquran-be/internal/config"
	"github.com/NaufalH27/inquran-be/internal/database"
	"github.com/NaufalH27/inquran-be/internal/health"
	"github.com/NaufalH27/inquran-be/internal/observability"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Readiness     *health.ProbeRunner

	ShutdownTimeout time.Duration
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *App {
	return &App{
		Config:          cfg,
		Logger:          logger,
		Server:          server,
		Observability:   runtime,
		DB:              db,
		Redis:           redisClient,
		Readiness:       readiness,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves HTTP until ctx is cancelled or the server fails, then drains
// in-flight requests and releases the database, redis and telemetry.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server starting", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer cancel()
		a.Logger.Info("http server shutting down")
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.release()
	return err
}

func (a *App) release() {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("redis close failed", "error", err)
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			a.Logger.Warn("database close failed", "error", err)
		}
	}
	if err := a.Observability.Shutdown(ctx); err != nil {
		a.Logger.Warn("observability shutdown failed", "error", err)
	}
	a.Logger.Info("shutdown complete")
}

func (a *App) shutdownTimeout() time.Duration {
	if a.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return a.ShutdownTimeout
}
