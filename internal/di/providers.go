package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gorm.io/gorm"

	"github.com/NaufalH27/inquran-be/internal/config"
	"github.com/NaufalH27/inquran-be/internal/database"
	"github.com/NaufalH27/inquran-be/internal/health"
	"github.com/NaufalH27/inquran-be/internal/http/handler"
	"github.com/NaufalH27/inquran-be/internal/http/router"
	"github.com/NaufalH27/inquran-be/internal/observability"
	"github.com/NaufalH27/inquran-be/internal/repository"
	"github.com/NaufalH27/inquran-be/internal/security"
	"github.com/NaufalH27/inquran-be/internal/service"
	"github.com/NaufalH27/inquran-be/internal/storage"
)

const identifierCachePrefix = "auth:missing-identifier"

var ConfigSet = wire.NewSet(config.Load, provideLogging, provideLogger, provideDB)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewSessionRepository,
	repository.NewFavoriteRepository,
)

var ServiceSet = wire.NewSet(
	provideJWTManager,
	provideHasher,
	provideIdentifierCache,
	providePhotoStore,
	provideTokenService,
	provideAuthService,
	service.NewUserService,
	service.NewSessionService,
)

var HTTPSet = wire.NewSet(
	provideAuthHandler,
	provideUserHandler,
	provideReadiness,
	provideRouter,
	provideServer,
)

// Logging pairs the process logger with the otel LoggerProvider behind it,
// which is nil unless log export is enabled.
type Logging struct {
	Logger   *slog.Logger
	Provider *sdklog.LoggerProvider
}

// Maintenance is the reduced graph used by one-shot operator commands.
type Maintenance struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *gorm.DB
	Sessions *service.SessionService
}

func (m *Maintenance) Close() error { return database.Close(m.DB) }

func provideMaintenance(cfg *config.Config, logger *slog.Logger, db *gorm.DB, sessions *service.SessionService) *Maintenance {
	return &Maintenance{Config: cfg, Logger: logger, DB: db, Sessions: sessions}
}

func provideLogging(ctx context.Context, cfg *config.Config) (Logging, error) {
	logger, lp, err := observability.NewLogger(ctx, cfg, os.Stdout)
	if err != nil {
		return Logging{}, err
	}
	slog.SetDefault(logger)
	return Logging{Logger: logger, Provider: lp}, nil
}

func provideLogger(l Logging) *slog.Logger { return l.Logger }

func provideObservability(ctx context.Context, cfg *config.Config, l Logging) (*observability.Runtime, error) {
	return observability.InitRuntime(ctx, cfg, l.Logger, l.Provider)
}

func provideDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (redis.UniversalClient, error) {
	return database.OpenRedis(ctx, cfg, logger)
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAccessSecret)
}

func provideHasher(cfg *config.Config) security.PasswordHasher {
	return security.NewBcryptHasher(cfg.BcryptCost)
}

// provideIdentifierCache prefers redis so every replica shares negative
// lookups; a zero TTL disables the cache.
func provideIdentifierCache(cfg *config.Config, client redis.UniversalClient) service.IdentifierLookupCache {
	switch {
	case cfg.NegativeLookupTTL <= 0:
		return service.NewNoopIdentifierLookupCache()
	case client != nil:
		return service.NewRedisIdentifierLookupCache(client, identifierCachePrefix, cfg.NegativeLookupTTL)
	default:
		return service.NewInMemoryIdentifierLookupCache(cfg.NegativeLookupTTL)
	}
}

func providePhotoStore(ctx context.Context, cfg *config.Config) (service.PhotoStore, error) {
	if cfg.PhotoStorage != config.PhotoStorageS3 {
		return storage.NewDiskPhotoStore(cfg.UploadDir, cfg.BaseUploadURL), nil
	}
	s3cfg := storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}
	client, err := storage.NewS3Client(ctx, s3cfg)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	return storage.NewS3PhotoStore(client, s3cfg), nil
}

func provideTokenService(cfg *config.Config, jwtMgr *security.JWTManager, hasher security.PasswordHasher, sessions repository.SessionRepository) *service.TokenService {
	return service.NewTokenService(jwtMgr, hasher, sessions, cfg.JWTAccessTTL)
}

func provideAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *service.TokenService,
	hasher security.PasswordHasher,
	missing service.IdentifierLookupCache,
	photos service.PhotoStore,
) *service.AuthService {
	return service.NewAuthService(users, sessions, tokens, hasher, missing, photos)
}

func provideAuthHandler(auth *service.AuthService) *handler.AuthHandler {
	return handler.NewAuthHandler(auth)
}

func provideUserHandler(users *service.UserService, sessions *service.SessionService) *handler.UserHandler {
	return handler.NewUserHandler(users, sessions)
}

func provideReadiness(db *gorm.DB, client redis.UniversalClient) *health.ProbeRunner {
	checkers := []health.Checker{health.DBChecker(db)}
	if client != nil {
		checkers = append(checkers, health.RedisChecker(client))
	}
	return health.NewProbeRunner(2*time.Second, time.Second, checkers...)
}

func provideRouter(
	cfg *config.Config,
	jwtMgr *security.JWTManager,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	readiness *health.ProbeRunner,
	photos service.PhotoStore,
) http.Handler {
	dep := router.Dependencies{
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		JWTManager:     jwtMgr,
		APIKey:         cfg.APIKey,
		APIKeyBypass:   cfg.IsDevelopment(),
		Readiness:      readiness,
		EnableOTelHTTP: cfg.OTELTracingEnabled || cfg.OTELMetricsEnabled,
	}
	if disk, ok := photos.(*storage.DiskPhotoStore); ok {
		dep.UploadDir = disk.Dir()
	}
	return router.NewRouter(dep)
}

func provideServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
