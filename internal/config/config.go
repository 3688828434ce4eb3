package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	EnvDevelopment = "development"

	PhotoStorageDisk = "disk"
	PhotoStorageS3   = "s3"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds every runtime setting of the API. Values come from the
// environment; see Load.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTAccessSecret string        `env:"JWT_ACCESS_SECRET"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"inquran"`
	JWTAccessTTL    time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`
	APIKey          string        `env:"API_KEY"`

	NegativeLookupTTL time.Duration `env:"AUTH_NEGATIVE_LOOKUP_TTL" envDefault:"30s"`

	PhotoStorage  string `env:"PHOTO_STORAGE" envDefault:"disk"`
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"."`
	BaseUploadURL string `env:"BASE_UPLOAD_URL" envDefault:"http://localhost:3000"`
	S3Bucket      string `env:"S3_BUCKET"`
	S3Region      string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint    string `env:"S3_ENDPOINT"`
	S3AccessKey   string `env:"S3_ACCESS_KEY"`
	S3SecretKey   string `env:"S3_SECRET_KEY"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	OTELServiceName           string        `env:"OTEL_SERVICE_NAME" envDefault:"inquran-api"`
	OTELEnvironment           string        `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	OTELExporterOTLPEndpoint  string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELExporterOTLPInsecure  bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELMetricsEnabled        bool          `env:"OTEL_METRICS_ENABLED" envDefault:"false"`
	OTELTracingEnabled        bool          `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	OTELLogsEnabled           bool          `env:"OTEL_LOGS_ENABLED" envDefault:"false"`
	OTELMetricsExportInterval time.Duration `env:"OTEL_METRICS_EXPORT_INTERVAL" envDefault:"15s"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	err := loadInto(cfg)
	recordLoad(context.Background(), cfg, err)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadInto(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return &LoadError{Stage: stageParse, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return &LoadError{Stage: stageValidation, Err: err}
	}
	return nil
}

// IsDevelopment reports whether the API runs in the relaxed development profile.
func (c *Config) IsDevelopment() bool {
	return normalizeConfigProfile(c.AppEnv) == EnvDevelopment
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q", DriverPostgres, DriverSQLite))
	}
	if c.JWTAccessSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET is required"))
	} else if !c.IsDevelopment() && len(c.JWTAccessSecret) < 32 {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET must be at least 32 bytes"))
	}
	if c.JWTAccessTTL < time.Minute || c.JWTAccessTTL > 30*time.Minute {
		errs = append(errs, errors.New("JWT_ACCESS_TTL must be between 1m and 30m"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, errors.New("BCRYPT_COST must be between 4 and 31"))
	}
	if !c.IsDevelopment() && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required outside development"))
	}
	if c.NegativeLookupTTL < 0 {
		errs = append(errs, errors.New("AUTH_NEGATIVE_LOOKUP_TTL must not be negative"))
	}
	switch c.PhotoStorage {
	case PhotoStorageDisk:
	case PhotoStorageS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when PHOTO_STORAGE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("PHOTO_STORAGE must be %q or %q", PhotoStorageDisk, PhotoStorageS3))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}
