package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NaufalH27/inquran-be/internal/app"
	"github.com/NaufalH27/inquran-be/internal/config"
	"github.com/NaufalH27/inquran-be/internal/database"
	"github.com/NaufalH27/inquran-be/internal/di"
	"github.com/NaufalH27/inquran-be/internal/domain"
	"github.com/NaufalH27/inquran-be/internal/repository"
	"github.com/NaufalH27/inquran-be/internal/service"
)

func stubMaintenance(t *testing.T) *di.Maintenance {
	t.Helper()
	cfg := &config.Config{DatabaseDriver: config.DriverSQLite, DatabaseURL: filepath.Join(t.TempDir(), "cli.db")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return &di.Maintenance{
		Config:   cfg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		DB:       db,
		Sessions: service.NewSessionService(repository.NewSessionRepository(db)),
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func swapMaintenance(t *testing.T, m *di.Maintenance, err error) {
	t.Helper()
	prev := initializeMaintenance
	initializeMaintenance = func(context.Context) (*di.Maintenance, error) { return m, err }
	t.Cleanup(func() { initializeMaintenance = prev })
}

func TestMigrateCommandCreatesSchema(t *testing.T) {
	m := stubMaintenance(t)
	swapMaintenance(t, m, nil)

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "migrations applied") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSessionsPruneDeletesOnlyExpiredRows(t *testing.T) {
	m := stubMaintenance(t)
	if err := database.Migrate(m.DB); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	now := time.Now()
	rows := []domain.Session{
		{ID: "expired-1", UserID: 1, TokenHash: "h", ExpiresAt: now.Add(-time.Hour)},
		{ID: "expired-2", UserID: 1, TokenHash: "h", ExpiresAt: now.Add(-time.Minute)},
		{ID: "active-1", UserID: 1, TokenHash: "h", ExpiresAt: now.Add(time.Hour)},
	}
	if err := m.DB.Create(&rows).Error; err != nil {
		t.Fatalf("seed sessions: %v", err)
	}
	swapMaintenance(t, m, nil)

	out, err := execute(t, "sessions", "prune")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !strings.Contains(out, "pruned 2 expired sessions") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestMaintenanceInitErrorIsWrapped(t *testing.T) {
	swapMaintenance(t, nil, errors.New("validate config: DATABASE_URL is required"))

	_, err := execute(t, "sessions", "prune")
	if err == nil || !strings.Contains(err.Error(), "initialize: validate config") {
		t.Fatalf("expected wrapped init error, got %v", err)
	}
}

func TestServeInitErrorIsWrapped(t *testing.T) {
	prev := initializeApp
	initializeApp = func(context.Context) (*app.App, error) { return nil, errors.New("boom") }
	t.Cleanup(func() { initializeApp = prev })

	_, err := execute(t, "serve")
	if err == nil || !strings.Contains(err.Error(), "initialize app: boom") {
		t.Fatalf("expected wrapped init error, got %v", err)
	}
}
