//go:build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/NaufalH27/inquran-be/internal/app"
	"github.com/NaufalH27/inquran-be/internal/repository"
	"github.com/NaufalH27/inquran-be/internal/service"
)

func InitializeApp(ctx context.Context) (*app.App, error) {
	wire.Build(
		ConfigSet,
		provideObservability,
		provideRedis,
		RepositorySet,
		ServiceSet,
		HTTPSet,
		app.New,
	)
	return nil, nil
}

func InitializeMaintenance(ctx context.Context) (*Maintenance, error) {
	wire.Build(
		ConfigSet,
		repository.NewSessionRepository,
		service.NewSessionService,
		provideMaintenance,
	)
	return nil, nil
}
