//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"angelupdate/internal"
	"angelupdate/internal/collectors"
	"angelupdate/internal/controllers"
	"angelupdate/internal/events"
	"angelupdate/internal/packaging"
	"angelupdate/internal/providers"
	"angelupdate/internal/services"
	"angelupdate/internal/store"
	"angelupdate/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewRedisProvider,

		events.NewPublisher,
		store.NewZstdCompressor,
		store.NewFileContentStore,
		provideContentLocator,

		services.NewVersioningService,
		services.NewCacheService,
		services.NewDiffService,
		packaging.NewZipBuilder,
		services.NewUpdateService,

		collectors.NewCollectors,
		collectors.NewRegistry,
		collectors.NewScheduler,

		controllers.NewUpdateController,
		controllers.NewAdminController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
