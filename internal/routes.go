package internal

import (
	"net/http"

	"angelupdate/internal/controllers"
	"angelupdate/internal/providers"
	"angelupdate/internal/structures"
)

func InitRoutes(updateController *controllers.UpdateController, adminController *controllers.AdminController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/api/v1/update/check", http.HandlerFunc(updateController.CheckUpdate))
	routers.GetPrefix("/api/v1/update/download/", http.HandlerFunc(updateController.Download))
	routers.Get("/api/v1/update/version", http.HandlerFunc(updateController.Version))

	routers.Get("/api/v1/admin/collectors", http.HandlerFunc(adminController.Collectors))
	routers.Post("/api/v1/admin/collectors/toggle", http.HandlerFunc(adminController.ToggleCollector))
	routers.Post("/api/v1/admin/collectors/run", http.HandlerFunc(adminController.RunCollector))
	routers.Post("/api/v1/admin/cache/evict", http.HandlerFunc(adminController.EvictCache))
	routers.Post("/api/v1/admin/packages/cleanup", http.HandlerFunc(adminController.CleanupPackages))
	return routers
}
