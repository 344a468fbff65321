package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"angelupdate/internal/collectors"
	"angelupdate/internal/packaging"
	"angelupdate/internal/providers"
	"angelupdate/internal/services"
	"angelupdate/internal/structures"
)

type AdminController struct {
	logger   providers.Logger
	registry collectors.RegistryInterface
	cache    services.CacheServiceInterface
	builder  packaging.BuilderInterface
	conf     *structures.Config
}

func NewAdminController(logger providers.Logger, registry collectors.RegistryInterface, cache services.CacheServiceInterface, builder packaging.BuilderInterface, conf *structures.Config) *AdminController {
	return &AdminController{
		logger:   logger,
		registry: registry,
		cache:    cache,
		builder:  builder,
		conf:     conf,
	}
}

// Collectors handles GET /api/v1/admin/collectors.
func (ac *AdminController) Collectors(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		status, err := ac.registry.Status(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "collector not found: "+id)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}
	writeJSON(w, http.StatusOK, ac.registry.Statuses())
}

// ToggleCollector handles POST /api/v1/admin/collectors/toggle?id=.
func (ac *AdminController) ToggleCollector(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	enabled, err := ac.registry.Toggle(id)
	if err != nil {
		if errors.Is(err, collectors.ErrCollectorNotFound) {
			writeError(w, http.StatusNotFound, "collector not found: "+id)
			return
		}
		writeError(w, http.StatusInternalServerError, "toggle failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": enabled})
}

// RunCollector handles POST /api/v1/admin/collectors/run?id=. The run is
// synchronous; a failed run reports the collector error but stays 200 since
// the failure belongs to the collector, not the request.
func (ac *AdminController) RunCollector(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	err := ac.registry.RunNow(id)
	if errors.Is(err, collectors.ErrCollectorNotFound) {
		writeError(w, http.StatusNotFound, "collector not found: "+id)
		return
	}
	status, serr := ac.registry.Status(id)
	if serr != nil {
		writeError(w, http.StatusNotFound, "collector not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// EvictCache handles POST /api/v1/admin/cache/evict?pattern=. Without a
// pattern both tiers are cleared completely.
func (ac *AdminController) EvictCache(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		ac.cache.EvictAll()
	} else {
		ac.cache.EvictPattern(pattern)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "evicted"})
}

// CleanupPackages handles POST /api/v1/admin/packages/cleanup?maxAgeDays=.
func (ac *AdminController) CleanupPackages(w http.ResponseWriter, r *http.Request) {
	maxAgeDays := ac.conf.Update.PackageMaxAgeDays
	if raw := r.URL.Query().Get("maxAgeDays"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "maxAgeDays must be a positive integer")
			return
		}
		maxAgeDays = parsed
	}
	deleted := ac.builder.Cleanup(maxAgeDays)
	ac.logger.Infof(providers.TypePost, "Manual package cleanup removed %d archives", deleted)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
