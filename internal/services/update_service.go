package services

import (
	"fmt"
	"strings"
	"time"

	"angelupdate/internal/models"
	"angelupdate/internal/packaging"
	"angelupdate/internal/providers"
	"angelupdate/internal/structures"
)

const (
	downloadURLPrefix = "/api/v1/update/download/"

	// Polling advisory: clients with a pending update should come back
	// later than clients already up to date, which poll again soon.
	nextCheckNoUpdate = 1 * time.Hour
	nextCheckUpdate   = 6 * time.Hour

	defaultServiceVersion = "1.0.0"
)

// UpdateServiceInterface is the update pipeline façade: cache lookup,
// version check, diff resolution, package build and response assembly.
type UpdateServiceInterface interface {
	CheckForUpdates(req *models.UpdateRequest) (*models.UpdateResponse, error)
	GetUpdatePackage(version string, scope models.RegionScope) (*models.PackageInfo, error)
	ServiceVersion() string
}

type UpdateService struct {
	versioning VersioningServiceInterface
	diff       DiffServiceInterface
	builder    packaging.BuilderInterface
	cache      CacheServiceInterface
	metrics    providers.MetricsProviderInterface
	logger     providers.Logger
	version    string
	now        func() time.Time
}

func NewUpdateService(conf *structures.Config, versioning VersioningServiceInterface, diff DiffServiceInterface, builder packaging.BuilderInterface, cache CacheServiceInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) UpdateServiceInterface {
	version := conf.Update.ServiceVersion
	if version == "" {
		version = defaultServiceVersion
	}
	return &UpdateService{
		versioning: versioning,
		diff:       diff,
		builder:    builder,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		version:    version,
		now:        time.Now,
	}
}

// CheckForUpdates runs the pipeline for one client poll. Any downstream
// failure aborts the request; partial responses are never cached.
func (us *UpdateService) CheckForUpdates(req *models.UpdateRequest) (*models.UpdateResponse, error) {
	scope := req.Scope()
	cacheKey := UpdateResponseKey(scope, req.CurrentVersion)

	if cached, ok := us.cache.GetUpdateResponse(cacheKey); ok {
		us.logger.Debugf(providers.TypeApp, "Returning cached response for key: %s", cacheKey)
		return cached, nil
	}

	latestVersion := us.versioning.LatestVersion(scope)
	hasUpdates := us.versioning.IsNewer(latestVersion, req.CurrentVersion)
	us.metrics.IncUpdateChecks(scope.CountryCode, hasUpdates)

	if !hasUpdates {
		resp := &models.UpdateResponse{
			HasUpdates:    false,
			LatestVersion: req.CurrentVersion,
			Message:       "No updates available",
			NextCheckTime: us.now().Add(nextCheckNoUpdate),
		}
		us.cache.PutUpdateResponse(cacheKey, resp)
		return resp, nil
	}

	changedFiles, err := us.diff.ChangedFiles(scope, req.CurrentVersion, latestVersion)
	if err != nil {
		return nil, fmt.Errorf("resolving changed files for %s: %w", scope.Key(), err)
	}

	pkg, err := us.builder.Build(scope, req.CurrentVersion, latestVersion, changedFiles)
	if err != nil {
		return nil, fmt.Errorf("building package for %s@%s: %w", scope.Key(), latestVersion, err)
	}

	resp := &models.UpdateResponse{
		HasUpdates:     true,
		LatestVersion:  latestVersion,
		DownloadUrl:    downloadURLPrefix + latestVersion,
		PackageSize:    pkg.Size,
		Checksum:       pkg.Checksum,
		ChangedFiles:   changedFiles,
		ChangesSummary: summarizeChanges(changedFiles),
		ReleaseDate:    us.versioning.ReleaseDate(latestVersion),
		ReleaseNotes:   us.versioning.ReleaseNotes(latestVersion),
		Message:        "Update available",
		Mandatory:      us.versioning.IsMandatory(req.CurrentVersion, latestVersion),
		NextCheckTime:  us.now().Add(nextCheckUpdate),
	}

	us.cache.PutUpdateResponse(cacheKey, resp)
	return resp, nil
}

func (us *UpdateService) GetUpdatePackage(version string, scope models.RegionScope) (*models.PackageInfo, error) {
	return us.builder.Retrieve(version, scope)
}

func (us *UpdateService) ServiceVersion() string {
	return us.version
}

// summarizeChanges counts changed files per content type. The type is the
// segment preceding the file name in the canonical content layout
// ({cc}/national/{type}/... or {cc}/regions/{rc}/{type}/...).
func summarizeChanges(changedFiles []string) map[string]int {
	summary := make(map[string]int, len(changedFiles))
	for _, f := range changedFiles {
		summary[extractContentType(f)]++
	}
	return summary
}

func extractContentType(filePath string) string {
	parts := strings.Split(filePath, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return "other"
}
