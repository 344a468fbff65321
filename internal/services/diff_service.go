package services

import (
	"time"

	"angelupdate/internal/models"
	"angelupdate/internal/providers"
	"angelupdate/internal/store"
)

// fallbackWindow bounds the lookback when a version carries no parsable
// date segments.
const fallbackWindow = 24 * time.Hour

// DiffServiceInterface resolves the set of content files that changed
// between two versions of a scope.
//
// The window is derived from the versions' own date segments, which is an
// approximation: version issuance and content publication are independent
// clocks, so the result is "published in a plausible window", not an exact
// mutation diff. The result may repeat paths; the package builder
// deduplicates before archiving.
type DiffServiceInterface interface {
	ChangedFiles(scope models.RegionScope, fromVersion, toVersion string) ([]string, error)
}

type DiffService struct {
	contentStore store.ContentStoreInterface
	cache        CacheServiceInterface
	logger       providers.Logger
	now          func() time.Time
}

func NewDiffService(contentStore store.ContentStoreInterface, cache CacheServiceInterface, logger providers.Logger) DiffServiceInterface {
	return &DiffService{
		contentStore: contentStore,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
	}
}

func (ds *DiffService) ChangedFiles(scope models.RegionScope, fromVersion, toVersion string) ([]string, error) {
	key := ChangedFilesKey(scope, fromVersion, toVersion)
	if files, ok := ds.cache.GetChangedFiles(key); ok {
		return files, nil
	}

	from := ds.versionToDate(fromVersion, ds.now().Add(-fallbackWindow))
	to := ds.versionToDate(toVersion, ds.now())
	if to.Before(from) {
		from, to = to, from
	}

	files, err := ds.contentStore.FindActiveChangedFiles("", scope.CountryCode, scope.RegionCode, from, to)
	if err != nil {
		return nil, err
	}

	ds.cache.PutChangedFiles(key, files)
	ds.logger.Debugf(providers.TypeApp, "Resolved %d changed files for %s (%s -> %s)", len(files), scope.Key(), fromVersion, toVersion)
	return files, nil
}

// versionToDate maps a version token onto the date window boundary it
// encodes, or the given fallback for malformed tokens.
func (ds *DiffService) versionToDate(version string, fallback time.Time) time.Time {
	parsed, ok := parseVersionTimestamp(version)
	if !ok {
		ds.logger.Warnf(providers.TypeApp, "Version %s has no parsable date segments, using fallback window", version)
		return fallback
	}
	return parsed
}
