package services

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"angelupdate/internal/models"
	"angelupdate/internal/providers"
)

const (
	versionTimeLayout = "2006.01.02.15"

	versionKeyPrefix = "version:"
	notesKeyPrefix   = "vnotes:"

	versionMetaTTL = 24 * time.Hour
)

// VersioningServiceInterface owns the per-scope version timeline and all
// version arithmetic. Versions are dot-separated numeric tokens in the form
// YYYY.MM.DD.HH with an optional zero-padded build counter.
//
// Timeline heads are written through to the shared cache tier so multiple
// instances agree on the latest version instead of each inventing its own;
// release notes live in the bounded fast tier and are recomputed on
// eviction. Local maps are only a fallback for when the shared tier is
// unreachable.
type VersioningServiceInterface interface {
	LatestVersion(scope models.RegionScope) string
	BumpVersion(scope models.RegionScope) string
	IsNewer(a, b string) bool
	IsMandatory(current, latest string) bool
	ReleaseDate(version string) time.Time
	ReleaseNotes(version string) string
	SetReleaseNotes(version, notes string)
}

type VersioningService struct {
	mu       sync.Mutex
	versions map[string]string
	fast     providers.CacheProviderInterface
	shared   providers.RedisProviderInterface
	logger   providers.Logger
	now      func() time.Time
}

func NewVersioningService(fast providers.CacheProviderInterface, shared providers.RedisProviderInterface, logger providers.Logger) VersioningServiceInterface {
	return &VersioningService{
		versions: make(map[string]string),
		fast:     fast,
		shared:   shared,
		logger:   logger,
		now:      time.Now,
	}
}

// LatestVersion returns the current head of a scope's timeline, lazily
// initializing it to the current hour on first access.
func (vs *VersioningService) LatestVersion(scope models.RegionScope) string {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	key := scope.Key()
	if v, ok := vs.versions[key]; ok {
		return v
	}

	if val, ok, err := vs.shared.Get(versionKeyPrefix + key); err != nil {
		vs.logger.Warnf(providers.TypeApp, "Shared tier unavailable reading version for %s: %s", key, err)
	} else if ok {
		v := string(val)
		vs.versions[key] = v
		return v
	}

	v := vs.now().Format(versionTimeLayout)
	vs.storeVersion(key, v)
	vs.logger.Debugf(providers.TypeApp, "Initialized version timeline for %s: %s", key, v)
	return v
}

// BumpVersion issues a new version for a scope. When several bumps land in
// the same hour, a zero-padded build counter keeps them totally ordered.
func (vs *VersioningService) BumpVersion(scope models.RegionScope) string {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	key := scope.Key()
	current := vs.versions[key]
	if current == "" {
		if val, ok, _ := vs.shared.Get(versionKeyPrefix + key); ok {
			current = string(val)
		}
	}

	base := vs.now().Format(versionTimeLayout)
	next := base
	if current == base {
		next = base + ".001"
	} else if strings.HasPrefix(current, base+".") {
		if build, err := strconv.Atoi(current[len(base)+1:]); err == nil {
			next = fmt.Sprintf("%s.%03d", base, build+1)
		}
	}

	vs.storeVersion(key, next)
	vs.logger.Infof(providers.TypeApp, "Version updated for %s: %s -> %s", key, current, next)
	return next
}

// storeVersion records the new head locally and in the shared tier.
// Must be called under vs.mu.
func (vs *VersioningService) storeVersion(key, version string) {
	vs.versions[key] = version
	if err := vs.shared.Set(versionKeyPrefix+key, []byte(version), 0); err != nil {
		vs.logger.Warnf(providers.TypeApp, "Shared tier unavailable writing version for %s: %s", key, err)
	}
}

// IsNewer reports whether a is strictly newer than b. Comparison is
// segment-wise numeric; with an equal shared prefix the longer version wins.
// Any non-numeric segment makes the version invalid and never an update.
func (vs *VersioningService) IsNewer(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")

	for i := 0; i < len(partsA) && i < len(partsB); i++ {
		va, errA := strconv.Atoi(partsA[i])
		vb, errB := strconv.Atoi(partsB[i])
		if errA != nil || errB != nil {
			vs.logger.Warnf(providers.TypeApp, "Error comparing versions %s and %s", a, b)
			return false
		}
		if va > vb {
			return true
		}
		if va < vb {
			return false
		}
	}
	return len(partsA) > len(partsB)
}

// IsMandatory reports whether the jump from current to latest crosses a
// year or month boundary. Malformed versions are never mandatory.
func (vs *VersioningService) IsMandatory(current, latest string) bool {
	if current == "" || latest == "" {
		return false
	}

	currentParts := strings.Split(current, ".")
	latestParts := strings.Split(latest, ".")
	if len(currentParts) < 2 || len(latestParts) < 2 {
		return false
	}

	currentYear, err1 := strconv.Atoi(currentParts[0])
	currentMonth, err2 := strconv.Atoi(currentParts[1])
	latestYear, err3 := strconv.Atoi(latestParts[0])
	latestMonth, err4 := strconv.Atoi(latestParts[1])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		vs.logger.Warnf(providers.TypeApp, "Error determining mandatory update for versions %s and %s", current, latest)
		return false
	}

	return latestYear > currentYear || (latestYear == currentYear && latestMonth > currentMonth)
}

// ReleaseDate derives the release instant from the version's own date
// segments when they parse, else falls back to the current time.
func (vs *VersioningService) ReleaseDate(version string) time.Time {
	if d, ok := parseVersionTimestamp(version); ok {
		return d
	}
	vs.logger.Warnf(providers.TypeApp, "Could not parse release date from version: %s", version)
	return vs.now()
}

func (vs *VersioningService) ReleaseNotes(version string) string {
	if val, ok := vs.fast.Get(notesKeyPrefix + version); ok {
		return string(val)
	}
	if val, ok, err := vs.shared.Get(notesKeyPrefix + version); err == nil && ok {
		vs.fast.Set(notesKeyPrefix+version, val, int(versionMetaTTL.Seconds()))
		return string(val)
	}

	notes := fmt.Sprintf("Automatic content update - Version %s\n"+
		"- Refreshed weather data\n"+
		"- New articles available\n"+
		"- Performance improvements", version)
	vs.fast.Set(notesKeyPrefix+version, []byte(notes), int(versionMetaTTL.Seconds()))
	return notes
}

// SetReleaseNotes overrides the generated notes for a version in both tiers.
func (vs *VersioningService) SetReleaseNotes(version, notes string) {
	vs.fast.Set(notesKeyPrefix+version, []byte(notes), int(versionMetaTTL.Seconds()))
	if err := vs.shared.Set(notesKeyPrefix+version, []byte(notes), 0); err != nil {
		vs.logger.Warnf(providers.TypeApp, "Shared tier unavailable writing release notes for %s: %s", version, err)
	}
	vs.logger.Infof(providers.TypeApp, "Release notes set for version: %s", version)
}
