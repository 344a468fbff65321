package collectors

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"angelupdate/internal/models"
	"angelupdate/internal/providers"
	"angelupdate/internal/services"
	"angelupdate/internal/store"
	"angelupdate/internal/structures"
)

// Stats summarizes one collector run.
type Stats struct {
	Items  int
	Scopes int
}

// Collector is one content source. The set of collectors is closed and
// registered as data in the registry; there is no open-ended subclassing.
type Collector interface {
	ID() string
	Name() string
	Type() string
	Interval() time.Duration
	Collect(ctx context.Context) (Stats, error)
}

// defaultScopes are the regions collected out of the box, matching the
// launch markets.
var defaultScopes = []models.RegionScope{
	{CountryCode: "FR"},
	{CountryCode: "FR", RegionCode: "IDF"},
	{CountryCode: "US"},
	{CountryCode: "GB"},
	{CountryCode: "DE"},
}

// mockCollector generates synthetic content items and publishes them
// through the content store, bumping the scope version so clients see a new
// update. Live source integration is an external concern; with mock mode
// off a run fails until a real source is wired in.
type mockCollector struct {
	id          string
	name        string
	contentType string
	interval    time.Duration
	mockMode    bool
	scopes      []models.RegionScope
	payload     func(scope models.RegionScope, at time.Time) interface{}

	contentStore store.ContentStoreInterface
	versioning   services.VersioningServiceInterface
	logger       providers.Logger
}

func (c *mockCollector) ID() string              { return c.id }
func (c *mockCollector) Name() string            { return c.name }
func (c *mockCollector) Type() string            { return c.contentType }
func (c *mockCollector) Interval() time.Duration { return c.interval }

func (c *mockCollector) Collect(ctx context.Context) (Stats, error) {
	if !c.mockMode {
		return Stats{}, fmt.Errorf("collector %s: no live source configured", c.id)
	}

	stats := Stats{}
	for _, scope := range c.scopes {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		now := time.Now()
		data, err := json.Marshal(c.payload(scope, now))
		if err != nil {
			return stats, fmt.Errorf("collector %s: encoding payload: %w", c.id, err)
		}

		filename := fmt.Sprintf("%s-%d.json", c.contentType, now.UnixNano())
		content := &models.Content{
			ContentType: c.contentType,
			CountryCode: scope.CountryCode,
			RegionCode:  scope.RegionCode,
			FilePath:    store.BuildFilePath(c.contentType, scope.CountryCode, scope.RegionCode, filename),
			Status:      models.ContentActive,
			PublishedAt: now,
		}
		if _, err := c.contentStore.Save(content, data); err != nil {
			return stats, fmt.Errorf("collector %s: saving content for %s: %w", c.id, scope.Key(), err)
		}

		version := c.versioning.BumpVersion(scope)
		c.logger.Debugf(providers.TypeCollector, "Collected %s item for %s, version %s", c.contentType, scope.Key(), version)
		stats.Items++
		stats.Scopes++
	}

	c.logger.Infof(providers.TypeCollector, "%s collected %d items across %d scopes", c.name, stats.Items, stats.Scopes)
	return stats, nil
}

// NewCollectors builds the closed collector set from configuration.
func NewCollectors(conf *structures.Config, contentStore store.ContentStoreInterface, versioning services.VersioningServiceInterface, logger providers.Logger) []Collector {
	base := func(id, name, contentType string, interval time.Duration, payload func(models.RegionScope, time.Time) interface{}) Collector {
		return &mockCollector{
			id:           id,
			name:         name,
			contentType:  contentType,
			interval:     interval,
			mockMode:     conf.Collectors.MockMode,
			scopes:       defaultScopes,
			payload:      payload,
			contentStore: contentStore,
			versioning:   versioning,
			logger:       logger,
		}
	}

	return []Collector{
		base("news", "News Collector", "news", conf.Collectors.NewsInterval, newsPayload),
		base("weather", "Weather Collector", "weather", conf.Collectors.WeatherInterval, weatherPayload),
		base("recipes", "Recipes Collector", "recipes", conf.Collectors.RecipesInterval, recipesPayload),
	}
}

func newsPayload(scope models.RegionScope, at time.Time) interface{} {
	return map[string]interface{}{
		"title":       "Local news for " + scope.RegionOrNational(),
		"content":     "Generated article for " + scope.CountryCode,
		"source":      "Mock Source",
		"category":    "general",
		"language":    store.DetectLanguage(scope.CountryCode),
		"publishedAt": at,
	}
}

func weatherPayload(scope models.RegionScope, at time.Time) interface{} {
	return map[string]interface{}{
		"location":    scope.Key(),
		"temperature": 18,
		"condition":   "partly cloudy",
		"observedAt":  at,
	}
}

func recipesPayload(scope models.RegionScope, at time.Time) interface{} {
	return map[string]interface{}{
		"title":       "Seasonal recipe for " + scope.CountryCode,
		"difficulty":  "easy",
		"language":    store.DetectLanguage(scope.CountryCode),
		"publishedAt": at,
	}
}
