package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"angelupdate/internal/collectors"
	"angelupdate/internal/models"
	"angelupdate/internal/structures"
	"angelupdate/internal/testutil"
)

func adminConfig() *structures.Config {
	return &structures.Config{
		Update: structures.UpdateConfig{PackageMaxAgeDays: 30},
	}
}

func newAdmin(registry *testutil.MockRegistry, cache *testutil.MockCacheService, builder *testutil.MockBuilder) *AdminController {
	return NewAdminController(&testutil.MockLogger{}, registry, cache, builder, adminConfig())
}

func TestCollectors_ListsAll(t *testing.T) {
	registry := &testutil.MockRegistry{
		StatusList: []models.CollectorStatus{
			{ID: "news", Status: models.CollectorIdle},
			{ID: "weather", Status: models.CollectorSuccess},
		},
	}
	ac := newAdmin(registry, testutil.NewMockCacheService(), &testutil.MockBuilder{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/collectors", nil)
	w := httptest.NewRecorder()
	ac.Collectors(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var statuses []models.CollectorStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statuses))
	assert.Len(t, statuses, 2)
}

func TestCollectors_SingleByID(t *testing.T) {
	registry := &testutil.MockRegistry{
		StatusList: []models.CollectorStatus{{ID: "news", Status: models.CollectorIdle}},
	}
	ac := newAdmin(registry, testutil.NewMockCacheService(), &testutil.MockBuilder{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/collectors?id=news", nil)
	w := httptest.NewRecorder()
	ac.Collectors(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var status models.CollectorStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "news", status.ID)
}

func TestCollectors_UnknownID(t *testing.T) {
	ac := newAdmin(&testutil.MockRegistry{}, testutil.NewMockCacheService(), &testutil.MockBuilder{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/collectors?id=nope", nil)
	w := httptest.NewRecorder()
	ac.Collectors(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleCollector(t *testing.T) {
	registry := &testutil.MockRegistry{ToggleState: true}
	ac := newAdmin(registry, testutil.NewMockCacheService(), &testutil.MockBuilder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/collectors/toggle?id=news", nil)
	w := httptest.NewRecorder()
	ac.ToggleCollector(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp["enabled"])
}

func TestToggleCollector_NotFound(t *testing.T) {
	registry := &testutil.MockRegistry{ToggleErr: collectors.ErrCollectorNotFound}
	ac := newAdmin(registry, testutil.NewMockCacheService(), &testutil.MockBuilder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/collectors/toggle?id=nope", nil)
	w := httptest.NewRecorder()
	ac.ToggleCollector(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunCollector_ReturnsStatus(t *testing.T) {
	registry := &testutil.MockRegistry{
		StatusList: []models.CollectorStatus{{ID: "news", Status: models.CollectorSuccess, SuccessCount: 1}},
	}
	ac := newAdmin(registry, testutil.NewMockCacheService(), &testutil.MockBuilder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/collectors/run?id=news", nil)
	w := httptest.NewRecorder()
	ac.RunCollector(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"news"}, registry.RunIDs)

	var status models.CollectorStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.CollectorSuccess, status.Status)
}

func TestRunCollector_CollectorFailureStaysOK(t *testing.T) {
	registry := &testutil.MockRegistry{
		StatusList: []models.CollectorStatus{{ID: "news", Status: models.CollectorError, LastError: "boom"}},
		RunErr:     assert.AnError,
	}
	ac := newAdmin(registry, testutil.NewMockCacheService(), &testutil.MockBuilder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/collectors/run?id=news", nil)
	w := httptest.NewRecorder()
	ac.RunCollector(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var status models.CollectorStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "boom", status.LastError)
}

func TestRunCollector_NotFound(t *testing.T) {
	registry := &testutil.MockRegistry{RunErr: collectors.ErrCollectorNotFound}
	ac := newAdmin(registry, testutil.NewMockCacheService(), &testutil.MockBuilder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/collectors/run?id=nope", nil)
	w := httptest.NewRecorder()
	ac.RunCollector(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvictCache_All(t *testing.T) {
	cache := testutil.NewMockCacheService()
	ac := newAdmin(&testutil.MockRegistry{}, cache, &testutil.MockBuilder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/cache/evict", nil)
	w := httptest.NewRecorder()
	ac.EvictCache(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, cache.EvictedAll)
	assert.Empty(t, cache.EvictedPats)
}

func TestEvictCache_Pattern(t *testing.T) {
	cache := testutil.NewMockCacheService()
	ac := newAdmin(&testutil.MockRegistry{}, cache, &testutil.MockBuilder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/cache/evict?pattern=update:FR:*", nil)
	w := httptest.NewRecorder()
	ac.EvictCache(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"update:FR:*"}, cache.EvictedPats)
	assert.Zero(t, cache.EvictedAll)
}

func TestCleanupPackages_DefaultAge(t *testing.T) {
	builder := &testutil.MockBuilder{CleanupResult: 3}
	ac := newAdmin(&testutil.MockRegistry{}, testutil.NewMockCacheService(), builder)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/packages/cleanup", nil)
	w := httptest.NewRecorder()
	ac.CleanupPackages(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{30}, builder.Cleanups())

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp["deleted"])
}

func TestCleanupPackages_ExplicitAge(t *testing.T) {
	builder := &testutil.MockBuilder{}
	ac := newAdmin(&testutil.MockRegistry{}, testutil.NewMockCacheService(), builder)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/packages/cleanup?maxAgeDays=7", nil)
	w := httptest.NewRecorder()
	ac.CleanupPackages(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{7}, builder.Cleanups())
}

func TestCleanupPackages_InvalidAge(t *testing.T) {
	cases := []string{"abc", "0", "-5"}
	for _, raw := range cases {
		builder := &testutil.MockBuilder{}
		ac := newAdmin(&testutil.MockRegistry{}, testutil.NewMockCacheService(), builder)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/packages/cleanup?maxAgeDays="+raw, nil)
		w := httptest.NewRecorder()
		ac.CleanupPackages(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "maxAgeDays %q", raw)
		assert.Empty(t, builder.Cleanups())
	}
}
