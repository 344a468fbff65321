package testutil

import (
	"sync"
	"time"

	"angelupdate/internal/models"
	"angelupdate/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// CountLevel returns the number of recorded entries at a level.
func (m *MockLogger) CountLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface with a plain map.
// TTLs are recorded but not enforced.
type MockCache struct {
	mu       sync.Mutex
	Data     map[string][]byte
	TTLs     map[string]int
	GetCalls int
	SetCalls int
	DelCalls []string
	Cleared  int
}

func NewMockCache() *MockCache {
	return &MockCache{
		Data: make(map[string][]byte),
		TTLs: make(map[string]int),
	}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte, ttlSeconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	m.Data[key] = value
	m.TTLs[key] = ttlSeconds
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DelCalls = append(m.DelCalls, key)
	delete(m.Data, key)
}

func (m *MockCache) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Data))
	for k := range m.Data {
		keys = append(keys, k)
	}
	return keys
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cleared++
	m.Data = make(map[string][]byte)
}

// MockRedis implements providers.RedisProviderInterface. Setting Err makes
// every operation fail, simulating an unreachable shared tier.
type MockRedis struct {
	mu           sync.Mutex
	Data         map[string][]byte
	Err          error
	Healthy      bool
	GetCalls     int
	SetCalls     int
	DeleteCalls  []string
	FlushedTimes int
}

func NewMockRedis() *MockRedis {
	return &MockRedis{Data: make(map[string][]byte), Healthy: true}
}

func (m *MockRedis) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.Err != nil {
		return nil, false, m.Err
	}
	val, ok := m.Data[key]
	return val, ok, nil
}

func (m *MockRedis) Set(key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.Err != nil {
		return m.Err
	}
	m.Data[key] = value
	return nil
}

func (m *MockRedis) DeleteByPattern(pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, pattern)
	if m.Err != nil {
		return m.Err
	}
	return nil
}

func (m *MockRedis) FlushAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushedTimes++
	if m.Err != nil {
		return m.Err
	}
	m.Data = make(map[string][]byte)
	return nil
}

func (m *MockRedis) Ping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Healthy && m.Err == nil
}

func (m *MockRedis) Close() error { return nil }

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu             sync.Mutex
	Requests       int
	UpdateChecks   int
	PackageBuilds  map[string]int
	CacheHits      map[string]int
	CacheMisses    map[string]int
	CollectorRuns  map[string]int
	BuildDurations int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		PackageBuilds: make(map[string]int),
		CacheHits:     make(map[string]int),
		CacheMisses:   make(map[string]int),
		CollectorRuns: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncUpdateChecks(_ string, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateChecks++
}

func (m *MockMetrics) IncPackageBuilds(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PackageBuilds[result]++
}

func (m *MockMetrics) ObserveBuildDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BuildDurations++
}

func (m *MockMetrics) IncCacheHits(tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits[tier]++
}

func (m *MockMetrics) IncCacheMisses(tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses[tier]++
}

func (m *MockMetrics) IncCollectorRuns(id string, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CollectorRuns[id]++
}

// MockPublisher implements events.PublisherInterface and records emissions.
type MockPublisher struct {
	mu              sync.Mutex
	StatusChanges   []models.CollectorStatus
	ClearedPatterns []string
}

func (m *MockPublisher) CollectorStatusChanged(status models.CollectorStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusChanges = append(m.StatusChanges, status)
}

func (m *MockPublisher) CacheCleared(pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearedPatterns = append(m.ClearedPatterns, pattern)
}

func (m *MockPublisher) OnCollectorStatusChanged(_ func(models.CollectorStatus)) {}
func (m *MockPublisher) OnCacheCleared(_ func(string))                           {}

func (m *MockPublisher) Cleared() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ClearedPatterns...)
}

// MockContentStore implements store.ContentStoreInterface.
type MockContentStore struct {
	mu          sync.Mutex
	ChangedList []string
	FindErr     error
	FindCalls   int
	LastFrom    time.Time
	LastTo      time.Time
	SaveCalls   []*models.Content
	SaveErr     error
	BaseDir     string
}

func (m *MockContentStore) FindActiveChangedFiles(_, _, _ string, from, to time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindCalls++
	m.LastFrom, m.LastTo = from, to
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	return m.ChangedList, nil
}

func (m *MockContentStore) FindByChecksum(_ string) []models.Content { return nil }

func (m *MockContentStore) Save(content *models.Content, _ []byte) (*models.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	m.SaveCalls = append(m.SaveCalls, content)
	saved := *content
	saved.ID = int64(len(m.SaveCalls))
	return &saved, nil
}

func (m *MockContentStore) ContentPath(relPath string) string {
	return m.BaseDir + "/" + relPath
}

func (m *MockContentStore) Saved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SaveCalls)
}

// MockVersioning implements services.VersioningServiceInterface with
// canned answers.
type MockVersioning struct {
	mu          sync.Mutex
	Latest      map[string]string
	Newer       bool
	Mandatory   bool
	Notes       string
	Date        time.Time
	BumpedScope []models.RegionScope
}

func (m *MockVersioning) LatestVersion(scope models.RegionScope) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Latest != nil {
		return m.Latest[scope.Key()]
	}
	return ""
}

func (m *MockVersioning) BumpVersion(scope models.RegionScope) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BumpedScope = append(m.BumpedScope, scope)
	if m.Latest != nil {
		return m.Latest[scope.Key()]
	}
	return ""
}

func (m *MockVersioning) IsNewer(_, _ string) bool           { return m.Newer }
func (m *MockVersioning) IsMandatory(_, _ string) bool       { return m.Mandatory }
func (m *MockVersioning) ReleaseDate(_ string) time.Time     { return m.Date }
func (m *MockVersioning) ReleaseNotes(_ string) string       { return m.Notes }
func (m *MockVersioning) SetReleaseNotes(_ string, _ string) {}

// MockDiff implements services.DiffServiceInterface.
type MockDiff struct {
	mu    sync.Mutex
	Files []string
	Err   error
	Calls int
}

func (m *MockDiff) ChangedFiles(_ models.RegionScope, _, _ string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Files, nil
}

func (m *MockDiff) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockBuilder implements packaging.BuilderInterface.
type MockBuilder struct {
	mu            sync.Mutex
	Package       *models.PackageInfo
	BuildErr      error
	RetrieveErr   error
	BuildCalls    int
	CleanupResult int
	CleanupCalls  []int
}

func (m *MockBuilder) Build(_ models.RegionScope, _, _ string, _ []string) (*models.PackageInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BuildCalls++
	if m.BuildErr != nil {
		return nil, m.BuildErr
	}
	return m.Package, nil
}

func (m *MockBuilder) Retrieve(_ string, _ models.RegionScope) (*models.PackageInfo, error) {
	if m.RetrieveErr != nil {
		return nil, m.RetrieveErr
	}
	return m.Package, nil
}

func (m *MockBuilder) Cleanup(maxAgeDays int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CleanupCalls = append(m.CleanupCalls, maxAgeDays)
	return m.CleanupResult
}

func (m *MockBuilder) Cleanups() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.CleanupCalls...)
}

// MockCacheService implements services.CacheServiceInterface.
type MockCacheService struct {
	mu          sync.Mutex
	Responses   map[string]*models.UpdateResponse
	Diffs       map[string][]string
	PutRespKeys []string
	PutDiffKeys []string
	EvictedPats []string
	EvictedAll  int
	Healthy     bool
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		Responses: make(map[string]*models.UpdateResponse),
		Diffs:     make(map[string][]string),
		Healthy:   true,
	}
}

func (m *MockCacheService) GetUpdateResponse(key string) (*models.UpdateResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, ok := m.Responses[key]
	return resp, ok
}

func (m *MockCacheService) PutUpdateResponse(key string, resp *models.UpdateResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutRespKeys = append(m.PutRespKeys, key)
	m.Responses[key] = resp
}

func (m *MockCacheService) GetChangedFiles(key string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	files, ok := m.Diffs[key]
	return files, ok
}

func (m *MockCacheService) PutChangedFiles(key string, files []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutDiffKeys = append(m.PutDiffKeys, key)
	m.Diffs[key] = files
}

func (m *MockCacheService) EvictPattern(pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EvictedPats = append(m.EvictedPats, pattern)
}

func (m *MockCacheService) EvictAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EvictedAll++
}

func (m *MockCacheService) SharedTierHealthy() bool { return m.Healthy }

// MockUpdateService implements services.UpdateServiceInterface.
type MockUpdateService struct {
	mu         sync.Mutex
	Response   *models.UpdateResponse
	CheckErr   error
	Package    *models.PackageInfo
	PackageErr error
	Version    string
	CheckCalls []*models.UpdateRequest
}

func (m *MockUpdateService) CheckForUpdates(req *models.UpdateRequest) (*models.UpdateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckCalls = append(m.CheckCalls, req)
	if m.CheckErr != nil {
		return nil, m.CheckErr
	}
	return m.Response, nil
}

func (m *MockUpdateService) GetUpdatePackage(_ string, _ models.RegionScope) (*models.PackageInfo, error) {
	if m.PackageErr != nil {
		return nil, m.PackageErr
	}
	return m.Package, nil
}

func (m *MockUpdateService) ServiceVersion() string { return m.Version }

// MockRegistry implements collectors.RegistryInterface.
type MockRegistry struct {
	mu          sync.Mutex
	StatusList  []models.CollectorStatus
	ToggleState bool
	ToggleErr   error
	RunErr      error
	RunIDs      []string
}

func (m *MockRegistry) Init() {}
func (m *MockRegistry) Stop() {}

func (m *MockRegistry) Toggle(_ string) (bool, error) {
	if m.ToggleErr != nil {
		return false, m.ToggleErr
	}
	return m.ToggleState, nil
}

func (m *MockRegistry) RunNow(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunIDs = append(m.RunIDs, id)
	return m.RunErr
}

func (m *MockRegistry) Statuses() []models.CollectorStatus {
	return m.StatusList
}

func (m *MockRegistry) Status(id string) (models.CollectorStatus, error) {
	for _, s := range m.StatusList {
		if s.ID == id {
			return s, nil
		}
	}
	return models.CollectorStatus{}, errCollectorMissing
}

type collectorMissingError struct{}

func (collectorMissingError) Error() string { return "collector not found" }

var errCollectorMissing = collectorMissingError{}
