package packaging

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"angelupdate/internal/models"
	"angelupdate/internal/structures"
	"angelupdate/internal/testutil"
)

var fixedBuildTime = time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)

type builderFixture struct {
	builder    *ZipBuilder
	metrics    *testutil.MockMetrics
	logger     *testutil.MockLogger
	packageDir string
	contentDir string
}

func newBuilderFixture(t *testing.T) *builderFixture {
	t.Helper()
	f := &builderFixture{
		metrics:    testutil.NewMockMetrics(),
		logger:     &testutil.MockLogger{},
		packageDir: t.TempDir(),
		contentDir: t.TempDir(),
	}
	conf := &structures.Config{Update: structures.UpdateConfig{PackageDir: f.packageDir}}
	locator := &testutil.MockContentStore{BaseDir: f.contentDir}
	f.builder = NewZipBuilder(conf, locator, f.logger, f.metrics).(*ZipBuilder)
	f.builder.now = func() time.Time { return fixedBuildTime }
	return f
}

func (f *builderFixture) writeContent(t *testing.T, relPath, data string) {
	t.Helper()
	target := filepath.Join(f.contentDir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte(data), 0644))
}

func TestPackageFileName(t *testing.T) {
	assert.Equal(t, "update-fr-2024.03.02.10.zip", PackageFileName(models.NewRegionScope("FR", ""), "2024.03.02.10"))
	assert.Equal(t, "update-fr-idf-2024.03.02.10.zip", PackageFileName(models.NewRegionScope("FR", "IDF"), "2024.03.02.10"))
}

func TestBuild_CreatesArchiveWithManifestFirst(t *testing.T) {
	f := newBuilderFixture(t)
	f.writeContent(t, "fr/national/news/a.json", `{"title":"a"}`)
	f.writeContent(t, "fr/national/weather/b.json", `{"temp":18}`)
	scope := models.NewRegionScope("FR", "")

	pkg, err := f.builder.Build(scope, "2024.03.01.10", "2024.03.02.10",
		[]string{"fr/national/news/a.json", "fr/national/weather/b.json"})
	require.NoError(t, err)
	require.FileExists(t, pkg.Path)
	assert.Equal(t, filepath.Join(f.packageDir, "update-fr-2024.03.02.10.zip"), pkg.Path)
	assert.NotEmpty(t, pkg.Checksum)
	assert.Len(t, pkg.Checksum, 64)

	r, err := zip.OpenReader(pkg.Path)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 3)
	assert.Equal(t, "MANIFEST.txt", r.File[0].Name)
	assert.Equal(t, "fr/national/news/a.json", r.File[1].Name)
	assert.Equal(t, "fr/national/weather/b.json", r.File[2].Name)
}

func TestBuild_ManifestFormat(t *testing.T) {
	f := newBuilderFixture(t)
	f.writeContent(t, "fr/regions/idf/news/a.json", "{}")
	scope := models.NewRegionScope("FR", "IDF")

	pkg, err := f.builder.Build(scope, "2024.03.01.10", "2024.03.02.10", []string{"fr/regions/idf/news/a.json"})
	require.NoError(t, err)

	r, err := zip.OpenReader(pkg.Path)
	require.NoError(t, err)
	defer r.Close()

	mf, err := r.File[0].Open()
	require.NoError(t, err)
	defer mf.Close()
	body, err := io.ReadAll(mf)
	require.NoError(t, err)

	expected := "# Angel Update Package Manifest\n" +
		"version=2024.03.02.10\n" +
		"country=FR\n" +
		"region=IDF\n" +
		"from_version=2024.03.01.10\n" +
		"created=2024-03-02T10:30:00Z\n" +
		"file_count=1\n" +
		"\n# Changed Files:\n" +
		"fr/regions/idf/news/a.json\n"
	assert.Equal(t, expected, string(body))
}

func TestBuild_IsIdempotent(t *testing.T) {
	f := newBuilderFixture(t)
	f.writeContent(t, "fr/national/news/a.json", "{}")
	scope := models.NewRegionScope("FR", "")
	files := []string{"fr/national/news/a.json"}

	first, err := f.builder.Build(scope, "2024.03.01.10", "2024.03.02.10", files)
	require.NoError(t, err)
	second, err := f.builder.Build(scope, "2024.03.01.10", "2024.03.02.10", files)
	require.NoError(t, err)

	assert.Equal(t, first.Checksum, second.Checksum)
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, 1, f.metrics.PackageBuilds["built"])
	assert.Equal(t, 1, f.metrics.PackageBuilds["reused"])
}

func TestBuild_ChecksumIsReproducible(t *testing.T) {
	files := []string{"fr/national/news/a.json"}
	scope := models.NewRegionScope("FR", "")

	f1 := newBuilderFixture(t)
	f1.writeContent(t, files[0], `{"title":"same"}`)
	f2 := newBuilderFixture(t)
	f2.writeContent(t, files[0], `{"title":"same"}`)

	p1, err := f1.builder.Build(scope, "2024.03.01.10", "2024.03.02.10", files)
	require.NoError(t, err)
	p2, err := f2.builder.Build(scope, "2024.03.01.10", "2024.03.02.10", files)
	require.NoError(t, err)

	assert.Equal(t, p1.Checksum, p2.Checksum)
}

func TestBuild_SkipsMissingFiles(t *testing.T) {
	f := newBuilderFixture(t)
	f.writeContent(t, "fr/national/news/a.json", "{}")
	scope := models.NewRegionScope("FR", "")

	pkg, err := f.builder.Build(scope, "2024.03.01.10", "2024.03.02.10",
		[]string{"fr/national/news/a.json", "fr/national/news/gone.json"})
	require.NoError(t, err)

	r, err := zip.OpenReader(pkg.Path)
	require.NoError(t, err)
	defer r.Close()
	require.Len(t, r.File, 2)
	assert.Equal(t, 1, f.logger.CountLevel("warn"))
}

func TestBuild_DeduplicatesPaths(t *testing.T) {
	f := newBuilderFixture(t)
	f.writeContent(t, "fr/national/news/a.json", "{}")
	scope := models.NewRegionScope("FR", "")

	pkg, err := f.builder.Build(scope, "2024.03.01.10", "2024.03.02.10",
		[]string{"fr/national/news/a.json", "fr/national/news/a.json"})
	require.NoError(t, err)

	r, err := zip.OpenReader(pkg.Path)
	require.NoError(t, err)
	defer r.Close()
	assert.Len(t, r.File, 2)
}

func TestBuild_ConcurrentSameIdentity(t *testing.T) {
	f := newBuilderFixture(t)
	f.writeContent(t, "fr/national/news/a.json", `{"title":"a"}`)
	f.writeContent(t, "fr/national/weather/b.json", `{"temp":18}`)
	scope := models.NewRegionScope("FR", "")
	files := []string{"fr/national/news/a.json", "fr/national/weather/b.json"}

	const workers = 8
	results := make([]*models.PackageInfo, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.builder.Build(scope, "2024.03.01.10", "2024.03.02.10", files)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Path, results[i].Path)
	}

	r, err := zip.OpenReader(results[0].Path)
	require.NoError(t, err)
	defer r.Close()
	require.Len(t, r.File, 3)
	assert.Equal(t, "MANIFEST.txt", r.File[0].Name)

	leftovers, err := filepath.Glob(filepath.Join(f.packageDir, "*.tmp*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestBuild_ScopesGetSeparateArchives(t *testing.T) {
	f := newBuilderFixture(t)
	f.writeContent(t, "fr/national/news/a.json", "{}")

	national, err := f.builder.Build(models.NewRegionScope("FR", ""), "a", "2024.03.02.10", []string{"fr/national/news/a.json"})
	require.NoError(t, err)
	regional, err := f.builder.Build(models.NewRegionScope("FR", "IDF"), "a", "2024.03.02.10", []string{"fr/national/news/a.json"})
	require.NoError(t, err)

	assert.NotEqual(t, national.Path, regional.Path)
}

func TestBuild_NoPartialArchiveOnFailure(t *testing.T) {
	f := newBuilderFixture(t)
	// Unreadable source: a directory where a file is expected.
	require.NoError(t, os.MkdirAll(filepath.Join(f.contentDir, "fr/national/news/dir.json/sub"), 0755))
	scope := models.NewRegionScope("FR", "")

	_, err := f.builder.Build(scope, "2024.03.01.10", "2024.03.02.10", []string{"fr/national/news/dir.json"})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(f.packageDir, "update-fr-2024.03.02.10.zip"))
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, 1, f.metrics.PackageBuilds["failed"])
}

func TestRetrieve_NotFound(t *testing.T) {
	f := newBuilderFixture(t)

	_, err := f.builder.Retrieve("2024.03.02.10", models.NewRegionScope("FR", ""))
	assert.True(t, errors.Is(err, ErrPackageNotFound))
}

func TestRetrieve_ReturnsExistingArchive(t *testing.T) {
	f := newBuilderFixture(t)
	f.writeContent(t, "fr/national/news/a.json", "{}")
	scope := models.NewRegionScope("FR", "")

	built, err := f.builder.Build(scope, "2024.03.01.10", "2024.03.02.10", []string{"fr/national/news/a.json"})
	require.NoError(t, err)

	got, err := f.builder.Retrieve("2024.03.02.10", scope)
	require.NoError(t, err)
	assert.Equal(t, built.Path, got.Path)
	assert.Equal(t, built.Checksum, got.Checksum)
	assert.Equal(t, built.Size, got.Size)
}

func TestCleanup_DeletesOnlyOldArchives(t *testing.T) {
	f := newBuilderFixture(t)
	old := filepath.Join(f.packageDir, "update-fr-2024.01.01.00.zip")
	fresh := filepath.Join(f.packageDir, "update-fr-2024.03.02.10.zip")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0644))
	require.NoError(t, os.WriteFile(fresh, []byte("fresh"), 0644))
	stale := fixedBuildTime.AddDate(0, 0, -45)
	require.NoError(t, os.Chtimes(old, stale, stale))

	deleted := f.builder.Cleanup(30)

	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
}

func TestCleanup_MissingDirIsNoop(t *testing.T) {
	f := newBuilderFixture(t)
	f.builder.packageDir = filepath.Join(f.packageDir, "does-not-exist")

	assert.Zero(t, f.builder.Cleanup(30))
}
