package packaging

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/EagleChen/mapmutex"
	"github.com/klauspost/compress/zip"

	"angelupdate/internal/models"
	"angelupdate/internal/providers"
	"angelupdate/internal/structures"
)

// ErrPackageNotFound is returned by Retrieve when no archive exists for the
// requested version and scope.
var ErrPackageNotFound = errors.New("update package not found")

const manifestName = "MANIFEST.txt"

// ContentLocator resolves a content-relative path to an absolute one.
// Satisfied by the content store.
type ContentLocator interface {
	ContentPath(relPath string) string
}

// BuilderInterface assembles and serves incremental update archives.
type BuilderInterface interface {
	// Build materializes the archive for (scope, toVersion). At most one
	// artifact ever exists per identity: if it is already on disk it is
	// returned as-is without re-reading the change set or rewriting bytes.
	Build(scope models.RegionScope, fromVersion, toVersion string, changedFiles []string) (*models.PackageInfo, error)
	// Retrieve looks up an existing archive by its deterministic path.
	Retrieve(version string, scope models.RegionScope) (*models.PackageInfo, error)
	// Cleanup deletes archives older than maxAgeDays. Best effort: delete
	// failures are logged and the scan continues. Returns the number of
	// deleted archives.
	Cleanup(maxAgeDays int) int
}

type ZipBuilder struct {
	packageDir string
	content    ContentLocator
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface

	// buildLocks serializes concurrent builds of the same identity so only
	// one request pays the archive construction cost. The on-disk existence
	// check remains the cross-process guarantee.
	buildLocks *mapmutex.Mutex

	mu        sync.Mutex
	checksums map[string]string

	now func() time.Time
}

func NewZipBuilder(conf *structures.Config, content ContentLocator, logger providers.Logger, metrics providers.MetricsProviderInterface) BuilderInterface {
	return &ZipBuilder{
		packageDir: conf.Update.PackageDir,
		content:    content,
		logger:     logger,
		metrics:    metrics,
		buildLocks: mapmutex.NewMapMutex(),
		checksums:  make(map[string]string),
		now:        time.Now,
	}
}

// PackageFileName returns the deterministic archive name for a scope and
// target version, e.g. "update-fr-idf-2024.03.02.10.zip".
func PackageFileName(scope models.RegionScope, version string) string {
	return fmt.Sprintf("update-%s-%s.zip", scope.PackageSuffix(), version)
}

func (zb *ZipBuilder) Build(scope models.RegionScope, fromVersion, toVersion string, changedFiles []string) (*models.PackageInfo, error) {
	name := PackageFileName(scope, toVersion)
	packagePath := filepath.Join(zb.packageDir, name)

	if zb.buildLocks.TryLock(name) {
		defer zb.buildLocks.Unlock(name)
	}

	if info, err := os.Stat(packagePath); err == nil {
		zb.logger.Infof(providers.TypeApp, "Package already exists: %s", packagePath)
		zb.metrics.IncPackageBuilds("reused")
		return &models.PackageInfo{
			Path:     packagePath,
			Size:     info.Size(),
			Checksum: zb.checksumFor(packagePath),
		}, nil
	}

	start := zb.now()
	info, err := zb.writeArchive(scope, fromVersion, toVersion, packagePath, dedupe(changedFiles))
	if err != nil {
		zb.metrics.IncPackageBuilds("failed")
		return nil, fmt.Errorf("failed to create update package: %w", err)
	}
	zb.metrics.IncPackageBuilds("built")
	zb.metrics.ObserveBuildDuration(zb.now().Sub(start))

	zb.logger.Infof(providers.TypeApp, "Created update package: %s with %d files", packagePath, len(changedFiles))
	return info, nil
}

// writeArchive builds the zip at a temporary path and promotes it with an
// atomic rename only after the checksum has been computed over the complete
// bytes. A failed build never leaves a partial archive under the final name.
func (zb *ZipBuilder) writeArchive(scope models.RegionScope, fromVersion, toVersion, packagePath string, changedFiles []string) (*models.PackageInfo, error) {
	if err := os.MkdirAll(zb.packageDir, 0755); err != nil {
		return nil, err
	}

	// Each build attempt writes to its own temp file so two writers racing
	// for the same identity (another goroutine past the advisory lock, or
	// another process) can never interleave bytes. The rename decides which
	// complete archive wins.
	file, err := os.CreateTemp(zb.packageDir, filepath.Base(packagePath)+".tmp*")
	if err != nil {
		return nil, err
	}
	tmpPath := file.Name()

	fail := func(e error) (*models.PackageInfo, error) {
		file.Close()
		os.Remove(tmpPath)
		return nil, e
	}

	zw := zip.NewWriter(file)

	manifest, err := zw.Create(manifestName)
	if err != nil {
		return fail(err)
	}
	if _, err = manifest.Write(zb.buildManifest(scope, fromVersion, toVersion, changedFiles)); err != nil {
		return fail(err)
	}

	for _, relPath := range changedFiles {
		if err = zb.addFile(zw, relPath); err != nil {
			return fail(err)
		}
	}

	if err = zw.Close(); err != nil {
		return fail(err)
	}
	if err = file.Sync(); err != nil {
		return fail(err)
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	checksum, size, err := hashFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	if err = os.Rename(tmpPath, packagePath); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	zb.mu.Lock()
	zb.checksums[packagePath] = checksum
	zb.mu.Unlock()

	return &models.PackageInfo{Path: packagePath, Size: size, Checksum: checksum}, nil
}

func (zb *ZipBuilder) buildManifest(scope models.RegionScope, fromVersion, toVersion string, changedFiles []string) []byte {
	var b strings.Builder
	b.WriteString("# Angel Update Package Manifest\n")
	b.WriteString("version=" + toVersion + "\n")
	b.WriteString("country=" + scope.CountryCode + "\n")
	b.WriteString("region=" + scope.RegionOrNational() + "\n")
	b.WriteString("from_version=" + fromVersion + "\n")
	b.WriteString("created=" + zb.now().UTC().Format(time.RFC3339) + "\n")
	b.WriteString(fmt.Sprintf("file_count=%d\n", len(changedFiles)))
	b.WriteString("\n# Changed Files:\n")
	for _, f := range changedFiles {
		b.WriteString(f + "\n")
	}
	return []byte(b.String())
}

// addFile appends one content file to the archive. A path that no longer
// exists in the content store is skipped with a warning, not a failure.
func (zb *ZipBuilder) addFile(zw *zip.Writer, relPath string) error {
	sourcePath := zb.content.ContentPath(relPath)
	source, err := os.Open(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			zb.logger.Warnf(providers.TypeApp, "File not found, skipping: %s", sourcePath)
			return nil
		}
		return err
	}
	defer source.Close()

	entry, err := zw.Create(relPath)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, source)
	return err
}

func (zb *ZipBuilder) Retrieve(version string, scope models.RegionScope) (*models.PackageInfo, error) {
	packagePath := filepath.Join(zb.packageDir, PackageFileName(scope, version))
	info, err := os.Stat(packagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, packagePath)
	}
	return &models.PackageInfo{
		Path:     packagePath,
		Size:     info.Size(),
		Checksum: zb.checksumFor(packagePath),
	}, nil
}

func (zb *ZipBuilder) Cleanup(maxAgeDays int) int {
	entries, err := os.ReadDir(zb.packageDir)
	if err != nil {
		if !os.IsNotExist(err) {
			zb.logger.Errorf(providers.TypeApp, "Error during package cleanup: %s", err)
		}
		return 0
	}

	cutoff := zb.now().AddDate(0, 0, -maxAgeDays)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".zip") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(zb.packageDir, entry.Name())
		if err := os.Remove(path); err != nil {
			zb.logger.Warnf(providers.TypeApp, "Could not delete old package: %s", path)
			continue
		}
		zb.mu.Lock()
		delete(zb.checksums, path)
		zb.mu.Unlock()
		zb.logger.Infof(providers.TypeApp, "Deleted old package: %s", path)
		deleted++
	}
	return deleted
}

// checksumFor returns the memoized checksum of an existing archive,
// computing and caching it once when this process did not build the file.
func (zb *ZipBuilder) checksumFor(packagePath string) string {
	zb.mu.Lock()
	if sum, ok := zb.checksums[packagePath]; ok {
		zb.mu.Unlock()
		return sum
	}
	zb.mu.Unlock()

	sum, _, err := hashFile(packagePath)
	if err != nil {
		zb.logger.Errorf(providers.TypeApp, "Error calculating checksum for %s: %s", packagePath, err)
		return ""
	}
	zb.mu.Lock()
	zb.checksums[packagePath] = sum
	zb.mu.Unlock()
	return sum
}

func hashFile(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	h := sha256.New()
	size, err := io.Copy(h, file)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
