package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"angelupdate/internal/models"
	"angelupdate/internal/providers"
	"angelupdate/internal/structures"
)

const indexFileName = "contents.idx.zst"

// ContentStoreInterface is the content collaborator consumed by the update
// pipeline: collectors and uploads write through it, the diff resolver and
// package builder read from it.
type ContentStoreInterface interface {
	// FindActiveChangedFiles returns the relative paths of ACTIVE content
	// published inside [from, to] for the given scope, ordered by publish
	// time. An empty contentType matches all types; an empty region matches
	// every record of the country, mirroring the national query semantics.
	FindActiveChangedFiles(contentType, countryCode, regionCode string, from, to time.Time) ([]string, error)
	FindByChecksum(checksum string) []models.Content
	Save(content *models.Content, data []byte) (*models.Content, error)
	ContentPath(relPath string) string
}

// FileContentStore keeps content files under a base directory and the
// record index in a zstd-compressed JSON file next to them.
type FileContentStore struct {
	mu         sync.RWMutex
	baseDir    string
	records    []models.Content
	nextID     int64
	compressor CompressorInterface
	logger     providers.Logger
}

type indexFile struct {
	NextID   int64            `json:"next_id"`
	Contents []models.Content `json:"contents"`
}

func NewFileContentStore(conf *structures.Config, compressor CompressorInterface, logger providers.Logger) (ContentStoreInterface, error) {
	s := &FileContentStore{
		baseDir:    conf.Update.ContentDir,
		nextID:     1,
		compressor: compressor,
		logger:     logger,
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return nil, err
	}
	if err := s.loadIndex(); err != nil {
		return nil, fmt.Errorf("loading content index: %w", err)
	}
	return s, nil
}

func (s *FileContentStore) FindActiveChangedFiles(contentType, countryCode, regionCode string, from, to time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Content, 0)
	for _, c := range s.records {
		if c.Status != models.ContentActive {
			continue
		}
		if c.CountryCode != countryCode {
			continue
		}
		if regionCode != "" && c.RegionCode != regionCode {
			continue
		}
		if contentType != "" && c.ContentType != contentType {
			continue
		}
		if c.PublishedAt.Before(from) || c.PublishedAt.After(to) {
			continue
		}
		matched = append(matched, c)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishedAt.Before(matched[j].PublishedAt)
	})

	paths := make([]string, 0, len(matched))
	for _, c := range matched {
		paths = append(paths, c.FilePath)
	}
	return paths, nil
}

func (s *FileContentStore) FindByChecksum(checksum string) []models.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Content
	for _, c := range s.records {
		if c.Checksum == checksum {
			out = append(out, c)
		}
	}
	return out
}

// Save writes the content file under the scope layout, fills in the derived
// record fields and persists the index atomically.
func (s *FileContentStore) Save(content *models.Content, data []byte) (*models.Content, error) {
	if content.FilePath == "" {
		return nil, fmt.Errorf("content file path is required")
	}

	target := s.ContentPath(content.FilePath)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	saved := *content
	saved.ID = s.nextID
	s.nextID++
	if saved.LanguageCode == "" {
		saved.LanguageCode = DetectLanguage(saved.CountryCode)
	}
	if saved.Priority == "" {
		saved.Priority = models.PriorityNormal
	}
	if saved.Status == "" {
		saved.Status = models.ContentActive
	}
	if saved.PublishedAt.IsZero() {
		saved.PublishedAt = now
	}
	saved.CreatedAt = now
	saved.UpdatedAt = now
	saved.FileSize = int64(len(data))
	sum := sha256.Sum256(data)
	saved.Checksum = hex.EncodeToString(sum[:])

	s.records = append(s.records, saved)
	if err := s.persistIndex(); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *FileContentStore) ContentPath(relPath string) string {
	return filepath.Join(s.baseDir, relPath)
}

// BuildFilePath composes the canonical relative path of a content file:
// {cc}/national|regions/{rc}/{type}/{name}, all location parts lowercased.
func BuildFilePath(contentType, countryCode, regionCode, filename string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(countryCode))
	b.WriteString("/")
	if regionCode != "" {
		b.WriteString("regions/")
		b.WriteString(strings.ToLower(regionCode))
		b.WriteString("/")
	} else {
		b.WriteString("national/")
	}
	b.WriteString(contentType)
	b.WriteString("/")
	b.WriteString(filename)
	return b.String()
}

func DetectLanguage(countryCode string) string {
	switch countryCode {
	case "FR", "BE", "CH":
		return "fr"
	case "ES", "MX", "AR":
		return "es"
	case "DE", "AT":
		return "de"
	default:
		return "en"
	}
}

func (s *FileContentStore) indexPath() string {
	return filepath.Join(s.baseDir, indexFileName)
}

func (s *FileContentStore) loadIndex() error {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := s.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var idx indexFile
	if err := json.Unmarshal(decompressed, &idx); err != nil {
		return err
	}
	s.records = idx.Contents
	if idx.NextID > 0 {
		s.nextID = idx.NextID
	}
	return nil
}

// persistIndex writes the index with tmp-file-then-rename so a crash never
// leaves a truncated index behind. Must be called under s.mu.
func (s *FileContentStore) persistIndex() error {
	jsonData, err := json.Marshal(&indexFile{NextID: s.nextID, Contents: s.records})
	if err != nil {
		return err
	}
	compressed, err := s.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	path := s.indexPath()
	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}
	if _, err = file.Write(compressed); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return os.Rename(tmpFile, path)
}
