package models

import "time"

type ContentStatus string

const (
	ContentDraft    ContentStatus = "DRAFT"
	ContentActive   ContentStatus = "ACTIVE"
	ContentArchived ContentStatus = "ARCHIVED"
	ContentDeleted  ContentStatus = "DELETED"
)

type ContentPriority string

const (
	PriorityLow    ContentPriority = "LOW"
	PriorityNormal ContentPriority = "NORMAL"
	PriorityHigh   ContentPriority = "HIGH"
	PriorityUrgent ContentPriority = "URGENT"
)

// Content is a single regionally-scoped content record tracked by the
// content store. FilePath is relative to the store's base directory.
type Content struct {
	ID           int64           `json:"id"`
	ContentType  string          `json:"content_type"`
	LanguageCode string          `json:"language_code"`
	CountryCode  string          `json:"country_code"`
	RegionCode   string          `json:"region_code,omitempty"`
	FilePath     string          `json:"file_path"`
	Version      string          `json:"version,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	Priority     ContentPriority `json:"priority"`
	Status       ContentStatus   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	PublishedAt  time.Time       `json:"published_at"`
	ExpiresAt    time.Time       `json:"expires_at,omitempty"`
	FileSize     int64           `json:"file_size"`
	Checksum     string          `json:"checksum"`
}
