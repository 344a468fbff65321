package models

import "time"

// UpdateRequest is the body of a check-update call. Validation rules mirror
// the public API contract: malformed requests never reach the pipeline.
type UpdateRequest struct {
	CountryCode    string `json:"countryCode" validate:"required|regexp:^[A-Z]{2}$" message:"Country code must be 2 uppercase letters"`
	RegionCode     string `json:"regionCode" validate:"regexp:^[A-Z]{2,3}$" message:"Region code must be 2-3 uppercase letters"`
	CurrentVersion string `json:"currentVersion" validate:"required|regexp:^[0-9]+[.][0-9]+[.][0-9]+$" message:"Version must be in format X.Y.Z"`
	LanguageCode   string `json:"languageCode"`
	ClientID       string `json:"clientId"`
	AcceptLanguage string `json:"-"`
}

func (r *UpdateRequest) Scope() RegionScope {
	return NewRegionScope(r.CountryCode, r.RegionCode)
}

// UpdateResponse is the value returned to clients and cached by the
// response cache.
type UpdateResponse struct {
	HasUpdates     bool           `json:"hasUpdates"`
	LatestVersion  string         `json:"latestVersion"`
	DownloadUrl    string         `json:"downloadUrl,omitempty"`
	PackageSize    int64          `json:"packageSize,omitempty"`
	Checksum       string         `json:"checksum,omitempty"`
	ChangedFiles   []string       `json:"changedFiles,omitempty"`
	ChangesSummary map[string]int `json:"changesSummary,omitempty"`
	ReleaseDate    time.Time      `json:"releaseDate,omitempty"`
	ReleaseNotes   string         `json:"releaseNotes,omitempty"`
	Message        string         `json:"message"`
	Mandatory      bool           `json:"mandatory"`
	NextCheckTime  time.Time      `json:"nextCheckTime"`
}

// PackageInfo describes a materialized update archive on disk.
type PackageInfo struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}
