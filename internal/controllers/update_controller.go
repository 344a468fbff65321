package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"

	"angelupdate/internal/models"
	"angelupdate/internal/packaging"
	"angelupdate/internal/providers"
	"angelupdate/internal/services"
)

const (
	maxRequestBodySize = 1 << 20 // 1 MB
	downloadRoute      = "/api/v1/update/download/"
)

var (
	countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)
	regionPattern  = regexp.MustCompile(`^[A-Z]{2,3}$`)
)

type UpdateController struct {
	logger  providers.Logger
	service services.UpdateServiceInterface
}

func NewUpdateController(logger providers.Logger, service services.UpdateServiceInterface) *UpdateController {
	return &UpdateController{
		logger:  logger,
		service: service,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// CheckUpdate handles POST /api/v1/update/check. Malformed requests are
// rejected here; the pipeline only ever sees validated input.
func (uc *UpdateController) CheckUpdate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.AcceptLanguage = r.Header.Get("Accept-Language")

	v := validate.Struct(&req)
	if !v.Validate() {
		writeError(w, http.StatusBadRequest, v.Errors.One())
		return
	}

	uc.logger.Infof(providers.TypePost, "Checking updates for country: %s, region: %s, version: %s",
		req.CountryCode, req.RegionCode, req.CurrentVersion)

	resp, err := uc.service.CheckForUpdates(&req)
	if err != nil {
		uc.logger.Errorf(providers.TypePost, "Update check failed for %s: %s", req.Scope().Key(), err)
		writeError(w, http.StatusInternalServerError, "update check failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Download handles GET /api/v1/update/download/{version}. The scope comes
// from query parameters, the version from the path.
func (uc *UpdateController) Download(w http.ResponseWriter, r *http.Request) {
	version := strings.TrimPrefix(r.URL.Path, downloadRoute)
	country := r.URL.Query().Get("countryCode")
	region := r.URL.Query().Get("regionCode")

	if version == "" || strings.Contains(version, "/") {
		writeError(w, http.StatusBadRequest, "invalid version")
		return
	}
	if !countryPattern.MatchString(country) {
		writeError(w, http.StatusBadRequest, "countryCode must be 2 uppercase letters")
		return
	}
	if region != "" && !regionPattern.MatchString(region) {
		writeError(w, http.StatusBadRequest, "regionCode must be 2-3 uppercase letters")
		return
	}

	uc.logger.Infof(providers.TypeGet, "Downloading update version: %s for country: %s, region: %s", version, country, region)

	pkg, err := uc.service.GetUpdatePackage(version, models.NewRegionScope(country, region))
	if err != nil {
		if errors.Is(err, packaging.ErrPackageNotFound) {
			writeError(w, http.StatusNotFound, "update package not found")
			return
		}
		uc.logger.Errorf(providers.TypeGet, "Error getting update package: %s", err)
		writeError(w, http.StatusInternalServerError, "error getting update package")
		return
	}

	file, err := os.Open(pkg.Path)
	if err != nil {
		uc.logger.Errorf(providers.TypeGet, "Error opening update package %s: %s", pkg.Path, err)
		writeError(w, http.StatusNotFound, "update package not found")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"update-%s.zip\"", version))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", pkg.Size))
	w.Header().Set("X-Checksum-Sha256", pkg.Checksum)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, file)
}

// Version handles GET /api/v1/update/version.
func (uc *UpdateController) Version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(uc.service.ServiceVersion()))
}
