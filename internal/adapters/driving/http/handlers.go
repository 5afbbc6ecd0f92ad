package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// maxEventBody bounds the size of a content event payload
const maxEventBody = 64 << 10

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ComponentHealth is the state of one dependency
type ComponentHealth struct {
	Status string `json:"status" example:"healthy"`
	Error  string `json:"error,omitempty"`
}

// ReadinessResponse reports every dependency checked by /ready
// @Description Readiness status with per-component detail
type ReadinessResponse struct {
	Status     string                     `json:"status" example:"ready"`
	Components map[string]ComponentHealth `json:"components"`
}

// BumpResponse reports the new version after an explicit bump
type BumpResponse struct {
	ContentType domain.ContentType `json:"content_type" example:"artist"`
	Version     int64              `json:"version" example:"7"`
}

// SweepResponse reports how many expired entries were removed
type SweepResponse struct {
	Removed int `json:"removed" example:"12"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings the cache backend and content store
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadinessResponse
// @Failure      503  {object}  ReadinessResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := ReadinessResponse{Status: "ready", Components: make(map[string]ComponentHealth, len(s.dependencies))}
	status := http.StatusOK
	for name, dep := range s.dependencies {
		if err := dep.Ping(ctx); err != nil {
			resp.Components[name] = ComponentHealth{Status: "unhealthy", Error: err.Error()}
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = ComponentHealth{Status: "healthy"}
	}
	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, doc)
}

// Directory endpoints

// handleDirectory godoc
// @Summary      Render a directory listing
// @Description  Returns the HTML fragment of a filtered, paginated directory. The canonical URL is sent in a Link header.
// @Tags         Directories
// @Produce      html
// @Param        type    path   string  true   "Content type"  example(artist)
// @Param        letter  query  string  false  "Letter bucket (All, A-Z, #)"
// @Param        search  query  string  false  "Name search"
// @Param        tax     query  string  false  "Taxonomy filter, compact form"
// @Param        paged   query  int     false  "Page number"
// @Success      200  {string}  string  "HTML fragment"
// @Failure      404  {object}  ErrorResponse  "Unknown content type"
// @Router       /directory/{type} [get]
func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	result, ok := s.render(w, r, directoryPath(r.PathValue("type")))
	if !ok {
		return
	}

	if result.CanonicalURL != "" {
		w.Header().Set("Link", "<"+result.CanonicalURL+`>; rel="canonical"`)
	}
	if result.Status == domain.RenderStatusUnavailable {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.HTML)
}

// handleDirectoryJSON godoc
// @Summary      Render a directory listing as JSON
// @Description  Returns the rendered HTML together with the resolved state, totals and canonical URL
// @Tags         Directories
// @Produce      json
// @Param        type    path   string  true   "Content type"  example(artist)
// @Param        letter  query  string  false  "Letter bucket (All, A-Z, #)"
// @Param        search  query  string  false  "Name search"
// @Param        tax     query  string  false  "Taxonomy filter, compact form"
// @Param        paged   query  int     false  "Page number"
// @Success      200  {object}  domain.RenderResult
// @Failure      404  {object}  ErrorResponse  "Unknown content type"
// @Router       /api/v1/directories/{type} [get]
func (s *Server) handleDirectoryJSON(w http.ResponseWriter, r *http.Request) {
	result, ok := s.render(w, r, "")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleListDirectories godoc
// @Summary      List directory profiles
// @Tags         Directories
// @Produce      json
// @Success      200  {array}  domain.DirectoryProfile
// @Router       /api/v1/directories [get]
func (s *Server) handleListDirectories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.directoryService.Profiles())
}

// directoryPath is where this server serves the HTML listing of a type
func directoryPath(contentType string) string {
	return "/directory/" + contentType
}

// render runs the directory service for the routed content type, writing
// an error response itself when it fails. An empty basePath keeps the
// profile's base path, the page of the site that embeds the listing.
func (s *Server) render(w http.ResponseWriter, r *http.Request, basePath string) (*domain.RenderResult, bool) {
	contentType := domain.ContentType(r.PathValue("type"))

	attrs := domain.DirectoryAttributes{BasePath: basePath, RouteVars: map[string]string{}}
	if letter := r.PathValue("letter"); letter != "" {
		attrs.RouteVars["letter"] = letter
	}
	if paged := r.PathValue("paged"); paged != "" {
		attrs.RouteVars["paged"] = paged
	}

	result, err := s.directoryService.Render(r.Context(), contentType, attrs, r.URL.Query())
	if err != nil {
		if errors.Is(err, domain.ErrUnknownContentType) {
			writeError(w, http.StatusNotFound, "unknown directory")
			return nil, false
		}
		s.logger.ErrorContext(r.Context(), "directory render failed",
			"content_type", contentType, "error", err, "request_id", GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "failed to render directory")
		return nil, false
	}
	return result, true
}

// Content events

// handleContentEvent godoc
// @Summary      Report a content mutation
// @Description  Invalidates the cached listings of the event's content type
// @Tags         Events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.ContentEvent  true  "Mutation event"
// @Success      202      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid event"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      403      {object}  ErrorResponse  "Insufficient permissions"
// @Failure      500      {object}  ErrorResponse  "Invalidation failed"
// @Router       /api/v1/events [post]
func (s *Server) handleContentEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.ContentEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if event.Kind == "" || event.ContentType == "" {
		writeError(w, http.StatusBadRequest, "event and content_type are required")
		return
	}

	if err := s.contentEvents.Handle(r.Context(), event); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "unknown event")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to invalidate directory cache")
		return
	}

	writeJSON(w, http.StatusAccepted, StatusResponse{Status: "accepted"})
}

// Cache administration

// handleCacheVersions godoc
// @Summary      List cache versions
// @Tags         Cache
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/admin/cache/versions [get]
func (s *Server) handleCacheVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.cacheAdmin.Versions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read cache versions")
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// handleCacheBump godoc
// @Summary      Invalidate a directory
// @Description  Bumps the cache version of one content type
// @Tags         Cache
// @Produce      json
// @Security     BearerAuth
// @Param        type  path      string  true  "Content type"
// @Success      200   {object}  BumpResponse
// @Failure      404   {object}  ErrorResponse  "Unknown content type"
// @Router       /api/v1/admin/cache/{type}/bump [post]
func (s *Server) handleCacheBump(w http.ResponseWriter, r *http.Request) {
	contentType := domain.ContentType(r.PathValue("type"))

	version, err := s.cacheAdmin.Bump(r.Context(), contentType)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownContentType) {
			writeError(w, http.StatusNotFound, "unknown directory")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to bump cache version")
		return
	}
	writeJSON(w, http.StatusOK, BumpResponse{ContentType: contentType, Version: version})
}

// handleCacheFlush godoc
// @Summary      Flush cached listings
// @Description  Deletes stored entries of one content type, or of every directory when no type is given, and bumps their versions
// @Tags         Cache
// @Produce      json
// @Security     BearerAuth
// @Param        type  path      string  false  "Content type"
// @Success      200   {object}  domain.FlushResult
// @Failure      404   {object}  ErrorResponse  "Unknown content type"
// @Failure      409   {object}  ErrorResponse  "Flush already in progress"
// @Router       /api/v1/admin/cache/{type} [delete]
func (s *Server) handleCacheFlush(w http.ResponseWriter, r *http.Request) {
	contentType := domain.ContentType(r.PathValue("type"))

	result, err := s.cacheAdmin.Flush(r.Context(), contentType)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownContentType):
			writeError(w, http.StatusNotFound, "unknown directory")
		case errors.Is(err, domain.ErrFlushInProgress):
			writeError(w, http.StatusConflict, "cache flush already in progress")
		default:
			writeError(w, http.StatusInternalServerError, "failed to flush cache")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCacheSweep godoc
// @Summary      Remove expired entries
// @Tags         Cache
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SweepResponse
// @Router       /api/v1/admin/cache/sweep [post]
func (s *Server) handleCacheSweep(w http.ResponseWriter, r *http.Request) {
	removed, err := s.cacheAdmin.Sweep(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sweep cache")
		return
	}
	writeJSON(w, http.StatusOK, SweepResponse{Removed: removed})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
