package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	_ "github.com/custodia-labs/sercha-directory/docs"
	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// Mock services for testing

type mockAuthService struct {
	validateTokenFn func(ctx context.Context, token string) (*domain.AuthContext, error)
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(ctx, token)
	}
	switch token {
	case "admin-token":
		return &domain.AuthContext{Subject: "ops", Role: domain.RoleAdmin}, nil
	case "publisher-token":
		return &domain.AuthContext{Subject: "cms", Role: domain.RolePublisher}, nil
	case "expired-token":
		return nil, domain.ErrTokenExpired
	}
	return nil, domain.ErrTokenInvalid
}

func (m *mockAuthService) IssueToken(ctx context.Context, subject string, role domain.Role, ttl time.Duration) (string, error) {
	return "", errors.New("not implemented")
}

type mockDirectoryService struct {
	renderFn func(ctx context.Context, ct domain.ContentType, attrs domain.DirectoryAttributes, params url.Values) (*domain.RenderResult, error)

	lastAttrs  domain.DirectoryAttributes
	lastParams url.Values
}

func (m *mockDirectoryService) Render(ctx context.Context, ct domain.ContentType, attrs domain.DirectoryAttributes, params url.Values) (*domain.RenderResult, error) {
	m.lastAttrs = attrs
	m.lastParams = params
	if m.renderFn != nil {
		return m.renderFn(ctx, ct, attrs, params)
	}
	if ct != domain.ContentTypeArtist {
		return nil, domain.ErrUnknownContentType
	}
	return &domain.RenderResult{
		ContentType:  ct,
		HTML:         `<div class="directory">ok</div>`,
		CanonicalURL: "/artists/?letter=B",
		Total:        3,
		TotalPages:   1,
		Status:       domain.RenderStatusOK,
	}, nil
}

func (m *mockDirectoryService) Profile(ct domain.ContentType) (domain.DirectoryProfile, error) {
	p, ok := domain.DefaultProfiles()[ct]
	if !ok {
		return domain.DirectoryProfile{}, domain.ErrUnknownContentType
	}
	return p, nil
}

func (m *mockDirectoryService) Profiles() []domain.DirectoryProfile {
	profiles := domain.DefaultProfiles()
	return []domain.DirectoryProfile{profiles[domain.ContentTypeArtist], profiles[domain.ContentTypeOrganization]}
}

type mockContentEvents struct {
	handleFn func(ctx context.Context, event domain.ContentEvent) error
	events   []domain.ContentEvent
}

func (m *mockContentEvents) OnSave(ctx context.Context, ct domain.ContentType, id string) error {
	return m.Handle(ctx, domain.ContentEvent{Kind: domain.EventSave, ContentType: ct, ItemID: id})
}

func (m *mockContentEvents) OnStatusChange(ctx context.Context, ct domain.ContentType, id, oldStatus, newStatus string) error {
	return m.Handle(ctx, domain.ContentEvent{Kind: domain.EventStatusChange, ContentType: ct, ItemID: id, OldStatus: oldStatus, NewStatus: newStatus})
}

func (m *mockContentEvents) OnTermsChanged(ctx context.Context, ct domain.ContentType, id, taxonomy string) error {
	return m.Handle(ctx, domain.ContentEvent{Kind: domain.EventTermsChanged, ContentType: ct, ItemID: id, Taxonomy: taxonomy})
}

func (m *mockContentEvents) OnAttributeChanged(ctx context.Context, ct domain.ContentType, id, key string) error {
	return m.Handle(ctx, domain.ContentEvent{Kind: domain.EventAttributeChanged, ContentType: ct, ItemID: id, Key: key})
}

func (m *mockContentEvents) OnDelete(ctx context.Context, ct domain.ContentType, id string) error {
	return m.Handle(ctx, domain.ContentEvent{Kind: domain.EventDelete, ContentType: ct, ItemID: id})
}

func (m *mockContentEvents) Handle(ctx context.Context, event domain.ContentEvent) error {
	m.events = append(m.events, event)
	if m.handleFn != nil {
		return m.handleFn(ctx, event)
	}
	return nil
}

type mockCacheAdmin struct {
	flushFn func(ctx context.Context, ct domain.ContentType) (*domain.FlushResult, error)
	bumpFn  func(ctx context.Context, ct domain.ContentType) (int64, error)
	sweepFn func(ctx context.Context) (int, error)
}

func (m *mockCacheAdmin) Versions(ctx context.Context) (map[domain.ContentType]int64, error) {
	return map[domain.ContentType]int64{domain.ContentTypeArtist: 4, domain.ContentTypeOrganization: 1}, nil
}

func (m *mockCacheAdmin) Bump(ctx context.Context, ct domain.ContentType) (int64, error) {
	if m.bumpFn != nil {
		return m.bumpFn(ctx, ct)
	}
	return 5, nil
}

func (m *mockCacheAdmin) Flush(ctx context.Context, ct domain.ContentType) (*domain.FlushResult, error) {
	if m.flushFn != nil {
		return m.flushFn(ctx, ct)
	}
	return &domain.FlushResult{Deleted: 3, Versions: map[domain.ContentType]int64{ct: 2}}, nil
}

func (m *mockCacheAdmin) Sweep(ctx context.Context) (int, error) {
	if m.sweepFn != nil {
		return m.sweepFn(ctx)
	}
	return 0, nil
}

func (m *mockCacheAdmin) Ping(ctx context.Context) error {
	return nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	*Server
	directory *mockDirectoryService
	events    *mockContentEvents
	admin     *mockCacheAdmin
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		directory: &mockDirectoryService{},
		events:    &mockContentEvents{},
		admin:     &mockCacheAdmin{},
	}
	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	cfg.RateLimit = 0
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	ts.Server = NewServer(cfg, Services{
		Auth:       &mockAuthService{},
		Directory:  ts.directory,
		Events:     ts.events,
		CacheAdmin: ts.admin,
	}, nil)
	return ts
}

func (ts *testServer) do(method, target, token string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealthHandler(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("GET", "/health", "", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	var response StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", response.Status)
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
}

func TestReadyHandler(t *testing.T) {
	server := &Server{dependencies: map[string]Pinger{
		"cache":   pingerFunc(func(ctx context.Context) error { return nil }),
		"content": pingerFunc(func(ctx context.Context) error { return nil }),
	}}

	rr := httptest.NewRecorder()
	server.handleReady(rr, httptest.NewRequest("GET", "/ready", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	var response ReadinessResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "ready" {
		t.Errorf("expected status 'ready', got %s", response.Status)
	}
	if response.Components["cache"].Status != "healthy" {
		t.Errorf("expected cache component to be healthy")
	}
}

func TestReadyHandler_DependencyDown(t *testing.T) {
	server := &Server{dependencies: map[string]Pinger{
		"cache":   pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
		"content": pingerFunc(func(ctx context.Context) error { return nil }),
	}}

	rr := httptest.NewRecorder()
	server.handleReady(rr, httptest.NewRequest("GET", "/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
	var response ReadinessResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Components["cache"].Status != "unhealthy" {
		t.Errorf("expected cache component to be unhealthy")
	}
	if response.Components["cache"].Error != "connection refused" {
		t.Errorf("expected ping error to be reported, got %q", response.Components["cache"].Error)
	}
	if response.Components["content"].Status != "healthy" {
		t.Errorf("expected content component to be healthy")
	}
}

func TestVersionHandler(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("GET", "/version", "", nil)

	var response VersionResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Version != "1.2.3" {
		t.Errorf("expected version '1.2.3', got %s", response.Version)
	}
}

func TestSwaggerDoc(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("GET", "/swagger/doc.json", "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("swagger doc is not valid JSON: %v", err)
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/directory/{type}"]; !ok {
		t.Error("expected directory route in swagger doc")
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"foo": "bar"})

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "invalid input")

	var response ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Error != "invalid input" {
		t.Errorf("expected error 'invalid input', got %s", response.Error)
	}
}

// Directory endpoints

func TestHandleDirectory_HTML(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("GET", "/directory/artist?letter=B&search=jazz", "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", got)
	}
	if got := rr.Header().Get("Link"); got != `</artists/?letter=B>; rel="canonical"` {
		t.Errorf("unexpected Link header %q", got)
	}
	if !strings.Contains(rr.Body.String(), `class="directory"`) {
		t.Errorf("expected directory fragment, got %s", rr.Body.String())
	}
	if ts.directory.lastParams.Get("search") != "jazz" {
		t.Errorf("expected query params to reach the service")
	}
	if len(ts.directory.lastAttrs.RouteVars) != 0 {
		t.Errorf("expected no route vars, got %v", ts.directory.lastAttrs.RouteVars)
	}
	if got := ts.directory.lastAttrs.BasePath; got != "/directory/artist" {
		t.Errorf("expected links based on the served path, got %q", got)
	}
}

func TestHandleDirectory_RouteVars(t *testing.T) {
	ts := newTestServer(t)

	ts.do("GET", "/directory/artist/letter/c", "", nil)
	if got := ts.directory.lastAttrs.RouteVars["letter"]; got != "c" {
		t.Errorf("expected letter route var 'c', got %q", got)
	}

	ts.do("GET", "/directory/artist/page/3", "", nil)
	if got := ts.directory.lastAttrs.RouteVars["paged"]; got != "3" {
		t.Errorf("expected paged route var '3', got %q", got)
	}
}

func TestHandleDirectory_UnknownType(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("GET", "/directory/venue", "", nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleDirectory_Unavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.directory.renderFn = func(ctx context.Context, ct domain.ContentType, attrs domain.DirectoryAttributes, params url.Values) (*domain.RenderResult, error) {
		return &domain.RenderResult{
			ContentType:  ct,
			HTML:         `<p class="directory-notice">Unable to load artists</p>`,
			CanonicalURL: "/artists/",
			Status:       domain.RenderStatusUnavailable,
		}, nil
	}

	rr := ts.do("GET", "/directory/artist", "", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected unavailable listing not to be cached downstream")
	}
	if !strings.Contains(rr.Body.String(), "Unable to load artists") {
		t.Errorf("expected notice in body")
	}
}

func TestHandleDirectory_RenderError(t *testing.T) {
	ts := newTestServer(t)
	ts.directory.renderFn = func(ctx context.Context, ct domain.ContentType, attrs domain.DirectoryAttributes, params url.Values) (*domain.RenderResult, error) {
		return nil, errors.New("template exploded")
	}

	rr := ts.do("GET", "/directory/artist", "", nil)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestHandleDirectoryJSON(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("GET", "/api/v1/directories/artist", "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var result domain.RenderResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Total != 3 || result.Status != domain.RenderStatusOK {
		t.Errorf("unexpected result %+v", result)
	}
	if result.CanonicalURL != "/artists/?letter=B" {
		t.Errorf("unexpected canonical url %q", result.CanonicalURL)
	}
	if got := ts.directory.lastAttrs.BasePath; got != "" {
		t.Errorf("expected the profile base path to apply, got %q", got)
	}
}

func TestHandleListDirectories(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("GET", "/api/v1/directories", "", nil)

	var profiles []domain.DirectoryProfile
	if err := json.NewDecoder(rr.Body).Decode(&profiles); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(profiles) != 2 || profiles[0].ContentType != domain.ContentTypeArtist {
		t.Errorf("unexpected profiles %+v", profiles)
	}
}

// Content events

func TestHandleContentEvent(t *testing.T) {
	ts := newTestServer(t)
	body := []byte(`{"event":"save","content_type":"artist","id":"42"}`)

	rr := ts.do("POST", "/api/v1/events", "publisher-token", body)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(ts.events.events) != 1 {
		t.Fatalf("expected one event, got %d", len(ts.events.events))
	}
	got := ts.events.events[0]
	if got.Kind != domain.EventSave || got.ContentType != domain.ContentTypeArtist || got.ItemID != "42" {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestHandleContentEvent_Auth(t *testing.T) {
	ts := newTestServer(t)
	body := []byte(`{"event":"delete","content_type":"artist","id":"1"}`)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"invalid token", "garbage", http.StatusUnauthorized},
		{"expired token", "expired-token", http.StatusUnauthorized},
		{"admin", "admin-token", http.StatusAccepted},
		{"publisher", "publisher-token", http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do("POST", "/api/v1/events", tt.token, body)
			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}
		})
	}
}

func TestHandleContentEvent_InvalidBody(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"event":`},
		{"missing kind", `{"content_type":"artist","id":"1"}`},
		{"missing type", `{"event":"save","id":"1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do("POST", "/api/v1/events", "publisher-token", []byte(tt.body))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rr.Code)
			}
		})
	}
}

func TestHandleContentEvent_ServiceErrors(t *testing.T) {
	ts := newTestServer(t)
	body := []byte(`{"event":"rename","content_type":"artist","id":"1"}`)

	ts.events.handleFn = func(ctx context.Context, event domain.ContentEvent) error {
		return domain.ErrInvalidInput
	}
	if rr := ts.do("POST", "/api/v1/events", "admin-token", body); rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for unknown event, got %d", rr.Code)
	}

	ts.events.handleFn = func(ctx context.Context, event domain.ContentEvent) error {
		return errors.New("redis down")
	}
	if rr := ts.do("POST", "/api/v1/events", "admin-token", body); rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500 when the bump fails, got %d", rr.Code)
	}
}

// Cache administration

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	ts := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/admin/cache/versions"},
		{"POST", "/api/v1/admin/cache/artist/bump"},
		{"DELETE", "/api/v1/admin/cache"},
		{"DELETE", "/api/v1/admin/cache/artist"},
		{"POST", "/api/v1/admin/cache/sweep"},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			if rr := ts.do(route.method, route.path, "", nil); rr.Code != http.StatusUnauthorized {
				t.Errorf("expected 401 without token, got %d", rr.Code)
			}
			if rr := ts.do(route.method, route.path, "publisher-token", nil); rr.Code != http.StatusForbidden {
				t.Errorf("expected 403 for publisher, got %d", rr.Code)
			}
			if rr := ts.do(route.method, route.path, "admin-token", nil); rr.Code != http.StatusOK {
				t.Errorf("expected 200 for admin, got %d", rr.Code)
			}
		})
	}
}

func TestHandleCacheVersions(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("GET", "/api/v1/admin/cache/versions", "admin-token", nil)

	var versions map[string]int64
	if err := json.NewDecoder(rr.Body).Decode(&versions); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if versions["artist"] != 4 || versions["organization"] != 1 {
		t.Errorf("unexpected versions %v", versions)
	}
}

func TestHandleCacheBump(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("POST", "/api/v1/admin/cache/artist/bump", "admin-token", nil)

	var response BumpResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ContentType != domain.ContentTypeArtist || response.Version != 5 {
		t.Errorf("unexpected response %+v", response)
	}

	ts.admin.bumpFn = func(ctx context.Context, ct domain.ContentType) (int64, error) {
		return 0, domain.ErrUnknownContentType
	}
	if rr := ts.do("POST", "/api/v1/admin/cache/venue/bump", "admin-token", nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleCacheFlush(t *testing.T) {
	ts := newTestServer(t)
	var flushed []domain.ContentType
	ts.admin.flushFn = func(ctx context.Context, ct domain.ContentType) (*domain.FlushResult, error) {
		flushed = append(flushed, ct)
		return &domain.FlushResult{Deleted: 7}, nil
	}

	ts.do("DELETE", "/api/v1/admin/cache", "admin-token", nil)
	ts.do("DELETE", "/api/v1/admin/cache/organization", "admin-token", nil)

	if len(flushed) != 2 || flushed[0] != "" || flushed[1] != domain.ContentTypeOrganization {
		t.Errorf("unexpected flush targets %v", flushed)
	}
}

func TestHandleCacheFlush_Errors(t *testing.T) {
	ts := newTestServer(t)

	ts.admin.flushFn = func(ctx context.Context, ct domain.ContentType) (*domain.FlushResult, error) {
		return nil, domain.ErrFlushInProgress
	}
	if rr := ts.do("DELETE", "/api/v1/admin/cache", "admin-token", nil); rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}

	ts.admin.flushFn = func(ctx context.Context, ct domain.ContentType) (*domain.FlushResult, error) {
		return nil, domain.ErrUnknownContentType
	}
	if rr := ts.do("DELETE", "/api/v1/admin/cache/venue", "admin-token", nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleCacheSweep(t *testing.T) {
	ts := newTestServer(t)
	ts.admin.sweepFn = func(ctx context.Context) (int, error) { return 12, nil }

	rr := ts.do("POST", "/api/v1/admin/cache/sweep", "admin-token", nil)

	var response SweepResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Removed != 12 {
		t.Errorf("expected 12 removed, got %d", response.Removed)
	}
}
