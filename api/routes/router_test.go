package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/internal/catalog"
	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return false, nil }
func (stubSessions) Rotate(context.Context, string, string) (string, string, error) {
	return "", "", nil
}
func (stubSessions) Revoke(context.Context, string) error { return nil }

type stubCatalog struct {
	catalog.Service
}

func (stubCatalog) List(context.Context, catalog.ListInput) ([]catalog.WallpaperDTO, error) {
	return []catalog.WallpaperDTO{}, nil
}

func (stubCatalog) Get(_ context.Context, id uuid.UUID) (*catalog.WallpaperDTO, error) {
	return &catalog.WallpaperDTO{ID: id}, nil
}

func newTestRouter() http.Handler {
	return newTestRouterForEnv("test")
}

func newTestRouterForEnv(env string) http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = env
	cfg.JWT = config.JWTConfig{Secret: "router-secret", Issuer: "pulppixels-test", ExpirationMinutes: 10}

	return NewRouter(RouterParams{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard}),
		Sessions: stubSessions{},
		Catalog:  stubCatalog{},
	})
}

func TestRouterPublicRoutes(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/api/v1/wallpapers", http.StatusOK},
		{http.MethodGet, "/api/v1/wallpapers/" + uuid.NewString(), http.StatusOK},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.target, tc.want, rec.Code)
		}
	}
}

func TestRouterAdminRoutesRequireAuth(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/admin/v1/wallpapers"},
		{http.MethodPost, "/api/admin/v1/wallpapers"},
		{http.MethodDelete, "/api/admin/v1/wallpapers/" + uuid.NewString()},
		{http.MethodPost, "/api/admin/v1/diagnostics/email"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.target, rec.Code)
		}
	}
}

func TestRouterDiagnosticsAbsentInProd(t *testing.T) {
	router := newTestRouterForEnv(config.AppEnvProd)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/diagnostics/email", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 in prod, got %d", rec.Code)
	}
}

func TestRouterHealthReadyWithoutDependencies(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when no dependencies are wired, got %d", rec.Code)
	}
}
