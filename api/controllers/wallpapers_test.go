package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/internal/catalog"
	"github.com/pulppixels/pulppixels-backend/internal/ratings"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

type stubCatalogService struct {
	catalog.Service

	listInput   catalog.ListInput
	listResult  []catalog.WallpaperDTO
	getErr      error
	deleted     []uuid.UUID
	searchQuery string
}

func (s *stubCatalogService) List(_ context.Context, input catalog.ListInput) ([]catalog.WallpaperDTO, error) {
	s.listInput = input
	return s.listResult, nil
}

func (s *stubCatalogService) Get(_ context.Context, id uuid.UUID) (*catalog.WallpaperDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &catalog.WallpaperDTO{ID: id, Title: "Crimson Aurora"}, nil
}

func (s *stubCatalogService) Search(_ context.Context, query string) ([]catalog.WallpaperDTO, error) {
	s.searchQuery = query
	return s.listResult, nil
}

func (s *stubCatalogService) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubRatingsService struct {
	lastID    uuid.UUID
	lastInput ratings.RateInput
	err       error
}

func (s *stubRatingsService) Rate(_ context.Context, id uuid.UUID, input ratings.RateInput) (*ratings.SummaryDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastID = id
	s.lastInput = input
	return &ratings.SummaryDTO{WallpaperID: id, AverageRating: 4.5, TotalRatings: 2}, nil
}

func (s *stubRatingsService) Summary(_ context.Context, id uuid.UUID) (*ratings.SummaryDTO, error) {
	return &ratings.SummaryDTO{WallpaperID: id}, nil
}

func withWallpaperID(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("wallpaperId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestListWallpapersFilters(t *testing.T) {
	stub := &stubCatalogService{listResult: []catalog.WallpaperDTO{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallpapers?category=mobile&free=true&limit=10&sort=price-low", nil)
	rec := httptest.NewRecorder()
	ListWallpapers(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.listInput.Category == nil || *stub.listInput.Category != "mobile" {
		t.Fatalf("category filter not forwarded: %+v", stub.listInput)
	}
	if !stub.listInput.FreeOnly || stub.listInput.Limit != 10 {
		t.Fatalf("filters not forwarded: %+v", stub.listInput)
	}
	if stub.listInput.Sort != "price-low" {
		t.Fatalf("sort not forwarded: %+v", stub.listInput)
	}
}

func TestListWallpapersRejectsBadFilters(t *testing.T) {
	stub := &stubCatalogService{}
	cases := []string{
		"/api/v1/wallpapers?category=vertical",
		"/api/v1/wallpapers?limit=0",
		"/api/v1/wallpapers?limit=9999",
		"/api/v1/wallpapers?free=maybe",
	}
	for _, target := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		ListWallpapers(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestGetWallpaper(t *testing.T) {
	stub := &stubCatalogService{}
	id := uuid.New()

	req := withWallpaperID(httptest.NewRequest(http.MethodGet, "/api/v1/wallpapers/"+id.String(), nil), id.String())
	rec := httptest.NewRecorder()
	GetWallpaper(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["title"] != "Crimson Aurora" {
		t.Fatalf("unexpected payload %v", data)
	}
}

func TestGetWallpaperNotFound(t *testing.T) {
	stub := &stubCatalogService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "wallpaper not found")}
	id := uuid.New()

	req := withWallpaperID(httptest.NewRequest(http.MethodGet, "/api/v1/wallpapers/"+id.String(), nil), id.String())
	rec := httptest.NewRecorder()
	GetWallpaper(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetWallpaperInvalidID(t *testing.T) {
	req := withWallpaperID(httptest.NewRequest(http.MethodGet, "/api/v1/wallpapers/nope", nil), "nope")
	rec := httptest.NewRecorder()
	GetWallpaper(&stubCatalogService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRateWallpaper(t *testing.T) {
	stub := &stubRatingsService{}
	id := uuid.New()

	body := strings.NewReader(`{"stars":5,"fingerprint":"device-1"}`)
	req := withWallpaperID(httptest.NewRequest(http.MethodPost, "/api/v1/wallpapers/"+id.String()+"/ratings", body), id.String())
	rec := httptest.NewRecorder()
	RateWallpaper(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.lastID != id || stub.lastInput.Stars != 5 || stub.lastInput.Fingerprint != "device-1" {
		t.Fatalf("input not forwarded: %+v", stub.lastInput)
	}
}

func TestRateWallpaperValidation(t *testing.T) {
	stub := &stubRatingsService{}
	id := uuid.New()

	cases := []string{
		`{"stars":0,"fingerprint":"device-1"}`,
		`{"stars":6,"fingerprint":"device-1"}`,
		`{"stars":3}`,
		`{"stars":3,"fingerprint":"device-1","extra":true}`,
	}
	for _, payload := range cases {
		req := withWallpaperID(httptest.NewRequest(http.MethodPost, "/api/v1/wallpapers/"+id.String()+"/ratings", strings.NewReader(payload)), id.String())
		rec := httptest.NewRecorder()
		RateWallpaper(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestRateWallpaperConflict(t *testing.T) {
	stub := &stubRatingsService{err: pkgerrors.New(pkgerrors.CodeConflict, "wallpaper already rated from this device")}
	id := uuid.New()

	body := strings.NewReader(`{"stars":4,"fingerprint":"device-1"}`)
	req := withWallpaperID(httptest.NewRequest(http.MethodPost, "/api/v1/wallpapers/"+id.String()+"/ratings", body), id.String())
	rec := httptest.NewRecorder()
	RateWallpaper(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestSearchWallpapersForwardsQuery(t *testing.T) {
	stub := &stubCatalogService{listResult: []catalog.WallpaperDTO{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=free+mobile", nil)
	rec := httptest.NewRecorder()
	SearchWallpapers(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.searchQuery != "free mobile" {
		t.Fatalf("query not forwarded, got %q", stub.searchQuery)
	}
}
