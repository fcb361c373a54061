package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/internal/downloads"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
)

type stubDownloadsService struct {
	input downloads.RequestInput
	err   error
}

func (s *stubDownloadsService) RequestFree(_ context.Context, input downloads.RequestInput) (*downloads.GrantDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.input = input
	return &downloads.GrantDTO{
		DownloadURL: "https://signed.example.com/free.jpg",
		ExpiresAt:   time.Now().UTC().Add(time.Hour),
		EmailQueued: true,
	}, nil
}

func TestRequestDownload(t *testing.T) {
	stub := &stubDownloadsService{}
	id := uuid.New()

	body := strings.NewReader(`{"wallpaper_id":"` + id.String() + `","email":"reader@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/downloads", body)
	rec := httptest.NewRecorder()
	RequestDownload(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.input.WallpaperID != id || stub.input.Email != "reader@example.com" {
		t.Fatalf("input not forwarded: %+v", stub.input)
	}
}

func TestRequestDownloadValidation(t *testing.T) {
	stub := &stubDownloadsService{}
	cases := []string{
		`{"email":"reader@example.com"}`,
		`{"wallpaper_id":"not-a-uuid","email":"reader@example.com"}`,
		`{"wallpaper_id":"` + uuid.NewString() + `"}`,
		`{"wallpaper_id":"` + uuid.NewString() + `","email":"bad"}`,
	}
	for _, payload := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/downloads", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		RequestDownload(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestRequestDownloadPaidWallpaper(t *testing.T) {
	stub := &stubDownloadsService{err: pkgerrors.New(pkgerrors.CodeForbidden, "wallpaper requires purchase")}
	body := strings.NewReader(`{"wallpaper_id":"` + uuid.NewString() + `","email":"reader@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/downloads", body)
	rec := httptest.NewRecorder()
	RequestDownload(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
