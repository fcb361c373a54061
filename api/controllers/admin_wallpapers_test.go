package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/api/middleware"
	"github.com/pulppixels/pulppixels-backend/internal/catalog"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

type adminCatalogStub struct {
	stubCatalogService

	createAdminID uuid.UUID
	createInput   catalog.CreateWallpaperInput
	createImage   []byte
	updateID      uuid.UUID
	updateInput   catalog.UpdateWallpaperInput
}

func (s *adminCatalogStub) ListAdmin(_ context.Context) ([]catalog.AdminWallpaperDTO, error) {
	return []catalog.AdminWallpaperDTO{}, nil
}

func (s *adminCatalogStub) Create(_ context.Context, adminID uuid.UUID, input catalog.CreateWallpaperInput) (*catalog.AdminWallpaperDTO, error) {
	s.createAdminID = adminID
	s.createInput = input
	if input.Image != nil {
		data, err := io.ReadAll(input.Image)
		if err != nil {
			return nil, err
		}
		s.createImage = data
	}
	dto := &catalog.AdminWallpaperDTO{}
	dto.ID = uuid.New()
	dto.Title = input.Title
	return dto, nil
}

func (s *adminCatalogStub) Update(_ context.Context, id uuid.UUID, input catalog.UpdateWallpaperInput) (*catalog.AdminWallpaperDTO, error) {
	s.updateID = id
	s.updateInput = input
	dto := &catalog.AdminWallpaperDTO{}
	dto.ID = id
	return dto, nil
}

func buildUploadForm(t *testing.T, fields map[string]string, imageName string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestAdminCreateWallpaper(t *testing.T) {
	stub := &adminCatalogStub{}
	adminID := uuid.New()
	imageBytes := []byte("fake-jpeg-bytes")

	body, contentType := buildUploadForm(t, map[string]string{
		"title":       "Dune Sunset",
		"description": "Warm gradient over sand",
		"price":       "199",
		"category":    "desktop",
		"tags":        "warm, gradient",
		"is_featured": "true",
	}, "dune.jpg", imageBytes)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/wallpapers", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(middleware.WithUserID(req.Context(), adminID.String()))
	rec := httptest.NewRecorder()
	AdminCreateWallpaper(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.createAdminID != adminID {
		t.Fatal("admin id not forwarded")
	}
	in := stub.createInput
	if in.Title != "Dune Sunset" || in.Price != 199 || in.Category != enums.WallpaperCategoryDesktop {
		t.Fatalf("form fields not forwarded: %+v", in)
	}
	if !in.IsFeatured || len(in.Tags) != 2 {
		t.Fatalf("optional fields not forwarded: %+v", in)
	}
	if in.Filename != "dune.jpg" {
		t.Fatalf("unexpected filename %q", in.Filename)
	}
	if !bytes.Equal(stub.createImage, imageBytes) {
		t.Fatal("image bytes not forwarded")
	}
}

func TestAdminCreateWallpaperRejections(t *testing.T) {
	adminID := uuid.New()

	cases := []struct {
		name   string
		fields map[string]string
		image  string
	}{
		{"missing title", map[string]string{"price": "0", "category": "mobile"}, "a.jpg"},
		{"bad category", map[string]string{"title": "X", "price": "0", "category": "tablet"}, "a.jpg"},
		{"bad price", map[string]string{"title": "X", "price": "abc", "category": "mobile"}, "a.jpg"},
		{"missing image", map[string]string{"title": "X", "price": "0", "category": "mobile"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &adminCatalogStub{}
			body, contentType := buildUploadForm(t, tc.fields, tc.image, []byte("img"))
			req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/wallpapers", body)
			req.Header.Set("Content-Type", contentType)
			req = req.WithContext(middleware.WithUserID(req.Context(), adminID.String()))
			rec := httptest.NewRecorder()
			AdminCreateWallpaper(stub, testLogger()).ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestAdminCreateWallpaperMissingUserContext(t *testing.T) {
	stub := &adminCatalogStub{}
	body, contentType := buildUploadForm(t, map[string]string{"title": "X", "category": "mobile"}, "a.jpg", []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/wallpapers", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	AdminCreateWallpaper(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminUpdateWallpaper(t *testing.T) {
	stub := &adminCatalogStub{}
	id := uuid.New()

	body := strings.NewReader(`{"price":0,"is_featured":false,"category":"mobile"}`)
	req := withWallpaperID(httptest.NewRequest(http.MethodPatch, "/api/admin/v1/wallpapers/"+id.String(), body), id.String())
	rec := httptest.NewRecorder()
	AdminUpdateWallpaper(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.updateID != id {
		t.Fatal("wallpaper id not forwarded")
	}
	if stub.updateInput.Price == nil || *stub.updateInput.Price != 0 {
		t.Fatal("zero price must survive as an explicit update")
	}
	if stub.updateInput.Category == nil || *stub.updateInput.Category != enums.WallpaperCategoryMobile {
		t.Fatal("category not parsed")
	}
}

func TestAdminDeleteWallpaper(t *testing.T) {
	stub := &adminCatalogStub{}
	id := uuid.New()

	req := withWallpaperID(httptest.NewRequest(http.MethodDelete, "/api/admin/v1/wallpapers/"+id.String(), nil), id.String())
	rec := httptest.NewRecorder()
	AdminDeleteWallpaper(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(stub.deleted) != 1 || stub.deleted[0] != id {
		t.Fatalf("delete not forwarded: %v", stub.deleted)
	}
}
