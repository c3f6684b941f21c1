package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sweethomes/internal/gallery"
	"sweethomes/internal/gallery/service"
	"sweethomes/internal/sessions/auth"
	apperrors "sweethomes/pkg/errors"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockGalleryService struct {
	listFunc        func(ctx context.Context) ([]model.RenderedImage, error)
	uploadFunc      func(ctx context.Context, token string, files []service.Upload, caption string) (*model.BatchResult, error)
	deleteFunc      func(ctx context.Context, token, imageURL string, confirm bool) (string, error)
	batchDeleteFunc func(ctx context.Context, token string, selection *gallery.Selection, confirm bool) (*model.BatchResult, error)
}

func (m *mockGalleryService) List(ctx context.Context) ([]model.RenderedImage, error) {
	return m.listFunc(ctx)
}

func (m *mockGalleryService) Upload(ctx context.Context, token string, files []service.Upload, caption string) (*model.BatchResult, error) {
	return m.uploadFunc(ctx, token, files, caption)
}

func (m *mockGalleryService) Delete(ctx context.Context, token, imageURL string, confirm bool) (string, error) {
	return m.deleteFunc(ctx, token, imageURL, confirm)
}

func (m *mockGalleryService) BatchDelete(ctx context.Context, token string, selection *gallery.Selection, confirm bool) (*model.BatchResult, error) {
	return m.batchDeleteFunc(ctx, token, selection, confirm)
}

type sessionGuard struct {
	session *model.Session
}

func (g sessionGuard) Require(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if g.session == nil {
			_ = apperrors.WriteError(w, apperrors.Unauthorized("Please log in"))
			return
		}
		next(w, r.WithContext(auth.WithSession(r.Context(), g.session)), ps)
	}
}

func newRouter(svc service.GalleryService, session *model.Session) *httprouter.Router {
	router := httprouter.New()
	NewGalleryHandler(svc, sessionGuard{session: session}, 1<<20, logger.Discard()).RegisterRoutes(router)
	return router
}

func loggedIn() *model.Session {
	return &model.Session{ID: "s1", Token: "tok"}
}

func TestList_RequiresSession(t *testing.T) {
	svc := &mockGalleryService{listFunc: func(ctx context.Context) ([]model.RenderedImage, error) {
		t.Error("service should not be called without a session")
		return nil, nil
	}}

	rec := httptest.NewRecorder()
	newRouter(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/gallery", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestList(t *testing.T) {
	svc := &mockGalleryService{listFunc: func(ctx context.Context) ([]model.RenderedImage, error) {
		return []model.RenderedImage{{URL: "u1", DisplayURL: "u1"}}, nil
	}}

	rec := httptest.NewRecorder()
	newRouter(svc, loggedIn()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/gallery", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data GalleryResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Data.Count != 1 || resp.Data.Selection.Enabled {
		t.Errorf("unexpected response %+v", resp.Data)
	}
	if resp.Data.Selection.Label != "Delete Selected" {
		t.Errorf("unexpected label %q", resp.Data.Selection.Label)
	}
}

func multipartBody(t *testing.T, caption string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, content := range files {
		part, err := mw.CreateFormFile(filesField, name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	if caption != "" {
		_ = mw.WriteField(captionField, caption)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	svc := &mockGalleryService{uploadFunc: func(ctx context.Context, token string, files []service.Upload, caption string) (*model.BatchResult, error) {
		if token != "tok" {
			t.Errorf("unexpected token %q", token)
		}
		if caption != "Garden" {
			t.Errorf("unexpected caption %q", caption)
		}
		if len(files) != 1 || files[0].Name != "a.jpg" {
			t.Fatalf("unexpected files %+v", files)
		}
		rc, err := files[0].Open()
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		if string(data) != "jpeg-bytes" {
			t.Errorf("unexpected content %q", data)
		}
		result := model.NewBatchResult(1)
		result.Succeed()
		result.Summarize("Uploaded", "images")
		return result, nil
	}}

	body, contentType := multipartBody(t, "Garden", map[string]string{"a.jpg": "jpeg-bytes"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/gallery", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newRouter(svc, loggedIn()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Uploaded 1 of 1 images") {
		t.Errorf("expected summary in body, got %s", rec.Body.String())
	}
}

func TestUpload_NoFiles(t *testing.T) {
	svc := &mockGalleryService{uploadFunc: func(ctx context.Context, token string, files []service.Upload, caption string) (*model.BatchResult, error) {
		t.Error("service should not be called without files")
		return nil, nil
	}}

	body, contentType := multipartBody(t, "Garden", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/gallery", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newRouter(svc, loggedIn()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDelete_PassesConfirmFlag(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"confirmed", "?url=u1&confirm=true", http.StatusOK},
		{"unconfirmed", "?url=u1", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockGalleryService{deleteFunc: func(ctx context.Context, token, imageURL string, confirm bool) (string, error) {
				if imageURL != "u1" {
					t.Errorf("unexpected url %q", imageURL)
				}
				if !confirm {
					return "", apperrors.ConfirmationRequired("Deleting an image")
				}
				return "Image deleted", nil
			}}

			rec := httptest.NewRecorder()
			newRouter(svc, loggedIn()).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/gallery"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestBatchDelete_ReportsRemainingSelection(t *testing.T) {
	svc := &mockGalleryService{batchDeleteFunc: func(ctx context.Context, token string, selection *gallery.Selection, confirm bool) (*model.BatchResult, error) {
		if !confirm {
			t.Error("expected confirm flag")
		}
		result := model.NewBatchResult(selection.Len())
		selection.Remove("u1")
		result.Succeed()
		result.Fail("u2", "Image not found")
		result.Summarize("Deleted", "images")
		return result, nil
	}}

	body := `{"urls":["u1","u2","u1"],"confirm":true}`
	rec := httptest.NewRecorder()
	newRouter(svc, loggedIn()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/gallery/batch-delete", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			Message   string                 `json:"message"`
			Selection gallery.SelectionState `json:"selection"`
			Remaining []string               `json:"remaining"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Data.Message != "Deleted 1 of 2 images" {
		t.Errorf("unexpected message %q", resp.Data.Message)
	}
	if resp.Data.Selection.Label != "Delete Selected (1)" {
		t.Errorf("unexpected label %q", resp.Data.Selection.Label)
	}
	if len(resp.Data.Remaining) != 1 || resp.Data.Remaining[0] != "u2" {
		t.Errorf("unexpected remaining %v", resp.Data.Remaining)
	}
}
