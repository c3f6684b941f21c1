package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sweethomes/pkg/client"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockSiteSource struct {
	getFunc func(ctx context.Context) (*model.SiteData, error)
}

func (m *mockSiteSource) Get(ctx context.Context) (*model.SiteData, error) {
	return m.getFunc(ctx)
}

func serve(h *SiteHandler) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/site", nil))
	return rec
}

func TestSiteHandler_Get(t *testing.T) {
	source := &mockSiteSource{getFunc: func(ctx context.Context) (*model.SiteData, error) {
		return &model.SiteData{
			Prices: model.RoomPrices{"2 Bedroom": 5000, "1 Bedroom": 3000},
			Images: []model.GalleryImage{
				{URL: "https://drive.google.com/file/d/abc123/view", Caption: "Pool"},
				{URL: ""},
			},
		}, nil
	}}

	rec := serve(NewSiteHandler(source, "https://placehold.co/x", logger.Discard()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data SiteResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(body.Data.Rooms) != 2 || body.Data.Rooms[0].Room != "1 Bedroom" {
		t.Errorf("expected rooms sorted by label, got %+v", body.Data.Rooms)
	}
	if len(body.Data.Gallery) != 1 {
		t.Fatalf("expected empty URLs to be skipped, got %+v", body.Data.Gallery)
	}
	img := body.Data.Gallery[0]
	if img.DisplayURL != "https://lh3.googleusercontent.com/d/abc123" {
		t.Errorf("unexpected display url %q", img.DisplayURL)
	}
	if img.FallbackURL != "https://placehold.co/x" {
		t.Errorf("unexpected fallback url %q", img.FallbackURL)
	}
}

func TestSiteHandler_TransportError(t *testing.T) {
	source := &mockSiteSource{getFunc: func(ctx context.Context) (*model.SiteData, error) {
		return nil, &client.TransportError{Action: client.ActionGetData}
	}}

	rec := serve(NewSiteHandler(source, "", logger.Discard()))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}
