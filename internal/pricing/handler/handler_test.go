package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sweethomes/internal/pricing/service"
	"sweethomes/internal/sessions/auth"
	apperrors "sweethomes/pkg/errors"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockPricingService struct {
	ratesFunc   func(ctx context.Context) (model.RoomPrices, error)
	setRateFunc func(ctx context.Context, token, room string, price model.Amount) (string, error)
	quoteFunc   func(ctx context.Context, req service.QuoteRequest) (*service.Quote, error)
}

func (m *mockPricingService) Rates(ctx context.Context) (model.RoomPrices, error) {
	return m.ratesFunc(ctx)
}

func (m *mockPricingService) PublicRates(ctx context.Context) (model.RoomPrices, error) {
	return m.ratesFunc(ctx)
}

func (m *mockPricingService) SetRate(ctx context.Context, token, room string, price model.Amount) (string, error) {
	return m.setRateFunc(ctx, token, room, price)
}

func (m *mockPricingService) Quote(ctx context.Context, req service.QuoteRequest) (*service.Quote, error) {
	return m.quoteFunc(ctx, req)
}

// sessionGuard authenticates every request as a fixed session.
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

func TestQuoteHandler(t *testing.T) {
	svc := &mockPricingService{quoteFunc: func(ctx context.Context, req service.QuoteRequest) (*service.Quote, error) {
		if req.RoomType != "1 Bedroom" {
			t.Errorf("unexpected room %q", req.RoomType)
		}
		return &service.Quote{Nights: 3, Total: 9000, Display: "KES 9,000 (3 nights)", Visible: true}, nil
	}}
	router := httprouter.New()
	NewQuoteHandler(svc, logger.Discard()).RegisterRoutes(router)

	body := `{"roomType":"1 Bedroom","arrivalDate":"2024-01-10","departureDate":"2024-01-13"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings/quote", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data service.Quote `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Data.Display != "KES 9,000 (3 nights)" {
		t.Errorf("unexpected display %q", resp.Data.Display)
	}
}

func TestQuoteHandler_BadBody(t *testing.T) {
	router := httprouter.New()
	NewQuoteHandler(&mockPricingService{}, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings/quote", strings.NewReader(`{"room":`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPricesHandler_Update(t *testing.T) {
	var gotToken, gotRoom string
	var gotPrice model.Amount
	svc := &mockPricingService{setRateFunc: func(ctx context.Context, token, room string, price model.Amount) (string, error) {
		gotToken, gotRoom, gotPrice = token, room, price
		return "Price updated successfully", nil
	}}
	router := httprouter.New()
	NewPricesHandler(svc, sessionGuard{session: &model.Session{ID: "s1", Token: "tok"}}, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/prices/1%20Bedroom", strings.NewReader(`{"price":"3,500"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotToken != "tok" || gotRoom != "1 Bedroom" || gotPrice != 3500 {
		t.Errorf("unexpected call: %q %q %v", gotToken, gotRoom, gotPrice)
	}
	if !strings.Contains(rec.Body.String(), "Price updated successfully") {
		t.Errorf("expected server message in body, got %s", rec.Body.String())
	}
}

func TestPricesHandler_MissingPrice(t *testing.T) {
	router := httprouter.New()
	NewPricesHandler(&mockPricingService{}, sessionGuard{session: &model.Session{ID: "s1"}}, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/admin/prices/Studio", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPricesHandler_RequiresSession(t *testing.T) {
	router := httprouter.New()
	NewPricesHandler(&mockPricingService{}, sessionGuard{}, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/prices", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestPricesHandler_List(t *testing.T) {
	svc := &mockPricingService{ratesFunc: func(ctx context.Context) (model.RoomPrices, error) {
		return model.RoomPrices{"Studio": 2000, "1 Bedroom": 3000}, nil
	}}
	router := httprouter.New()
	NewPricesHandler(svc, sessionGuard{session: &model.Session{ID: "s1"}}, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/prices", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data PricesResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Data.Rooms) != 2 || resp.Data.Rooms[0].Room != "1 Bedroom" {
		t.Errorf("unexpected rooms %+v", resp.Data.Rooms)
	}
}
