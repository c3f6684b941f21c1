package handler

import (
	"net/http"

	"sweethomes/internal/pricing/service"
	"sweethomes/internal/sessions/auth"
	apperrors "sweethomes/pkg/errors"
	httputil "sweethomes/pkg/http"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SetRateRequest struct {
	Price *model.Amount `json:"price"`
}

type PricesResponse struct {
	Prices model.RoomPrices `json:"prices"`
	Rooms  []model.RoomRate `json:"rooms"`
}

type PricesHandler struct {
	service service.PricingService
	guard   auth.Guard
	log     *logger.Logger
}

func NewPricesHandler(service service.PricingService, guard auth.Guard, log *logger.Logger) *PricesHandler {
	return &PricesHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *PricesHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	prices, err := h.service.Rates(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, PricesResponse{Prices: prices, Rooms: prices.Rooms()}); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PricesHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req SetRateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if req.Price == nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Please enter a price")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	message, err := h.service.SetRate(r.Context(), auth.Token(r.Context()), ps.ByName("room"), *req.Price)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteMessage(w, message, nil); err != nil {
		h.log.Error("failed to write message response", "handler", "Update", "operation", "WriteMessage", "error", err)
	}
}

func (h *PricesHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/prices", h.guard.Require(h.List))
	router.PUT("/api/v1/admin/prices/:room", h.guard.Require(h.Update))
}
