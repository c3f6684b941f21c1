package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"sweethomes/internal/bookings/service"
	"sweethomes/internal/sessions/auth"
	apperrors "sweethomes/pkg/errors"
	httputil "sweethomes/pkg/http"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BatchDeleteRequest struct {
	IDs     []string `json:"ids"`
	Confirm bool     `json:"confirm"`
}

// EditRequest accepts a booking as listed, so ID and Timestamp may be echoed
// back. A body ID must match the path.
type EditRequest struct {
	model.BookingUpdate
	ID        string          `json:"ID,omitempty"`
	Timestamp json.RawMessage `json:"Timestamp,omitempty"`
}

type BookingsResponse struct {
	Bookings []model.Booking `json:"bookings"`
	Count    int             `json:"count"`
}

type BookingsHandler struct {
	manager service.BookingManager
	guard   auth.Guard
	log     *logger.Logger
}

func NewBookingsHandler(manager service.BookingManager, guard auth.Guard, log *logger.Logger) *BookingsHandler {
	return &BookingsHandler{
		manager: manager,
		guard:   guard,
		log:     log,
	}
}

func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	bookings, err := h.manager.Load(ctx, auth.SessionID(ctx), auth.Token(ctx))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, BookingsResponse{Bookings: bookings, Count: len(bookings)}); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingsHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	bookings, err := h.manager.Search(ctx, auth.SessionID(ctx), auth.Token(ctx), r.URL.Query().Get("q"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, BookingsResponse{Bookings: bookings, Count: len(bookings)}); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingsHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()

	id := ps.ByName("id")

	var req EditRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if req.ID != "" && req.ID != id {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("booking id in body (%s) does not match path (%s)", req.ID, id))); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	result, err := h.manager.Edit(ctx, auth.SessionID(ctx), auth.Token(ctx), id, &req.BookingUpdate)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteMessage(w, result.Message, result); err != nil {
		h.log.Error("failed to write message response", "handler", "Update", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingsHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()

	result, err := h.manager.Delete(ctx, auth.SessionID(ctx), auth.Token(ctx), ps.ByName("id"), httputil.QueryBool(r, "confirm"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteMessage(w, result.Message, result); err != nil {
		h.log.Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingsHandler) BatchDelete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var req BatchDeleteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "BatchDelete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	result, err := h.manager.BatchDelete(ctx, auth.SessionID(ctx), auth.Token(ctx), req.IDs, req.Confirm)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "BatchDelete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteMessage(w, result.Message, result); err != nil {
		h.log.Error("failed to write message response", "handler", "BatchDelete", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/bookings", h.guard.Require(h.List))
	router.GET("/api/v1/admin/bookings/search", h.guard.Require(h.Search))
	router.PUT("/api/v1/admin/bookings/:id", h.guard.Require(h.Update))
	router.DELETE("/api/v1/admin/bookings/:id", h.guard.Require(h.Delete))
	router.POST("/api/v1/admin/bookings/batch-delete", h.guard.Require(h.BatchDelete))
}
