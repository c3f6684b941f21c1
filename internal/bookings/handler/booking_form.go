package handler

import (
	"net/http"

	"sweethomes/internal/bookings/service"
	httputil "sweethomes/pkg/http"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingFormHandler struct {
	service service.BookingFormService
	log     *logger.Logger
}

func NewBookingFormHandler(service service.BookingFormService, log *logger.Logger) *BookingFormHandler {
	return &BookingFormHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingFormHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var form model.BookingForm
	if err := httputil.DecodeJSON(r, &form); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Submit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	confirmation, err := h.service.Submit(r.Context(), &form)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Submit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, confirmation); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingFormHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Submit)
}
