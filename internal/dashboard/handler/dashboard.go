package handler

import (
	"context"
	"net/http"

	"sweethomes/internal/sessions/auth"
	apperrors "sweethomes/pkg/errors"
	httputil "sweethomes/pkg/http"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type Loader interface {
	Load(ctx context.Context, session *model.Session) (*model.Dashboard, error)
}

type DashboardHandler struct {
	loader Loader
	guard  auth.Guard
	log    *logger.Logger
}

func NewDashboardHandler(loader Loader, guard auth.Guard, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		loader: loader,
		guard:  guard,
		log:    log,
	}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Please log in")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	dashboard, err := h.loader.Load(r.Context(), session)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, dashboard); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/dashboard", h.guard.Require(h.Get))
}
