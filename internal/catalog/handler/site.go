package handler

import (
	"context"
	"net/http"

	"sweethomes/internal/gallery"
	"sweethomes/pkg/client"
	httputil "sweethomes/pkg/http"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SiteSource interface {
	Get(ctx context.Context) (*model.SiteData, error)
}

type SiteResponse struct {
	Prices  model.RoomPrices      `json:"prices"`
	Rooms   []model.RoomRate      `json:"rooms"`
	Gallery []model.RenderedImage `json:"gallery"`
}

type SiteHandler struct {
	source      SiteSource
	placeholder string
	log         *logger.Logger
}

func NewSiteHandler(source SiteSource, placeholderURL string, log *logger.Logger) *SiteHandler {
	return &SiteHandler{
		source:      source,
		placeholder: placeholderURL,
		log:         log,
	}
}

func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	data, err := h.source.Get(r.Context())
	if err != nil {
		h.log.Warn("Failed to load site data", "error", err)
		if writeErr := httputil.WriteError(w, client.ToAppError(err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	prices := data.Prices
	if prices == nil {
		prices = model.RoomPrices{}
	}

	if err := httputil.WriteSuccess(w, SiteResponse{
		Prices:  prices,
		Rooms:   prices.Rooms(),
		Gallery: gallery.Render(data.Images, h.placeholder),
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SiteHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/site", h.Get)
}
