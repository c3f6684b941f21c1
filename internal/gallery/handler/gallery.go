package handler

import (
	"io"
	"net/http"

	"sweethomes/internal/gallery"
	galleryerrors "sweethomes/internal/gallery/errors"
	"sweethomes/internal/gallery/service"
	"sweethomes/internal/sessions/auth"
	apperrors "sweethomes/pkg/errors"
	httputil "sweethomes/pkg/http"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	filesField   = "files"
	captionField = "caption"
)

type BatchDeleteRequest struct {
	URLs    []string `json:"urls"`
	Confirm bool     `json:"confirm"`
}

type GalleryResponse struct {
	Images    []model.RenderedImage  `json:"images"`
	Count     int                    `json:"count"`
	Selection gallery.SelectionState `json:"selection"`
}

type BatchResponse struct {
	*model.BatchResult
	Selection gallery.SelectionState `json:"selection"`
	Remaining []string               `json:"remaining"`
}

type GalleryHandler struct {
	service   service.GalleryService
	guard     auth.Guard
	maxMemory int64
	log       *logger.Logger
}

func NewGalleryHandler(service service.GalleryService, guard auth.Guard, maxUploadSize int, log *logger.Logger) *GalleryHandler {
	return &GalleryHandler{
		service:   service,
		guard:     guard,
		maxMemory: int64(maxUploadSize),
		log:       log,
	}
}

func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	images, err := h.service.List(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	resp := GalleryResponse{
		Images:    images,
		Count:     len(images),
		Selection: gallery.NewSelection().State(),
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GalleryHandler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		h.log.Warn("Invalid multipart upload", "error", err)
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid upload form")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warn("Failed to remove multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File[filesField]
	if len(headers) == 0 {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput(galleryerrors.ErrNoFiles.Error())); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	files := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		files = append(files, service.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	result, err := h.service.Upload(r.Context(), auth.Token(r.Context()), files, r.FormValue(captionField))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Upload", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	message, err := h.service.Delete(
		r.Context(),
		auth.Token(r.Context()),
		r.URL.Query().Get("url"),
		httputil.QueryBool(r, "confirm"),
	)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteMessage(w, message, nil); err != nil {
		h.log.Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *GalleryHandler) BatchDelete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req BatchDeleteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "BatchDelete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	selection := gallery.NewSelection(req.URLs...)
	result, err := h.service.BatchDelete(r.Context(), auth.Token(r.Context()), selection, req.Confirm)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "BatchDelete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	resp := BatchResponse{
		BatchResult: result,
		Selection:   selection.State(),
		Remaining:   selection.URLs(),
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "BatchDelete", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GalleryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/gallery", h.guard.Require(h.List))
	router.POST("/api/v1/admin/gallery", h.guard.Require(h.Upload))
	router.DELETE("/api/v1/admin/gallery", h.guard.Require(h.Delete))
	router.POST("/api/v1/admin/gallery/batch-delete", h.guard.Require(h.BatchDelete))
}
