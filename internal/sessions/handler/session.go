package handler

import (
	"net/http"

	"sweethomes/internal/sessions/auth"
	"sweethomes/internal/sessions/service"
	apperrors "sweethomes/pkg/errors"
	httputil "sweethomes/pkg/http"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const CookieName = "adminToken"

const (
	LoginPath  = "/api/v1/admin/login"
	LogoutPath = "/api/v1/admin/logout"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	service.State
	Dashboard *model.Dashboard `json:"dashboard,omitempty"`
	LoadError string           `json:"load_error,omitempty"`
}

type SessionHandler struct {
	service      service.SessionService
	secureCookie bool
	log          *logger.Logger
}

func NewSessionHandler(service service.SessionService, secureCookie bool, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service:      service,
		secureCookie: secureCookie,
		log:          log,
	}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	h.setCookie(w, result.Cookie, 0)
	createdAt := result.Session.CreatedAt
	resp := LoginResponse{
		State: service.State{
			State:     model.SessionAuthenticated,
			Username:  result.Session.Username,
			CreatedAt: &createdAt,
		},
		Dashboard: result.Dashboard,
		LoadError: result.LoadError,
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.service.Logout(r.Context(), readCookie(r))
	h.setCookie(w, "", -1)

	if err := httputil.WriteSuccess(w, service.State{State: model.SessionUnauthenticated}); err != nil {
		h.log.Error("failed to write success response", "handler", "Logout", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) Session(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	state := h.service.State(r.Context(), readCookie(r))
	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "Session", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(LoginPath, h.Login)
	router.POST(LogoutPath, h.Logout)
	router.GET("/api/v1/admin/session", h.Session)
}

func (h *SessionHandler) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// CallerScope keys per-caller middleware state on the session cookie.
// Requests without one have no caller.
func CallerScope(r *http.Request) string {
	return readCookie(r)
}

func readCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// CookieGuard resolves the adminToken cookie into a session.
type CookieGuard struct {
	service service.SessionService
	log     *logger.Logger
}

var _ auth.Guard = (*CookieGuard)(nil)

func NewCookieGuard(service service.SessionService, log *logger.Logger) *CookieGuard {
	return &CookieGuard{service: service, log: log}
}

func (g *CookieGuard) Require(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		session, err := g.service.Resolve(r.Context(), readCookie(r))
		if err != nil {
			if apperrors.AsAppError(err).Code != apperrors.CodeUnauthorized {
				g.log.Warn("Session lookup failed", "path", r.URL.Path, "error", err)
			}
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				g.log.Error("failed to write error response", "handler", "Require", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		next(w, r.WithContext(auth.WithSession(r.Context(), session)), ps)
	}
}
