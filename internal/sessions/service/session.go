package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"sweethomes/internal/events"
	sessionserrors "sweethomes/internal/sessions/errors"
	"sweethomes/internal/sessions/repository"
	"sweethomes/pkg/client"
	"sweethomes/pkg/config"
	apperrors "sweethomes/pkg/errors"
	"sweethomes/pkg/model"
	"sweethomes/pkg/sealer"

	"github.com/google/uuid"
)

const (
	defaultLoginFailure = "Invalid credentials"
	loginRequired       = "Please log in"
)

type Backend interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// InitialLoader fetches what the dashboard shows right after login.
type InitialLoader interface {
	Load(ctx context.Context, session *model.Session) (*model.Dashboard, error)
}

type Sealer interface {
	Seal(value string) (string, error)
	Open(token string) (string, error)
}

// LogoutHook drops per-session state held outside the session store.
type LogoutHook func(sessionID string)

type LoginResult struct {
	Session   *model.Session
	Cookie    string
	Dashboard *model.Dashboard
	LoadError string
}

type State struct {
	State     string     `json:"state"`
	Username  string     `json:"username,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type SessionService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, cookie string)
	Resolve(ctx context.Context, cookie string) (*model.Session, error)
	State(ctx context.Context, cookie string) State
	OnLogout(hook LogoutHook)
}

type sessionService struct {
	backend   Backend
	repo      repository.SessionRepository
	sealer    Sealer
	loader    InitialLoader
	publisher events.Publisher
	cfg       *config.Config

	mu    sync.RWMutex
	hooks []LogoutHook
}

func NewSessionService(
	backend Backend,
	repo repository.SessionRepository,
	sealer Sealer,
	loader InitialLoader,
	publisher events.Publisher,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		backend:   backend,
		repo:      repo,
		sealer:    sealer,
		loader:    loader,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *sessionService) OnLogout(hook LogoutHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

func (s *sessionService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.InvalidInput(sessionserrors.ErrCredentialsRequired.Error())
	}

	token, err := s.backend.Login(ctx, username, password)
	if err != nil {
		var remoteErr *client.RemoteError
		if errors.As(err, &remoteErr) {
			message := remoteErr.Message
			if message == "" {
				message = defaultLoginFailure
			}
			s.cfg.Log.Warn("Login rejected", "username", username, "message", message)
			appErr := apperrors.Unauthorized(message)
			appErr.Err = err
			return nil, appErr
		}
		s.cfg.Log.Error("Login failed", "username", username, "error", err)
		return nil, client.ToAppError(err)
	}

	session := &model.Session{
		ID:       uuid.NewString(),
		Token:    token,
		Username: username,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		s.cfg.Log.Error("Failed to store session", "error", err)
		return nil, apperrors.Internal("Failed to start session", err)
	}

	cookie, err := s.sealer.Seal(session.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to seal session id", "error", err)
		_ = s.repo.Delete(ctx, session.ID)
		return nil, apperrors.Internal("Failed to start session", err)
	}

	s.cfg.Log.Info("Admin logged in", "username", username, "session_id", session.ID)
	s.publisher.Publish(ctx, events.Event{
		Type: events.AdminLoggedIn,
		Key:  session.ID,
		Data: map[string]any{"username": username},
	})

	result := &LoginResult{Session: session, Cookie: cookie}
	if s.loader != nil {
		dashboard, err := s.loader.Load(ctx, session)
		if err != nil {
			s.cfg.Log.Warn("Initial dashboard load failed", "session_id", session.ID, "error", err)
			result.LoadError = client.FailureMessage(err)
		}
		result.Dashboard = dashboard
	}
	return result, nil
}

// Logout never calls the backend and never fails: whatever the cookie
// holds, the caller ends up unauthenticated.
func (s *sessionService) Logout(ctx context.Context, cookie string) {
	id, err := s.open(cookie)
	if err != nil {
		s.cfg.Log.Debug("Logout without a valid session cookie")
		return
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.cfg.Log.Warn("Failed to delete session", "session_id", id, "error", err)
	}

	s.mu.RLock()
	hooks := append([]LogoutHook(nil), s.hooks...)
	s.mu.RUnlock()
	for _, hook := range hooks {
		hook(id)
	}

	s.publisher.Publish(ctx, events.Event{
		Type: events.AdminLoggedOut,
		Key:  id,
	})
	s.cfg.Log.Info("Admin logged out", "session_id", id)
}

func (s *sessionService) Resolve(ctx context.Context, cookie string) (*model.Session, error) {
	id, err := s.open(cookie)
	if err != nil {
		return nil, apperrors.Unauthorized(loginRequired)
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sessionserrors.ErrNotFound) || errors.Is(err, sessionserrors.ErrInvalidID) {
			return nil, apperrors.Unauthorized(loginRequired)
		}
		s.cfg.Log.Error("Failed to load session", "session_id", id, "error", err)
		return nil, apperrors.Unavailable("Session store")
	}
	if session.Token == "" {
		return nil, apperrors.Unauthorized(loginRequired)
	}
	return session, nil
}

func (s *sessionService) State(ctx context.Context, cookie string) State {
	session, err := s.Resolve(ctx, cookie)
	if err != nil {
		return State{State: model.SessionUnauthenticated}
	}
	createdAt := session.CreatedAt
	return State{
		State:     model.SessionAuthenticated,
		Username:  session.Username,
		CreatedAt: &createdAt,
	}
}

func (s *sessionService) open(cookie string) (string, error) {
	cookie = strings.TrimSpace(cookie)
	if cookie == "" {
		return "", sealer.ErrMalformedToken
	}
	return s.sealer.Open(cookie)
}
