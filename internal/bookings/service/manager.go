package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	bookingserrors "sweethomes/internal/bookings/errors"
	"sweethomes/internal/bookings/search"
	"sweethomes/internal/bookings/validator"
	"sweethomes/internal/events"
	"sweethomes/pkg/client"
	"sweethomes/pkg/config"
	apperrors "sweethomes/pkg/errors"
	"sweethomes/pkg/model"
	"sweethomes/pkg/sanitizer"
)

type Backend interface {
	GetBookings(ctx context.Context, token string) ([]model.Booking, error)
	EditBooking(ctx context.Context, token, id string, update model.BookingUpdate) (string, error)
	DeleteBooking(ctx context.Context, token, id string) (string, error)
	Book(ctx context.Context, req client.BookRequest) (string, error)
}

// WriteResult is returned by every mutating call. Bookings is the list
// re-fetched after the write, or nil if that re-fetch failed.
type WriteResult struct {
	Message  string          `json:"message"`
	Bookings []model.Booking `json:"bookings"`
}

type BatchDeleteResult struct {
	*model.BatchResult
	Bookings []model.Booking `json:"bookings"`
}

// BookingManager owns the per-session bookings cache. The cache only ever
// changes by wholesale replacement from the backend.
type BookingManager interface {
	Load(ctx context.Context, sessionID, token string) ([]model.Booking, error)
	Cached(sessionID string) ([]model.Booking, bool)
	Search(ctx context.Context, sessionID, token, query string) ([]model.Booking, error)
	Edit(ctx context.Context, sessionID, token, id string, update *model.BookingUpdate) (*WriteResult, error)
	Delete(ctx context.Context, sessionID, token, id string, confirm bool) (*WriteResult, error)
	BatchDelete(ctx context.Context, sessionID, token string, ids []string, confirm bool) (*BatchDeleteResult, error)
	Forget(sessionID string)
}

type sessionCache struct {
	mu        sync.Mutex
	loaded    bool
	bookings  []model.Booking
	debouncer *search.Debouncer
}

type bookingManager struct {
	backend   Backend
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config

	mu       sync.Mutex
	sessions map[string]*sessionCache
}

func NewBookingManager(
	backend Backend,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingManager {
	return &bookingManager{
		backend:   backend,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		sessions:  make(map[string]*sessionCache),
	}
}

func (m *bookingManager) session(sessionID string) *sessionCache {
	m.mu.Lock()
	defer m.mu.Unlock()

	sc, ok := m.sessions[sessionID]
	if !ok {
		sc = &sessionCache{debouncer: search.NewDebouncer(m.cfg.SearchDebounce)}
		m.sessions[sessionID] = sc
	}
	return sc
}

func (m *bookingManager) Load(ctx context.Context, sessionID, token string) ([]model.Booking, error) {
	bookings, err := m.backend.GetBookings(ctx, token)
	if err != nil {
		m.cfg.Log.Warn("Failed to fetch bookings",
			"session_id", sessionID,
			"error", err,
		)
		return nil, client.ToAppError(err)
	}

	sortNewestFirst(bookings)

	sc := m.session(sessionID)
	sc.mu.Lock()
	sc.bookings = bookings
	sc.loaded = true
	sc.mu.Unlock()

	m.cfg.Log.Debug("Bookings cache replaced",
		"session_id", sessionID,
		"count", len(bookings),
	)
	return cloneBookings(bookings), nil
}

func (m *bookingManager) Cached(sessionID string) ([]model.Booking, bool) {
	sc := m.session(sessionID)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.loaded {
		return nil, false
	}
	return cloneBookings(sc.bookings), true
}

// Search waits out the debounce delay and filters the cached list. A
// session without a cache is loaded first.
func (m *bookingManager) Search(ctx context.Context, sessionID, token, query string) ([]model.Booking, error) {
	sc := m.session(sessionID)

	if err := sc.debouncer.Wait(ctx, query); err != nil {
		if errors.Is(err, search.ErrSuperseded) || errors.Is(err, search.ErrCancelled) {
			return nil, apperrors.Superseded("A newer search replaced this one")
		}
		return nil, err
	}

	cached, ok := m.Cached(sessionID)
	if !ok {
		loaded, err := m.Load(ctx, sessionID, token)
		if err != nil {
			return nil, err
		}
		cached = loaded
	}

	matches := make([]model.Booking, 0, len(cached))
	for i := range cached {
		if cached[i].Matches(query) {
			matches = append(matches, cached[i])
		}
	}
	sortNewestFirst(matches)
	return matches, nil
}

func (m *bookingManager) Edit(ctx context.Context, sessionID, token, id string, update *model.BookingUpdate) (*WriteResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput(bookingserrors.ErrInvalidID.Error())
	}

	m.sanitizeUpdate(update)
	if err := m.validator.ValidateUpdate(update); err != nil {
		m.cfg.Log.Warn("Booking update validation failed",
			"booking_id", id,
			"error", err,
		)
		return nil, validationError("Booking validation failed", err)
	}

	message, err := m.backend.EditBooking(ctx, token, id, *update)
	if err != nil {
		m.cfg.Log.Warn("Booking edit rejected",
			"booking_id", id,
			"error", err,
		)
		return nil, client.ToAppError(err)
	}

	m.publisher.Publish(ctx, events.Event{
		Type: events.BookingEdited,
		Key:  id,
		Data: map[string]any{"id": id, "status": update.Status, "room": update.Room},
	})

	m.cfg.Log.Info("Booking edited",
		"booking_id", id,
		"session_id", sessionID,
	)
	return m.afterWrite(ctx, sessionID, token, message), nil
}

func (m *bookingManager) Delete(ctx context.Context, sessionID, token, id string, confirm bool) (*WriteResult, error) {
	if !confirm {
		return nil, apperrors.ConfirmationRequired("Deleting a booking")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput(bookingserrors.ErrInvalidID.Error())
	}

	message, err := m.deleteOne(ctx, token, id)
	if err != nil {
		return nil, client.ToAppError(err)
	}
	return m.afterWrite(ctx, sessionID, token, message), nil
}

// BatchDelete deletes one booking at a time and keeps going past failures.
// Deleted bookings stay deleted when a later one fails.
func (m *bookingManager) BatchDelete(ctx context.Context, sessionID, token string, ids []string, confirm bool) (*BatchDeleteResult, error) {
	if !confirm {
		return nil, apperrors.ConfirmationRequired("Deleting the selected bookings")
	}

	ids = sanitizer.NormalizeStringSlice(ids, strings.TrimSpace)
	if len(ids) == 0 {
		return nil, apperrors.InvalidInput(bookingserrors.ErrNoSelection.Error())
	}

	result := model.NewBatchResult(len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			result.Fail(id, apperrors.ConnectionErrorMessage)
			continue
		}
		if _, err := m.deleteOne(ctx, token, id); err != nil {
			result.Fail(id, client.FailureMessage(err))
			continue
		}
		result.Succeed()
	}
	result.Summarize("Deleted", "bookings")

	m.cfg.Log.Info("Batch booking delete finished",
		"session_id", sessionID,
		"requested", result.Requested,
		"succeeded", result.Succeeded,
	)

	write := m.afterWrite(ctx, sessionID, token, result.Message)
	return &BatchDeleteResult{BatchResult: result, Bookings: write.Bookings}, nil
}

// Forget drops the session's cache and cancels any pending search.
func (m *bookingManager) Forget(sessionID string) {
	m.mu.Lock()
	sc, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok {
		sc.debouncer.Cancel()
	}
}

func (m *bookingManager) deleteOne(ctx context.Context, token, id string) (string, error) {
	message, err := m.backend.DeleteBooking(ctx, token, id)
	if err != nil {
		m.cfg.Log.Warn("Booking delete rejected",
			"booking_id", id,
			"error", err,
		)
		return "", err
	}

	m.publisher.Publish(ctx, events.Event{
		Type: events.BookingDeleted,
		Key:  id,
		Data: map[string]any{"id": id},
	})
	m.cfg.Log.Info("Booking deleted", "booking_id", id)
	return message, nil
}

// afterWrite re-fetches the authoritative list. The write already happened,
// so a failed re-fetch is logged and leaves Bookings nil.
func (m *bookingManager) afterWrite(ctx context.Context, sessionID, token, message string) *WriteResult {
	bookings, err := m.Load(ctx, sessionID, token)
	if err != nil {
		m.cfg.Log.Warn("Re-fetch after write failed", "session_id", sessionID, "error", err)
		m.invalidate(sessionID)
		return &WriteResult{Message: message}
	}
	return &WriteResult{Message: message, Bookings: bookings}
}

// invalidate marks the cache stale so the next search reloads it.
func (m *bookingManager) invalidate(sessionID string) {
	sc := m.session(sessionID)
	sc.mu.Lock()
	sc.loaded = false
	sc.bookings = nil
	sc.mu.Unlock()
}

func (m *bookingManager) sanitizeUpdate(update *model.BookingUpdate) {
	update.Name = sanitizer.NormalizeName(update.Name)
	update.Phone = sanitizer.TrimAndNormalize(update.Phone)
	update.Nationality = sanitizer.TrimAndNormalize(update.Nationality)
	update.Address = sanitizer.TrimAndNormalize(update.Address)
	update.IDPassport = sanitizer.NormalizeUpper(update.IDPassport)
	update.CarPlate = sanitizer.NormalizeUpper(update.CarPlate)
	update.Room = sanitizer.TrimAndNormalize(update.Room)
	update.Arrival = strings.TrimSpace(update.Arrival)
	update.ArrivalTime = strings.TrimSpace(update.ArrivalTime)
	update.Departure = strings.TrimSpace(update.Departure)
	update.DepartureTime = strings.TrimSpace(update.DepartureTime)
	update.Status = sanitizer.TrimAndNormalize(update.Status)
}

func sortNewestFirst(bookings []model.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].Timestamp.After(bookings[j].Timestamp)
	})
}

// cloneBookings returns a non-nil copy so an empty sheet encodes as [].
func cloneBookings(bookings []model.Booking) []model.Booking {
	out := make([]model.Booking, len(bookings))
	copy(out, bookings)
	return out
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
