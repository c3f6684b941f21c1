package service

import (
	"context"
	"strings"
	"sync"

	bookingserrors "sweethomes/internal/bookings/errors"
	"sweethomes/internal/bookings/validator"
	"sweethomes/internal/events"
	pricingservice "sweethomes/internal/pricing/service"
	"sweethomes/pkg/client"
	"sweethomes/pkg/config"
	apperrors "sweethomes/pkg/errors"
	"sweethomes/pkg/model"
	"sweethomes/pkg/sanitizer"
)

const defaultConfirmationMessage = "Booking received! We will contact you shortly to confirm."

type Quoter interface {
	Quote(ctx context.Context, req pricingservice.QuoteRequest) (*pricingservice.Quote, error)
}

type Confirmation struct {
	Message string            `json:"message"`
	Nights  int               `json:"nights"`
	Total   model.Amount      `json:"total"`
	Display string            `json:"display"`
	Booking model.BookingForm `json:"booking"`
}

type BookingFormService interface {
	Submit(ctx context.Context, form *model.BookingForm) (*Confirmation, error)
}

type bookingFormService struct {
	backend   Backend
	quoter    Quoter
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewBookingFormService(
	backend Backend,
	quoter Quoter,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingFormService {
	return &bookingFormService{
		backend:   backend,
		quoter:    quoter,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		inFlight:  make(map[string]struct{}),
	}
}

// Submit sends exactly one book action or none. The total is always
// recomputed from current rates; an unpriced room submits with total 0.
func (s *bookingFormService) Submit(ctx context.Context, form *model.BookingForm) (*Confirmation, error) {
	s.sanitize(form)

	if err := s.validator.Validate(form); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"room", form.RoomType,
			"arrival", form.ArrivalDate,
			"departure", form.DepartureDate,
			"error", err,
		)
		return nil, validationError("Booking validation failed", err)
	}

	quote, err := s.quoter.Quote(ctx, pricingservice.QuoteRequest{
		RoomType:      form.RoomType,
		ArrivalDate:   form.ArrivalDate,
		DepartureDate: form.DepartureDate,
	})
	if err != nil {
		return nil, err
	}
	if !quote.Visible {
		s.cfg.Log.Warn("Submitting booking without a price",
			"room", form.RoomType,
			"rate", quote.Rate.Float64(),
		)
	}

	key := s.submissionKey(form)
	if !s.acquire(key) {
		return nil, apperrors.Conflict(bookingserrors.ErrSubmissionInFlight.Error())
	}
	defer s.release(key)

	message, err := s.backend.Book(ctx, client.NewBookRequest(*form, quote.Total))
	if err != nil {
		s.cfg.Log.Warn("Booking submission failed",
			"room", form.RoomType,
			"arrival", form.ArrivalDate,
			"error", err,
		)
		return nil, client.ToAppError(err)
	}

	s.publisher.Publish(ctx, events.Event{
		Type: events.BookingSubmitted,
		Key:  sanitizer.NormalizePhone(form.PhoneNumber, s.cfg.PhoneRegion),
		Data: map[string]any{
			"room":      form.RoomType,
			"arrival":   form.ArrivalDate,
			"departure": form.DepartureDate,
			"nights":    quote.Nights,
			"total":     quote.Total,
		},
	})

	s.cfg.Log.Info("Booking submitted",
		"room", form.RoomType,
		"arrival", form.ArrivalDate,
		"departure", form.DepartureDate,
		"nights", quote.Nights,
		"total", quote.Total.Float64(),
	)

	if message == "" {
		message = defaultConfirmationMessage
	}
	return &Confirmation{
		Message: message,
		Nights:  quote.Nights,
		Total:   quote.Total,
		Display: quote.Display,
		Booking: *form,
	}, nil
}

func (s *bookingFormService) sanitize(form *model.BookingForm) {
	form.FullName = sanitizer.NormalizeName(form.FullName)
	form.Nationality = sanitizer.TrimAndNormalize(form.Nationality)
	form.PhoneNumber = sanitizer.TrimAndNormalize(form.PhoneNumber)
	form.Address = sanitizer.TrimAndNormalize(form.Address)
	form.IDPassport = sanitizer.NormalizeUpper(form.IDPassport)
	form.CarPlate = sanitizer.NormalizeUpper(form.CarPlate)
	form.RoomType = sanitizer.TrimAndNormalize(form.RoomType)
	form.ArrivalDate = strings.TrimSpace(form.ArrivalDate)
	form.ArrivalTime = strings.TrimSpace(form.ArrivalTime)
	form.DepartureDate = strings.TrimSpace(form.DepartureDate)
	form.DepartureTime = strings.TrimSpace(form.DepartureTime)
}

func (s *bookingFormService) submissionKey(form *model.BookingForm) string {
	return strings.Join([]string{
		sanitizer.NormalizePhone(form.PhoneNumber, s.cfg.PhoneRegion),
		strings.ToLower(form.RoomType),
		form.ArrivalDate,
	}, "|")
}

func (s *bookingFormService) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *bookingFormService) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}
