package service

import (
	"context"
	"strings"

	"sweethomes/internal/events"
	pricingerrors "sweethomes/internal/pricing/errors"
	"sweethomes/pkg/client"
	"sweethomes/pkg/config"
	apperrors "sweethomes/pkg/errors"
	"sweethomes/pkg/model"
)

type Backend interface {
	UpdatePrice(ctx context.Context, token, room string, price model.Amount) (string, error)
}

type Catalog interface {
	Get(ctx context.Context) (*model.SiteData, error)
	Refresh(ctx context.Context) (*model.SiteData, error)
	Invalidate(ctx context.Context)
}

type PricingService interface {
	// Rates always reads from the backend.
	Rates(ctx context.Context) (model.RoomPrices, error)
	// PublicRates may be served from the catalog cache.
	PublicRates(ctx context.Context) (model.RoomPrices, error)
	SetRate(ctx context.Context, token, room string, price model.Amount) (string, error)
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

type pricingService struct {
	backend   Backend
	catalog   Catalog
	quoter    *Quoter
	publisher events.Publisher
	cfg       *config.Config
}

func NewPricingService(
	backend Backend,
	catalog Catalog,
	publisher events.Publisher,
	cfg *config.Config,
) PricingService {
	return &pricingService{
		backend:   backend,
		catalog:   catalog,
		quoter:    NewQuoter(cfg.Currency, cfg.Location),
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *pricingService) Rates(ctx context.Context) (model.RoomPrices, error) {
	data, err := s.catalog.Refresh(ctx)
	if err != nil {
		s.cfg.Log.Warn("Failed to fetch room rates", "error", err)
		return nil, client.ToAppError(err)
	}
	return pricesOrEmpty(data), nil
}

func (s *pricingService) PublicRates(ctx context.Context) (model.RoomPrices, error) {
	data, err := s.catalog.Get(ctx)
	if err != nil {
		s.cfg.Log.Warn("Failed to load room rates", "error", err)
		return nil, client.ToAppError(err)
	}
	return pricesOrEmpty(data), nil
}

func (s *pricingService) SetRate(ctx context.Context, token, room string, price model.Amount) (string, error) {
	room = strings.TrimSpace(room)
	if room == "" {
		return "", apperrors.InvalidInput(pricingerrors.ErrRoomRequired.Error())
	}
	if price < 0 {
		return "", apperrors.Validation("Price validation failed", map[string]any{
			"price": pricingerrors.ErrNegativePrice.Error(),
		})
	}

	message, err := s.backend.UpdatePrice(ctx, token, room, price)
	if err != nil {
		s.cfg.Log.Warn("Price update rejected",
			"room", room,
			"price", price.Float64(),
			"error", err,
		)
		return "", client.ToAppError(err)
	}

	s.catalog.Invalidate(ctx)
	s.publisher.Publish(ctx, events.Event{
		Type: events.PriceUpdated,
		Key:  room,
		Data: map[string]any{"room": room, "price": price},
	})

	s.cfg.Log.Info("Room rate updated",
		"room", room,
		"price", price.Float64(),
	)
	return message, nil
}

// Quote prices a stay at the current public rate. Unknown rooms quote at 0.
func (s *pricingService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	rates, err := s.PublicRates(ctx)
	if err != nil {
		return nil, err
	}
	quote := s.quoter.Quote(req, rates.Rate(strings.TrimSpace(req.RoomType)))
	return &quote, nil
}

func pricesOrEmpty(data *model.SiteData) model.RoomPrices {
	if data == nil || data.Prices == nil {
		return model.RoomPrices{}
	}
	return data.Prices
}
