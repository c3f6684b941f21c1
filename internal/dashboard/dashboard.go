package dashboard

import (
	"context"

	"sweethomes/pkg/config"
	"sweethomes/pkg/model"

	"golang.org/x/sync/errgroup"
)

type Bookings interface {
	Load(ctx context.Context, sessionID, token string) ([]model.Booking, error)
}

type Prices interface {
	Rates(ctx context.Context) (model.RoomPrices, error)
}

type Gallery interface {
	List(ctx context.Context) ([]model.RenderedImage, error)
}

// Loader fetches bookings, prices and gallery concurrently.
type Loader struct {
	bookings Bookings
	prices   Prices
	gallery  Gallery
	cfg      *config.Config
}

func NewLoader(bookings Bookings, prices Prices, gallery Gallery, cfg *config.Config) *Loader {
	return &Loader{
		bookings: bookings,
		prices:   prices,
		gallery:  gallery,
		cfg:      cfg,
	}
}

// Load returns the first error any of the three reads hit.
func (l *Loader) Load(ctx context.Context, session *model.Session) (*model.Dashboard, error) {
	var (
		bookings []model.Booking
		prices   model.RoomPrices
		images   []model.RenderedImage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = l.bookings.Load(gctx, session.ID, session.Token)
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = l.prices.Rates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		images, err = l.gallery.List(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		l.cfg.Log.Warn("Dashboard load failed", "session_id", session.ID, "error", err)
		return nil, err
	}

	l.cfg.Log.Info("Dashboard loaded",
		"session_id", session.ID,
		"bookings", len(bookings),
		"rooms", len(prices),
		"images", len(images),
	)
	return &model.Dashboard{
		Bookings: bookings,
		Prices:   prices,
		Rooms:    prices.Rooms(),
		Gallery:  images,
	}, nil
}
