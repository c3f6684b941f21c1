package catalog

import (
	"context"
	"encoding/json"
	"time"

	"sweethomes/pkg/config"
	"sweethomes/pkg/model"
)

const siteDataKey = "sweethomes:catalog:site_data"

// Source is the authoritative provider of prices and gallery images.
type Source interface {
	GetData(ctx context.Context) (*model.SiteData, error)
}

// Catalog is a read-through cache in front of the getData action. Without a
// cache every read goes to the backend. Cache failures are logged and never
// fail a read.
type Catalog struct {
	source Source
	cache  Cache
	ttl    time.Duration
	cfg    *config.Config
}

func New(source Source, cache Cache, cfg *config.Config) *Catalog {
	return &Catalog{
		source: source,
		cache:  cache,
		ttl:    cfg.CatalogCacheTTL,
		cfg:    cfg,
	}
}

func (c *Catalog) Get(ctx context.Context) (*model.SiteData, error) {
	if c.cache != nil {
		if data, ok := c.cached(ctx); ok {
			return data, nil
		}
	}
	return c.Refresh(ctx)
}

// Refresh always asks the backend and stores the result.
func (c *Catalog) Refresh(ctx context.Context) (*model.SiteData, error) {
	data, err := c.source.GetData(ctx)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.store(ctx, data)
	}
	return data, nil
}

// Invalidate drops the cached snapshot so the next Get sees backend changes.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, siteDataKey); err != nil {
		c.cfg.Log.Warn("Failed to invalidate catalog cache", "key", siteDataKey, "error", err)
		return
	}
	c.cfg.Log.Debug("Catalog cache invalidated", "key", siteDataKey)
}

func (c *Catalog) cached(ctx context.Context) (*model.SiteData, bool) {
	raw, ok, err := c.cache.Get(ctx, siteDataKey)
	if err != nil {
		c.cfg.Log.Warn("Catalog cache read failed", "key", siteDataKey, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var data model.SiteData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.cfg.Log.Warn("Discarding unreadable catalog cache entry", "key", siteDataKey, "error", err)
		return nil, false
	}
	return &data, true
}

func (c *Catalog) store(ctx context.Context, data *model.SiteData) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.cfg.Log.Warn("Failed to encode catalog snapshot", "error", err)
		return
	}
	if err := c.cache.Set(ctx, siteDataKey, raw, c.ttl); err != nil {
		c.cfg.Log.Warn("Catalog cache write failed", "key", siteDataKey, "error", err)
	}
}
