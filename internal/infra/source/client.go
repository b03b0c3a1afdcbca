// Package source implements the upstream deals API client. It mimics the
// vendor's mobile app traffic, throttles outbound calls and caches raw
// responses so retried cycles do not hammer the vendor.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"dealradar/config"
	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/service"
	"dealradar/internal/errors"

	"github.com/coocood/freecache"
	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	storesPath = "/stores"
	itemsPath  = "/items/"
)

// responseCache is the read-through cache for raw upstream bodies.
type responseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

type freecacheStore struct {
	cache *freecache.Cache
	ttl   int
}

func (c *freecacheStore) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}

	return val, true
}

func (c *freecacheStore) Set(key string, value []byte) {
	_ = c.cache.Set([]byte(key), value, c.ttl)
}

type noopCache struct{}

func (noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (noopCache) Set(_ string, _ []byte)      {}

// client implements service.DealSource against the vendor's REST API.
type client struct {
	rest    *resty.Client
	limiter *rate.Limiter
	cache   responseCache
	logger  *slog.Logger

	radiusMeters int
	storeLimit   int
}

// New is the constructor for the deals API client.
func New(cfg *config.SourceConfig, logger *slog.Logger) service.DealSource {
	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.FetchTimeout).
		SetHeaders(map[string]string{
			"Accept":             "application/json, text/plain, */*",
			"Accept-Language":    "en-CA",
			"flashfood-app-info": "app/shopper,appversion/3.2.6,appbuild/35155,os/ios,osversion/18.6.1,devicemodel/Apple_iPhone14_5,deviceid/unknown",
			"User-Agent":         "Flashfood/35155 CFNetwork/3826.600.41 Darwin/24.6.0",
		})
	if cfg.APIKey != "" {
		rest.SetHeader("x-ff-api-key", cfg.APIKey)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	var cache responseCache = noopCache{}
	if cfg.CacheSizeMB > 0 {
		ttl := max(int(cfg.CacheTTL.Seconds()), 1)
		cache = &freecacheStore{
			cache: freecache.NewCache(cfg.CacheSizeMB * 1024 * 1024),
			ttl:   ttl,
		}
		logger.Info("source response cache enabled",
			slog.Int("sizeMB", cfg.CacheSizeMB),
			slog.Int("ttlSeconds", ttl))
	}

	return &client{
		rest:         rest,
		limiter:      limiter,
		cache:        cache,
		logger:       logger,
		radiusMeters: cfg.RadiusMeters,
		storeLimit:   cfg.StoreLimit,
	}
}

// FetchStoresNear queries the source for stores around the locality's
// coordinates with item listings inlined, then normalizes the payload.
func (c *client) FetchStoresNear(ctx context.Context, locality entity.Locality) ([]*service.StoreSnapshot, error) {
	lat := strconv.FormatFloat(locality.Latitude, 'f', -1, 64)
	lon := strconv.FormatFloat(locality.Longitude, 'f', -1, 64)

	cacheKey := fmt.Sprintf("stores:%s:%s:%d:%d", lat, lon, c.radiusMeters, c.storeLimit)
	body, err := c.fetch(ctx, storesPath, map[string]string{
		"storesWithItemsLimit":  strconv.Itoa(c.storeLimit),
		"includeItems":          "true",
		"searchLatitude":        lat,
		"searchLongitude":       lon,
		"userLocationLatitude":  lat,
		"userLocationLongitude": lon,
		"maxDistance":           strconv.Itoa(c.radiusMeters),
	}, cacheKey)
	if err != nil {
		return nil, err
	}

	var payload storesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrapf(service.ErrSourceMalformed, "decode stores response: %v", err)
	}

	snapshots := make([]*service.StoreSnapshot, 0, len(payload.Data))
	for _, raw := range payload.Data {
		snapshots = append(snapshots, normalizeStore(raw, locality.Key))
	}

	c.logger.DebugContext(ctx, "fetched stores",
		slog.String("locality", locality.Key),
		slog.Int("stores", len(snapshots)))

	return snapshots, nil
}

// FetchItemsForStore queries the current item listings of one store.
func (c *client) FetchItemsForStore(ctx context.Context, storeExternalID string) ([]*service.ProductObservation, error) {
	cacheKey := "items:" + storeExternalID
	body, err := c.fetch(ctx, itemsPath, map[string]string{
		"storeIds": storeExternalID,
	}, cacheKey)
	if err != nil {
		return nil, err
	}

	var payload itemsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrapf(service.ErrSourceMalformed, "decode items response: %v", err)
	}

	rawItems := payload.Data[storeExternalID]
	observations := make([]*service.ProductObservation, 0, len(rawItems))
	for _, raw := range rawItems {
		observations = append(observations, normalizeItem(raw))
	}

	return observations, nil
}

// fetch performs one throttled GET, serving and refreshing the response cache.
func (c *client) fetch(ctx context.Context, path string, params map[string]string, cacheKey string) ([]byte, error) {
	if cached, ok := c.cache.Get(cacheKey); ok {
		c.logger.DebugContext(ctx, "source cache hit", slog.String("key", cacheKey))

		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait")
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, errors.Wrapf(service.ErrSourceUnavailable, "GET %s: %v", path, err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, errors.Wrapf(service.ErrSourceRejected, "GET %s: status %d", path, resp.StatusCode())
	}

	body := resp.Body()
	c.cache.Set(cacheKey, body)

	return body, nil
}
