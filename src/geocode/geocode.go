// Package geocode proxies place search and reverse geocoding to Google Maps,
// caching answers so repeated lookups from the map picker stay off the API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tally-server/src/db"
	"tally-server/src/logging"
	"tally-server/src/models"

	"golang.org/x/sync/singleflight"
	"googlemaps.github.io/maps"
)

var (
	ErrNotConfigured = errors.New("google maps api key not configured")
	ErrUpstream      = errors.New("google maps request failed")
)

const (
	cacheItems   = 10000
	language     = "en"
	fetchTimeout = 15 * time.Second
)

// SharedCache is a cache shared between server instances, such as Redis.
type SharedCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Client struct {
	maps   *maps.Client
	cache  *db.Cache[[]models.Place]
	shared SharedCache
	ttl    time.Duration
	group  singleflight.Group
	logger *logging.Logger
}

// New returns a client. An empty apiKey yields a client whose lookups fail
// with ErrNotConfigured. A ttl of zero caches until eviction.
func New(apiKey string, ttl time.Duration, logger *logging.Logger, opts ...maps.ClientOption) (*Client, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	cache, err := db.NewCache[[]models.Place](cacheItems, ttl)
	if err != nil {
		return nil, err
	}
	c := &Client{cache: cache, ttl: ttl, logger: logger.WithComponent(logging.ComponentGeocode)}
	if apiKey == "" {
		c.logger.Warn("GOOGLE_MAPS_API_KEY not set, geocoding disabled")
		return c, nil
	}
	mc, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	c.maps = mc
	return c, nil
}

// UseSharedCache adds a second cache level behind the in-process one. Failures
// of the shared cache are logged and otherwise ignored.
func (c *Client) UseSharedCache(sc SharedCache) {
	c.shared = sc
}

func (c *Client) Close() {
	c.cache.Close()
}

// ClearCache drops every lookup cached in process and returns how many were
// removed. Shared entries expire on their own.
func (c *Client) ClearCache() int {
	return c.cache.Clear()
}

// Search finds places matching free text. A blank query returns no results.
func (c *Client) Search(ctx context.Context, query string) ([]models.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Place{}, nil
	}
	if c.maps == nil {
		return nil, ErrNotConfigured
	}
	return c.lookup(ctx, "search:"+strings.ToLower(query), func(ctx context.Context) ([]models.Place, error) {
		resp, err := c.maps.FindPlaceFromText(ctx, &maps.FindPlaceFromTextRequest{
			Input:     query,
			InputType: maps.FindPlaceFromTextInputTypeTextQuery,
			Fields: []maps.PlaceSearchFieldMask{
				maps.PlaceSearchFieldMaskPlaceID,
				maps.PlaceSearchFieldMaskName,
				maps.PlaceSearchFieldMaskFormattedAddress,
				maps.PlaceSearchFieldMaskGeometry,
			},
			Language: language,
		})
		if err != nil {
			return nil, err
		}
		places := make([]models.Place, 0, len(resp.Candidates))
		for _, r := range resp.Candidates {
			places = append(places, models.Place{
				PlaceID:          r.PlaceID,
				Name:             r.Name,
				FormattedAddress: r.FormattedAddress,
				Geometry:         toGeometry(r.Geometry),
			})
		}
		return places, nil
	})
}

// Reverse returns the best address for a coordinate, or nil when Google has none.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*models.Place, error) {
	if c.maps == nil {
		return nil, ErrNotConfigured
	}
	key := fmt.Sprintf("reverse:%.6f,%.6f", lat, lng)
	places, err := c.lookup(ctx, key, func(ctx context.Context) ([]models.Place, error) {
		results, err := c.maps.ReverseGeocode(ctx, &maps.GeocodingRequest{
			LatLng:   &maps.LatLng{Lat: lat, Lng: lng},
			Language: language,
		})
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return []models.Place{}, nil
		}
		r := results[0]
		return []models.Place{{
			PlaceID:          r.PlaceID,
			FormattedAddress: r.FormattedAddress,
			Geometry:         toGeometry(r.Geometry),
		}}, nil
	})
	if err != nil || len(places) == 0 {
		return nil, err
	}
	return &places[0], nil
}

// lookup serves key from the cache, collapsing concurrent misses into one call.
// The shared call runs detached from any single caller, so a caller that goes
// away only stops waiting for itself.
func (c *Client) lookup(ctx context.Context, key string, fetch func(context.Context) ([]models.Place, error)) ([]models.Place, error) {
	if places, ok := c.cache.Get(key); ok {
		return places, nil
	}
	ch := c.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		if places, ok := c.sharedGet(fctx, key); ok {
			c.cache.Set(key, places)
			return places, nil
		}
		places, err := fetch(fctx)
		if err != nil {
			if isZeroResults(err) {
				places = []models.Place{}
			} else {
				return nil, err
			}
		}
		c.cache.Set(key, places)
		c.sharedSet(fctx, key, places)
		return places, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.logger.ErrorContext(ctx, "geocode lookup failed", "key", key, logging.FieldError, res.Err)
			return nil, fmt.Errorf("%w: %v", ErrUpstream, res.Err)
		}
		return res.Val.([]models.Place), nil
	}
}

func (c *Client) sharedGet(ctx context.Context, key string) ([]models.Place, bool) {
	if c.shared == nil {
		return nil, false
	}
	data, ok, err := c.shared.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "shared cache read failed", "key", key, logging.FieldError, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var places []models.Place
	if err := json.Unmarshal(data, &places); err != nil {
		c.logger.WarnContext(ctx, "discarding corrupt shared cache entry", "key", key, logging.FieldError, err)
		return nil, false
	}
	return places, true
}

func (c *Client) sharedSet(ctx context.Context, key string, places []models.Place) {
	if c.shared == nil {
		return
	}
	data, err := json.Marshal(places)
	if err != nil {
		return
	}
	if err := c.shared.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "shared cache write failed", "key", key, logging.FieldError, err)
	}
}

func isZeroResults(err error) bool {
	return strings.Contains(err.Error(), "ZERO_RESULTS")
}

func toGeometry(g maps.AddressGeometry) models.Geometry {
	return models.Geometry{Location: models.LatLng{Lat: g.Location.Lat, Lng: g.Location.Lng}}
}
