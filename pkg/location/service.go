package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrNoResults is returned when the search finds no place for a query.
var ErrNoResults = errors.New("location: no results")

// Location holds enriched info about a place
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Type      string  `json:"type,omitempty"`
	OsmID     int64   `json:"osmId,omitempty"`
}

// NominatimResponse is shaped for the API response
type NominatimResponse []struct {
	PlaceID     int64   `json:"place_id"`
	Licence     string  `json:"licence"`
	OsmType     string  `json:"osm_type"`
	OsmID       int64   `json:"osm_id"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Class       string  `json:"class"`
	Type        string  `json:"type"`
	PlaceRank   int     `json:"place_rank"`
	Importance  float64 `json:"importance"`
	AddressType string  `json:"addresstype"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Address     struct {
		Road         string `json:"road"`
		Suburb       string `json:"suburb"`
		CityDistrict string `json:"city_district"`
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Region       string `json:"region"`
		Postcode     string `json:"postcode"`
		Country      string `json:"country"`
		CountryCode  string `json:"country_code"`
	} `json:"address"`
	BoundingBox []string `json:"boundingbox"`
}

// Cache stores geocoding results by query. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, query string) (Location, bool, error)
	Set(ctx context.Context, query string, loc Location) error
}

// Client geocodes free-text place queries against a Nominatim server.
// Requests are spaced at least minInterval apart to respect the public
// server's usage policy.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	userAgent   string
	minInterval time.Duration
	cache       Cache
	logger      zerolog.Logger
	limiter     *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithMinInterval(d time.Duration) Option {
	return func(c *Client) { c.minInterval = d }
}

func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the logger used for cache failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     "https://nominatim.openstreetmap.org",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		userAgent:   "companymap/1.0",
		minInterval: time.Second,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	limit := rate.Inf
	if c.minInterval > 0 {
		limit = rate.Every(c.minInterval)
	}
	c.limiter = rate.NewLimiter(limit, 1)
	return c
}

// Geocode looks up a place name and returns its coordinates and address
// details. Cached results are returned without contacting the server; cache
// failures are logged and otherwise ignored.
func (c *Client) Geocode(ctx context.Context, query string) (Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Location{}, fmt.Errorf("empty query: %w", ErrNoResults)
	}

	if c.cache != nil {
		loc, ok, err := c.cache.Get(ctx, query)
		if err != nil {
			c.logger.Warn().Err(err).Str("query", query).Msg("Geocode cache read failed")
		} else if ok {
			return loc, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Location{}, fmt.Errorf("geocode %q: waiting for rate limit: %w", query, err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Location{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocode %q: unexpected status: %s", query, resp.Status)
	}

	var results NominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Location{}, fmt.Errorf("geocode %q: failed to decode response: %w", query, err)
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("geocode %q: %w", query, ErrNoResults)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocode %q: invalid lat %q: %w", query, first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocode %q: invalid lon %q: %w", query, first.Lon, err)
	}

	city := first.Address.City
	if city == "" {
		city = first.Address.Town
	}
	if city == "" {
		city = first.Address.Village
	}

	loc := Location{
		Name:      query,
		Latitude:  lat,
		Longitude: lon,
		City:      city,
		Country:   first.Address.Country,
		Type:      first.Type,
		OsmID:     first.OsmID,
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, query, loc); err != nil {
			c.logger.Warn().Err(err).Str("query", query).Msg("Geocode cache write failed")
		}
	}
	return loc, nil
}
