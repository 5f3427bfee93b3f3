// Package weather получает текущую температуру в городе через OpenWeatherMap:
// сначала геокодирование города, затем погода по координатам.
package weather

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

	"github.com/Torrentov/calories-count-bot/internal/config"
	"github.com/Torrentov/calories-count-bot/internal/domain"
	"github.com/Torrentov/calories-count-bot/internal/repository"
	"go.uber.org/zap"
)

type Client struct {
	apiKey     string
	geoURL     string
	weatherURL string
	httpClient *http.Client

	cache    repository.LookupCache
	cacheTTL time.Duration
	observe  func(result string)
	log      *zap.Logger
}

type Option func(*Client)

func WithCache(cache repository.LookupCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithObserver вызывается после каждого запроса с результатом "ok", "cached", "not_found" или "error".
func WithObserver(fn func(result string)) Option {
	return func(c *Client) { c.observe = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(cfg config.WeatherConfig, opts ...Option) *Client {
	c := &Client{
		apiKey:     cfg.APIKey,
		geoURL:     cfg.GeoURL,
		weatherURL: cfg.WeatherURL,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		cache:      repository.NoopCache{},
		observe:    func(string) {},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geoResult struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type weatherResponse struct {
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
}

// Temperature возвращает температуру в °C.
func (c *Client) Temperature(ctx context.Context, city string) (float64, error) {
	key := "temp:" + strings.ToLower(strings.TrimSpace(city))

	var cached float64
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		c.observe("cached")
		return cached, nil
	} else if !errors.Is(err, repository.ErrCacheMiss) {
		c.log.Warn("weather cache read failed", zap.String("city", city), zap.Error(err))
	}

	temp, err := c.fetch(ctx, city)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.observe("not_found")
		return 0, err
	case err != nil:
		c.observe("error")
		c.log.Warn("weather lookup failed", zap.String("city", city), zap.Error(err))
		return 0, err
	}
	c.observe("ok")

	if err := c.cache.Set(ctx, key, temp, c.cacheTTL); err != nil {
		c.log.Warn("weather cache write failed", zap.String("city", city), zap.Error(err))
	}
	return temp, nil
}

func (c *Client) fetch(ctx context.Context, city string) (float64, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)

	var places []geoResult
	if err := c.getJSON(ctx, c.geoURL+"?"+q.Encode(), &places); err != nil {
		return 0, fmt.Errorf("geocode %q: %w", city, err)
	}
	if len(places) == 0 {
		return 0, fmt.Errorf("city %q: %w", city, domain.ErrNotFound)
	}

	q = url.Values{}
	q.Set("lat", strconv.FormatFloat(places[0].Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(places[0].Lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	var resp weatherResponse
	if err := c.getJSON(ctx, c.weatherURL+"?"+q.Encode(), &resp); err != nil {
		return 0, fmt.Errorf("current weather %q: %w", city, err)
	}
	if resp.Main.Temp == nil {
		return 0, fmt.Errorf("current weather %q: no temperature in response: %w", city, domain.ErrLookupFailure)
	}

	return *resp.Main.Temp, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %v: %w", err, domain.ErrLookupFailure)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %v: %w", err, domain.ErrLookupFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrLookupFailure)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode: %v: %w", err, domain.ErrLookupFailure)
	}
	return nil
}
