// Package foodfacts ищет калорийность продуктов в OpenFoodFacts.
package foodfacts

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
	"github.com/Torrentov/calories-count-bot/internal/models"
	"github.com/Torrentov/calories-count-bot/internal/repository"
	"go.uber.org/zap"
)

// UnknownName подставляется, если у продукта нет названия.
const UnknownName = "Неизвестно"

type Client struct {
	baseURL    string
	userAgent  string
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

func WithObserver(fn func(result string)) Option {
	return func(c *Client) { c.observe = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(cfg config.FoodFactsConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
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

// kcal принимает и число, и строку: OpenFoodFacts отдает оба варианта.
type kcal float64

func (k *kcal) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*k = kcal(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	*k = kcal(n)
	return nil
}

type searchResponse struct {
	Products []struct {
		ProductName string `json:"product_name"`
		Nutriments  struct {
			EnergyKcal100g *kcal `json:"energy-kcal_100g"`
		} `json:"nutriments"`
	} `json:"products"`
}

// Food ищет продукт и возвращает первое совпадение.
func (c *Client) Food(ctx context.Context, name string) (models.FoodInfo, error) {
	key := "food:" + strings.ToLower(strings.TrimSpace(name))

	var cached models.FoodInfo
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		c.observe("cached")
		return cached, nil
	} else if !errors.Is(err, repository.ErrCacheMiss) {
		c.log.Warn("food cache read failed", zap.String("food", name), zap.Error(err))
	}

	info, err := c.search(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.observe("not_found")
		return models.FoodInfo{}, err
	case err != nil:
		c.observe("error")
		c.log.Warn("food lookup failed", zap.String("food", name), zap.Error(err))
		return models.FoodInfo{}, err
	}
	c.observe("ok")

	if err := c.cache.Set(ctx, key, info, c.cacheTTL); err != nil {
		c.log.Warn("food cache write failed", zap.String("food", name), zap.Error(err))
	}
	return info, nil
}

func (c *Client) search(ctx context.Context, name string) (models.FoodInfo, error) {
	q := url.Values{}
	q.Set("action", "process")
	q.Set("search_terms", name)
	q.Set("json", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cgi/search.pl?"+q.Encode(), nil)
	if err != nil {
		return models.FoodInfo{}, fmt.Errorf("build request: %v: %w", err, domain.ErrLookupFailure)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.FoodInfo{}, fmt.Errorf("search %q: %v: %w", name, err, domain.ErrLookupFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.FoodInfo{}, fmt.Errorf("search %q: status %d: %w", name, resp.StatusCode, domain.ErrLookupFailure)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.FoodInfo{}, fmt.Errorf("decode search %q: %v: %w", name, err, domain.ErrLookupFailure)
	}
	if len(body.Products) == 0 {
		return models.FoodInfo{}, fmt.Errorf("food %q: %w", name, domain.ErrNotFound)
	}

	first := body.Products[0]
	info := models.FoodInfo{Name: strings.TrimSpace(first.ProductName)}
	if info.Name == "" {
		info.Name = UnknownName
	}
	if first.Nutriments.EnergyKcal100g != nil {
		info.CaloriesPer100g = float64(*first.Nutriments.EnergyKcal100g)
	}
	return info, nil
}
