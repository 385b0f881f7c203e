package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"pigbot/internal/models"
	"pigbot/internal/pkg/caching"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// ServiceMarket looks up DEX pairs for a cashtag, keeping at most
// MARKET_ENTRY_LIMIT snapshots per ticker and caching results briefly so a
// spammy account doesn't hammer the provider.
type ServiceMarket struct {
	http    *httpclient.Client
	cache   caching.Cache
	logger  *zap.Logger
	baseURL string
}

func NewServiceMarket(container *do.Injector) (*ServiceMarket, error) {
	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	baseURL := os.Getenv("DEXSCREENER_SEARCH_URL")
	if baseURL == "" {
		baseURL = DEXSCREENER_SEARCH_URL
	}

	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(10*time.Second),
		httpclient.WithRetryCount(3),
		httpclient.WithRetrier(heimdall.NewRetrier(heimdall.NewConstantBackoff(1*time.Second, 100*time.Millisecond))),
	)

	return &ServiceMarket{client, cache, logger, baseURL}, nil
}

type dexPair struct {
	PriceUSD  string `json:"priceUsd"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	MarketCap float64 `json:"marketCap"`
	FDV       float64 `json:"fdv"`
}

type dexSearchResponse struct {
	Pairs []dexPair `json:"pairs"`
}

func (service *ServiceMarket) Lookup(ctx context.Context, ticker string) ([]models.MarketEntry, error) {
	callback := func() ([]models.MarketEntry, error) {
		return service.fetch(ctx, ticker)
	}

	return caching.UseCache(ctx, service.cache, DBKeyMarketTicker(ticker), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceMarket) fetch(ctx context.Context, ticker string) ([]models.MarketEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?q=%s", service.baseURL, url.QueryEscape(ticker)), nil)
	if err != nil {
		return nil, err
	}

	resp, err := service.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market search %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market search %s: status %d", ticker, resp.StatusCode)
	}

	var payload dexSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("market search %s: %w", ticker, err)
	}

	entries := make([]models.MarketEntry, 0, MARKET_ENTRY_LIMIT)
	for _, pair := range payload.Pairs {
		if len(entries) == MARKET_ENTRY_LIMIT {
			break
		}

		price, _ := strconv.ParseFloat(pair.PriceUSD, 64)
		entries = append(entries, models.MarketEntry{
			PriceUSD:     price,
			LiquidityUSD: pair.Liquidity.USD,
			MarketCap:    pair.MarketCap,
			FDV:          pair.FDV,
		})
	}

	service.logger.Debug("market lookup",
		zap.String("ticker", ticker),
		zap.Int("entries", len(entries)))

	return entries, nil
}
