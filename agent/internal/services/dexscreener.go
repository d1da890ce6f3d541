package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const defaultMarketDataURL = "https://api.dexscreener.com/tokens/v1/solana"

var dexScreenerLimiter = rate.NewLimiter(rate.Limit(4.66), 5)

// DexScreenerClient is the secondary per-token market data source. It fills
// in market cap, symbol and 24h change, and provides a price when the
// primary source has none.
type DexScreenerClient struct {
	baseURL string
	client  *http.Client
}

func NewDexScreenerClient(baseURL string) *DexScreenerClient {
	if baseURL == "" {
		baseURL = defaultMarketDataURL
	}
	return &DexScreenerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type dexToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type dexPair struct {
	ChainID     string             `json:"chainId"`
	DexID       string             `json:"dexId"`
	PairAddress string             `json:"pairAddress"`
	BaseToken   dexToken           `json:"baseToken"`
	QuoteToken  dexToken           `json:"quoteToken"`
	PriceUsd    string             `json:"priceUsd"`
	PriceChange map[string]float64 `json:"priceChange"`
	FDV         float64            `json:"fdv"`
	MarketCap   float64            `json:"marketCap"`
}

// MarketData is the reconciled view of one token on the secondary source.
type MarketData struct {
	PriceUSD       float64
	MarketCap      float64
	PriceChange24h float64
	Symbol         string
}

// TokenMarket fetches market data for a single mint. A token without pairs
// is not an error; it returns empty MarketData.
func (c *DexScreenerClient) TokenMarket(ctx context.Context, mint string) (*MarketData, error) {
	if err := dexScreenerLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("market data rate limiter for %s: %w", mint, err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market data request failed for %s: %w", mint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limit exceeded (429) for %s", mint)
	case resp.StatusCode == http.StatusNotFound:
		return &MarketData{}, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("market data request for %s failed with status: %s", mint, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading market data response for %s: %w", mint, err)
	}

	var pairs []dexPair
	if err := json.Unmarshal(body, &pairs); err != nil {
		return nil, fmt.Errorf("market data JSON parsing failed for %s: %w", mint, err)
	}
	if len(pairs) == 0 {
		return &MarketData{}, nil
	}

	pair := pairs[0]
	data := &MarketData{Symbol: pair.BaseToken.Symbol}

	if price, err := strconv.ParseFloat(pair.PriceUsd, 64); err == nil && price > 0 {
		data.PriceUSD = price
	}

	// Prefer the reported market cap, fall back to fully diluted value.
	data.MarketCap = pair.FDV
	if pair.MarketCap > 0 {
		data.MarketCap = pair.MarketCap
	}

	if change, ok := pair.PriceChange["h24"]; ok {
		data.PriceChange24h = change
	}

	return data, nil
}
