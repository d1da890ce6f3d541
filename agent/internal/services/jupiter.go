package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultPriceAPIURL = "https://api.jup.ag/price/v2"

	// PriceBatchLimit is the maximum ids per bulk price request.
	PriceBatchLimit = 50
)

var jupiterLimiter = rate.NewLimiter(rate.Limit(8), 8)

// JupiterClient is the primary (bulk) price source.
type JupiterClient struct {
	baseURL string
	client  *http.Client
}

func NewJupiterClient(baseURL string) *JupiterClient {
	if baseURL == "" {
		baseURL = defaultPriceAPIURL
	}
	return &JupiterClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type jupiterPriceEntry struct {
	ID    string `json:"id"`
	Price string `json:"price"`
}

type jupiterPriceResponse struct {
	Data map[string]*jupiterPriceEntry `json:"data"`
}

// PriceBatch fetches USD prices for up to PriceBatchLimit mints in one
// request. Mints absent from the response map to 0.
func (c *JupiterClient) PriceBatch(ctx context.Context, mints []string) (map[string]float64, error) {
	if len(mints) == 0 {
		return map[string]float64{}, nil
	}
	if len(mints) > PriceBatchLimit {
		return nil, fmt.Errorf("price batch of %d exceeds limit %d", len(mints), PriceBatchLimit)
	}

	if err := jupiterLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("price API rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s?ids=%s", c.baseURL, strings.Join(mints, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading price API response: %w", err)
	}

	var parsed jupiterPriceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("price API JSON parsing failed: %w", err)
	}

	prices := make(map[string]float64, len(mints))
	for _, mint := range mints {
		entry := parsed.Data[mint]
		if entry == nil {
			prices[mint] = 0
			continue
		}
		price, err := strconv.ParseFloat(entry.Price, 64)
		if err != nil || price < 0 {
			prices[mint] = 0
			continue
		}
		prices[mint] = price
	}
	return prices, nil
}
