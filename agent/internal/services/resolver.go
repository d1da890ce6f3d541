package services

import (
	"context"
	"sync"
	"time"

	"whale-watcher/shared/logger"
)

// EnrichedToken is the cycle-scoped price view of a single mint. A
// zero-value entry (price 0, market cap 0) means enrichment failed or the
// token is unknown to both sources.
type EnrichedToken struct {
	Mint           string
	Symbol         string
	Price          float64
	MarketCap      float64
	PriceChange24h float64
	Source         string
	IsKnownSupply  bool
}

// Enrichment source provenance tags.
const (
	SourcePrimary   = "primary"
	SourceSecondary = "secondary"
	SourceNone      = "none"
)

type bulkPriceSource interface {
	PriceBatch(ctx context.Context, mints []string) (map[string]float64, error)
}

type marketDataSource interface {
	TokenMarket(ctx context.Context, mint string) (*MarketData, error)
}

// Resolver reconciles the two upstream price sources into per-mint
// EnrichedToken values. Failures are isolated per mint; a batch never
// aborts because one token could not be priced.
type Resolver struct {
	primary        bulkPriceSource
	secondary      marketDataSource
	tables         *Tables
	workers        int
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewResolver(primary bulkPriceSource, secondary marketDataSource, tables *Tables, workers int, requestTimeout time.Duration, log *logger.Logger) *Resolver {
	if workers <= 0 {
		workers = 8
	}
	if requestTimeout <= 0 {
		requestTimeout = 4 * time.Second
	}
	return &Resolver{
		primary:        primary,
		secondary:      secondary,
		tables:         tables,
		workers:        workers,
		requestTimeout: requestTimeout,
		log:            log,
	}
}

// Resolve enriches every unique mint in the set. The returned map contains
// an entry for every requested mint, zero-valued where both sources failed.
func (r *Resolver) Resolve(ctx context.Context, mints []string) map[string]EnrichedToken {
	cache := make(map[string]EnrichedToken, len(mints))
	if len(mints) == 0 {
		return cache
	}

	prices := r.bulkPrices(ctx, mints)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, r.workers)
	)
	for _, mint := range mints {
		wg.Add(1)
		sem <- struct{}{}
		go func(mint string) {
			defer wg.Done()
			defer func() { <-sem }()
			token := r.resolveOne(ctx, mint, prices[mint])
			mu.Lock()
			cache[mint] = token
			mu.Unlock()
		}(mint)
	}
	wg.Wait()

	return cache
}

// bulkPrices runs the chunked primary lookup. A failed chunk degrades to
// zero prices for its mints; the per-mint fallback picks them up.
func (r *Resolver) bulkPrices(ctx context.Context, mints []string) map[string]float64 {
	prices := make(map[string]float64, len(mints))
	for start := 0; start < len(mints); start += PriceBatchLimit {
		end := start + PriceBatchLimit
		if end > len(mints) {
			end = len(mints)
		}
		chunk := mints[start:end]

		callCtx, cancel := context.WithTimeout(ctx, r.requestTimeout)
		batch, err := r.primary.PriceBatch(callCtx, chunk)
		cancel()
		if err != nil {
			r.log.Warn("Primary price batch failed, mints fall back to secondary source", "mints", len(chunk), "error", err)
			continue
		}
		for mint, price := range batch {
			prices[mint] = price
		}
	}
	return prices
}

func (r *Resolver) resolveOne(ctx context.Context, mint string, primaryPrice float64) EnrichedToken {
	token := EnrichedToken{Mint: mint, Source: SourceNone}
	if alias, ok := r.tables.SymbolAliases[mint]; ok {
		token.Symbol = alias
	}

	callCtx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	market, err := r.secondary.TokenMarket(callCtx, mint)
	if err != nil {
		r.log.Debug("Secondary market lookup failed", "mint", mint, "error", err)
		market = nil
	}

	if primaryPrice > 0 {
		token.Price = primaryPrice
		token.Source = SourcePrimary
	} else if market != nil && market.PriceUSD > 0 {
		// Primary had no price: full per-mint dual-source fallback.
		token.Price = market.PriceUSD
		token.Source = SourceSecondary
	}

	if market != nil {
		if token.Symbol == "" {
			token.Symbol = market.Symbol
		}
		token.PriceChange24h = market.PriceChange24h
	}

	if token.Price <= 0 {
		// Both sources failed or the token is unpriced: zero-value entry.
		return token
	}

	if supply := r.tables.SupplyFor(token.Symbol, mint); supply > 0 {
		token.MarketCap = token.Price * supply
		token.IsKnownSupply = true
	} else if market != nil && market.MarketCap > 0 {
		token.MarketCap = market.MarketCap
	}

	return token
}
