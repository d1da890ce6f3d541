package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMarket_ParsesFirstPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{
				"chainId": "solana",
				"dexId": "raydium",
				"baseToken": {"address": "` + memeMint + `", "symbol": "MEME"},
				"priceUsd": "0.0021",
				"priceChange": {"h1": 1.2, "h24": -7.5},
				"fdv": 5000000,
				"marketCap": 2100000
			},
			{"priceUsd": "0.0019", "marketCap": 1}
		]`))
	}))
	defer srv.Close()

	data, err := NewDexScreenerClient(srv.URL).TokenMarket(context.Background(), memeMint)
	require.NoError(t, err)
	assert.Equal(t, 0.0021, data.PriceUSD)
	assert.Equal(t, 2_100_000.0, data.MarketCap, "marketCap wins over FDV")
	assert.Equal(t, -7.5, data.PriceChange24h)
	assert.Equal(t, "MEME", data.Symbol)
}

func TestTokenMarket_FDVFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"priceUsd": "0.5", "fdv": 750000}]`))
	}))
	defer srv.Close()

	data, err := NewDexScreenerClient(srv.URL).TokenMarket(context.Background(), memeMint)
	require.NoError(t, err)
	assert.Equal(t, 750_000.0, data.MarketCap)
}

func TestTokenMarket_UnknownTokenIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	data, err := NewDexScreenerClient(srv.URL).TokenMarket(context.Background(), memeMint)
	require.NoError(t, err)
	assert.Zero(t, data.PriceUSD)
	assert.Zero(t, data.MarketCap)
}

func TestTokenMarket_EmptyPairList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	data, err := NewDexScreenerClient(srv.URL).TokenMarket(context.Background(), memeMint)
	require.NoError(t, err)
	assert.Zero(t, data.MarketCap)
}

func TestTokenMarket_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewDexScreenerClient(srv.URL).TokenMarket(context.Background(), memeMint)
	assert.Error(t, err)
}
