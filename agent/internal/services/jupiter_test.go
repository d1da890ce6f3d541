package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceBatch_ParsesPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("ids"), memeMint)
		w.Write([]byte(`{"data": {
			"` + memeMint + `": {"id": "` + memeMint + `", "price": "0.00231"},
			"` + usdcMint + `": null
		}}`))
	}))
	defer srv.Close()

	prices, err := NewJupiterClient(srv.URL).PriceBatch(context.Background(), []string{memeMint, usdcMint})
	require.NoError(t, err)
	assert.Equal(t, 0.00231, prices[memeMint])
	assert.Zero(t, prices[usdcMint], "null entries map to zero")
}

func TestPriceBatch_RejectsOversizedBatch(t *testing.T) {
	mints := make([]string, PriceBatchLimit+1)
	_, err := NewJupiterClient("http://unused").PriceBatch(context.Background(), mints)
	assert.Error(t, err)
}

func TestPriceBatch_EmptyBatchSkipsRequest(t *testing.T) {
	prices, err := NewJupiterClient("http://unused").PriceBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestPriceBatch_UnparseablePriceIsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"` + memeMint + `": {"id": "` + memeMint + `", "price": "nope"}}}`))
	}))
	defer srv.Close()

	prices, err := NewJupiterClient(srv.URL).PriceBatch(context.Background(), []string{memeMint})
	require.NoError(t, err)
	assert.Zero(t, prices[memeMint])
}
