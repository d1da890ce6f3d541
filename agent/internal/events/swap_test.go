package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSwaps_ValidPayload(t *testing.T) {
	payload := []byte(`[
		{"signature":"sig1","timestamp":1724900000,"feePayer":"whale1",
		 "inputToken":{"mint":"MintA","symbol":"USDC","amount":100},
		 "outputToken":{"mint":"MintB","symbol":"ABC","amount":5000}},
		{"signature":"","feePayer":"whale2",
		 "inputToken":{"mint":"MintA","amount":1},
		 "outputToken":{"mint":"MintC","amount":2}}
	]`)

	swaps, err := ParseSwaps(payload)
	require.NoError(t, err)
	require.Len(t, swaps, 1, "entry without signature must be dropped")
	assert.Equal(t, "sig1", swaps[0].Signature)
	assert.Equal(t, int64(1724900000), swaps[0].Timestamp)
	assert.Equal(t, "MintB", swaps[0].TokenOut.Mint)
	assert.Equal(t, 100.0, swaps[0].TokenIn.Amount)
}

func TestParseSwaps_NotAnArray(t *testing.T) {
	_, err := ParseSwaps([]byte(`{"error":"unavailable"}`))
	require.Error(t, err)
}

func TestParseSwaps_MissingMint(t *testing.T) {
	payload := []byte(`[{"signature":"sig1","inputToken":{"mint":""},"outputToken":{"mint":"MintB"}}]`)
	swaps, err := ParseSwaps(payload)
	require.NoError(t, err)
	assert.Empty(t, swaps)
}

func TestUniqueMints(t *testing.T) {
	swaps := []Swap{
		{Signature: "s1", TokenIn: TokenRef{Mint: "A"}, TokenOut: TokenRef{Mint: "B"}},
		{Signature: "s2", TokenIn: TokenRef{Mint: "B"}, TokenOut: TokenRef{Mint: "C"}},
		{Signature: "s3", TokenIn: TokenRef{Mint: "A"}, TokenOut: TokenRef{Mint: "C"}},
	}
	assert.Equal(t, []string{"A", "B", "C"}, UniqueMints(swaps))
}
