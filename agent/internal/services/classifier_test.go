package services

import (
	"testing"

	"whale-watcher/agent/internal/events"

	"github.com/stretchr/testify/assert"
)

const (
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	memeMint = "MemeMint1111111111111111111111111111111111"
)

func buySwap(amountIn float64) events.Swap {
	return events.Swap{
		Signature: "sig-buy",
		FeePayer:  "WhaleAddr",
		TokenIn:   events.TokenRef{Mint: usdcMint, Symbol: "USDC", Amount: amountIn},
		TokenOut:  events.TokenRef{Mint: memeMint, Symbol: "MEME", Amount: 5000},
	}
}

func TestClassifier_IsBuy(t *testing.T) {
	c := NewClassifier(DefaultTables())

	assert.True(t, c.IsBuy(buySwap(100)), "buying a non-currency token is a BUY")

	sell := events.Swap{
		TokenIn:  events.TokenRef{Mint: memeMint, Symbol: "MEME", Amount: 5000},
		TokenOut: events.TokenRef{Mint: usdcMint, Symbol: "USDC", Amount: 100},
	}
	assert.False(t, c.IsBuy(sell), "swapping into a stablecoin is a SELL")

	sellToSol := events.Swap{
		TokenIn:  events.TokenRef{Mint: memeMint, Symbol: "MEME", Amount: 5000},
		TokenOut: events.TokenRef{Mint: events.SolMintAddress, Amount: 2},
	}
	assert.False(t, c.IsBuy(sellToSol), "swapping into SOL is a SELL")
}

func TestClassifier_ValueUSD_StablecoinInput(t *testing.T) {
	c := NewClassifier(DefaultTables())
	// 100 USDC in: value is the amount at peg, no price lookup needed.
	assert.Equal(t, 100.0, c.ValueUSD(buySwap(100), nil))
}

func TestClassifier_ValueUSD_SolInput(t *testing.T) {
	c := NewClassifier(DefaultTables())
	swap := events.Swap{
		TokenIn:  events.TokenRef{Mint: events.SolMintAddress, Amount: 2},
		TokenOut: events.TokenRef{Mint: memeMint, Symbol: "MEME", Amount: 5000},
	}

	cache := map[string]EnrichedToken{
		events.SolMintAddress: {Mint: events.SolMintAddress, Price: 200},
	}
	assert.Equal(t, 400.0, c.ValueUSD(swap, cache))

	// Unresolved SOL price falls back to the table constant.
	fallback := c.ValueUSD(swap, nil)
	assert.Equal(t, 2*DefaultTables().SolFallbackPrice, fallback)
}

func TestClassifier_ValueUSD_ResolvedTokenPrice(t *testing.T) {
	c := NewClassifier(DefaultTables())
	swap := events.Swap{
		TokenIn:  events.TokenRef{Mint: "OtherMint111", Symbol: "OTHER", Amount: 10},
		TokenOut: events.TokenRef{Mint: memeMint, Symbol: "MEME", Amount: 5000},
	}
	cache := map[string]EnrichedToken{
		"OtherMint111": {Mint: "OtherMint111", Price: 2.5},
	}
	assert.Equal(t, 25.0, c.ValueUSD(swap, cache))
}

func TestClassifier_ValueUSD_OutputFallback(t *testing.T) {
	c := NewClassifier(DefaultTables())
	swap := events.Swap{
		TokenIn:  events.TokenRef{Mint: "UnpricedMint", Symbol: "NOPE", Amount: 10},
		TokenOut: events.TokenRef{Mint: memeMint, Symbol: "MEME", Amount: 5000},
	}
	cache := map[string]EnrichedToken{
		memeMint: {Mint: memeMint, Price: 0.01},
	}
	assert.Equal(t, 50.0, c.ValueUSD(swap, cache))
}

func TestClassifier_ValueUSD_Unknown(t *testing.T) {
	c := NewClassifier(DefaultTables())
	swap := events.Swap{
		TokenIn:  events.TokenRef{Mint: "UnpricedMint", Amount: 10},
		TokenOut: events.TokenRef{Mint: memeMint, Amount: 5000},
	}
	assert.Zero(t, c.ValueUSD(swap, nil), "no resolvable side means unknown value")
}

func TestClassifier_RelevantToken(t *testing.T) {
	c := NewClassifier(DefaultTables())

	buy := buySwap(100)
	assert.Equal(t, memeMint, c.RelevantToken(buy).Mint, "buys filter on the bought token")

	sell := events.Swap{
		TokenIn:  events.TokenRef{Mint: memeMint, Symbol: "MEME", Amount: 5000},
		TokenOut: events.TokenRef{Mint: usdcMint, Symbol: "USDC", Amount: 100},
	}
	assert.Equal(t, memeMint, c.RelevantToken(sell).Mint, "sells filter on the sold token")
}
