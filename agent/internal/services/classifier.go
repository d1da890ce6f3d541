package services

import "whale-watcher/agent/internal/events"

// Classifier determines swap direction and notional USD value.
type Classifier struct {
	tables *Tables
}

func NewClassifier(tables *Tables) *Classifier {
	return &Classifier{tables: tables}
}

// IsBuy reports whether the swap is a token purchase: the whale is buying
// whenever the output side is neither a stablecoin nor native SOL.
func (c *Classifier) IsBuy(swap events.Swap) bool {
	return !c.tables.IsStablecoin(swap.TokenOut) && !c.tables.IsNative(swap.TokenOut)
}

// ValueUSD estimates the swap's notional value. The input side is tried
// first, then the output side; 0 means unknown and never blocks delivery on
// its own.
func (c *Classifier) ValueUSD(swap events.Swap, cache map[string]EnrichedToken) float64 {
	if v, ok := c.sideValueUSD(swap.TokenIn, cache); ok {
		return v
	}
	if v, ok := c.sideValueUSD(swap.TokenOut, cache); ok {
		return v
	}
	return 0
}

func (c *Classifier) sideValueUSD(ref events.TokenRef, cache map[string]EnrichedToken) (float64, bool) {
	if ref.Amount <= 0 {
		return 0, false
	}
	// Stablecoin amounts are USD at peg.
	if c.tables.IsStablecoin(ref) {
		return ref.Amount, true
	}
	if c.tables.IsNative(ref) {
		price := cache[events.SolMintAddress].Price
		if price <= 0 {
			price = c.tables.SolFallbackPrice
		}
		return ref.Amount * price, true
	}
	if enriched, ok := cache[ref.Mint]; ok && enriched.Price > 0 {
		return ref.Amount * enriched.Price, true
	}
	return 0, false
}

// RelevantToken returns the side a user's token filters apply to: the
// bought token on a buy, the sold token on a sell.
func (c *Classifier) RelevantToken(swap events.Swap) events.TokenRef {
	if c.IsBuy(swap) {
		return swap.TokenOut
	}
	return swap.TokenIn
}
