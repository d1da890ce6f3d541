package services

import "whale-watcher/agent/internal/events"

// Tables bundles the static lookup data the resolver and evaluator depend
// on. Injected rather than referenced inline so deployments can swap the
// data without code changes.
type Tables struct {
	// Stablecoins maps recognized stablecoin symbols (uppercase) to their
	// USD peg assumption.
	Stablecoins map[string]struct{}

	// SymbolAliases maps well-known mints to their canonical symbol, used
	// when the feed or the price sources carry no symbol metadata.
	SymbolAliases map[string]string

	// KnownSupplies maps a symbol (uppercase) or a mint suffix to a fixed
	// circulating supply. Market cap = price × supply for these tokens.
	KnownSupplies map[string]float64

	// SpamMintPrefixes rejects any swap whose mint starts with one of
	// these prefixes.
	SpamMintPrefixes []string

	// BlockedMints and BlockedWhales are global blocklists applied for
	// every user before any per-user filter.
	BlockedMints  map[string]struct{}
	BlockedWhales map[string]struct{}

	// SolFallbackPrice values SOL legs when neither source resolves a
	// price for the SOL mint.
	SolFallbackPrice float64
}

// DefaultTables returns the built-in lookup data.
func DefaultTables() *Tables {
	return &Tables{
		Stablecoins: map[string]struct{}{
			"USDC":  {},
			"USDT":  {},
			"USDH":  {},
			"UXD":   {},
			"PYUSD": {},
			"USDS":  {},
		},
		SymbolAliases: map[string]string{
			events.SolMintAddress:                          "SOL",
			"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
			"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
			"2b1kV6DkPAnxd5ixfnxCpjxmKwqjjaYmCZfHsFu24GXo": "PYUSD",
			"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": "BONK",
			"EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm": "WIF",
			"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  "JUP",
		},
		KnownSupplies: map[string]float64{
			// Pump.fun launches mint a fixed 1B supply; their mints share
			// the vanity suffix.
			"pump": 1_000_000_000,
			"BONK": 88_800_000_000_000,
			"WIF":  998_800_000,
		},
		SpamMintPrefixes: []string{
			"spam",
			"Scam",
		},
		BlockedMints: map[string]struct{}{},
		BlockedWhales: map[string]struct{}{
			// MEV bundlers that flood the feed with wash trades.
			"jitodontfront111111111111111111111111111111": {},
		},
		SolFallbackPrice: 150.0,
	}
}

// SymbolFor resolves the display symbol for one side of a swap: alias table
// first, then the feed's own metadata.
func (t *Tables) SymbolFor(ref events.TokenRef) string {
	if alias, ok := t.SymbolAliases[ref.Mint]; ok {
		return alias
	}
	return ref.Symbol
}

// IsStablecoin reports whether the given token is a recognized stablecoin.
func (t *Tables) IsStablecoin(ref events.TokenRef) bool {
	symbol := t.SymbolFor(ref)
	_, ok := t.Stablecoins[symbol]
	return ok
}

// IsNative reports whether the given token is the chain's native asset.
func (t *Tables) IsNative(ref events.TokenRef) bool {
	return ref.Mint == events.SolMintAddress || t.SymbolFor(ref) == "SOL"
}

// SupplyFor looks up a fixed supply for a symbol or mint suffix. Returns 0
// when no entry matches.
func (t *Tables) SupplyFor(symbol, mint string) float64 {
	if supply, ok := t.KnownSupplies[symbol]; ok {
		return supply
	}
	for key, supply := range t.KnownSupplies {
		if len(key) < len(mint) && mint[len(mint)-len(key):] == key {
			return supply
		}
	}
	return 0
}
