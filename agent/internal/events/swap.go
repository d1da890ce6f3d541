package events

import (
	"encoding/json"
	"fmt"
)

// SolMintAddress is the mint address for native (wrapped) SOL.
const SolMintAddress = "So11111111111111111111111111111111111111112"

// TokenRef is one side of a swap as reported by the feed.
type TokenRef struct {
	Mint   string  `json:"mint"`
	Symbol string  `json:"symbol,omitempty"`
	Name   string  `json:"name,omitempty"`
	Amount float64 `json:"amount"`
}

// Swap is an immutable on-chain swap record from the feed. The pipeline
// never mutates it.
type Swap struct {
	Signature string `json:"signature"`
	// Timestamp is unix epoch seconds, as the feed reports it.
	Timestamp int64    `json:"timestamp"`
	FeePayer  string   `json:"feePayer"`
	TokenIn   TokenRef `json:"inputToken"`
	TokenOut  TokenRef `json:"outputToken"`
}

// ParseSwaps decodes a feed payload. A payload that is not a JSON array is
// an error; entries without a signature or without both mints are dropped.
func ParseSwaps(body []byte) ([]Swap, error) {
	var swaps []Swap
	if err := json.Unmarshal(body, &swaps); err != nil {
		return nil, fmt.Errorf("feed payload is not a swap array: %w", err)
	}

	valid := swaps[:0]
	for _, s := range swaps {
		if s.Signature == "" || s.TokenIn.Mint == "" || s.TokenOut.Mint == "" {
			continue
		}
		valid = append(valid, s)
	}
	return valid, nil
}

// UniqueMints returns every mint referenced as input or output across the
// batch, deduplicated, in first-seen order.
func UniqueMints(swaps []Swap) []string {
	seen := make(map[string]struct{}, len(swaps)*2)
	var mints []string
	for _, s := range swaps {
		for _, mint := range []string{s.TokenIn.Mint, s.TokenOut.Mint} {
			if mint == "" {
				continue
			}
			if _, ok := seen[mint]; ok {
				continue
			}
			seen[mint] = struct{}{}
			mints = append(mints, mint)
		}
	}
	return mints
}
