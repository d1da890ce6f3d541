package services

import (
	"context"

	"whale-watcher/agent/internal/events"
	"whale-watcher/shared/logger"
)

// FirstMentionDetector classifies which mints in a batch have never been
// recorded in the known-token store. Detection is a pure read; markers are
// committed separately once the whole cycle has been evaluated, so a crash
// mid-cycle cannot silently eat a first mention.
type FirstMentionDetector struct {
	store TokenStore
	log   *logger.Logger
}

func NewFirstMentionDetector(store TokenStore, log *logger.Logger) *FirstMentionDetector {
	return &FirstMentionDetector{store: store, log: log}
}

// Detect returns the set of mints in the batch absent from the known-token
// store. A store error for a mint counts it as known: better to miss one
// first-mention tag than to alert on uncertainty.
func (d *FirstMentionDetector) Detect(ctx context.Context, swaps []events.Swap) map[string]struct{} {
	firstMentions := make(map[string]struct{})
	for _, mint := range events.UniqueMints(swaps) {
		known, err := d.store.IsTokenKnown(ctx, mint)
		if err != nil {
			d.log.Warn("Known-token lookup failed, treating mint as already known", "mint", mint, "error", err)
			continue
		}
		if !known {
			firstMentions[mint] = struct{}{}
		}
	}
	return firstMentions
}

// Commit persists first-mention markers, attaching the symbol discovered
// during enrichment when available. Failures are isolated per mint; an
// uncommitted mint is simply detected again next cycle.
func (d *FirstMentionDetector) Commit(ctx context.Context, mints map[string]struct{}, cache map[string]EnrichedToken) {
	for mint := range mints {
		symbol := cache[mint].Symbol
		if err := d.store.CommitFirstMention(ctx, mint, symbol); err != nil {
			d.log.Error("Failed to commit first-mention marker", "mint", mint, "error", err)
		}
	}
}
