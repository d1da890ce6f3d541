package services

import (
	"context"

	"whale-watcher/agent/internal/models"
)

// FilterStore is the durable per-user filter row store the cycle reads
// from. Profiles are rebuilt from rows on every cycle.
type FilterStore interface {
	GetFilters(ctx context.Context, userID int64) ([]models.FilterRow, error)
	ListUsers(ctx context.Context) ([]int64, error)
}

// TokenStore is the durable known-token registry behind first-mention
// detection. CommitFirstMention must be an idempotent upsert: a duplicate
// insert racing another process is success, not an error.
type TokenStore interface {
	IsTokenKnown(ctx context.Context, mint string) (bool, error)
	CommitFirstMention(ctx context.Context, mint string, symbol string) error
}
