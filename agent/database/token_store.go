package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whale-watcher/agent/internal/models"

	"gorm.io/gorm"
)

// TokenStore is the durable known-token registry backing first-mention
// detection.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// IsTokenKnown reports whether the mint has ever been committed. Pure read.
func (s *TokenStore) IsTokenKnown(ctx context.Context, mint string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.KnownToken{}).
		Where("mint = ?", mint).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("known-token lookup for %s: %w", mint, err)
	}
	return count > 0, nil
}

// CommitFirstMention inserts the mint as known. Idempotent: a concurrent
// insert of the same mint by another process is success, not an error.
func (s *TokenStore) CommitFirstMention(ctx context.Context, mint string, symbol string) error {
	token := models.KnownToken{Mint: mint}
	result := s.db.WithContext(ctx).
		Where(&models.KnownToken{Mint: mint}).
		Attrs(&models.KnownToken{Symbol: symbol}).
		FirstOrCreate(&token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) || isDuplicateKeyError(result.Error) {
			return nil
		}
		return fmt.Errorf("committing first mention for %s: %w", mint, result.Error)
	}
	return nil
}

// isDuplicateKeyError matches the Postgres unique-violation surfaced by
// drivers that do not translate it to gorm.ErrDuplicatedKey.
func isDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
