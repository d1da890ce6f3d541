package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore_FirstMentionLifecycle(t *testing.T) {
	s := NewTokenStore(newTestDB(t))
	ctx := context.Background()
	mint := "MemeMint1111111111111111111111111111111111"

	known, err := s.IsTokenKnown(ctx, mint)
	require.NoError(t, err)
	assert.False(t, known)

	require.NoError(t, s.CommitFirstMention(ctx, mint, "MEME"))

	known, err = s.IsTokenKnown(ctx, mint)
	require.NoError(t, err)
	assert.True(t, known)
}

func TestTokenStore_CommitIsIdempotent(t *testing.T) {
	s := NewTokenStore(newTestDB(t))
	ctx := context.Background()
	mint := "MemeMint1111111111111111111111111111111111"

	require.NoError(t, s.CommitFirstMention(ctx, mint, "MEME"))
	require.NoError(t, s.CommitFirstMention(ctx, mint, ""), "a concurrent duplicate insert is success, not an error")
}
