package services

import (
	"context"
	"errors"
	"testing"

	"whale-watcher/agent/internal/events"
	"whale-watcher/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenStore struct {
	known     map[string]bool
	lookupErr error
	committed map[string]string
	commitErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		known:     map[string]bool{},
		committed: map[string]string{},
	}
}

func (s *fakeTokenStore) IsTokenKnown(_ context.Context, mint string) (bool, error) {
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	return s.known[mint], nil
}

func (s *fakeTokenStore) CommitFirstMention(_ context.Context, mint, symbol string) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed[mint] = symbol
	s.known[mint] = true
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.Config{Level: "error"})
	require.NoError(t, err)
	return log
}

func TestFirstMention_DetectAndCommit(t *testing.T) {
	store := newFakeTokenStore()
	store.known[usdcMint] = true
	d := NewFirstMentionDetector(store, testLogger(t))

	swaps := []events.Swap{buySwap(100)}
	firstMentions := d.Detect(context.Background(), swaps)
	assert.Contains(t, firstMentions, memeMint)
	assert.NotContains(t, firstMentions, usdcMint)

	cache := map[string]EnrichedToken{memeMint: {Mint: memeMint, Symbol: "MEME"}}
	d.Commit(context.Background(), firstMentions, cache)
	assert.Equal(t, "MEME", store.committed[memeMint])

	// Next cycle the mint is known and no longer a first mention.
	assert.Empty(t, d.Detect(context.Background(), swaps))
}

func TestFirstMention_StoreErrorTreatedAsKnown(t *testing.T) {
	store := newFakeTokenStore()
	store.lookupErr = errors.New("connection refused")
	d := NewFirstMentionDetector(store, testLogger(t))

	firstMentions := d.Detect(context.Background(), []events.Swap{buySwap(100)})
	assert.Empty(t, firstMentions, "lookup failures must not produce first-mention alerts")
}

func TestFirstMention_CommitFailureIsIsolated(t *testing.T) {
	store := newFakeTokenStore()
	store.commitErr = errors.New("deadlock detected")
	d := NewFirstMentionDetector(store, testLogger(t))

	d.Commit(context.Background(), map[string]struct{}{memeMint: {}}, nil)
	assert.Empty(t, store.committed)
}
