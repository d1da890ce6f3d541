package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"whale-watcher/agent/internal/events"
	"whale-watcher/agent/internal/models"

	"github.com/stretchr/testify/assert"
)

type fakeFeed struct {
	swaps []events.Swap
	err   error
}

func (f *fakeFeed) FetchSwaps(context.Context) ([]events.Swap, error) {
	return f.swaps, f.err
}

type fakeResolver struct {
	cache map[string]EnrichedToken
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, mints []string) map[string]EnrichedToken {
	f.calls++
	out := make(map[string]EnrichedToken, len(mints))
	for _, mint := range mints {
		out[mint] = f.cache[mint]
	}
	return out
}

type fakeFilterStore struct {
	users      []int64
	rows       map[int64][]models.FilterRow
	listErr    error
	filtersErr map[int64]error
}

func (f *fakeFilterStore) ListUsers(context.Context) ([]int64, error) {
	return f.users, f.listErr
}

func (f *fakeFilterStore) GetFilters(_ context.Context, userID int64) ([]models.FilterRow, error) {
	if err := f.filtersErr[userID]; err != nil {
		return nil, err
	}
	return f.rows[userID], nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages map[int64][]string
	err      error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{messages: map[int64][]string{}}
}

func (f *fakeNotifier) SendUserMessage(userID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[userID] = append(f.messages[userID], text)
	return nil
}

func watchRows() []models.FilterRow {
	return []models.FilterRow{{FilterType: FilterTypeNotifications, FilterValue: "on"}}
}

func newTestOrchestrator(t *testing.T, feed *fakeFeed, filters *fakeFilterStore, store *fakeTokenStore, notifier *fakeNotifier) *Orchestrator {
	t.Helper()
	tables := DefaultTables()
	classifier := NewClassifier(tables)
	log := testLogger(t)
	return NewOrchestrator(OrchestratorOptions{
		Feed:        feed,
		Resolver:    &fakeResolver{cache: map[string]EnrichedToken{}},
		Detector:    NewFirstMentionDetector(store, log),
		Filters:     filters,
		Evaluator:   NewEvaluator(tables, classifier, NewDeliveryHistory()),
		Formatter:   NewFormatter(tables, classifier),
		Notifier:    notifier,
		Logger:      log,
		UserWorkers: 2,
	})
}

func TestRunCycle_FetchFailureHasNoSideEffects(t *testing.T) {
	feed := &fakeFeed{err: errors.New("feed down")}
	store := newFakeTokenStore()
	notifier := newFakeNotifier()
	filters := &fakeFilterStore{users: []int64{1}, rows: map[int64][]models.FilterRow{1: watchRows()}}
	o := newTestOrchestrator(t, feed, filters, store, notifier)

	o.RunCycle(context.Background())

	assert.Empty(t, notifier.messages)
	assert.Empty(t, store.committed)
	stats := o.Stats()
	assert.Equal(t, int64(1), stats.CyclesRun)
	assert.Equal(t, "feed down", stats.LastError)
}

func TestRunCycle_AlertsMatchingUsersAndCommitsFirstMentions(t *testing.T) {
	feed := &fakeFeed{swaps: []events.Swap{buySwap(100)}}
	store := newFakeTokenStore()
	notifier := newFakeNotifier()
	filters := &fakeFilterStore{
		users: []int64{1, 2},
		rows: map[int64][]models.FilterRow{
			1: watchRows(),
			2: {}, // notifications default off
		},
	}
	o := newTestOrchestrator(t, feed, filters, store, notifier)

	o.RunCycle(context.Background())

	assert.Len(t, notifier.messages[1], 1)
	assert.Empty(t, notifier.messages[2])
	assert.Contains(t, store.committed, memeMint, "every new mint is committed, matched or not")

	stats := o.Stats()
	assert.Equal(t, int64(1), stats.AlertsSent)
	assert.Equal(t, int64(1), stats.SwapsSeen)
}

func TestRunCycle_DedupAcrossCycles(t *testing.T) {
	feed := &fakeFeed{swaps: []events.Swap{buySwap(100)}}
	store := newFakeTokenStore()
	notifier := newFakeNotifier()
	filters := &fakeFilterStore{users: []int64{1}, rows: map[int64][]models.FilterRow{1: watchRows()}}
	o := newTestOrchestrator(t, feed, filters, store, notifier)

	o.RunCycle(context.Background())
	o.RunCycle(context.Background())

	assert.Len(t, notifier.messages[1], 1, "the same swap must alert a user at most once")
}

func TestRunCycle_FilterLoadFailureSkipsOnlyThatUser(t *testing.T) {
	feed := &fakeFeed{swaps: []events.Swap{buySwap(100)}}
	store := newFakeTokenStore()
	notifier := newFakeNotifier()
	filters := &fakeFilterStore{
		users:      []int64{1, 2},
		rows:       map[int64][]models.FilterRow{2: watchRows()},
		filtersErr: map[int64]error{1: errors.New("deadlock")},
	}
	o := newTestOrchestrator(t, feed, filters, store, notifier)

	o.RunCycle(context.Background())

	assert.Empty(t, notifier.messages[1])
	assert.Len(t, notifier.messages[2], 1)
	assert.Equal(t, int64(1), o.Stats().UsersSkipped)
}

func TestRunCycle_ListUsersFailureAbortsBeforeCommit(t *testing.T) {
	feed := &fakeFeed{swaps: []events.Swap{buySwap(100)}}
	store := newFakeTokenStore()
	notifier := newFakeNotifier()
	filters := &fakeFilterStore{listErr: errors.New("connection reset")}
	o := newTestOrchestrator(t, feed, filters, store, notifier)

	o.RunCycle(context.Background())

	assert.Empty(t, notifier.messages)
	assert.Empty(t, store.committed, "first mentions stay uncommitted when evaluation never ran")
}

func TestRunCycle_SendFailureIsCounted(t *testing.T) {
	feed := &fakeFeed{swaps: []events.Swap{buySwap(100)}}
	store := newFakeTokenStore()
	notifier := newFakeNotifier()
	notifier.err = errors.New("blocked by user")
	filters := &fakeFilterStore{users: []int64{1}, rows: map[int64][]models.FilterRow{1: watchRows()}}
	o := newTestOrchestrator(t, feed, filters, store, notifier)

	o.RunCycle(context.Background())

	stats := o.Stats()
	assert.Equal(t, int64(0), stats.AlertsSent)
	assert.Equal(t, int64(1), stats.SendFailures)
}
