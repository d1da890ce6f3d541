package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"whale-watcher/agent/internal/events"
	"whale-watcher/shared/logger"
)

type SwapSource interface {
	FetchSwaps(ctx context.Context) ([]events.Swap, error)
}

type TokenResolver interface {
	Resolve(ctx context.Context, mints []string) map[string]EnrichedToken
}

type Notifier interface {
	SendUserMessage(userID int64, text string) error
}

// CycleStats is a snapshot of orchestrator counters for the status API.
type CycleStats struct {
	CyclesRun    int64     `json:"cyclesRun"`
	SwapsSeen    int64     `json:"swapsSeen"`
	AlertsSent   int64     `json:"alertsSent"`
	SendFailures int64     `json:"sendFailures"`
	UsersSkipped int64     `json:"usersSkipped"`
	LastRun      time.Time `json:"lastRun"`
	LastDuration string    `json:"lastDuration"`
	LastError    string    `json:"lastError,omitempty"`
}

// Orchestrator drives one poll tick:
// fetch → enrich → detect first mentions → evaluate per user → dispatch →
// commit first-mention markers. Cycles never overlap; a tick arriving while
// a cycle runs is skipped.
type Orchestrator struct {
	feed        SwapSource
	resolver    TokenResolver
	detector    *FirstMentionDetector
	filters     FilterStore
	evaluator   *Evaluator
	formatter   *Formatter
	notifier    Notifier
	log         *logger.Logger
	userWorkers int

	running atomic.Bool

	statsMu sync.Mutex
	stats   CycleStats
}

type OrchestratorOptions struct {
	Feed        SwapSource
	Resolver    TokenResolver
	Detector    *FirstMentionDetector
	Filters     FilterStore
	Evaluator   *Evaluator
	Formatter   *Formatter
	Notifier    Notifier
	Logger      *logger.Logger
	UserWorkers int
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	workers := opts.UserWorkers
	if workers <= 0 {
		workers = 4
	}
	return &Orchestrator{
		feed:        opts.Feed,
		resolver:    opts.Resolver,
		detector:    opts.Detector,
		filters:     opts.Filters,
		evaluator:   opts.Evaluator,
		formatter:   opts.Formatter,
		notifier:    opts.Notifier,
		log:         opts.Logger,
		userWorkers: workers,
	}
}

// Start runs the poll loop until the context is cancelled.
func (o *Orchestrator) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	o.log.Info("Starting swap poll loop", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.log.Info("Context cancelled. Stopping swap poll loop.")
			return
		case <-ticker.C:
			o.RunCycle(ctx)
		}
	}
}

// RunCycle executes a single poll cycle. Safe to call from the timer and
// from the manual trigger endpoint; concurrent calls are skipped.
func (o *Orchestrator) RunCycle(ctx context.Context) {
	if !o.running.CompareAndSwap(false, true) {
		o.log.Warn("Previous cycle still running, skipping this tick")
		return
	}
	defer o.running.Store(false)

	started := time.Now()

	// FETCHING. Any failure here aborts with no side effects.
	swaps, err := o.feed.FetchSwaps(ctx)
	if err != nil {
		o.log.Warn("Swap feed fetch failed, aborting cycle", "error", err)
		o.finishCycle(started, 0, 0, 0, 0, err)
		return
	}
	if len(swaps) == 0 {
		o.log.Debug("No swaps this cycle")
		o.finishCycle(started, 0, 0, 0, 0, nil)
		return
	}
	o.log.Info("Fetched swap batch", "swaps", len(swaps))

	// Provisional first-mention set, computed before any enrichment so the
	// whole cycle shares one view.
	firstMentions := o.detector.Detect(ctx, swaps)
	if len(firstMentions) > 0 {
		o.log.Info("Detected first mentions", "count", len(firstMentions))
	}

	// ENRICHING. Per-mint failures degrade to zero-value entries.
	cache := o.resolver.Resolve(ctx, events.UniqueMints(swaps))

	// EVALUATING.
	users, err := o.filters.ListUsers(ctx)
	if err != nil {
		o.log.Error("Failed to list users, aborting cycle before evaluation", "error", err)
		o.finishCycle(started, int64(len(swaps)), 0, 0, 0, err)
		return
	}

	var alertsSent, sendFailures, usersSkipped int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, o.userWorkers)
	for _, userID := range users {
		wg.Add(1)
		sem <- struct{}{}
		go func(userID int64) {
			defer wg.Done()
			defer func() { <-sem }()
			sent, failed, skipped := o.evaluateUser(ctx, userID, swaps, firstMentions, cache)
			atomic.AddInt64(&alertsSent, sent)
			atomic.AddInt64(&sendFailures, failed)
			if skipped {
				atomic.AddInt64(&usersSkipped, 1)
			}
		}(userID)
	}
	wg.Wait()

	// COMMITTING. Strictly after every user has been evaluated, so the
	// shared first-mention set stayed valid for the whole cycle.
	o.detector.Commit(ctx, firstMentions, cache)

	o.finishCycle(started, int64(len(swaps)), alertsSent, sendFailures, usersSkipped, nil)
	o.log.Info("Cycle complete",
		"swaps", len(swaps),
		"users", len(users),
		"alertsSent", alertsSent,
		"sendFailures", sendFailures,
		"duration", time.Since(started).Round(time.Millisecond))
}

// evaluateUser processes every swap in the batch for one user. Swaps are
// sequential within a user so delivery-history mutation never races itself.
func (o *Orchestrator) evaluateUser(ctx context.Context, userID int64, swaps []events.Swap, firstMentions map[string]struct{}, cache map[string]EnrichedToken) (sent, failed int64, skipped bool) {
	rows, err := o.filters.GetFilters(ctx, userID)
	if err != nil {
		o.log.Warn("Failed to load filters, skipping user this cycle", "userID", userID, "error", err)
		return 0, 0, true
	}

	profile := ProcessFilters(rows)
	if !profile.NotificationsEnabled {
		return 0, 0, false
	}

	for _, swap := range swaps {
		match := o.evaluator.Evaluate(userID, swap, profile, firstMentions, cache)
		if !match.Matches {
			continue
		}
		text := o.formatter.Format(swap, match.IsFirstMention, cache)
		if err := o.notifier.SendUserMessage(userID, text); err != nil {
			o.log.Warn("Alert delivery failed", "userID", userID, "signature", swap.Signature, "error", err)
			failed++
			continue
		}
		sent++
	}
	return sent, failed, false
}

func (o *Orchestrator) finishCycle(started time.Time, swaps, sent, failed, skipped int64, err error) {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()
	o.stats.CyclesRun++
	o.stats.SwapsSeen += swaps
	o.stats.AlertsSent += sent
	o.stats.SendFailures += failed
	o.stats.UsersSkipped += skipped
	o.stats.LastRun = started
	o.stats.LastDuration = time.Since(started).Round(time.Millisecond).String()
	if err != nil {
		o.stats.LastError = err.Error()
	} else {
		o.stats.LastError = ""
	}
}

// Stats returns a snapshot of cycle counters.
func (o *Orchestrator) Stats() CycleStats {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()
	return o.stats
}
