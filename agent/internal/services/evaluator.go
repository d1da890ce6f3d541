package services

import (
	"strings"

	"whale-watcher/agent/internal/events"
)

// Match is the outcome of evaluating one swap for one user.
type Match struct {
	Matches        bool
	IsFirstMention bool
}

// Evaluator applies a user's FilterProfile plus the global blocklists to a
// swap. Rules run in a fixed order and short-circuit on the first failure;
// on a match the swap is recorded in the delivery history before returning,
// so the same swap can never match the same user twice.
type Evaluator struct {
	tables     *Tables
	classifier *Classifier
	history    *DeliveryHistory
}

func NewEvaluator(tables *Tables, classifier *Classifier, history *DeliveryHistory) *Evaluator {
	return &Evaluator{tables: tables, classifier: classifier, history: history}
}

// History exposes the delivery history for cycle stats.
func (e *Evaluator) History() *DeliveryHistory {
	return e.history
}

func (e *Evaluator) Evaluate(userID int64, swap events.Swap, profile FilterProfile, firstMentions map[string]struct{}, cache map[string]EnrichedToken) Match {
	if !profile.NotificationsEnabled {
		return Match{}
	}

	if e.history.Seen(userID, swap.Signature) {
		return Match{}
	}

	// An explicitly whitelisted token alerts whether it is bought or sold,
	// even against plain currency.
	whitelistHit := profile.Mode == ModeTokenFilter &&
		(e.tokenInSet(swap.TokenIn, profile.TokenWhitelist) || e.tokenInSet(swap.TokenOut, profile.TokenWhitelist))

	// Native↔stable conversions are just currency moves, not token trades.
	if e.isCurrencyOnly(swap) && !whitelistHit {
		return Match{}
	}

	if e.isGloballyBlockedToken(swap.TokenIn) || e.isGloballyBlockedToken(swap.TokenOut) {
		return Match{}
	}

	if _, blocked := e.tables.BlockedWhales[swap.FeePayer]; blocked {
		return Match{}
	}

	_, inFirst := firstMentions[swap.TokenIn.Mint]
	_, outFirst := firstMentions[swap.TokenOut.Mint]
	isFirstMention := inFirst || outFirst

	if profile.Mode == ModeFirstMention && !isFirstMention {
		return Match{}
	}

	relevant := e.classifier.RelevantToken(swap)
	switch profile.Mode {
	case ModeTokenFilter:
		// An empty whitelist matches nothing.
		if !whitelistHit {
			return Match{IsFirstMention: isFirstMention}
		}
	default:
		// ALL_TOKENS and FIRST_MENTION_ONLY apply the blacklist rule.
		if e.tokenInSet(relevant, profile.TokenBlacklist) {
			return Match{IsFirstMention: isFirstMention}
		}
	}

	if _, blocked := profile.WhaleBlacklist[swap.FeePayer]; blocked {
		return Match{IsFirstMention: isFirstMention}
	}

	if profile.MinPurchaseUSD > 0 {
		if e.classifier.ValueUSD(swap, cache) < float64(profile.MinPurchaseUSD) {
			return Match{IsFirstMention: isFirstMention}
		}
	}

	if profile.MaxMarketCapUSD > 0 {
		// An unresolved market cap fails the check while this filter is
		// active.
		marketCap := cache[relevant.Mint].MarketCap
		if marketCap <= 0 || marketCap > float64(profile.MaxMarketCapUSD) {
			return Match{IsFirstMention: isFirstMention}
		}
	}

	e.history.Record(userID, swap.Signature)
	return Match{Matches: true, IsFirstMention: isFirstMention}
}

func (e *Evaluator) isCurrencyOnly(swap events.Swap) bool {
	inCurrency := e.tables.IsStablecoin(swap.TokenIn) || e.tables.IsNative(swap.TokenIn)
	outCurrency := e.tables.IsStablecoin(swap.TokenOut) || e.tables.IsNative(swap.TokenOut)
	return inCurrency && outCurrency
}

func (e *Evaluator) isGloballyBlockedToken(ref events.TokenRef) bool {
	if _, blocked := e.tables.BlockedMints[ref.Mint]; blocked {
		return true
	}
	for _, prefix := range e.tables.SpamMintPrefixes {
		if strings.HasPrefix(ref.Mint, prefix) {
			return true
		}
	}
	return false
}

// tokenInSet tests whitelist/blacklist membership by mint or by symbol
// (entries are stored as mints or uppercased symbols).
func (e *Evaluator) tokenInSet(ref events.TokenRef, set map[string]struct{}) bool {
	if len(set) == 0 {
		return false
	}
	if _, ok := set[ref.Mint]; ok {
		return true
	}
	if symbol := e.tables.SymbolFor(ref); symbol != "" {
		if _, ok := set[strings.ToUpper(symbol)]; ok {
			return true
		}
	}
	return false
}
