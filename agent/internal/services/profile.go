package services

import (
	"fmt"
	"strconv"
	"strings"

	"whale-watcher/agent/internal/models"

	"github.com/gagliardetto/solana-go"
)

// Filter row types as persisted in filter_rows.filter_type.
const (
	FilterTypeMode          = "mode"
	FilterTypeNotifications = "notifications"
	FilterTypeTokenWhite    = "token_whitelist"
	FilterTypeTokenBlack    = "token_blacklist"
	FilterTypeWhaleBlack    = "whale_blacklist"
	FilterTypeMinPurchase   = "min_purchase_usd"
	FilterTypeMaxMarketCap  = "max_market_cap_usd"
)

// Filter modes. Exactly one is active per user.
const (
	ModeAllTokens    = "all_tokens"
	ModeTokenFilter  = "token_filter"
	ModeFirstMention = "first_mention_only"
)

// MaxListEntries caps every per-user filter list.
const MaxListEntries = 20

// FilterProfile is a user's normalized filter configuration, rebuilt from
// raw stored rows on every cycle so it always reflects the latest state.
type FilterProfile struct {
	Mode                 string
	TokenWhitelist       map[string]struct{}
	TokenBlacklist       map[string]struct{}
	WhaleBlacklist       map[string]struct{}
	MinPurchaseUSD       int64 // 0 = unset
	MaxMarketCapUSD      int64 // 0 = unset
	NotificationsEnabled bool
}

// ProcessFilters folds raw (type, value) rows into a FilterProfile.
// Defaults: ALL_TOKENS mode, notifications off, no thresholds. Rows with
// unknown types or values that no longer parse are skipped; write-time
// validation should have rejected them already.
func ProcessFilters(rows []models.FilterRow) FilterProfile {
	profile := FilterProfile{
		Mode:           ModeAllTokens,
		TokenWhitelist: make(map[string]struct{}),
		TokenBlacklist: make(map[string]struct{}),
		WhaleBlacklist: make(map[string]struct{}),
	}

	for _, row := range rows {
		value := strings.TrimSpace(row.FilterValue)
		switch row.FilterType {
		case FilterTypeMode:
			switch value {
			case ModeAllTokens, ModeTokenFilter, ModeFirstMention:
				profile.Mode = value
			}
		case FilterTypeNotifications:
			profile.NotificationsEnabled = value == "on"
		case FilterTypeTokenWhite:
			if len(profile.TokenWhitelist) < MaxListEntries {
				profile.TokenWhitelist[value] = struct{}{}
			}
		case FilterTypeTokenBlack:
			if len(profile.TokenBlacklist) < MaxListEntries {
				profile.TokenBlacklist[value] = struct{}{}
			}
		case FilterTypeWhaleBlack:
			if len(profile.WhaleBlacklist) < MaxListEntries {
				profile.WhaleBlacklist[value] = struct{}{}
			}
		case FilterTypeMinPurchase:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
				profile.MinPurchaseUSD = n
			}
		case FilterTypeMaxMarketCap:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
				profile.MaxMarketCapUSD = n
			}
		}
	}
	return profile
}

// ValidateFilterValue checks a raw filter value at write time. Malformed
// values are rejected here, never silently coerced. Returns the normalized
// value to store.
func ValidateFilterValue(filterType, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("empty filter value")
	}

	switch filterType {
	case FilterTypeMode:
		switch value {
		case ModeAllTokens, ModeTokenFilter, ModeFirstMention:
			return value, nil
		}
		return "", fmt.Errorf("unknown mode %q", value)
	case FilterTypeNotifications:
		if value == "on" || value == "off" {
			return value, nil
		}
		return "", fmt.Errorf("notifications must be 'on' or 'off'")
	case FilterTypeMinPurchase, FilterTypeMaxMarketCap:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("%s must be a positive integer, got %q", filterType, value)
		}
		return strconv.FormatInt(n, 10), nil
	case FilterTypeTokenWhite, FilterTypeTokenBlack:
		// Token filters accept either a symbol (short, uppercased) or a
		// mint address.
		if len(value) <= 10 {
			return strings.ToUpper(value), nil
		}
		if _, err := solana.PublicKeyFromBase58(value); err != nil {
			return "", fmt.Errorf("invalid mint address %q: %w", value, err)
		}
		return value, nil
	case FilterTypeWhaleBlack:
		if _, err := solana.PublicKeyFromBase58(value); err != nil {
			return "", fmt.Errorf("invalid wallet address %q: %w", value, err)
		}
		return value, nil
	}
	return "", fmt.Errorf("unknown filter type %q", filterType)
}

// IsListFilter reports whether a filter type is one of the bounded lists.
func IsListFilter(filterType string) bool {
	switch filterType {
	case FilterTypeTokenWhite, FilterTypeTokenBlack, FilterTypeWhaleBlack:
		return true
	}
	return false
}
