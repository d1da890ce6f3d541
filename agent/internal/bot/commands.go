package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"whale-watcher/agent/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const genericFailure = "Oops! Something went wrong. Please try again."

func HandleCommand(update tgbotapi.Update, command string, args string) {
	if appLogger == nil || filterStore == nil {
		fmt.Printf("ERROR: bot package not initialized when handling command '%s'\n", command)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	appLogger.Info("Processing command",
		"command", command,
		"args", args,
		"userID", userID,
	)

	switch command {
	case "start":
		handleStart(chatID, userID)
	case "watch":
		handleNotifications(chatID, userID, true)
	case "mute":
		handleNotifications(chatID, userID, false)
	case "mode":
		handleMode(chatID, userID, args)
	case "addtoken":
		handleListAdd(chatID, userID, services.FilterTypeTokenWhite, args, "whitelist")
	case "removetoken":
		handleListRemove(chatID, userID, services.FilterTypeTokenWhite, args, "whitelist")
	case "blocktoken":
		handleListAdd(chatID, userID, services.FilterTypeTokenBlack, args, "token blacklist")
	case "unblocktoken":
		handleListRemove(chatID, userID, services.FilterTypeTokenBlack, args, "token blacklist")
	case "blockwhale":
		handleListAdd(chatID, userID, services.FilterTypeWhaleBlack, args, "whale blacklist")
	case "unblockwhale":
		handleListRemove(chatID, userID, services.FilterTypeWhaleBlack, args, "whale blacklist")
	case "minbuy":
		handleThreshold(chatID, userID, services.FilterTypeMinPurchase, args, "minimum purchase")
	case "maxmcap":
		handleThreshold(chatID, userID, services.FilterTypeMaxMarketCap, args, "maximum market cap")
	case "filters":
		handleShowFilters(chatID, userID)
	case "clearfilters":
		handleClearFilters(chatID, userID, args)
	case "help":
		handleHelp(chatID)
	default:
		appLogger.Warn("Unknown command received", "command", command)
		SendReply(chatID, fmt.Sprintf("Unknown command: /%s. Try /help", command))
	}
}

func handleStart(chatID, userID int64) {
	if err := filterStore.RegisterWatcher(context.Background(), userID); err != nil {
		appLogger.Error("Failed to register watcher", "userID", userID, "error", err)
		SendReply(chatID, genericFailure)
		return
	}
	SendReply(chatID, "Welcome to Whale Watcher! You are registered.\n"+
		"Alerts are off until you run /watch. See /help for filters.")
}

func handleNotifications(chatID, userID int64, enabled bool) {
	if err := filterStore.SetNotifications(context.Background(), userID, enabled); err != nil {
		appLogger.Error("Failed to toggle notifications", "userID", userID, "error", err)
		SendReply(chatID, genericFailure)
		return
	}
	if enabled {
		SendReply(chatID, "Alerts enabled. You will be notified of matching swaps.")
	} else {
		SendReply(chatID, "Alerts muted.")
	}
}

func handleMode(chatID, userID int64, args string) {
	var mode string
	switch strings.TrimSpace(strings.ToLower(args)) {
	case "all":
		mode = services.ModeAllTokens
	case "filter":
		mode = services.ModeTokenFilter
	case "first":
		mode = services.ModeFirstMention
	default:
		SendReply(chatID, "Usage: /mode {all|filter|first}")
		return
	}
	if err := filterStore.AddFilter(context.Background(), userID, services.FilterTypeMode, mode); err != nil {
		appLogger.Error("Failed to set mode", "userID", userID, "error", err)
		SendReply(chatID, genericFailure)
		return
	}
	SendReply(chatID, fmt.Sprintf("Mode set to %s. Alerts were muted. Run /watch to re-enable.", mode))
}

func handleListAdd(chatID, userID int64, filterType, args, label string) {
	value := strings.TrimSpace(args)
	if value == "" {
		SendReply(chatID, fmt.Sprintf("Usage: provide a token symbol or address to add to your %s.", label))
		return
	}
	if err := filterStore.AddFilter(context.Background(), userID, filterType, value); err != nil {
		appLogger.Warn("Filter add rejected", "userID", userID, "filterType", filterType, "error", err)
		SendReply(chatID, fmt.Sprintf("Could not add %q: %v", value, err))
		return
	}
	SendReply(chatID, fmt.Sprintf("Added %q to your %s. Alerts were muted. Run /watch to re-enable.", value, label))
}

func handleListRemove(chatID, userID int64, filterType, args, label string) {
	value := strings.TrimSpace(args)
	if value == "" {
		SendReply(chatID, fmt.Sprintf("Usage: provide the %s entry to remove.", label))
		return
	}
	if err := filterStore.RemoveFilter(context.Background(), userID, filterType, value); err != nil {
		appLogger.Warn("Filter remove rejected", "userID", userID, "filterType", filterType, "error", err)
		SendReply(chatID, fmt.Sprintf("Could not remove %q: %v", value, err))
		return
	}
	SendReply(chatID, fmt.Sprintf("Removed %q from your %s. Alerts were muted. Run /watch to re-enable.", value, label))
}

func handleThreshold(chatID, userID int64, filterType, args, label string) {
	value := strings.TrimSpace(args)
	if value == "" {
		SendReply(chatID, fmt.Sprintf("Usage: provide a positive USD amount for the %s filter.", label))
		return
	}
	if err := filterStore.AddFilter(context.Background(), userID, filterType, value); err != nil {
		appLogger.Warn("Threshold rejected", "userID", userID, "filterType", filterType, "error", err)
		SendReply(chatID, fmt.Sprintf("Could not set %s: %v", label, err))
		return
	}
	SendReply(chatID, fmt.Sprintf("%s filter set to $%s. Alerts were muted. Run /watch to re-enable.", label, value))
}

func handleShowFilters(chatID, userID int64) {
	rows, err := filterStore.GetFilters(context.Background(), userID)
	if err != nil {
		appLogger.Error("Failed to load filters", "userID", userID, "error", err)
		SendReply(chatID, genericFailure)
		return
	}
	profile := services.ProcessFilters(rows)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode: %s\n", profile.Mode))
	sb.WriteString(fmt.Sprintf("Alerts: %s\n", onOff(profile.NotificationsEnabled)))
	sb.WriteString(fmt.Sprintf("Whitelist: %s\n", setToLine(profile.TokenWhitelist)))
	sb.WriteString(fmt.Sprintf("Token blacklist: %s\n", setToLine(profile.TokenBlacklist)))
	sb.WriteString(fmt.Sprintf("Whale blacklist: %s\n", setToLine(profile.WhaleBlacklist)))
	if profile.MinPurchaseUSD > 0 {
		sb.WriteString(fmt.Sprintf("Min purchase: $%d\n", profile.MinPurchaseUSD))
	}
	if profile.MaxMarketCapUSD > 0 {
		sb.WriteString(fmt.Sprintf("Max market cap: $%d\n", profile.MaxMarketCapUSD))
	}
	SendReply(chatID, sb.String())
}

func handleClearFilters(chatID, userID int64, args string) {
	filterType := ""
	switch strings.TrimSpace(strings.ToLower(args)) {
	case "":
	case "whitelist":
		filterType = services.FilterTypeTokenWhite
	case "blacklist":
		filterType = services.FilterTypeTokenBlack
	case "whales":
		filterType = services.FilterTypeWhaleBlack
	default:
		SendReply(chatID, "Usage: /clearfilters [whitelist|blacklist|whales]")
		return
	}
	if err := filterStore.ClearFilters(context.Background(), userID, filterType); err != nil {
		appLogger.Error("Failed to clear filters", "userID", userID, "error", err)
		SendReply(chatID, genericFailure)
		return
	}
	SendReply(chatID, "Filters cleared. Alerts were muted. Run /watch to re-enable.")
}

func handleHelp(chatID int64) {
	SendReply(chatID, `Whale Watcher commands:
/start - register for alerts
/watch - enable alerts
/mute - disable alerts
/mode {all|filter|first} - all tokens, whitelist only, or first mentions only
/addtoken X /removetoken X - manage your whitelist
/blocktoken X /unblocktoken X - manage your token blacklist
/blockwhale ADDR /unblockwhale ADDR - manage your whale blacklist
/minbuy N - only swaps worth at least $N
/maxmcap N - only tokens with market cap at most $N
/filters - show your current profile
/clearfilters [whitelist|blacklist|whales] - reset filters`)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func setToLine(set map[string]struct{}) string {
	if len(set) == 0 {
		return "(empty)"
	}
	entries := make([]string, 0, len(set))
	for entry := range set {
		entries = append(entries, entry)
	}
	sort.Strings(entries)
	return strings.Join(entries, ", ")
}
