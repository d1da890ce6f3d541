package services

import (
	"fmt"
	"math"
	"strings"

	"whale-watcher/agent/internal/events"
	"whale-watcher/shared/notifications"
)

// Formatter renders a matched swap into the alert text sent to users.
// Rendering is deterministic and never fails on missing optional fields;
// anything unresolved renders as "Unknown".
type Formatter struct {
	tables     *Tables
	classifier *Classifier
}

func NewFormatter(tables *Tables, classifier *Classifier) *Formatter {
	return &Formatter{tables: tables, classifier: classifier}
}

// Format renders one alert in Telegram MarkdownV2.
func (f *Formatter) Format(swap events.Swap, isFirstMention bool, cache map[string]EnrichedToken) string {
	directionTag := "🔴 SELL"
	if f.classifier.IsBuy(swap) {
		directionTag = "🟢 BUY"
	}

	token := f.classifier.RelevantToken(swap)
	symbol := f.tables.SymbolFor(token)
	if symbol == "" {
		symbol = cache[token.Mint].Symbol
	}
	if symbol == "" {
		symbol = "Unknown"
	}

	valueUSD := f.classifier.ValueUSD(swap, cache)

	var sb strings.Builder
	if isFirstMention {
		sb.WriteString("🆕 *FIRST MENTION*\n")
	}
	sb.WriteString(fmt.Sprintf("*%s* %s\n", notifications.EscapeMarkdownV2(directionTag), notifications.EscapeMarkdownV2(symbol)))
	sb.WriteString(fmt.Sprintf("🐋 Whale: `%s`\n", notifications.EscapeMarkdownV2(TruncateAddress(swap.FeePayer))))
	sb.WriteString(fmt.Sprintf("🪙 Token: `%s`\n", notifications.EscapeMarkdownV2(token.Mint)))
	sb.WriteString(fmt.Sprintf("📦 Amount: %s\n", notifications.EscapeMarkdownV2(formatAmount(token.Amount))))
	sb.WriteString(fmt.Sprintf("💵 Value: %s\n", notifications.EscapeMarkdownV2(formatValueUSD(valueUSD))))
	sb.WriteString(fmt.Sprintf("🏦 Market Cap: %s\n", notifications.EscapeMarkdownV2(FormatMarketCap(cache[token.Mint].MarketCap))))
	sb.WriteString(fmt.Sprintf("🔗 [Transaction](https://solscan.io/tx/%s)", swap.Signature))
	return sb.String()
}

// TruncateAddress shortens a wallet address for display: first and last
// four characters.
func TruncateAddress(addr string) string {
	if addr == "" {
		return "Unknown"
	}
	if len(addr) <= 12 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}

// FormatMarketCap renders a market cap bucket: one decimal for billions
// and millions, integer thousands, "Unknown" when unresolved.
func FormatMarketCap(marketCap float64) string {
	switch {
	case marketCap >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", marketCap/1_000_000_000)
	case marketCap >= 1_000_000:
		return fmt.Sprintf("$%.1fM", marketCap/1_000_000)
	case marketCap >= 1_000:
		return fmt.Sprintf("$%dK", int64(marketCap/1_000))
	case marketCap > 0:
		return fmt.Sprintf("$%d", int64(marketCap))
	default:
		return "Unknown"
	}
}

func formatValueUSD(value float64) string {
	if value <= 0 {
		return "Unknown"
	}
	return fmt.Sprintf("$%d", int64(math.Round(value)))
}

func formatAmount(amount float64) string {
	if amount <= 0 {
		return "Unknown"
	}
	if amount >= 1000 || amount == math.Trunc(amount) {
		return fmt.Sprintf("%.0f", amount)
	}
	return fmt.Sprintf("%.4f", amount)
}
