package notifications

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"whale-watcher/shared/env"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

var bot *tgbotapi.BotAPI
var isInitialized bool = false
var telegramLimiter *rate.Limiter

// InitTelegramBot initializes the shared bot instance used both for alert
// delivery and the command listener.
func InitTelegramBot() error {
	if isInitialized && bot != nil {
		log.Println("INFO: Telegram bot already initialized.")
		return nil
	}

	isInitialized = false
	bot = nil
	telegramLimiter = nil

	botToken := env.TelegramBotToken
	if botToken == "" {
		return fmt.Errorf("critical error: TELEGRAM_BOT_TOKEN missing from env configuration")
	}

	log.Println("Initializing Telegram bot API...")
	var err error
	bot, err = tgbotapi.NewBotAPI(botToken)
	if err != nil {
		bot = nil
		return fmt.Errorf("failed to initialize Telegram bot API: %w", err)
	}

	userInfo, err := bot.GetMe()
	if err != nil {
		bot = nil
		return fmt.Errorf("failed to verify bot token with GetMe API call: %w", err)
	}

	isInitialized = true
	// Telegram allows ~30 msgs/sec overall; stay well under it.
	telegramLimiter = rate.NewLimiter(rate.Limit(20), 5)
	log.Printf("Telegram bot initialized successfully for @%s", userInfo.UserName)

	return nil
}

func GetBotInstance() *tgbotapi.BotAPI {
	if !isInitialized || bot == nil {
		log.Println("WARN: GetBotInstance called but bot is not initialized or initialization failed.")
	}
	return bot
}

// SendTelegramMessage sends an operational message to the configured ops
// group. Used by the logger for WARN/ERROR mirroring.
func SendTelegramMessage(message string) {
	if env.TelegramGroupID == 0 {
		return
	}
	sendMessageWithRetry(env.TelegramGroupID, message)
}

// SendUserMessage delivers an alert to a single user chat. Fire-and-forget:
// failures are logged and reported to the caller, never retried beyond the
// bounded retry loop.
func SendUserMessage(userID int64, text string) error {
	return sendMessageWithRetry(userID, text)
}

func sendMessageWithRetry(chatID int64, text string) error {
	if bot == nil {
		log.Println("ERROR: Cannot send message, Telegram bot is not initialized.")
		return fmt.Errorf("telegram bot not initialized")
	}
	if chatID == 0 {
		log.Println("ERROR: Cannot send message, target chatID is 0.")
		return fmt.Errorf("target chatID is 0")
	}

	if telegramLimiter != nil {
		if err := telegramLimiter.Wait(context.Background()); err != nil {
			log.Printf("ERROR: Telegram rate limiter wait error for chat %d: %v. Proceeding with send attempt...", chatID, err)
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	maxRetries := 3
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		_, err := bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err

		if tgErr, ok := err.(*tgbotapi.Error); ok {
			log.Printf("ERROR: Failed Telegram send (Attempt %d/%d): API Err %d - %s [ChatID: %d]",
				i+1, maxRetries, tgErr.Code, tgErr.Message, chatID)
			if tgErr.Code == 429 {
				retryAfter := tgErr.RetryAfter
				if retryAfter <= 0 {
					retryAfter = 1
				}
				time.Sleep(time.Duration(retryAfter) * time.Second)
				continue
			}
			// A blocked bot or unknown chat never succeeds on retry.
			if tgErr.Code == 403 || tgErr.Code == 400 {
				return err
			}
		} else {
			log.Printf("ERROR: Failed Telegram send (Attempt %d/%d): %v [ChatID: %d]", i+1, maxRetries, err, chatID)
		}

		if i < maxRetries-1 {
			waitDuration := time.Duration(math.Pow(2, float64(i))) * time.Second
			time.Sleep(waitDuration)
		}
	}
	log.Printf("ERROR: Telegram message failed to send after %d retries. Last Error: %v. [ChatID: %d]", maxRetries, lastErr, chatID)
	return lastErr
}

var markdownV2Replacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
	"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
)

// EscapeMarkdownV2 escapes text for Telegram MarkdownV2 parse mode.
func EscapeMarkdownV2(text string) string {
	return markdownV2Replacer.Replace(text)
}
