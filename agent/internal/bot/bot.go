package bot

import (
	"context"
	"fmt"

	"whale-watcher/agent/database"
	"whale-watcher/shared/logger"
	"whale-watcher/shared/notifications"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var appLogger *logger.Logger
var botInstance *tgbotapi.BotAPI
var filterStore *database.FilterStore

// InitializeBot wires the command listener to the shared bot instance.
func InitializeBot(logInstance *logger.Logger, store *database.FilterStore) error {
	if logInstance == nil {
		fmt.Println("FATAL ERROR: InitializeBot requires a non-nil logger instance")
		return fmt.Errorf("logger instance provided to InitializeBot is nil")
	}
	appLogger = logInstance
	filterStore = store
	botInstance = notifications.GetBotInstance()
	if botInstance == nil {
		appLogger.Error("Could not retrieve initialized Telegram bot instance from notifications package. Bot may not function.")
		return fmt.Errorf("failed to get tgbotapi bot instance")
	}
	appLogger.Info("Telegram bot interaction services initialized.")
	return nil
}

// StartListening consumes command updates until the context is cancelled.
func StartListening(ctx context.Context) {
	if appLogger == nil {
		fmt.Println("ERROR: Logger not initialized for bot listener. Cannot start.")
		return
	}
	if botInstance == nil {
		appLogger.Warn("Bot API instance not available. Cannot start command listener.")
		return
	}
	appLogger.Info("Starting bot command listener...")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botInstance.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			appLogger.Debug("Received command message",
				"chatID", update.Message.Chat.ID,
				"fromUserID", update.Message.From.ID,
				"text", update.Message.Text,
			)

			command := update.Message.Command()
			args := update.Message.CommandArguments()
			go HandleCommand(update, command, args)

		case <-ctx.Done():
			appLogger.Info("Context cancelled. Stopping Telegram listener.")
			return
		}
	}
}

// SendReply sends plain text back to the chat a command came from.
func SendReply(chatID int64, text string) {
	if botInstance == nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := botInstance.Send(msg); err != nil {
		appLogger.Warn("Failed to send command reply", "chatID", chatID, "error", err)
	}
}
