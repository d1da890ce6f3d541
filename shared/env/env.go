package env

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	TelegramBotToken string
	TelegramGroupID  int64

	SwapFeedURL   string
	PriceAPIURL   string
	MarketDataURL string

	Port string

	DATABASE_URL string

	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
)

func loadEnvVariable(key string, isRequired bool) string {
	value := os.Getenv(key)
	if isRequired && value == "" {
		log.Fatalf("FATAL: Environment variable %s is required but not set.", key)
	}
	isHidden := key == "TELEGRAM_BOT_TOKEN" || key == "PGPASSWORD" || key == "DATABASE_URL"
	if value == "" {
		if !isRequired {
			log.Printf("INFO: Environment variable %s is not set.", key)
		}
	} else if isHidden {
		log.Printf("INFO: Loaded %s (value hidden)", key)
	} else {
		log.Printf("INFO: Loaded %s = %s", key, value)
	}
	return value
}

func loadInt64Env(key string, required bool) int64 {
	strValue := loadEnvVariable(key, required)
	if strValue == "" {
		if !required {
			return 0
		}
		log.Fatalf("FATAL: Required int64 environment variable %s is missing after load.", key)
		return 0
	}
	id, err := strconv.ParseInt(strValue, 10, 64)
	if err != nil {
		log.Fatalf("FATAL: Failed to parse int64 environment variable %s='%s': %v", key, strValue, err)
	}
	return id
}

func LoadEnv() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("INFO: .env file not found or error loading, relying on system environment variables.")
	} else {
		log.Println("INFO: .env file loaded successfully.")
	}

	TelegramBotToken = loadEnvVariable("TELEGRAM_BOT_TOKEN", true)
	TelegramGroupID = loadInt64Env("TELEGRAM_GROUP_ID", false)

	SwapFeedURL = loadEnvVariable("SWAP_FEED_URL", true)
	PriceAPIURL = loadEnvVariable("PRICE_API_URL", false)
	MarketDataURL = loadEnvVariable("MARKET_DATA_URL", false)

	Port = loadEnvVariable("PORT", false)
	if Port == "" {
		Port = "8080"
		log.Printf("INFO: PORT not set, defaulting to %s", Port)
	}

	DATABASE_URL = loadEnvVariable("DATABASE_URL", false)

	PGHOST = loadEnvVariable("PGHOST", false)
	PGPORT = loadEnvVariable("PGPORT", false)
	PGUSER = loadEnvVariable("PGUSER", false)
	PGPASSWORD = loadEnvVariable("PGPASSWORD", false)
	PGDATABASE = loadEnvVariable("PGDATABASE", false)

	if DATABASE_URL == "" {
		log.Println("WARN: DATABASE_URL is not set. Connection logic will rely on PG* variables.")
	}
	if TelegramGroupID == 0 {
		log.Println("WARN: TELEGRAM_GROUP_ID is missing or zero. Operational log messages will not be mirrored to Telegram.")
	}

	log.Println("INFO: Environment variables loading process complete.")
	return nil
}
