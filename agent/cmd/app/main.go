package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"whale-watcher/agent/database"
	"whale-watcher/agent/internal/bot"
	"whale-watcher/agent/internal/handlers"
	"whale-watcher/agent/internal/services"
	"whale-watcher/shared/config"
	"whale-watcher/shared/env"
	"whale-watcher/shared/logger"
	"whale-watcher/shared/notifications"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func startHeartbeat(appLogger *logger.Logger) {
	go func() {
		ticker := time.NewTicker(8 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			appLogger.Info("Heartbeat: Program running...")
		}
	}()
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Panicf("FATAL PANIC RECOVERY: %v", r)
		}
	}()

	if err := env.LoadEnv(); err != nil {
		log.Fatalf("FATAL: Failed to load environment variables: %v", err)
	}

	cfg, errCfg := config.LoadConfig("agent/config.yaml")
	if errCfg != nil {
		log.Fatalf("FATAL: Failed to load agent/config.yaml: %v", errCfg)
	}
	config.SetGlobalConfig(cfg)

	enableTelegramLogging := env.TelegramBotToken != "" && env.TelegramGroupID != 0
	appLogger, err := logger.NewLogger(logger.Config{
		Level:          cfg.Logging.Level,
		Environment:    cfg.App.Environment,
		EnableTelegram: enableTelegramLogging,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}

	dsn := env.DATABASE_URL
	if dsn == "" {
		if env.PGHOST == "" || env.PGPORT == "" || env.PGUSER == "" || env.PGDATABASE == "" {
			appLogger.Fatal("Essential database connection variables are missing (DATABASE_URL or PG*)")
		}
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			env.PGHOST, env.PGUSER, env.PGPASSWORD, env.PGDATABASE, env.PGPORT)
		appLogger.Info("Constructed Database DSN using individual variables (password hidden)")
	}

	appLogger.Info("Connecting to database...")
	db, errDb := database.ConnectToDatabase(dsn)
	if errDb != nil {
		appLogger.Fatal("Database connection failed", zap.Error(errDb))
	}

	appLogger.Info("Running database migrations...")
	database.MigrateDatabase(db, dsn)

	if err := notifications.InitTelegramBot(); err != nil {
		appLogger.Fatal("Failed to initialize Telegram Bot", zap.Error(err))
	}

	filterStore := database.NewFilterStore(db)
	tokenStore := database.NewTokenStore(db)

	if err := bot.InitializeBot(appLogger, filterStore); err != nil {
		appLogger.Error("Failed to initialize Telegram Bot listener", zap.Error(err))
	}

	feedURL := cfg.Feed.URL
	if feedURL == "" {
		feedURL = env.SwapFeedURL
	}
	if feedURL == "" {
		appLogger.Fatal("Swap feed URL is not configured (SWAP_FEED_URL or feed.url)")
	}

	tables := services.DefaultTables()
	classifier := services.NewClassifier(tables)
	resolver := services.NewResolver(
		services.NewJupiterClient(cfg.Prices.PrimaryURL),
		services.NewDexScreenerClient(cfg.Prices.SecondaryURL),
		tables,
		cfg.Poller.EnrichWorkers,
		cfg.Poller.RequestTimeout,
		appLogger,
	)
	orchestrator := services.NewOrchestrator(services.OrchestratorOptions{
		Feed:        services.NewFeedClient(feedURL),
		Resolver:    resolver,
		Detector:    services.NewFirstMentionDetector(tokenStore, appLogger),
		Filters:     filterStore,
		Evaluator:   services.NewEvaluator(tables, classifier, services.NewDeliveryHistory()),
		Formatter:   services.NewFormatter(tables, classifier),
		Notifier:    userNotifier{},
		Logger:      appLogger,
		UserWorkers: cfg.Poller.UserWorkers,
	})

	appLogger.Info("Setting up web server...")
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	handlers.RegisterRoutes(router, appLogger)
	handlers.RegisterAPIRoutes(router, appLogger, orchestrator)

	go func() {
		serverAddr := ":" + env.Port
		appLogger.Info("Starting web server", zap.String("address", serverAddr))
		if err := router.Run(serverAddr); err != nil {
			appLogger.Fatal("Could not start web server.", zap.Error(err))
		}
	}()

	ctx := context.Background()
	go bot.StartListening(ctx)
	go orchestrator.Start(ctx, cfg.Poller.Interval)

	startHeartbeat(appLogger)

	appLogger.Info("Application startup complete. Waiting for events...")
	select {}
}

// userNotifier adapts the notifications package to the orchestrator's
// Notifier interface.
type userNotifier struct{}

func (userNotifier) SendUserMessage(userID int64, text string) error {
	return notifications.SendUserMessage(userID, text)
}
