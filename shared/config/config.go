package config

import (
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// PollerConfig holds tunables for the swap poll cycle.
type PollerConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	EnrichWorkers  int           `mapstructure:"enrich_workers"`
	UserWorkers    int           `mapstructure:"user_workers"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Config defines the global configuration structure.
type Config struct {
	App struct {
		Port        string `mapstructure:"port"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"app"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`

	Poller PollerConfig `mapstructure:"poller"`

	Feed struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"feed"`

	Prices struct {
		PrimaryURL   string `mapstructure:"primary_url"`
		SecondaryURL string `mapstructure:"secondary_url"`
	} `mapstructure:"prices"`
}

var (
	globalConfig *Config
	configLock   sync.RWMutex
)

// LoadConfig loads configuration from the specified file path and merges it
// with environment variables.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	viper.SetEnvPrefix("APP")
	viper.BindEnv("app.port", "PORT")
	viper.BindEnv("app.environment", "ENVIRONMENT")
	viper.BindEnv("feed.url", "SWAP_FEED_URL")
	viper.BindEnv("prices.primary_url", "PRICE_API_URL")
	viper.BindEnv("prices.secondary_url", "MARKET_DATA_URL")
	viper.BindEnv("poller.interval", "POLL_INTERVAL")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("poller.interval", 10*time.Second)
	viper.SetDefault("poller.enrich_workers", 8)
	viper.SetDefault("poller.user_workers", 4)
	viper.SetDefault("poller.request_timeout", 4*time.Second)

	var cfg Config

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		log.Printf("Error unmarshalling configuration: %v", err)
		return nil, err
	}

	log.Printf("Loaded configuration from file: %s", path)
	return &cfg, nil
}

// SetGlobalConfig sets the loaded configuration globally.
func SetGlobalConfig(cfg *Config) {
	configLock.Lock()
	defer configLock.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig retrieves the globally set configuration.
func GetGlobalConfig() *Config {
	configLock.RLock()
	defer configLock.RUnlock()
	if globalConfig == nil {
		log.Println("GetGlobalConfig: Global configuration is nil.")
	}
	return globalConfig
}
