// Package config builds the single Config value the application runs with.
// Values come from environment variables (populated from .env in main.go)
// and an optional feedsync.yaml in the working directory.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	FeedDShield = "dshield"
	FeedTrivia  = "trivia"

	StoreMongo     = "mongo"
	StoreSQLServer = "sqlserver"

	StrategyRename = "rename"
	StrategyDelete = "delete"
)

// FeedConfig locates one upstream feed and its target collection.
type FeedConfig struct {
	URL        string `mapstructure:"url"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// Config holds all configuration for the application.
type Config struct {
	Feed            string        `mapstructure:"feed"`
	Store           string        `mapstructure:"store"`
	ReplaceStrategy string        `mapstructure:"replace_strategy"`
	MongoConnString string        `mapstructure:"mongo_uri"`
	SQLConnString   string        `mapstructure:"sql_connection_string"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	StoreTimeout    time.Duration `mapstructure:"store_timeout"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFile         string        `mapstructure:"log_file"`
	PushgatewayURL  string        `mapstructure:"pushgateway_url"`

	DShield FeedConfig `mapstructure:"dshield"`
	Trivia  FeedConfig `mapstructure:"trivia"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Feed:            FeedDShield,
		Store:           StoreMongo,
		ReplaceStrategy: StrategyRename,
		HTTPTimeout:     30 * time.Second,
		StoreTimeout:    30 * time.Second,
		LogLevel:        "info",
		DShield: FeedConfig{
			URL:        "https://www.dshield.org/ipsascii.html?limit=100",
			Database:   "dshield_db",
			Collection: "top_attackers",
		},
		Trivia: FeedConfig{
			URL:        "https://opentdb.com/api.php?amount=50",
			Database:   "trivia_db",
			Collection: "questions",
		},
	}
}

// LoadConfig reads configuration from the environment and an optional
// feedsync.yaml. Environment variables are the upper-cased keys with dots
// replaced by underscores, e.g. DSHIELD_URL or HTTP_TIMEOUT.
func LoadConfig() (*Config, error) {
	cfg := Default()
	v := viper.New()

	v.SetConfigName("feedsync")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("feed", cfg.Feed)
	v.SetDefault("store", cfg.Store)
	v.SetDefault("replace_strategy", cfg.ReplaceStrategy)
	v.SetDefault("sql_connection_string", "")
	v.SetDefault("http_timeout", cfg.HTTPTimeout)
	v.SetDefault("store_timeout", cfg.StoreTimeout)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("pushgateway_url", "")
	v.SetDefault("dshield.url", cfg.DShield.URL)
	v.SetDefault("dshield.database", cfg.DShield.Database)
	v.SetDefault("dshield.collection", cfg.DShield.Collection)
	v.SetDefault("trivia.url", cfg.Trivia.URL)
	v.SetDefault("trivia.database", cfg.Trivia.Database)
	v.SetDefault("trivia.collection", cfg.Trivia.Collection)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("mongo_uri", "MONGO_URI", "MONGO_CONNECTION_STRING"); err != nil {
		return nil, fmt.Errorf("failed to bind mongo_uri: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Feed = strings.ToLower(strings.TrimSpace(cfg.Feed))
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.ReplaceStrategy = strings.ToLower(strings.TrimSpace(cfg.ReplaceStrategy))
	return cfg, nil
}

// FeedByName returns the feed settings for "dshield" or "trivia".
func (c *Config) FeedByName(name string) (FeedConfig, error) {
	switch name {
	case FeedDShield:
		return c.DShield, nil
	case FeedTrivia:
		return c.Trivia, nil
	default:
		return FeedConfig{}, fmt.Errorf("unknown feed %q (want %s or %s)", name, FeedDShield, FeedTrivia)
	}
}

// Validate checks the settings needed to run feed. A dry run needs no store.
func (c *Config) Validate(feed string, dryRun bool) error {
	fc, err := c.FeedByName(feed)
	if err != nil {
		return err
	}
	if fc.URL == "" {
		return fmt.Errorf("%s url is empty", feed)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}

	switch c.ReplaceStrategy {
	case StrategyRename, StrategyDelete:
	default:
		return fmt.Errorf("unknown REPLACE_STRATEGY %q (want %s or %s)", c.ReplaceStrategy, StrategyRename, StrategyDelete)
	}

	switch c.Store {
	case StoreMongo:
		if !dryRun && c.MongoConnString == "" {
			return errors.New("MONGO_URI environment variable not set")
		}
		if fc.Database == "" || fc.Collection == "" {
			return fmt.Errorf("%s database and collection must be set", feed)
		}
	case StoreSQLServer:
		if !dryRun && c.SQLConnString == "" {
			return errors.New("SQL_CONNECTION_STRING environment variable not set")
		}
		if fc.Collection == "" {
			return fmt.Errorf("%s collection must be set", feed)
		}
	default:
		return fmt.Errorf("unknown STORE %q (want %s or %s)", c.Store, StoreMongo, StoreSQLServer)
	}
	return nil
}
