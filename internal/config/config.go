// Package config provides configuration loading for the nomora backend.
package config

import (
	"time"

	"nomora-backend/internal/analytics"
	"nomora-backend/internal/chat"
	apperrors "nomora-backend/internal/errors"
	"nomora-backend/internal/llm"
	"nomora-backend/internal/logging"
)

// Data source kinds
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Data      DataConfig      `mapstructure:"data" yaml:"data"`
	Analytics AnalyticsConfig `mapstructure:"analytics" yaml:"analytics"`
	Chat      ChatConfig      `mapstructure:"chat" yaml:"chat"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// DataConfig says where the two datasets come from.
type DataConfig struct {
	Source          string `mapstructure:"source" yaml:"source"`
	DishesCSV       string `mapstructure:"dishes_csv" yaml:"dishes_csv"`
	IngredientsCSV  string `mapstructure:"ingredients_csv" yaml:"ingredients_csv"`
	PostgresDSN     string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
	DishTable       string `mapstructure:"dish_table" yaml:"dish_table"`
	IngredientTable string `mapstructure:"ingredient_table" yaml:"ingredient_table"`
}

// AnalyticsConfig holds the dashboard thresholds.
type AnalyticsConfig struct {
	MaxOrders int     `mapstructure:"max_orders" yaml:"max_orders"`
	MinWaste  float64 `mapstructure:"min_waste" yaml:"min_waste"`
	TopN      int     `mapstructure:"top_n" yaml:"top_n"`
}

// ChatConfig selects the router variant.
type ChatConfig struct {
	Mode           string  `mapstructure:"mode" yaml:"mode"`
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold"`
}

// LLMConfig points at the Ollama server used in model mode.
type LLMConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// NewConfig returns a Config with every default applied.
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8001,
			AllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		Data: DataConfig{
			Source:          SourceCSV,
			DishesCSV:       "data/dish_sales.csv",
			IngredientsCSV:  "data/ingredient_waste.csv",
			DishTable:       "dish_sales",
			IngredientTable: "ingredient_waste",
		},
		Analytics: AnalyticsConfig{
			MaxOrders: analytics.DefaultMaxOrders,
			MinWaste:  analytics.DefaultMinWaste,
			TopN:      analytics.DefaultTopN,
		},
		Chat: ChatConfig{
			Mode:           string(chat.ModeFuzzy),
			FuzzyThreshold: chat.DefaultFuzzyThreshold,
		},
		LLM: LLMConfig{
			BaseURL: llm.DefaultBaseURL,
			Model:   llm.DefaultModel,
			Timeout: llm.DefaultTimeout,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.ConfigInvalid("server.port", "must be between 1 and 65535")
	}
	switch c.Data.Source {
	case SourceCSV:
		if c.Data.DishesCSV == "" || c.Data.IngredientsCSV == "" {
			return apperrors.ConfigInvalid("data", "dishes_csv and ingredients_csv are required for the csv source")
		}
	case SourcePostgres:
		if c.Data.PostgresDSN == "" {
			return apperrors.ConfigInvalid("data.postgres_dsn", "required for the postgres source")
		}
	default:
		return apperrors.ConfigInvalid("data.source", "unknown source "+c.Data.Source, SourceCSV, SourcePostgres)
	}
	if c.Analytics.TopN <= 0 {
		return apperrors.ConfigInvalid("analytics.top_n", "must be positive")
	}
	if _, err := chat.ParseMode(c.Chat.Mode); err != nil {
		return err
	}
	if c.Chat.FuzzyThreshold <= 0 || c.Chat.FuzzyThreshold > 1 {
		return apperrors.ConfigInvalid("chat.fuzzy_threshold", "must be in (0, 1]")
	}
	if c.LLM.Timeout < 0 {
		return apperrors.ConfigInvalid("llm.timeout", "must be non-negative")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return apperrors.ConfigInvalid("log.level", err.Error(), "debug", "info", "warn", "error")
	}
	return nil
}

// Thresholds converts the analytics section for the analytics package.
func (c *Config) Thresholds() analytics.Thresholds {
	return analytics.Thresholds{MaxOrders: c.Analytics.MaxOrders, MinWaste: c.Analytics.MinWaste}
}
