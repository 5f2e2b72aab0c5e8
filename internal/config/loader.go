package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when no path is given.
	DefaultConfigPath = "nomora.yaml"

	// EnvPrefix is the prefix for environment variable overrides,
	// e.g. NOMORA_CHAT_MODE=model.
	EnvPrefix = "NOMORA"
)

// Loader handles loading configuration from files and environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader with every default registered,
// so each key can be overridden from the environment.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := NewConfig()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("data.source", d.Data.Source)
	v.SetDefault("data.dishes_csv", d.Data.DishesCSV)
	v.SetDefault("data.ingredients_csv", d.Data.IngredientsCSV)
	v.SetDefault("data.postgres_dsn", d.Data.PostgresDSN)
	v.SetDefault("data.dish_table", d.Data.DishTable)
	v.SetDefault("data.ingredient_table", d.Data.IngredientTable)
	v.SetDefault("analytics.max_orders", d.Analytics.MaxOrders)
	v.SetDefault("analytics.min_waste", d.Analytics.MinWaste)
	v.SetDefault("analytics.top_n", d.Analytics.TopN)
	v.SetDefault("chat.mode", d.Chat.Mode)
	v.SetDefault("chat.fuzzy_threshold", d.Chat.FuzzyThreshold)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.timeout", d.LLM.Timeout.String())
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)

	return &Loader{v: v}
}

// Load reads path (when it exists), applies environment overrides and
// validates the result. A missing file is not an error when path is the
// default; an explicitly requested file must exist.
func (l *Loader) Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, &LoadError{Path: path, Message: "failed to read config file", Err: err}
		}
	} else if explicit {
		return nil, &LoadError{Path: path, Message: "config file not found", Err: err}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg, viperDecodeHook); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse config file", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Path: path, Message: "configuration validation failed", Err: err}
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables that are already set. A missing
// file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path. It refuses
// to overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil && !force {
		return &LoadError{Path: path, Message: "config file already exists"}
	}

	data, err := yaml.Marshal(NewConfig())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// viperDecodeHook decodes durations like "30s" and comma separated lists
// coming from environment variables.
func viperDecodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// LoadError represents an error that occurred while loading configuration.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load is a convenience function that creates a new Loader and loads configuration.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}
