package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultAPITarget       = "http://localhost:5000"
	DefaultProxyAddr       = ":5173"
	DefaultRequestTimeout  = 10 // seconds
	DefaultReorderDebounce = 300 // milliseconds
	DefaultLocale          = "en-US"
	DefaultLogFile         = "arma3-manager.log"
	databaseFile           = "arma3-manager.db"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a .env file and/or environment variables.
type Config struct {
	APITarget         string `mapstructure:"ARMA_API_TARGET"`
	APIToken          string `mapstructure:"ARMA_API_TOKEN"`
	UserAgent         string `mapstructure:"USERAGENT"`
	RequestTimeoutSec int    `mapstructure:"REQUEST_TIMEOUT"`
	DataDir           string `mapstructure:"DATA_DIR"`
	DevProxyAddr      string `mapstructure:"DEV_PROXY_ADDR"`
	ReorderDebounceMs int    `mapstructure:"REORDER_DEBOUNCE_MS"`
	Locale            string `mapstructure:"LOCALE"` // date formatting, e.g. en-US or fr-FR
	LogFile           string `mapstructure:"LOG_FILE"`
	DatabasePath      string `mapstructure:"-"` // derived from DataDir
}

var envKeys = []string{
	"ARMA_API_TARGET",
	"ARMA_API_TOKEN",
	"USERAGENT",
	"REQUEST_TIMEOUT",
	"DATA_DIR",
	"DEV_PROXY_ADDR",
	"REORDER_DEBOUNCE_MS",
	"LOCALE",
	"LOG_FILE",
}

// LoadConfig reads configuration from path/.env and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	viper.AutomaticEnv()
	for _, key := range envKeys {
		if err := viper.BindEnv(key); err != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", err)
		}
	}

	if vipErr = viper.Unmarshal(&config); vipErr != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", vipErr)
	}

	processConfigDefaults(&config)
	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

func processConfigDefaults(cfg *Config) {
	if cfg.APITarget == "" {
		cfg.APITarget = DefaultAPITarget
	}
	cfg.APITarget = strings.TrimRight(cfg.APITarget, "/")
	if cfg.UserAgent == "" {
		cfg.UserAgent = "arma3-server-manager/dev"
		slog.Warn("USERAGENT not set in config or environment, using default.")
	}
	if cfg.RequestTimeoutSec <= 0 {
		cfg.RequestTimeoutSec = DefaultRequestTimeout
	}
	if cfg.DevProxyAddr == "" {
		cfg.DevProxyAddr = DefaultProxyAddr
	}
	if cfg.ReorderDebounceMs <= 0 {
		cfg.ReorderDebounceMs = DefaultReorderDebounce
	}
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile
	}
	if cfg.DataDir == "" {
		if base, err := os.UserConfigDir(); err == nil {
			cfg.DataDir = filepath.Join(base, "arma3-manager")
		}
	}
}

func validateAndEnsureDirectories(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if !strings.HasPrefix(cfg.APITarget, "http://") && !strings.HasPrefix(cfg.APITarget, "https://") {
		return fmt.Errorf("ARMA_API_TARGET must be an http(s) origin, got %q", cfg.APITarget)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		slog.Error("Failed to create data directory", "path", cfg.DataDir, "error", err)
		return err
	}
	cfg.DatabasePath = filepath.Join(cfg.DataDir, databaseFile)
	return nil
}

// APIBaseURL is the REST root on the backend, e.g. http://localhost:5000/api.
func (c Config) APIBaseURL() string {
	return c.APITarget + "/api"
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c Config) ReorderDebounce() time.Duration {
	return time.Duration(c.ReorderDebounceMs) * time.Millisecond
}
