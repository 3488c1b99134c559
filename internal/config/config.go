package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// TokenConfig is one persisted token entry.
type TokenConfig struct {
	Name        string           `mapstructure:"name"`
	Owned       *decimal.Decimal `mapstructure:"owned"`
	AvgBuyPrice *decimal.Decimal `mapstructure:"avg_buy_price"`
	// Missing flags default to true.
	InWatchlist *bool `mapstructure:"in_watchlist"`
	InPortfolio *bool `mapstructure:"in_portfolio"`
}

// Config is the persisted snapshot: settings plus tracked tokens.
type Config struct {
	APIKey            string        `mapstructure:"api_key"`
	Tokens            []TokenConfig `mapstructure:"tokens"`
	RefreshInterval   int           `mapstructure:"refresh_interval"`
	FearAndGreedLimit string        `mapstructure:"fear_and_greed_limit"`
	LogFile           string        `mapstructure:"log_file"`
	DebugLogging      bool          `mapstructure:"debug_logging"`

	// fileAPIKey is the key as found in the file, before env overrides.
	fileAPIKey string
}

const (
	DefaultPath              = "config.json"
	DefaultRefreshInterval   = 60
	DefaultFearAndGreedLimit = "30"
	DefaultLogFile           = "coinwatch.log"

	envPrefix = "COINWATCH"
)

// Load reads the config file at path. flags, when not nil, may override
// refresh_interval (--refresh-interval) and debug_logging (--debug).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	defaults := map[string]interface{}{
		"refresh_interval":     DefaultRefreshInterval,
		"fear_and_greed_limit": DefaultFearAndGreedLimit,
		"log_file":             DefaultLogFile,
		"debug_logging":        false,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, &domain.PersistenceError{Op: "load", Path: path, Err: err}
	}
	fileAPIKey := v.GetString("api_key")

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decimalHook)); err != nil {
		return nil, &domain.PersistenceError{Op: "decode", Path: path, Err: err}
	}
	cfg.fileAPIKey = fileAPIKey

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"refresh_interval": "refresh-interval",
		"debug_logging":    "debug",
	}
	for key, name := range bindings {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	return nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook lets mapstructure fill decimal fields from JSON numbers or
// strings.
func decimalHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != decimalType {
		return data, nil
	}
	switch val := data.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", val, err)
		}
		if !domain.InRange(d) {
			return nil, fmt.Errorf("decimal %q is out of range", val)
		}
		return d, nil
	case decimal.Decimal:
		return val, nil
	}
	return data, nil
}

func validateConfig(cfg *Config) error {
	if cfg.RefreshInterval <= 0 {
		return &domain.ValidationError{Field: "refresh_interval", Msg: "must be positive"}
	}
	if _, err := cfg.FearGreedLimit(); err != nil {
		return err
	}
	_, err := cfg.TrackedTokens()
	return err
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if key := strings.TrimSpace(os.Getenv(envPrefix + "_API_KEY")); key != "" {
		cfg.APIKey = key
	}
	if raw := os.Getenv(envPrefix + "_REFRESH_INTERVAL"); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return &domain.ValidationError{Field: "refresh_interval", Msg: fmt.Sprintf("invalid %s_REFRESH_INTERVAL %q", envPrefix, raw)}
		}
		cfg.RefreshInterval = n
	}
	return nil
}

// RequireAPIKey fails when no API key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("missing api_key in configuration (or " + envPrefix + "_API_KEY)")
	}
	return nil
}

// Interval returns the refresh interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// FearGreedLimit parses fear_and_greed_limit.
func (c *Config) FearGreedLimit() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(c.FearAndGreedLimit))
	if err != nil || n <= 0 {
		return 0, &domain.ValidationError{Field: "fear_and_greed_limit", Msg: fmt.Sprintf("must be a positive integer, got %q", c.FearAndGreedLimit)}
	}
	return n, nil
}
