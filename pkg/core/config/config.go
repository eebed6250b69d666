// Package config loads process settings for the forecast binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"financial_forecast/pkg/core/projection"
)

// EnvPrefix prefixes every environment override, e.g. FORECAST_ENGINE_STRICT_BALANCE.
const EnvPrefix = "FORECAST"

// Config is the root configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine" json:"engine"`
	API     APIConfig     `mapstructure:"api" yaml:"api" json:"api"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store" json:"-"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache" json:"cache"`
	Report  ReportConfig  `mapstructure:"report" yaml:"report" json:"report"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// EngineConfig controls the projection engine.
type EngineConfig struct {
	BalanceTolerance float64 `mapstructure:"balance_tolerance" yaml:"balance_tolerance" json:"balance_tolerance"`
	StrictBalance    bool    `mapstructure:"strict_balance" yaml:"strict_balance" json:"strict_balance"`
	DefaultYears     int     `mapstructure:"default_years" yaml:"default_years" json:"default_years"`
}

// APIConfig is the HTTP listener.
type APIConfig struct {
	Host string `mapstructure:"host" yaml:"host" json:"host"`
	Port int    `mapstructure:"port" yaml:"port" json:"port"`
}

// StoreConfig selects run persistence. An empty DatabaseURL uses the file archive.
type StoreConfig struct {
	DatabaseURL string `mapstructure:"database_url" yaml:"database_url"`
	ArchiveDir  string `mapstructure:"archive_dir" yaml:"archive_dir"`
}

// CacheConfig enables the Redis result cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr  string `mapstructure:"redis_addr" yaml:"redis_addr" json:"redis_addr"`
	TTLSeconds int    `mapstructure:"ttl_seconds" yaml:"ttl_seconds" json:"ttl_seconds"`
}

// ReportConfig sets report presentation.
type ReportConfig struct {
	Currency string `mapstructure:"currency" yaml:"currency" json:"currency"`
}

// LoggingConfig sets the logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Addr is the listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TTL returns the cache TTL.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// NewEngine builds a projection engine from the settings.
func (c EngineConfig) NewEngine(logger logrus.FieldLogger) *projection.Engine {
	e := projection.NewEngine(logger)
	e.Tolerance = c.BalanceTolerance
	e.Strict = c.StrictBalance
	return e
}

// LoadEnvFiles loads .env style files into the environment. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads ./config/forecast.yaml when present, then applies environment
// overrides in the form FORECAST_<SECTION>_<KEY>.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("forecast")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.balance_tolerance", 1e-6)
	v.SetDefault("engine.strict_balance", false)
	v.SetDefault("engine.default_years", 5)

	v.SetDefault("api.host", "")
	v.SetDefault("api.port", 8080)

	v.SetDefault("store.database_url", "")
	v.SetDefault("store.archive_dir", ".cache/projection_runs")

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.ttl_seconds", 3600)

	v.SetDefault("report.currency", "USD")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate rejects settings the binaries cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Engine.BalanceTolerance <= 0 {
		problems = append(problems, "engine.balance_tolerance must be positive")
	}
	if c.Engine.DefaultYears <= 0 {
		problems = append(problems, "engine.default_years must be positive")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		problems = append(problems, fmt.Sprintf("api.port %d out of range", c.API.Port))
	}
	if c.Cache.TTLSeconds < 0 {
		problems = append(problems, "cache.ttl_seconds must not be negative")
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, fmt.Sprintf("logging.level: %v", err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
