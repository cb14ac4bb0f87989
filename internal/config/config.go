// Package config handles configuration loading for stockval.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	API          APIConfig          `mapstructure:"api"          yaml:"api"`
	AlphaVantage AlphaVantageConfig `mapstructure:"alphavantage" yaml:"alphavantage"`
	Market       MarketConfig       `mapstructure:"market"       yaml:"market"`
	Logging      LoggingConfig      `mapstructure:"logging"      yaml:"logging"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// AlphaVantageConfig holds upstream market-data provider settings.
type AlphaVantageConfig struct {
	BaseURL     string `mapstructure:"base_url"      yaml:"base_url"`
	APIKey      string `mapstructure:"api_key"       yaml:"api_key"`
	TimeoutSec  int    `mapstructure:"timeout_sec"   yaml:"timeout_sec"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
	RatePerMin  int    `mapstructure:"rate_per_min"  yaml:"rate_per_min"`
}

// MarketConfig holds the market constants fed into the CAPM/WACC inputs.
// Values are decimal strings so they never pass through binary floats.
type MarketConfig struct {
	RiskFreeRate      string `mapstructure:"risk_free_rate"      yaml:"risk_free_rate"`
	MarketRiskPremium string `mapstructure:"market_risk_premium" yaml:"market_risk_premium"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "json" or "console"
}

// RiskFreeRateDecimal parses the configured risk-free rate.
func (m MarketConfig) RiskFreeRateDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(m.RiskFreeRate)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("market.risk_free_rate %q: %w", m.RiskFreeRate, err)
	}
	return d, nil
}

// MarketRiskPremiumDecimal parses the configured market risk premium.
func (m MarketConfig) MarketRiskPremiumDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(m.MarketRiskPremium)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("market.market_risk_premium %q: %w", m.MarketRiskPremium, err)
	}
	return d, nil
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.stockval/config.yaml (home directory)
//  3. /etc/stockval/config.yaml (system)
//
// Environment variables override config file values.
// Format: STOCKVAL_<SECTION>_<KEY>, e.g., STOCKVAL_ALPHAVANTAGE_API_KEY
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".stockval"))
	v.AddConfigPath("/etc/stockval")

	v.SetEnvPrefix("STOCKVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("STOCKVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("alphavantage.base_url", "https://www.alphavantage.co")
	v.SetDefault("alphavantage.api_key", "demo")
	v.SetDefault("alphavantage.timeout_sec", 30)
	v.SetDefault("alphavantage.cache_ttl_sec", 3600)
	v.SetDefault("alphavantage.rate_per_min", 5)

	// 10-year Treasury yield and average S&P 500 annual excess return.
	v.SetDefault("market.risk_free_rate", "0.0461")
	v.SetDefault("market.market_risk_premium", "0.1")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// overrideFromEnv applies plain (unprefixed) environment variables for
// values commonly supplied via a .env file.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		cfg.AlphaVantage.APIKey = key
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
