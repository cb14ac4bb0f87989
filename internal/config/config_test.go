package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	envVars := []string{
		"STOCKVAL_ALPHAVANTAGE_API_KEY", "STOCKVAL_API_PORT",
		"ALPHAVANTAGE_API_KEY",
	}
	for _, e := range envVars {
		os.Unsetenv(e)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.AlphaVantage.BaseURL != "https://www.alphavantage.co" {
		t.Errorf("AlphaVantage.BaseURL: got %q", cfg.AlphaVantage.BaseURL)
	}
	if cfg.AlphaVantage.APIKey != "demo" {
		t.Errorf("AlphaVantage.APIKey: got %q, want %q", cfg.AlphaVantage.APIKey, "demo")
	}
	if cfg.AlphaVantage.RatePerMin != 5 {
		t.Errorf("AlphaVantage.RatePerMin: got %d, want 5", cfg.AlphaVantage.RatePerMin)
	}
	if cfg.Market.RiskFreeRate != "0.0461" {
		t.Errorf("Market.RiskFreeRate: got %q, want %q", cfg.Market.RiskFreeRate, "0.0461")
	}
	if cfg.Market.MarketRiskPremium != "0.1" {
		t.Errorf("Market.MarketRiskPremium: got %q, want %q", cfg.Market.MarketRiskPremium, "0.1")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("STOCKVAL_ALPHAVANTAGE_API_KEY", "secret123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AlphaVantage.APIKey != "secret123" {
		t.Errorf("APIKey: got %q, want env override %q", cfg.AlphaVantage.APIKey, "secret123")
	}
}

func TestDotEnvStyleOverride(t *testing.T) {
	t.Setenv("ALPHAVANTAGE_API_KEY", "from-dotenv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AlphaVantage.APIKey != "from-dotenv" {
		t.Errorf("APIKey: got %q, want %q", cfg.AlphaVantage.APIKey, "from-dotenv")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  port: 9191
alphavantage:
  api_key: filekey
market:
  risk_free_rate: "0.05"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.API.Port != 9191 {
		t.Errorf("API.Port: got %d, want 9191", cfg.API.Port)
	}
	if cfg.AlphaVantage.APIKey != "filekey" {
		t.Errorf("APIKey: got %q, want %q", cfg.AlphaVantage.APIKey, "filekey")
	}
	if cfg.Market.RiskFreeRate != "0.05" {
		t.Errorf("RiskFreeRate: got %q, want %q", cfg.Market.RiskFreeRate, "0.05")
	}
	// Untouched sections keep defaults.
	if cfg.AlphaVantage.BaseURL != "https://www.alphavantage.co" {
		t.Errorf("BaseURL default lost: got %q", cfg.AlphaVantage.BaseURL)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

// ── Market constants ──

func TestMarketConstantsParse(t *testing.T) {
	m := MarketConfig{RiskFreeRate: "0.0461", MarketRiskPremium: "0.1"}

	rf, err := m.RiskFreeRateDecimal()
	if err != nil {
		t.Fatalf("RiskFreeRateDecimal() error: %v", err)
	}
	if rf.String() != "0.0461" {
		t.Errorf("risk-free rate: got %s, want 0.0461", rf)
	}

	mrp, err := m.MarketRiskPremiumDecimal()
	if err != nil {
		t.Fatalf("MarketRiskPremiumDecimal() error: %v", err)
	}
	if mrp.String() != "0.1" {
		t.Errorf("market risk premium: got %s, want 0.1", mrp)
	}
}

func TestMarketConstantsInvalid(t *testing.T) {
	m := MarketConfig{RiskFreeRate: "not-a-number", MarketRiskPremium: ""}
	if _, err := m.RiskFreeRateDecimal(); err == nil {
		t.Error("expected error for invalid risk_free_rate")
	}
	if _, err := m.MarketRiskPremiumDecimal(); err == nil {
		t.Error("expected error for empty market_risk_premium")
	}
}
