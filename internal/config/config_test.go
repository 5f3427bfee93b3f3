package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_DefaultsAndEnvExpansion(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123:abc")

	cfg, err := Parse([]byte(`
telegram:
  bot_token: ${TEST_BOT_TOKEN}
weather:
  api_key: key
redis:
  address: localhost:6379
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("expected expanded token, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.PollingTimeout != 60 {
		t.Errorf("expected default polling timeout 60, got %d", cfg.Telegram.PollingTimeout)
	}
	if cfg.Weather.GeoURL != "http://api.openweathermap.org/geo/1.0/direct" {
		t.Errorf("unexpected geo url %q", cfg.Weather.GeoURL)
	}
	if cfg.Weather.Timeout() != 10*time.Second {
		t.Errorf("expected 10s weather timeout, got %s", cfg.Weather.Timeout())
	}
	if cfg.FoodFacts.BaseURL != "https://world.openfoodfacts.org" {
		t.Errorf("unexpected food facts url %q", cfg.FoodFacts.BaseURL)
	}
	if cfg.Cache.FoodTTL() != 24*time.Hour {
		t.Errorf("expected 24h food ttl, got %s", cfg.Cache.FoodTTL())
	}
	if cfg.Monitoring.PrometheusPort != 9090 {
		t.Errorf("expected default prometheus port, got %d", cfg.Monitoring.PrometheusPort)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Telegram: TelegramConfig{BotToken: "t"}, Weather: WeatherConfig{APIKey: "k"}}, false},
		{"missing token", Config{Weather: WeatherConfig{APIKey: "k"}}, true},
		{"placeholder token", Config{Telegram: TelegramConfig{BotToken: placeholderToken}, Weather: WeatherConfig{APIKey: "k"}}, true},
		{"missing weather key", Config{Telegram: TelegramConfig{BotToken: "t"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_WithoutDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("telegram:\n  bot_token: abc\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.BotToken != "abc" {
		t.Errorf("expected token abc, got %q", cfg.Telegram.BotToken)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
