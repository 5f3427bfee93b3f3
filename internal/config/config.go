package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const placeholderToken = "YOUR_BOT_TOKEN_HERE"

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Redis      RedisConfig      `yaml:"redis"`
	Weather    WeatherConfig    `yaml:"weather"`
	FoodFacts  FoodFactsConfig  `yaml:"food_facts"`
	Cache      CacheConfig      `yaml:"cache"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken       string `yaml:"bot_token"`
	Debug          bool   `yaml:"debug"`
	PollingTimeout int    `yaml:"polling_timeout"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type WeatherConfig struct {
	APIKey         string `yaml:"api_key"`
	GeoURL         string `yaml:"geo_url"`
	WeatherURL     string `yaml:"weather_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type FoodFactsConfig struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CacheConfig задает время жизни закешированных ответов внешних API.
type CacheConfig struct {
	WeatherTTLSeconds int `yaml:"weather_ttl_seconds"`
	FoodTTLSeconds    int `yaml:"food_ttl_seconds"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load читает YAML конфигурацию, предварительно подставляя переменные окружения из .env
func Load(configPath string) (*Config, error) {
	// .env необязателен: без него используются переменные окружения процесса
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse разбирает YAML после подстановки ${VAR} и заполняет значения по умолчанию.
func Parse(data []byte) (*Config, error) {
	expandedData := []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(expandedData, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "calories-count-bot"
	}
	if c.Telegram.PollingTimeout <= 0 {
		c.Telegram.PollingTimeout = 60
	}
	if c.Weather.GeoURL == "" {
		c.Weather.GeoURL = "http://api.openweathermap.org/geo/1.0/direct"
	}
	if c.Weather.WeatherURL == "" {
		c.Weather.WeatherURL = "https://api.openweathermap.org/data/2.5/weather"
	}
	if c.Weather.TimeoutSeconds <= 0 {
		c.Weather.TimeoutSeconds = 10
	}
	if c.FoodFacts.BaseURL == "" {
		c.FoodFacts.BaseURL = "https://world.openfoodfacts.org"
	}
	if c.FoodFacts.UserAgent == "" {
		c.FoodFacts.UserAgent = c.App.Name
	}
	if c.FoodFacts.TimeoutSeconds <= 0 {
		c.FoodFacts.TimeoutSeconds = 10
	}
	if c.Cache.WeatherTTLSeconds <= 0 {
		c.Cache.WeatherTTLSeconds = 600
	}
	if c.Cache.FoodTTLSeconds <= 0 {
		c.Cache.FoodTTLSeconds = 24 * 60 * 60
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == placeholderToken {
		return errors.New("telegram.bot_token is not set")
	}
	if c.Weather.APIKey == "" {
		return errors.New("weather.api_key is not set")
	}
	return nil
}

func (w WeatherConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

func (f FoodFactsConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

func (c CacheConfig) WeatherTTL() time.Duration {
	return time.Duration(c.WeatherTTLSeconds) * time.Second
}

func (c CacheConfig) FoodTTL() time.Duration {
	return time.Duration(c.FoodTTLSeconds) * time.Second
}
