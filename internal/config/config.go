package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/koiblue2800/Bot-cotizaciones/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Health    HealthConfig    `mapstructure:"health"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Dolar     DolarConfig     `mapstructure:"dolar"`
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// HealthConfig governs the liveness endpoint.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// SchedulerConfig governs polling cadences and the daily digest slot.
type SchedulerConfig struct {
	DolarInterval       time.Duration `mapstructure:"dolar_interval"`
	StablecoinInterval  time.Duration `mapstructure:"stablecoin_interval"`
	TrendingHour        int           `mapstructure:"trending_hour"`
	TrendingMinute      int           `mapstructure:"trending_minute"`
	TrendingTimezone    string        `mapstructure:"trending_timezone"`
	TrendingMinInterval time.Duration `mapstructure:"trending_min_interval"`
	StartupDelay        time.Duration `mapstructure:"startup_delay"`
}

// DolarConfig captures DolarAPI connectivity.
type DolarConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Houses         []string      `mapstructure:"houses"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// CoinGeckoConfig captures CoinGecko connectivity and the stablecoin policy.
type CoinGeckoConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Coins          []string      `mapstructure:"coins"`
	ThresholdPct   float64       `mapstructure:"threshold_pct"`
	TrendingLimit  int           `mapstructure:"trending_limit"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// TelegramConfig 描述 Telegram 推送参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COTIZACIONES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy environment names kept for existing deployments.
	_ = v.BindEnv("health.port", "COTIZACIONES_HEALTH_PORT", "PORT")
	_ = v.BindEnv("telegram.bot_token", "COTIZACIONES_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "COTIZACIONES_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")
	_ = v.BindEnv("coingecko.api_key", "COTIZACIONES_COINGECKO_API_KEY", "COINGECKO_API_KEY")

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bot-cotizaciones")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 5000)

	v.SetDefault("scheduler.dolar_interval", "5m")
	v.SetDefault("scheduler.stablecoin_interval", "5m")
	v.SetDefault("scheduler.trending_hour", 9)
	v.SetDefault("scheduler.trending_minute", 0)
	v.SetDefault("scheduler.trending_timezone", "America/Argentina/Buenos_Aires")
	v.SetDefault("scheduler.trending_min_interval", "23h")
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("dolar.base_url", "https://dolarapi.com/v1")
	v.SetDefault("dolar.houses", []string{"blue", "oficial"})
	v.SetDefault("dolar.request_timeout", "10s")
	v.SetDefault("dolar.user_agent", "bot-cotizaciones/1.0")

	v.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("coingecko.coins", []string{"tether", "usd-coin", "dai"})
	v.SetDefault("coingecko.threshold_pct", 0.5)
	v.SetDefault("coingecko.trending_limit", 7)
	v.SetDefault("coingecko.request_timeout", "10s")
	v.SetDefault("coingecko.user_agent", "bot-cotizaciones/1.0")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.api_base", "https://api.telegram.org")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Health.Enabled && (c.Health.Port <= 0 || c.Health.Port > 65535) {
		return fmt.Errorf("health.port must be a valid TCP port")
	}
	if c.Scheduler.DolarInterval <= 0 {
		return fmt.Errorf("scheduler.dolar_interval must be greater than zero")
	}
	if c.Scheduler.StablecoinInterval <= 0 {
		return fmt.Errorf("scheduler.stablecoin_interval must be greater than zero")
	}
	if c.Scheduler.TrendingHour < 0 || c.Scheduler.TrendingHour > 23 {
		return fmt.Errorf("scheduler.trending_hour must be between 0 and 23")
	}
	if c.Scheduler.TrendingMinute < 0 || c.Scheduler.TrendingMinute > 59 {
		return fmt.Errorf("scheduler.trending_minute must be between 0 and 59")
	}
	if _, err := time.LoadLocation(c.Scheduler.TrendingTimezone); err != nil {
		return fmt.Errorf("scheduler.trending_timezone invalid: %w", err)
	}
	if len(c.Dolar.Houses) == 0 {
		return fmt.Errorf("dolar.houses must not be empty")
	}
	if len(c.CoinGecko.Coins) == 0 {
		return fmt.Errorf("coingecko.coins must not be empty")
	}
	if c.CoinGecko.ThresholdPct < 0 {
		return fmt.Errorf("coingecko.threshold_pct cannot be negative")
	}
	if c.CoinGecko.TrendingLimit <= 0 {
		return fmt.Errorf("coingecko.trending_limit must be greater than zero")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token 必须配置")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id 必须配置")
		}
	}
	return nil
}

// TrendingLocation resolves the configured digest timezone. Validate has
// already guaranteed it loads.
func (c *Config) TrendingLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.TrendingTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
