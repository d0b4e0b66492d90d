package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is constructed once at
// process start and passed into the components that need it; there are
// no package-level settings.
type Config struct {
	App      AppConfig
	Log      LogConfig
	Remote   RemoteConfig
	Store    StoreConfig
	Currency CurrencyConfig
	HTTP     HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// RemoteConfig holds marketplace API settings
type RemoteConfig struct {
	// BaseURL is the orders endpoint root, e.g. https://market.example/api/v1
	BaseURL string
	// SellerBaseURL is the seller dashboard root used for edit/invoice links
	SellerBaseURL string
	// APIKey is the bearer token attached to every request
	APIKey string
	// PageSize is the fetch page size; a tunable, not a protocol requirement
	PageSize int
	// Timeout bounds each HTTP request
	Timeout time.Duration
}

// StoreConfig holds local annotation store settings
type StoreConfig struct {
	// Path is the SQLite database file path
	Path string
}

// CurrencyConfig holds currency conversion settings
type CurrencyConfig struct {
	// RateURL is the exchange-rate endpoint queried once per session
	RateURL string
	// Target is the currency order totals are converted into for display
	Target string
}

// HTTPConfig holds the local control surface settings
type HTTPConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with SELLERDESK_ prefix (e.g. SELLERDESK_REMOTE_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/sellerdesk")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SELLERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Remote: RemoteConfig{
			BaseURL:       v.GetString("remote.base_url"),
			SellerBaseURL: v.GetString("remote.seller_base_url"),
			APIKey:        v.GetString("remote.api_key"),
			PageSize:      v.GetInt("remote.page_size"),
			Timeout:       v.GetDuration("remote.timeout"),
		},
		Store: StoreConfig{
			Path: v.GetString("store.path"),
		},
		Currency: CurrencyConfig{
			RateURL: v.GetString("currency.rate_url"),
			Target:  v.GetString("currency.target"),
		},
		HTTP: HTTPConfig{
			Addr:         v.GetString("http.addr"),
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sellerdesk"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = "https://lectronz.com/api/v1"
	}
	if cfg.Remote.SellerBaseURL == "" {
		cfg.Remote.SellerBaseURL = "https://lectronz.com"
	}
	if cfg.Remote.PageSize == 0 {
		cfg.Remote.PageSize = 50
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = 30 * time.Second
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "sellerdesk.db"
	}
	if cfg.Currency.RateURL == "" {
		cfg.Currency.RateURL = "https://api.exchangerate.host/latest"
	}
	if cfg.Currency.Target == "" {
		cfg.Currency.Target = "EUR"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = "127.0.0.1:8470"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Remote.PageSize < 1 || c.Remote.PageSize > 200 {
		return fmt.Errorf("remote.page_size must be between 1 and 200, got %d", c.Remote.PageSize)
	}
	if !strings.HasPrefix(c.Remote.BaseURL, "http://") && !strings.HasPrefix(c.Remote.BaseURL, "https://") {
		return fmt.Errorf("remote.base_url must be an http(s) URL")
	}
	// The API key is deliberately not required here: its absence is a
	// precondition error surfaced by the first refresh, with its own
	// remediation message, not a config load failure.
	return nil
}
