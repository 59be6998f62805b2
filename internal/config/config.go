// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Wallet         WalletConfig         `mapstructure:"wallet"`
	TradingService TradingServiceConfig `mapstructure:"trading_service"`
	MarketFeed     MarketFeedConfig     `mapstructure:"market_feed"`
	Swap           SwapConfig           `mapstructure:"swap"`
	Telemetry      TelemetryConfig      `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// WalletConfig holds the session wallet settings.
type WalletConfig struct {
	Address string `mapstructure:"address"`
	ChainID uint64 `mapstructure:"chain_id"`
}

// AddressHex returns the wallet address as common.Address.
func (c *WalletConfig) AddressHex() common.Address {
	return common.HexToAddress(c.Address)
}

// TradingServiceConfig holds the remote trading service settings.
type TradingServiceConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	QuoteTimeout      time.Duration `mapstructure:"quote_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// MarketFeedConfig holds the balance/price collaborator settings.
type MarketFeedConfig struct {
	PortfolioURL    string        `mapstructure:"portfolio_url"`
	PriceStreamURL  string        `mapstructure:"price_stream_url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	MetadataTTL     time.Duration `mapstructure:"metadata_ttl"`
	StaleTimeout    time.Duration `mapstructure:"stale_timeout"`
}

// SwapConfig holds swap pipeline tuning.
type SwapConfig struct {
	DebounceDelay      time.Duration `mapstructure:"debounce_delay"`
	DisplayHold        time.Duration `mapstructure:"display_hold"`
	DefaultSlippageBps int64         `mapstructure:"default_slippage_bps"`
	LiquidityUSD       float64       `mapstructure:"liquidity_usd"`
	NetworkFeeUSD      float64       `mapstructure:"network_fee_usd"`
	MEVProtection      bool          `mapstructure:"mev_protection"`
}

// LiquidityUSDDecimal returns the assumed pool liquidity as decimal.Decimal.
func (c *SwapConfig) LiquidityUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.LiquidityUSD)
}

// NetworkFeeUSDDecimal returns the flat network fee estimate as decimal.Decimal.
func (c *SwapConfig) NetworkFeeUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.NetworkFeeUSD)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("SWAPDESK")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SWAPDESK_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SWAPDESK_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SWAPDESK_LOG_LEVEL", "LOG_LEVEL")

	// Wallet
	v.BindEnv("wallet.address", "SWAPDESK_WALLET_ADDRESS", "WALLET_ADDRESS")
	v.BindEnv("wallet.chain_id", "SWAPDESK_CHAIN_ID", "CHAIN_ID")

	// Trading service
	v.BindEnv("trading_service.base_url", "SWAPDESK_TRADING_URL", "TRADING_URL")
	v.BindEnv("trading_service.quote_timeout", "SWAPDESK_QUOTE_TIMEOUT")
	v.BindEnv("trading_service.requests_per_minute", "SWAPDESK_TRADING_RPM")

	// Market feed
	v.BindEnv("market_feed.portfolio_url", "SWAPDESK_PORTFOLIO_URL", "PORTFOLIO_URL")
	v.BindEnv("market_feed.price_stream_url", "SWAPDESK_PRICE_WS_URL", "PRICE_WS_URL")

	// Swap
	v.BindEnv("swap.default_slippage_bps", "SWAPDESK_SLIPPAGE_BPS")
	v.BindEnv("swap.mev_protection", "SWAPDESK_MEV_PROTECTION")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SWAPDESK_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SWAPDESK_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SWAPDESK_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "swapdesk")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Wallet defaults
	v.SetDefault("wallet.chain_id", 1)

	// Trading service defaults
	v.SetDefault("trading_service.quote_timeout", "5s")
	v.SetDefault("trading_service.requests_per_minute", 120)

	// Market feed defaults
	v.SetDefault("market_feed.refresh_interval", "30s")
	v.SetDefault("market_feed.metadata_ttl", "5m")
	v.SetDefault("market_feed.stale_timeout", "15s")

	// Swap defaults
	v.SetDefault("swap.debounce_delay", "500ms")
	v.SetDefault("swap.display_hold", "2s")
	v.SetDefault("swap.default_slippage_bps", 50) // 0.5%
	v.SetDefault("swap.liquidity_usd", 1_000_000)
	v.SetDefault("swap.network_fee_usd", 2.5)
	v.SetDefault("swap.mev_protection", true)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "swapdesk")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.TradingService.BaseURL == "" {
		return fmt.Errorf("trading_service.base_url is required")
	}
	if c.Wallet.Address != "" && !common.IsHexAddress(c.Wallet.Address) {
		return fmt.Errorf("invalid wallet.address: %s", c.Wallet.Address)
	}
	if c.Swap.DefaultSlippageBps <= 0 || c.Swap.DefaultSlippageBps >= 10000 {
		return fmt.Errorf("swap.default_slippage_bps out of range: %d", c.Swap.DefaultSlippageBps)
	}
	if c.Swap.LiquidityUSD <= 0 {
		return fmt.Errorf("swap.liquidity_usd must be positive")
	}
	if c.Swap.NetworkFeeUSD < 0 {
		return fmt.Errorf("swap.network_fee_usd cannot be negative")
	}
	return nil
}
