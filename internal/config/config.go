package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Reconciliation ReconciliationConfig
	Log            LogConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	DSN string
}

// ReconciliationConfig holds the operator defaults for a pass.
type ReconciliationConfig struct {
	Threshold      string
	Organization   string
	RequirePeriod  bool   `mapstructure:"require_period"`
	HeaderScanRows int    `mapstructure:"header_scan_rows"`
	Tolerance      string
	InputEncoding  string `mapstructure:"input_encoding"`

	threshold decimal.Decimal
	tolerance decimal.Decimal
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// ThresholdAmount is the channel threshold as parsed by Load.
func (c ReconciliationConfig) ThresholdAmount() decimal.Decimal {
	return c.threshold
}

// ToleranceAmount is the conservation tolerance as parsed by Load.
func (c ReconciliationConfig) ToleranceAmount() decimal.Decimal {
	return c.tolerance
}

func parseAmount(key, text string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q: %w", key, text, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s %q: must not be negative", key, text)
	}
	return d, nil
}

// Load reads configuration from file and env. Env var overrides use prefix SUPPLIERPAY_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=supplier_payments port=5432 sslmode=disable")
	v.SetDefault("reconciliation.threshold", "400")
	v.SetDefault("reconciliation.organization", "")
	v.SetDefault("reconciliation.require_period", true)
	v.SetDefault("reconciliation.header_scan_rows", 20)
	v.SetDefault("reconciliation.tolerance", "0.01")
	v.SetDefault("reconciliation.input_encoding", "auto")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	v.SetConfigType("toml")
	if path := os.Getenv("SUPPLIERPAY_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SUPPLIERPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	rc := &c.Reconciliation
	var err error
	if rc.threshold, err = parseAmount("reconciliation.threshold", rc.Threshold); err != nil {
		return Config{}, err
	}
	if rc.tolerance, err = parseAmount("reconciliation.tolerance", rc.Tolerance); err != nil {
		return Config{}, err
	}
	return c, nil
}
