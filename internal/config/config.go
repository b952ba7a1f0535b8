// Package config loads the server configuration from a yaml file and
// LANDBANK_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/acrefund/landbank-backend/internal/domain"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Fund     FundConfig     `mapstructure:"fund"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	APIToken string `mapstructure:"api_token"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// ConnString builds a lib/pq connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type LoggingConfig struct {
	File        string `mapstructure:"file"`
	Development bool   `mapstructure:"development"`
}

type FundConfig struct {
	InitialUnitPrice    float64 `mapstructure:"initial_unit_price"`
	CashAnnualRate      float64 `mapstructure:"cash_annual_rate"`
	DividendRate        float64 `mapstructure:"dividend_rate"`
	CollateralThreshold float64 `mapstructure:"collateral_threshold"`
	SecuredRate         float64 `mapstructure:"secured_rate"`
	UnsecuredRate       float64 `mapstructure:"unsecured_rate"`
	MinimumInvestment   float64 `mapstructure:"minimum_investment"`
	RandomSeed          int64   `mapstructure:"random_seed"`
}

// ToDomain converts the configured rates into the fund's decimal config.
func (f FundConfig) ToDomain() domain.FundConfig {
	return domain.FundConfig{
		InitialUnitPrice:    decimal.NewFromFloat(f.InitialUnitPrice),
		CashAnnualRate:      decimal.NewFromFloat(f.CashAnnualRate),
		DividendRate:        decimal.NewFromFloat(f.DividendRate),
		CollateralThreshold: decimal.NewFromFloat(f.CollateralThreshold),
		SecuredRate:         decimal.NewFromFloat(f.SecuredRate),
		UnsecuredRate:       decimal.NewFromFloat(f.UnsecuredRate),
		MinimumInvestment:   decimal.NewFromFloat(f.MinimumInvestment),
	}
}

type SeedConfig struct {
	DemoMembers int `mapstructure:"demo_members"`
}

// Load reads the configuration file at path (optional) merged over
// defaults and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"server.port":               8080,
		"server.api_token":          "dev-token",
		"database.host":             "localhost",
		"database.port":             5432,
		"database.user":             "postgres",
		"database.password":         "postgres",
		"database.name":             "landbank",
		"database.ssl_mode":         "disable",
		"logging.file":              "",
		"logging.development":       false,
		"fund.initial_unit_price":   1000,
		"fund.cash_annual_rate":     0.02,
		"fund.dividend_rate":        0.20,
		"fund.collateral_threshold": 0.5,
		"fund.secured_rate":         0.15,
		"fund.unsecured_rate":       0.10,
		"fund.minimum_investment":   10000,
		"fund.random_seed":          1,
		"seed.demo_members":         0,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("LANDBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validate(&cfg)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New("invalid server port")
	}
	if cfg.Server.APIToken == "" {
		return errors.New("missing api token")
	}
	if cfg.Fund.InitialUnitPrice <= 0 {
		return errors.New("initial unit price must be positive")
	}
	for name, rate := range map[string]float64{
		"cash_annual_rate": cfg.Fund.CashAnnualRate,
		"dividend_rate":    cfg.Fund.DividendRate,
		"secured_rate":     cfg.Fund.SecuredRate,
		"unsecured_rate":   cfg.Fund.UnsecuredRate,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%s must be within [0, 1]", name)
		}
	}
	if cfg.Fund.CollateralThreshold <= 0 {
		return errors.New("collateral threshold must be positive")
	}
	if cfg.Seed.DemoMembers < 0 {
		return errors.New("demo member count cannot be negative")
	}
	return nil
}
