// Package config loads the simulation run configuration from a YAML or
// JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete simulation configuration.
type Config struct {
	Database   DatabaseConfig   `json:"database" yaml:"database"`
	Account    AccountConfig    `json:"account" yaml:"account"`
	Broker     BrokerConfig     `json:"broker" yaml:"broker"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Strategy   StrategyConfig   `json:"strategy" yaml:"strategy"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Report     ReportConfig     `json:"report" yaml:"report"`
}

type DatabaseConfig struct {
	URL string `json:"url" yaml:"url"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	ID                string  `json:"id" yaml:"id"`
	Kind              string  `json:"kind" yaml:"kind"` // TAXABLE, TRADITIONAL_IRA, ROTH_IRA
	Principal         float64 `json:"principal" yaml:"principal"`
	ReinvestDividends bool    `json:"reinvest_dividends" yaml:"reinvest_dividends"`
}

// BrokerConfig selects the market data and execution model.
type BrokerConfig struct {
	// Guide names the ticker whose candle series defines the simulated
	// trading calendar.
	Guide        string         `json:"guide" yaml:"guide"`
	Tickers      []string       `json:"tickers" yaml:"tickers"`
	PriceModel   string         `json:"price_model" yaml:"price_model"` // close, open, adjclose, random-low-high, random-open-close
	AdjustPrices bool           `json:"adjust_prices" yaml:"adjust_prices"`
	Slippage     SlippageConfig `json:"slippage" yaml:"slippage"`
}

type SlippageConfig struct {
	BuyFraction  float64 `json:"buy_fraction" yaml:"buy_fraction"`
	BuyConst     float64 `json:"buy_const" yaml:"buy_const"`
	SellFraction float64 `json:"sell_fraction" yaml:"sell_fraction"`
	SellConst    float64 `json:"sell_const" yaml:"sell_const"`
}

// SimulationConfig contains day-loop parameters. Start and End are
// "2006-01-02" dates; empty means the whole guide range.
type SimulationConfig struct {
	Start                 string  `json:"start,omitempty" yaml:"start,omitempty"`
	End                   string  `json:"end,omitempty" yaml:"end,omitempty"`
	RebalanceEveryDays    int     `json:"rebalance_every_days" yaml:"rebalance_every_days"`
	TargetChangeEps       float64 `json:"target_change_eps" yaml:"target_change_eps"`
	TrackingEps           float64 `json:"tracking_eps" yaml:"tracking_eps"`
	MaxRebalanceDelayDays int     `json:"max_rebalance_delay_days" yaml:"max_rebalance_delay_days"`
	Seed                  int64   `json:"seed" yaml:"seed"`
	Progress              bool    `json:"progress" yaml:"progress"`
}

// StrategyConfig selects and parameterizes the predictor.
type StrategyConfig struct {
	Name     string             `json:"name" yaml:"name"` // static or momentum
	Weights  map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
	Lookback int                `json:"lookback,omitempty" yaml:"lookback,omitempty"`
}

// JournalConfig contains audit-trail output parameters.
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "csv", "sqlite" or "" for none
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TransactionsFile string `json:"transactions_file,omitempty" yaml:"transactions_file,omitempty"`
	ValuesFile       string `json:"values_file,omitempty" yaml:"values_file,omitempty"`
}

type ReportConfig struct {
	RiskFreeRate float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	DailyCSV     string  `json:"daily_csv,omitempty" yaml:"daily_csv,omitempty"`
	MonthlyCSV   string  `json:"monthly_csv,omitempty" yaml:"monthly_csv,omitempty"`
	HoldingsCSV  string  `json:"holdings_csv,omitempty" yaml:"holdings_csv,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ParseDate parses an optional "2006-01-02" date; a zero time for "".
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Account.Principal <= 0 {
		return fmt.Errorf("account.principal must be positive")
	}
	if len(c.Broker.Tickers) == 0 {
		return fmt.Errorf("broker.tickers must name at least one asset")
	}
	if c.Broker.Guide == "" {
		c.Broker.Guide = c.Broker.Tickers[0]
	}
	switch c.Strategy.Name {
	case "static":
		if len(c.Strategy.Weights) == 0 {
			return fmt.Errorf("strategy.weights is required for the static strategy")
		}
	case "momentum":
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy.Name)
	}
	switch strings.ToLower(c.Journal.Type) {
	case "", "csv", "sqlite":
	default:
		return fmt.Errorf("unknown journal type %q", c.Journal.Type)
	}
	if _, err := ParseDate(c.Simulation.Start); err != nil {
		return fmt.Errorf("simulation.start: %w", err)
	}
	if _, err := ParseDate(c.Simulation.End); err != nil {
		return fmt.Errorf("simulation.end: %w", err)
	}
	return nil
}
