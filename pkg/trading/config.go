package trading

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Strategy modes. The MACD-confirmation variant is an optional mode, not
// silently merged into the default.
const (
	StrategyRSIBollinger = "rsi-bollinger"
	StrategyMACDConfirm  = "macd-confirm"
)

// Config bundles the pipeline's policy constants. The sizing rule (10%
// of balance, minimum floor) is a fixed policy, parameterised here but
// preserving the floor/ceiling interaction: the exchange minimum wins
// over the percentage whenever the percentage would be rejected.
type Config struct {
	Market      string `yaml:"market"`
	CandleCount int    `yaml:"candle_count"`
	Strategy    string `yaml:"strategy"`

	SizingFraction float64 `yaml:"sizing_fraction"`
	MinOrderTotal  float64 `yaml:"min_order_total"`
	MinVolume      float64 `yaml:"min_volume"`
	ExitThreshold  float64 `yaml:"exit_threshold"`

	StaleAfterRaw string        `yaml:"stale_after"`
	StaleAfter    time.Duration `yaml:"-"`
}

// DefaultConfig returns the policy used by the original deployment:
// KRW-BTC, 100 candles, 10% sizing with a 5000 KRW floor, 0.0001 unit
// minimum, 3 minute staleness and a 5% exit band.
func DefaultConfig() *Config {
	return &Config{
		Market:         "KRW-BTC",
		CandleCount:    100,
		Strategy:       StrategyRSIBollinger,
		SizingFraction: 0.10,
		MinOrderTotal:  5000,
		MinVolume:      0.0001,
		ExitThreshold:  0.05,
		StaleAfter:     3 * time.Minute,
	}
}

// LoadConfig reads a trading config file, applying defaults for omitted
// fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trading config: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	cfg.StaleAfterRaw = ""
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("trading config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalises and checks the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Market) == "" {
		return fmt.Errorf("trading config: market is required")
	}
	if c.CandleCount <= 0 {
		return fmt.Errorf("trading config: candle_count must be positive")
	}
	switch c.Strategy {
	case "", StrategyRSIBollinger:
		c.Strategy = StrategyRSIBollinger
	case StrategyMACDConfirm:
	default:
		return fmt.Errorf("trading config: unknown strategy %q", c.Strategy)
	}
	if c.SizingFraction <= 0 || c.SizingFraction > 1 {
		return fmt.Errorf("trading config: sizing_fraction must be in (0, 1]")
	}
	if c.MinOrderTotal < 0 || c.MinVolume < 0 {
		return fmt.Errorf("trading config: minimums must not be negative")
	}
	if c.ExitThreshold <= 0 {
		return fmt.Errorf("trading config: exit_threshold must be positive")
	}
	if c.StaleAfterRaw != "" {
		d, err := time.ParseDuration(c.StaleAfterRaw)
		if err != nil || d <= 0 {
			return fmt.Errorf("trading config: invalid stale_after %q", c.StaleAfterRaw)
		}
		c.StaleAfter = d
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 3 * time.Minute
	}
	return nil
}
