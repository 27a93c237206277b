package exchange

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"coinpilot/pkg/confkit"
	"coinpilot/pkg/exchange/bithumb"
)

// Config captures configuration for one or more exchange credentials.
type Config struct {
	Default   string                     `yaml:"default"`
	Providers map[string]*ProviderConfig `yaml:"providers"`
}

// ProviderConfig describes how to construct one authenticated exchange
// client. Secrets are usually referenced as ${ENV_VAR} in the YAML and
// expanded at load time; the secret key never appears in logs.
type ProviderConfig struct {
	Type      string `yaml:"type"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open exchange config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read exchange config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal exchange config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad loads etc/exchange.yaml from the project root and panics on
// error.
func MustLoad() *Config {
	path := filepath.Join(confkit.MustProjectRoot(), "etc", "exchange.yaml")
	cfg, err := LoadConfig(path)
	if err != nil {
		panic(fmt.Errorf("load exchange config %s: %w", path, err))
	}
	return cfg
}

func (c *Config) normalise() error {
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}
	for name, provider := range c.Providers {
		if provider == nil {
			provider = &ProviderConfig{}
			c.Providers[name] = provider
		}
		provider.expandEnv()
		if err := provider.parseDurations(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProviderConfig) expandEnv() {
	p.Type = strings.TrimSpace(os.ExpandEnv(p.Type))
	p.AccessKey = strings.TrimSpace(os.ExpandEnv(p.AccessKey))
	p.SecretKey = strings.TrimSpace(os.ExpandEnv(p.SecretKey))
	p.BaseURL = strings.TrimSpace(os.ExpandEnv(p.BaseURL))
	p.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.TimeoutRaw))
}

func (p *ProviderConfig) parseDurations(name string) error {
	if p.TimeoutRaw == "" {
		p.Timeout = 0
		return nil
	}
	d, err := time.ParseDuration(p.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("exchange provider %s: invalid timeout %q: %w", name, p.TimeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("exchange provider %s: timeout must be positive, got %s", name, d)
	}
	p.Timeout = d
	return nil
}

// Validate ensures all providers have sane configuration.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("exchange config: providers cannot be empty")
	}
	if c.Default != "" {
		if _, ok := c.Providers[c.Default]; !ok {
			return fmt.Errorf("exchange config: default provider %q not defined", c.Default)
		}
	}

	for name, provider := range c.Providers {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("exchange config: provider name cannot be empty")
		}
		if err := provider.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProviderConfig) validate(name string) error {
	if p == nil {
		return fmt.Errorf("exchange config: provider %s is nil", name)
	}
	switch strings.ToLower(p.Type) {
	case "bithumb":
	case "":
		return fmt.Errorf("exchange config: provider %s must specify type", name)
	default:
		return fmt.Errorf("exchange config: provider %s has unsupported type %q", name, p.Type)
	}
	if p.AccessKey == "" || p.SecretKey == "" {
		return fmt.Errorf("exchange config: provider %s requires access_key and secret_key", name)
	}
	return nil
}

// BuildClients instantiates authenticated clients according to the
// configuration.
func (c *Config) BuildClients() (map[string]*bithumb.Client, error) {
	result := make(map[string]*bithumb.Client, len(c.Providers))
	for name, providerCfg := range c.Providers {
		opts := []bithumb.Option{}
		if providerCfg.BaseURL != "" {
			opts = append(opts, bithumb.WithBaseURL(providerCfg.BaseURL))
		}
		if providerCfg.Timeout > 0 {
			opts = append(opts, bithumb.WithTimeout(providerCfg.Timeout))
		}
		client, err := bithumb.NewClient(bithumb.Credentials{
			AccessKey: providerCfg.AccessKey,
			SecretKey: providerCfg.SecretKey,
		}, opts...)
		if err != nil {
			return nil, fmt.Errorf("exchange provider %s: %w", name, err)
		}
		result[name] = client
	}
	return result, nil
}

// DefaultClient builds all clients and returns the default one.
func (c *Config) DefaultClient() (*bithumb.Client, error) {
	clients, err := c.BuildClients()
	if err != nil {
		return nil, err
	}
	name := c.Default
	if name == "" && len(clients) == 1 {
		for only := range clients {
			name = only
		}
	}
	client, ok := clients[name]
	if !ok {
		return nil, fmt.Errorf("exchange config: default provider %q not defined", name)
	}
	return client, nil
}
