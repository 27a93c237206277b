package config

import (
	"fmt"
	"path/filepath"

	"coinpilot/pkg/confkit"
	"coinpilot/pkg/exchange"
	"coinpilot/pkg/trading"
)

// MustLoadExchange loads etc/exchange.yaml from the project root and panics on error.
// It isolates exchange config so tests that only need an exchange client
// do not have to carry the full app config.
func MustLoadExchange() *exchange.Config {
	root := confkit.MustProjectRoot()
	path := filepath.Join(root, "etc", "exchange.yaml")
	cfg, err := exchange.LoadConfig(path)
	if err != nil {
		panic(fmt.Errorf("load exchange config %s: %w", path, err))
	}
	return cfg
}

// MustLoadTrading loads etc/trading.yaml from the project root and panics on error.
func MustLoadTrading() *trading.Config {
	root := confkit.MustProjectRoot()
	path := filepath.Join(root, "etc", "trading.yaml")
	cfg, err := trading.LoadConfig(path)
	if err != nil {
		panic(fmt.Errorf("load trading config %s: %w", path, err))
	}
	return cfg
}
