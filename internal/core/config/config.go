package config

import (
	"time"
)

// DefaultNetworkName is used when a single-network document does not name
// its network.
const DefaultNetworkName = "mainnet"

// DefaultTimeout bounds every individual balance query.
const DefaultTimeout = 30 * time.Second

// Config represents the top-level configuration.
type Config struct {
	Logging  LoggingConfig `yaml:"logging"`
	Networks []Network     `yaml:"networks"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Network holds the watch list for one node endpoint.
type Network struct {
	Name      string        `yaml:"name"`
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"` // per query, 0 = DefaultTimeout
	Tokens    TokenMap      `yaml:"tokens"`
	Addresses AddressMap    `yaml:"addresses"`
}

// Token maps a symbol to its ERC20 contract address.
type Token struct {
	Symbol  string
	Address Address
}

// TokenMap is the symbol -> contract map of a network, in document order.
type TokenMap []Token

// Lookup returns the contract address registered for symbol.
func (m TokenMap) Lookup(symbol string) (Address, bool) {
	for _, t := range m {
		if t.Symbol == symbol {
			return t.Address, true
		}
	}
	return Address{}, false
}

// WatchedAddress is one entry of a network's address map.
type WatchedAddress struct {
	Label   string
	Address Address
	Ether   bool     // watch the native balance
	Tokens  []string // token symbols, in query order
	Tag     string
}

// AddressMap is the label -> watched address map of a network, in document order.
type AddressMap []WatchedAddress
