package config

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// orderedKeys returns the keys of the mapping node in document order. Keys
// must be strings: yaml resolves bare on, yes or 0x10 to other types, which
// would not match the map decoded for values. kind names the mapping in errors.
func orderedKeys(unmarshal func(interface{}) error, kind string) ([]string, error) {
	var raw yaml.MapSlice
	if err := unmarshal(&raw); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		key, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("%s name %v must be a string, quote it", kind, item.Key)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate %s %q", kind, key)
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}

// UnmarshalYAML decodes the token mapping, keeping document order.
func (m *TokenMap) UnmarshalYAML(unmarshal func(interface{}) error) error {
	symbols, err := orderedKeys(unmarshal, "token")
	if err != nil {
		return err
	}

	var values map[string]*Address
	if err := unmarshal(&values); err != nil {
		return fmt.Errorf("tokens: %w", err)
	}

	tokens := make(TokenMap, 0, len(symbols))
	for _, symbol := range symbols {
		address := values[symbol]
		if address == nil {
			return fmt.Errorf("token %q: %w: address", symbol, ErrMissingField)
		}
		tokens = append(tokens, Token{Symbol: symbol, Address: *address})
	}
	*m = tokens
	return nil
}

type rawWatchedAddress struct {
	Address *Address `yaml:"address"`
	Ether   *bool    `yaml:"ether"`
	Tokens  []string `yaml:"tokens"`
	Tag     string   `yaml:"tag"`
}

// UnmarshalYAML decodes the address mapping, keeping document order.
func (m *AddressMap) UnmarshalYAML(unmarshal func(interface{}) error) error {
	labels, err := orderedKeys(unmarshal, "address")
	if err != nil {
		return err
	}

	var values map[string]*rawWatchedAddress
	if err := unmarshal(&values); err != nil {
		return fmt.Errorf("addresses: %w", err)
	}

	addresses := make(AddressMap, 0, len(labels))
	for _, label := range labels {
		entry := values[label]
		if entry == nil || entry.Address == nil {
			return fmt.Errorf("address %q: %w: address", label, ErrMissingField)
		}
		if entry.Ether == nil {
			return fmt.Errorf("address %q: %w: ether", label, ErrMissingField)
		}

		addresses = append(addresses, WatchedAddress{
			Label:   label,
			Address: *entry.Address,
			Ether:   *entry.Ether,
			Tokens:  entry.Tokens,
			Tag:     entry.Tag,
		})
	}
	*m = addresses
	return nil
}
