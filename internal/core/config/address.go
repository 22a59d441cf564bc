package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidAddress is returned for strings that are not 0x-prefixed
// 20-byte hex addresses.
var ErrInvalidAddress = errors.New("invalid address")

// Address is an account or contract address read from the config file.
type Address common.Address

// ParseAddress accepts only the 0x-prefixed 40 hex digit form.
func ParseAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, "0x") {
		return Address{}, fmt.Errorf("%w %q: does not start with 0x", ErrInvalidAddress, s)
	}
	if !common.IsHexAddress(s) {
		return Address{}, fmt.Errorf("%w %q: expected 40 hex digits", ErrInvalidAddress, s)
	}
	return Address(common.HexToAddress(s)), nil
}

// Common returns the go-ethereum form of the address.
func (a Address) Common() common.Address {
	return common.Address(a)
}

func (a Address) String() string {
	return common.Address(a).Hex()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Address) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
