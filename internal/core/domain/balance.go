package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// NativeAsset is the reserved asset name used for the native coin balance.
// It can never be used as a token symbol.
const NativeAsset = "ether"

// AssetStandard tells how a balance is queried.
type AssetStandard string

const (
	AssetStandardNative AssetStandard = "native"
	AssetStandardERC20  AssetStandard = "erc20"
)

// Result is the outcome of one balance query for a
// (network, address, asset) combination.
type Result struct {
	Network     string
	AddressName string
	Address     common.Address
	Asset       string
	Standard    AssetStandard
	Balance     *uint256.Int // nil when Err is set
	Err         error
	Tag         string
}

// OK reports whether the query succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// SetOutcome stores a query outcome. The balance is dropped when err is set.
func (r *Result) SetOutcome(balance *uint256.Int, err error) {
	if err != nil {
		r.Balance, r.Err = nil, err
		return
	}
	r.Balance, r.Err = balance, nil
}

// AddressHex returns the lower-case 0x form used in metric labels and logs.
func (r Result) AddressHex() string {
	return LowerHex(r.Address)
}

// Observer receives every Result of a collection pass, in order.
// It must not block for long and must not panic.
type Observer func(Result)

// LowerHex renders an address as lower-case 0x-prefixed hex.
func LowerHex(a common.Address) string {
	return "0x" + common.Bytes2Hex(a.Bytes())
}
