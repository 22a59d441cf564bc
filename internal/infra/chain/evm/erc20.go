package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/vietddude/balancewatch/internal/infra/rpc"
)

const erc20ABIJSON = `[{
	"constant": true,
	"inputs": [{"name": "_owner", "type": "address"}],
	"name": "balanceOf",
	"outputs": [{"name": "balance", "type": "uint256"}],
	"stateMutability": "view",
	"type": "function"
}]`

var erc20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid abi: %v", err))
	}
	return parsed
}

// ERC20 is a token contract bound to a client.
type ERC20 struct {
	address common.Address
	client  *Client
}

// Address returns the contract address.
func (t *ERC20) Address() common.Address {
	return t.address
}

// BalanceOf calls balanceOf(holder) with eth_call at the latest block.
func (t *ERC20) BalanceOf(ctx context.Context, holder common.Address) (*uint256.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", holder)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}

	call := map[string]any{
		"to":   t.address.Hex(),
		"data": hexutil.Encode(data),
	}
	result, err := t.client.client.Execute(ctx, rpc.NewOperation("eth_call", call, latest))
	if err != nil {
		return nil, fmt.Errorf("eth_call balanceOf failed: %w", err)
	}

	encoded, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("invalid eth_call response: %v", result)
	}
	raw, err := hexutil.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid eth_call result %q: %w", encoded, err)
	}

	out, err := erc20ABI.Unpack("balanceOf", raw)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf output type %T", out[0])
	}

	balance, overflow := uint256.FromBig(value)
	if overflow {
		return nil, fmt.Errorf("balanceOf result overflows 256 bits")
	}
	return balance, nil
}
