package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Client is the per-network boundary between the balance monitor and the
// node. Every query reads the latest state.
type Client interface {
	// NativeBalance returns the native coin balance of addr
	NativeBalance(ctx context.Context, addr common.Address) (*uint256.Int, error)

	// Token binds a token contract handle at addr. No request is made.
	Token(addr common.Address) TokenContract

	// Close releases the transport
	Close() error
}

// TokenContract is a bound ERC20 contract.
type TokenContract interface {
	Address() common.Address

	// BalanceOf calls balanceOf(holder) on the contract
	BalanceOf(ctx context.Context, holder common.Address) (*uint256.Int, error)
}
