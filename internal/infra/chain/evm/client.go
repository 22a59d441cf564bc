package evm

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/vietddude/balancewatch/internal/infra/chain"
	"github.com/vietddude/balancewatch/internal/infra/rpc"
)

// latest is the block tag used by every query.
const latest = "latest"

// Client reads balances from an EVM node over JSON-RPC.
type Client struct {
	network string
	client  rpc.RPCClient
}

var _ chain.Client = (*Client)(nil)

// NewClient wraps an existing RPC client.
func NewClient(network string, client rpc.RPCClient) *Client {
	return &Client{
		network: network,
		client:  client,
	}
}

// Dial builds a client for the node at u. The connection is not checked;
// errors surface on the first query.
func Dial(network string, u *url.URL, timeout time.Duration) (*Client, error) {
	transport, err := rpc.NewTransport(network, u, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport from node url: %w", err)
	}
	return NewClient(network, transport), nil
}

// NativeBalance returns the balance of addr via eth_getBalance.
func (c *Client) NativeBalance(ctx context.Context, addr common.Address) (*uint256.Int, error) {
	op := rpc.NewOperation("eth_getBalance", addr.Hex(), latest)
	result, err := c.client.Execute(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance failed: %w", err)
	}

	quantity, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("invalid eth_getBalance response: %v", result)
	}

	balance, err := uint256.FromHex(quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", quantity, err)
	}
	return balance, nil
}

// Token returns an ERC20 handle bound to this client.
func (c *Client) Token(addr common.Address) chain.TokenContract {
	return &ERC20{address: addr, client: c}
}

// Health reports the transport health when the transport tracks it.
func (c *Client) Health() (rpc.HealthStatus, bool) {
	p, ok := c.client.(rpc.Provider)
	if !ok {
		return rpc.HealthStatus{}, false
	}
	return p.GetHealth(), true
}

// Network returns the network name the client was built for.
func (c *Client) Network() string {
	return c.network
}

// Close releases the transport.
func (c *Client) Close() error {
	if closer, ok := c.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
