// Package monitor resolves a watch list into per-network bindings and
// collects every configured balance on demand.
package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vietddude/balancewatch/internal/core/config"
	"github.com/vietddude/balancewatch/internal/core/domain"
	"github.com/vietddude/balancewatch/internal/infra/chain"
	"github.com/vietddude/balancewatch/internal/infra/chain/evm"
	"github.com/vietddude/balancewatch/internal/infra/rpc"
)

var (
	// ErrReservedToken is returned when a token map uses the native asset name.
	ErrReservedToken = errors.New("reserved token name")

	// ErrUnknownToken is returned when an address watches an undefined token.
	ErrUnknownToken = errors.New("token not found")

	// ErrUnsupportedScheme is returned for node URLs that are not http(s).
	ErrUnsupportedScheme = rpc.ErrUnsupportedScheme
)

// Dialer builds the client of one network. It must not contact the node.
type Dialer func(network string, u *url.URL, timeout time.Duration) (chain.Client, error)

// DialEVM is the default Dialer.
func DialEVM(network string, u *url.URL, timeout time.Duration) (chain.Client, error) {
	return evm.Dial(network, u, timeout)
}

// Token is a token contract shared by every address that watches it.
type Token struct {
	Name     string
	Contract chain.TokenContract
}

// AddressToMonitor is one watched address with its resolved tokens.
type AddressToMonitor struct {
	Name          string
	Address       common.Address
	MonitorNative bool
	Tokens        []*Token
	Tag           string
}

// NetworkBinding ties a network client to the addresses watched on it.
type NetworkBinding struct {
	Name      string
	Client    chain.Client
	Addresses []AddressToMonitor
}

// NetworkSummary describes a binding for logs and health reports.
type NetworkSummary struct {
	Name      string `json:"name"`
	Addresses int    `json:"addresses"`
	Tokens    int    `json:"tokens"`
	Queries   int    `json:"queries"`
}

// Monitor owns every network binding. It is immutable after New and safe
// to use from several goroutines.
type Monitor struct {
	networks []NetworkBinding
	log      *slog.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	dialer Dialer
	log    *slog.Logger
}

// WithDialer replaces the client constructor, mostly for tests.
func WithDialer(d Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithLogger sets the logger used by the monitor.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New validates cfg and builds the bindings of every network, in
// configuration order. Any error aborts the whole construction.
func New(cfg *config.Config, opts ...Option) (*Monitor, error) {
	o := options{dialer: DialEVM, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	for _, n := range cfg.Networks {
		if _, ok := n.Tokens.Lookup(domain.NativeAsset); ok {
			return nil, fmt.Errorf(
				"%w: token name %s cannot be used for ERC20 tokens (network %s)",
				ErrReservedToken, domain.NativeAsset, n.Name,
			)
		}
	}

	m := &Monitor{
		networks: make([]NetworkBinding, 0, len(cfg.Networks)),
		log:      o.log,
	}
	for _, n := range cfg.Networks {
		binding, err := newBinding(n, o.dialer)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("network %s: %w", n.Name, err)
		}
		m.networks = append(m.networks, binding)
	}

	return m, nil
}

func newBinding(n config.Network, dial Dialer) (NetworkBinding, error) {
	u, err := url.Parse(n.URL)
	if err != nil {
		return NetworkBinding{}, fmt.Errorf("invalid url: %w", err)
	}
	if !rpc.SupportedScheme(u.Scheme) {
		return NetworkBinding{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	client, err := dial(n.Name, u, n.Timeout)
	if err != nil {
		return NetworkBinding{}, fmt.Errorf("failed to create client: %w", err)
	}

	tokens := make(map[string]*Token, len(n.Tokens))
	for _, t := range n.Tokens {
		tokens[t.Symbol] = &Token{
			Name:     t.Symbol,
			Contract: client.Token(t.Address.Common()),
		}
	}

	addresses := make([]AddressToMonitor, 0, len(n.Addresses))
	for _, a := range n.Addresses {
		watched := make([]*Token, 0, len(a.Tokens))
		for _, symbol := range a.Tokens {
			token, ok := tokens[symbol]
			if !ok {
				client.Close()
				return NetworkBinding{}, fmt.Errorf(
					"%w: token named %s not found (address %s)", ErrUnknownToken, symbol, a.Label,
				)
			}
			watched = append(watched, token)
		}

		addresses = append(addresses, AddressToMonitor{
			Name:          a.Label,
			Address:       a.Address.Common(),
			MonitorNative: a.Ether,
			Tokens:        watched,
			Tag:           a.Tag,
		})
	}

	return NetworkBinding{Name: n.Name, Client: client, Addresses: addresses}, nil
}

// Networks returns a summary of every binding, in traversal order.
func (m *Monitor) Networks() []NetworkSummary {
	out := make([]NetworkSummary, 0, len(m.networks))
	for _, n := range m.networks {
		s := NetworkSummary{Name: n.Name, Addresses: len(n.Addresses)}
		seen := make(map[*Token]struct{})
		for _, a := range n.Addresses {
			if a.MonitorNative {
				s.Queries++
			}
			s.Queries += len(a.Tokens)
			for _, t := range a.Tokens {
				seen[t] = struct{}{}
			}
		}
		s.Tokens = len(seen)
		out = append(out, s)
	}
	return out
}

// Clients returns the client of every network by name.
func (m *Monitor) Clients() map[string]chain.Client {
	out := make(map[string]chain.Client, len(m.networks))
	for _, n := range m.networks {
		out[n.Name] = n.Client
	}
	return out
}

// Close releases every network client.
func (m *Monitor) Close() error {
	var errs []error
	for _, n := range m.networks {
		if err := n.Client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", n.Name, err))
		}
	}
	return errors.Join(errs...)
}
