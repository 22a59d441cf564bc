package cli

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/vietddude/balancewatch/internal/core/config"
	"github.com/vietddude/balancewatch/internal/infra/chain"
	"github.com/vietddude/balancewatch/internal/monitor"
)

// stubClient implements chain.Client for testing
type stubClient struct {
	nativeErr error
	closed    bool
}

func (s *stubClient) NativeBalance(ctx context.Context, addr common.Address) (*uint256.Int, error) {
	if s.nativeErr != nil {
		return nil, s.nativeErr
	}
	return uint256.NewInt(7), nil
}

func (s *stubClient) Token(addr common.Address) chain.TokenContract { return nil }

func (s *stubClient) Close() error {
	s.closed = true
	return nil
}

func watchList(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(`
url: http://localhost:8545
addresses:
  treasury:
    address: "0x1111111111111111111111111111111111111111"
    ether: true
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cfg
}

func TestPrintStatus(t *testing.T) {
	client := &stubClient{}
	dial := func(string, *url.URL, time.Duration) (chain.Client, error) { return client, nil }

	var out bytes.Buffer
	stats, err := printStatus(context.Background(), &out, watchList(t), monitor.WithDialer(dial))
	if err != nil {
		t.Fatalf("printStatus failed: %v", err)
	}
	if stats.Results != 1 || stats.Failures != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if !strings.Contains(out.String(), "treasury") || !strings.Contains(out.String(), "7") {
		t.Errorf("unexpected table:\n%s", out.String())
	}
	if !client.closed {
		t.Error("expected client to be closed")
	}
}

func TestPrintStatus_ClosesOnFailures(t *testing.T) {
	client := &stubClient{nativeErr: errors.New("connection refused")}
	dial := func(string, *url.URL, time.Duration) (chain.Client, error) { return client, nil }

	var out bytes.Buffer
	stats, err := printStatus(context.Background(), &out, watchList(t), monitor.WithDialer(dial))
	if err != nil {
		t.Fatalf("printStatus failed: %v", err)
	}
	if stats.Failures != 1 {
		t.Errorf("expected 1 failure, got %+v", stats)
	}
	if !strings.Contains(out.String(), "error: connection refused") {
		t.Errorf("expected error in table:\n%s", out.String())
	}
	if !client.closed {
		t.Error("expected client to be closed before exit")
	}
}

func TestWatcherConfig(t *testing.T) {
	cfg := watchList(t)

	if _, err := watcherConfig(cfg, "127.0.0.1:9090", 0, false); err == nil {
		t.Fatal("expected error for zero update interval")
	}

	got, err := watcherConfig(cfg, "127.0.0.1:9090", 5, true)
	if err != nil {
		t.Fatalf("watcherConfig failed: %v", err)
	}
	if got.Interval != 5*time.Second || got.Bind != "127.0.0.1:9090" || !got.PrintBalances || got.Watch != cfg {
		t.Errorf("unexpected config: %+v", got)
	}
}
