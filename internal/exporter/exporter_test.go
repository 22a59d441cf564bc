package exporter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vietddude/balancewatch/internal/core/domain"
	"github.com/vietddude/balancewatch/internal/infra/rpc"
)

const treasury = "0x00000000000000000000000000000000000000aa"

func result(asset string, balance *uint256.Int, err error) domain.Result {
	r := domain.Result{
		Network:     "mainnet",
		AddressName: "treasury",
		Address:     common.HexToAddress(treasury),
		Asset:       asset,
		Tag:         "ops",
	}
	r.SetOutcome(balance, err)
	return r
}

func TestPrometheus_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.Observe(result(domain.NativeAsset, uint256.MustFromDecimal("5000000000000000000"), nil))
	p.Observe(result("usdc", uint256.NewInt(100_000_000), nil))

	if got := testutil.ToFloat64(p.Balance.WithLabelValues("treasury", "ether", treasury, "ops", "mainnet")); got != 5e18 {
		t.Errorf("expected ether balance 5e18, got %v", got)
	}
	if got := testutil.ToFloat64(p.Balance.WithLabelValues("treasury", "usdc", treasury, "ops", "mainnet")); got != 1e8 {
		t.Errorf("expected usdc balance 1e8, got %v", got)
	}
	if got := testutil.ToFloat64(p.Attempts.WithLabelValues("success", treasury, "mainnet")); got != 2 {
		t.Errorf("expected 2 successes, got %v", got)
	}
}

func TestPrometheus_FailureKeepsBalance(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.Observe(result("usdc", uint256.NewInt(42), nil))
	p.Observe(result("usdc", nil, errors.New("timeout")))

	if got := testutil.ToFloat64(p.Balance.WithLabelValues("treasury", "usdc", treasury, "ops", "mainnet")); got != 42 {
		t.Errorf("expected previous balance to remain, got %v", got)
	}
	if got := testutil.ToFloat64(p.Attempts.WithLabelValues("failure", treasury, "mainnet")); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
	if n := testutil.CollectAndCount(p.Balance); n != 1 {
		t.Errorf("expected 1 balance series, got %d", n)
	}
}

func TestPrometheus_FailureOnlyCreatesNoGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.Observe(result("usdc", nil, errors.New("boom")))

	if n := testutil.CollectAndCount(p.Balance); n != 0 {
		t.Errorf("expected no balance series, got %d", n)
	}
}

func TestPrometheus_MarkPass(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.MarkPass(time.Unix(1700000000, 500_000_000))

	if got := testutil.ToFloat64(p.LastUpdate); got != 1700000000.5 {
		t.Errorf("expected last update 1700000000.5, got %v", got)
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Observe(result("usdc", uint256.NewInt(100_000_000), nil))
	c.Observe(result("dai", nil, errors.New("execution reverted")))

	want := "address treasury on network mainnet token usdc balance is 100000000\n" +
		"failed to get balance for address treasury on network mainnet token dai: execution reverted\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestMulti(t *testing.T) {
	var order []string
	observe := Multi(
		func(domain.Result) { order = append(order, "first") },
		nil,
		func(domain.Result) { order = append(order, "second") },
	)

	observe(result("usdc", uint256.NewInt(1), nil))

	if strings.Join(order, ",") != "first,second" {
		t.Errorf("unexpected order: %v", order)
	}
}

func TestLogFailures(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	observe := LogFailures(log)

	observe(result("usdc", uint256.NewInt(1), nil))
	if buf.Len() != 0 {
		t.Fatalf("expected no log for success, got %s", buf.String())
	}

	observe(result("usdc", nil, errors.New("boom")))
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "error=boom") || !strings.Contains(out, treasury) {
		t.Errorf("unexpected log line: %s", out)
	}
}

func TestRPCMetrics_Instrument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(readBody(r), "eth_call") {
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":3,"message":"execution reverted"}}`))
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x1"}`))
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	transport, err := rpc.NewTransport("mainnet", u, time.Second)
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}

	reg := prometheus.NewRegistry()
	m := NewRPCMetrics(reg)
	p := m.Instrument("mainnet", transport)
	defer p.Close()

	if _, err := p.Execute(context.Background(), rpc.NewOperation("eth_getBalance", treasury, "latest")); err != nil {
		t.Fatalf("eth_getBalance failed: %v", err)
	}
	if _, err := p.Execute(context.Background(), rpc.NewOperation("eth_call")); err == nil {
		t.Fatal("expected eth_call to fail")
	}

	if got := testutil.ToFloat64(m.Calls.WithLabelValues("mainnet", "eth_getBalance")); got != 1 {
		t.Errorf("expected 1 eth_getBalance call, got %v", got)
	}
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("mainnet", "rpc")); got != 1 {
		t.Errorf("expected 1 rpc error, got %v", got)
	}
	if health := p.GetHealth(); health.Requests != 2 || health.Failures != 1 {
		t.Errorf("expected health to reach the transport, got %+v", health)
	}
}

func readBody(r *http.Request) string {
	var buf bytes.Buffer
	buf.ReadFrom(r.Body)
	return buf.String()
}
