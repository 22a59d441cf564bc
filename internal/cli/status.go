package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/balancewatch/internal/core/config"
	"github.com/vietddude/balancewatch/internal/core/domain"
	"github.com/vietddude/balancewatch/internal/monitor"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query every configured balance once and print a table",
	Args:  cobra.NoArgs,
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	stats, err := printStatus(cmd.Context(), os.Stdout, cfg)
	if err != nil {
		slog.Error("Failed to initialize monitor", "error", err)
		os.Exit(1)
	}
	if stats.Failures > 0 {
		slog.Warn("Some balances could not be read", "failures", stats.Failures, "results", stats.Results)
		os.Exit(1)
	}
}

// printStatus runs one pass and writes it to out as a table. Network
// clients are closed before it returns.
func printStatus(ctx context.Context, out io.Writer, cfg *config.Config, opts ...monitor.Option) (monitor.PassStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	mon, err := monitor.New(cfg, opts...)
	if err != nil {
		return monitor.PassStats{}, err
	}
	defer func() {
		if err := mon.Close(); err != nil {
			slog.Warn("Failed to close network clients", "error", err)
		}
	}()

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "NETWORK\tNAME\tADDRESS\tTOKEN\tBALANCE")

	stats := mon.Collect(ctx, func(r domain.Result) {
		var balance string
		if r.OK() {
			balance = r.Balance.Dec()
		} else {
			balance = "error: " + r.Err.Error()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Network, r.AddressName, r.AddressHex(), r.Asset, balance)
	})
	_ = w.Flush()

	return stats, nil
}
