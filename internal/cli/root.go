package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/balancewatch/internal/control"
	"github.com/vietddude/balancewatch/internal/core/config"
	"github.com/vietddude/balancewatch/internal/health"
)

var (
	cfgPath        string
	bindAddr       string
	updateInterval uint
	printBalances  bool
	isDebug        bool
)

var rootCmd = &cobra.Command{
	Use:   "balancewatch",
	Short: "Balance watcher service",
	Long:  `Balancewatch polls ether and ERC20 balances of configured addresses on EVM networks and exports them as Prometheus metrics.`,
	Args:  cobra.NoArgs,
	Run:   runWatcher,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	_ = rootCmd.MarkPersistentFlagRequired("config")

	rootCmd.Flags().StringVar(&bindAddr, "bind", health.DefaultAddr, "serve the prometheus metrics at this address")
	rootCmd.Flags().UintVar(&updateInterval, "update-interval", 100, "update the balances in this interval in seconds, must be at least 1")
	rootCmd.Flags().BoolVar(&printBalances, "print-balances", false, "print balances to stdout on update")
}

// loadConfig reads .env and the config file, then initializes logging.
func loadConfig() *config.Config {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	initLogger(cfg.Logging)
	return cfg
}

func initLogger(cfg config.LoggingConfig) {
	level := slog.LevelInfo
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level = slog.LevelInfo
		}
	}
	if isDebug {
		level = slog.LevelDebug
	}

	if strings.EqualFold(cfg.Format, "json") {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return
	}

	stylelog.InitDefault(&tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
}

func logAccounts(cfg *config.Config) {
	for _, n := range cfg.Networks {
		for _, a := range n.Addresses {
			slog.Info("Monitoring account",
				"network", n.Name,
				"name", a.Label,
				"address", a.Address,
				"ether", a.Ether,
				"tokens", a.Tokens,
				"tag", a.Tag,
			)
		}
	}
}

// watcherConfig builds the watcher configuration from the parsed flags.
func watcherConfig(cfg *config.Config, bind string, intervalSeconds uint, printAll bool) (control.Config, error) {
	if intervalSeconds == 0 {
		return control.Config{}, errors.New("update-interval must be at least 1 second")
	}
	return control.Config{
		Watch:         cfg,
		Bind:          bind,
		Interval:      time.Duration(intervalSeconds) * time.Second,
		PrintBalances: printAll,
	}, nil
}

func runWatcher(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	slog.Info("Starting balance watcher",
		"config", cfgPath,
		"bind", bindAddr,
		"update_interval", updateInterval,
		"print_balances", printBalances,
	)
	logAccounts(cfg)

	controlCfg, err := watcherConfig(cfg, bindAddr, updateInterval, printBalances)
	if err != nil {
		slog.Error("Invalid flags", "error", err)
		os.Exit(1)
	}

	app, err := control.NewWatcher(controlCfg)
	if err != nil {
		slog.Error("Failed to initialize watcher", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		slog.Error("Watcher stopped", "error", err)
		os.Exit(1)
	}

	slog.Info("Watcher stopped gracefully")
}
