package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/chain"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/config"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/metrics"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/price"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/reports"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/token"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "blockcoop-admin",
		Short:        "BlockCoop on-chain analytics",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("rpc", "", "BSC RPC URL")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("manifest", "", "deployment manifest path")
	root.PersistentFlags().Duration("call-timeout", 15*time.Second, "per-call RPC timeout")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analytics HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().String("http-listen", ":8080", "HTTP listen address")
	root.AddCommand(serveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Take a dashboard snapshot and persist it",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().String("snapshot-out", "", "snapshot JSONL output path")
	snapshotCmd.Flags().String("pg-dsn", "", "Postgres DSN for snapshot storage")
	root.AddCommand(snapshotCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the revenue and referral summary",
		RunE:  runReport,
	}
	addRangeFlags(reportCmd)
	root.AddCommand(reportCmd)

	salesCmd := &cobra.Command{
		Use:   "sales",
		Short: "Print per-package purchase totals",
		RunE:  runSales,
	}
	addRangeFlags(salesCmd)
	root.AddCommand(salesCmd)

	liquidityCmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Print pool reserves, TVL, and daily volume",
		RunE:  runLiquidity,
	}
	addRangeFlags(liquidityCmd)
	root.AddCommand(liquidityCmd)

	gasCmd := &cobra.Command{
		Use:   "gas",
		Short: "Print gas spend per operational wallet",
		RunE:  runGas,
	}
	addRangeFlags(gasCmd)
	gasCmd.Flags().StringSlice("gas-wallets", nil, "sender wallets (comma-separated)")
	root.AddCommand(gasCmd)

	vestingCmd := &cobra.Command{
		Use:   "vesting [wallet...]",
		Short: "Print vesting positions for wallets",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runVesting,
	}
	root.AddCommand(vestingCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64("from", 0, "start block (inclusive), 0 derives a default window")
	cmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
}

// services bundles everything a subcommand needs.
type services struct {
	cfg     config.Config
	logger  *zap.Logger
	chain   *chain.Client
	metrics *metrics.Service
	reports *reports.Service
}

func (s *services) close() {
	if s.chain != nil {
		s.chain.Close()
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

func buildServices(ctx context.Context, cmd *cobra.Command) (*services, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, cfg.CallTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	reg := registry.New(cfg.ManifestPath, cfg.Contracts, logger)
	tokens := token.NewReader(chainClient, logger)

	var factory *common.Address
	if addr, ok := reg.Address(registry.NameFactory); ok {
		factory = &addr
	}
	prices := price.NewSource(chainClient, tokens, factory, logger)

	agg := metrics.NewService(chainClient, chainClient, chainClient, reg, tokens, cfg.Windows, logger)
	rep := reports.NewService(chainClient, agg, prices, reg, tokens, cfg, logger)

	return &services{
		cfg:     cfg,
		logger:  logger,
		chain:   chainClient,
		metrics: agg,
		reports: rep,
	}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
