package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/api"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/storage"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/storage/postgres"
)

func printJSON(value interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func rangeFlags(cmd *cobra.Command) (uint64, uint64) {
	from, _ := cmd.Flags().GetUint64("from")
	to, _ := cmd.Flags().GetUint64("to")
	return from, to
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := buildServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	server := api.NewServer(svc.reports, svc.metrics, svc.cfg, svc.logger)
	return server.Start(ctx, svc.cfg.HTTPListen)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := buildServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	snapshot := svc.reports.Snapshot(ctx)

	var sinks []storage.Storage
	if svc.cfg.SnapshotOut != "" {
		sinks = append(sinks, storage.NewJsonlStorage(svc.cfg.SnapshotOut))
	}
	if svc.cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, svc.cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, store)
	}

	for _, sink := range sinks {
		if err := sink.PutSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("store snapshot: %w", err)
		}
	}
	svc.logger.Info("snapshot taken",
		zap.String("taken_at", snapshot.TakenAt),
		zap.Int("sinks", len(sinks)))

	return printJSON(snapshot)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := buildServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	from, to := rangeFlags(cmd)
	return printJSON(svc.reports.ReportsSummary(ctx, from, to))
}

func runSales(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := buildServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	from, to := rangeFlags(cmd)
	report, err := svc.metrics.PackageSalesReport(ctx, from, to)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runLiquidity(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := buildServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	from, to := rangeFlags(cmd)
	return printJSON(svc.reports.LiquidityStats(ctx, from, to))
}

func runGas(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := buildServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	wallets := make([]common.Address, 0, len(svc.cfg.GasWallets))
	for _, raw := range svc.cfg.GasWallets {
		if !common.IsHexAddress(raw) {
			return fmt.Errorf("invalid gas wallet: %q", raw)
		}
		wallets = append(wallets, common.HexToAddress(raw))
	}
	if len(wallets) == 0 {
		return fmt.Errorf("gas wallet list is required")
	}

	from, to := rangeFlags(cmd)
	report, err := svc.metrics.GasSpendReport(ctx, from, to, wallets)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runVesting(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := buildServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	wallets := make([]common.Address, 0, len(args))
	for _, raw := range args {
		if !common.IsHexAddress(raw) {
			return fmt.Errorf("invalid wallet: %q", raw)
		}
		wallets = append(wallets, common.HexToAddress(raw))
	}

	return printJSON(svc.metrics.VestingPositions(ctx, wallets))
}
