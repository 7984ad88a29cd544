package reports

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
)

// ReportsSummary composes treasury inflows, tax totals, and referral
// payments over one range. The three scans run concurrently and each
// degrades to zeroes on failure, so the summary always has its full
// shape.
func (s *Service) ReportsSummary(ctx context.Context, fromBlock, toBlock uint64) model.ReportsSummary {
	summary := model.ReportsSummary{
		Revenue: model.RevenueSummary{TreasuryUSD: "0", TaxesUSD: "0"},
		Referrals: model.ReferralReport{
			Total:      "0",
			ByReferrer: map[string]model.ReferralTotal{},
			Events:     []model.ReferralEvent{},
		},
	}

	var (
		inflows   model.TreasuryInflows
		taxes     model.TaxReport
		referrals model.ReferralReport

		inflowsErr, taxesErr, referralsErr error
	)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		inflows, inflowsErr = s.metrics.TreasuryInflows(gctx, fromBlock, toBlock)
		return nil
	})
	group.Go(func() error {
		taxes, taxesErr = s.metrics.TaxReport(gctx, fromBlock, toBlock)
		return nil
	})
	group.Go(func() error {
		referrals, referralsErr = s.metrics.ReferralReport(gctx, fromBlock, toBlock)
		return nil
	})
	_ = group.Wait()

	if inflowsErr != nil {
		s.logger.Warn("treasury inflow scan failed", zap.Error(inflowsErr))
	} else {
		summary.Revenue.TreasuryUSD = inflows.TotalUSD
		summary.Range = inflows.Range
	}
	if taxesErr != nil {
		s.logger.Warn("tax scan failed", zap.Error(taxesErr))
	} else {
		summary.Revenue.TaxesUSD = taxes.TotalUSD
		if summary.Range == (model.BlockRange{}) {
			summary.Range = taxes.Range
		}
	}
	if referralsErr != nil {
		s.logger.Warn("referral scan failed", zap.Error(referralsErr))
	} else {
		summary.Referrals = referrals
		if summary.Range == (model.BlockRange{}) {
			summary.Range = referrals.Range
		}
	}

	return summary
}

// Snapshot assembles a full dashboard refresh for persistence.
func (s *Service) Snapshot(ctx context.Context) model.DashboardSnapshot {
	return model.DashboardSnapshot{
		TakenAt:   time.Now().UTC().Format(time.RFC3339),
		Network:   s.NetworkInfo(ctx),
		Liquidity: s.LiquidityStats(ctx, 0, 0),
		Reports:   s.ReportsSummary(ctx, 0, 0),
	}
}
