package metrics

import (
	"context"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/token"
)

type salesAccum struct {
	purchases uint64
	totalUSD  *big.Int
}

// PackageSalesReport aggregates Purchased events per package over the
// range. Every catalog package appears in the result, zero-filled when
// it saw no purchases. A zero fromBlock derives the default sales
// window below toBlock; an empty window triggers the one-shot widened
// retry either way.
func (s *Service) PackageSalesReport(ctx context.Context, fromBlock, toBlock uint64) (model.PackageSalesReport, error) {
	binding, err := s.registry.Bind(registry.NamePackageManager)
	if err != nil {
		return model.PackageSalesReport{}, err
	}

	rng, err := s.resolveRange(ctx, fromBlock, toBlock, s.windows.Sales)
	if err != nil {
		return model.PackageSalesReport{}, err
	}

	decimals := s.tokenDecimals(ctx, registry.NameUSDT)

	catalogIDs, err := s.ActivePackageIDs(ctx)
	if err != nil {
		s.logger.Warn("package catalog unavailable, reporting observed packages only", zap.Error(err))
		catalogIDs = nil
	}

	topic := TopicHash(SigPurchased)
	aggregate := func(ctx context.Context, rng model.BlockRange) (map[uint64]*salesAccum, int, error) {
		logs, err := s.scanLogs(ctx, rng, binding.Address, [][]common.Hash{{topic}})
		if err != nil {
			return nil, 0, err
		}

		totals := make(map[uint64]*salesAccum)
		matched := 0
		for _, log := range logs {
			if len(log.Topics) < 3 {
				continue
			}
			amount, ok := dataWord(log.Data, 0)
			if !ok {
				s.logger.Warn("short purchase event data, skipping",
					zap.Uint64("block", log.BlockNumber),
					zap.String("tx", log.TxHash.Hex()))
				continue
			}
			id := new(big.Int).SetBytes(log.Topics[2].Bytes()).Uint64()
			acc, ok := totals[id]
			if !ok {
				acc = &salesAccum{totalUSD: new(big.Int)}
				totals[id] = acc
			}
			acc.purchases++
			acc.totalUSD.Add(acc.totalUSD, amount)
			matched++
		}
		return totals, matched, nil
	}

	totals, usedRange, err := RunWithBackfill(ctx, rng, s.windows.Sales, s.windows.Backfill, s.logger, aggregate)
	if err != nil {
		return model.PackageSalesReport{}, err
	}

	ids := make(map[uint64]struct{}, len(catalogIDs)+len(totals))
	for _, id := range catalogIDs {
		ids[id] = struct{}{}
	}
	for id := range totals {
		ids[id] = struct{}{}
	}

	packages := make([]model.PackageSales, 0, len(ids))
	for id := range ids {
		entry := model.PackageSales{PackageID: id, TotalUSD: "0", AvgUSD: "0"}
		if acc, ok := totals[id]; ok && acc.purchases > 0 {
			entry.Purchases = acc.purchases
			entry.TotalUSD = token.FormatAmount(acc.totalUSD, decimals)
			avg := new(big.Rat).Quo(
				token.Normalize(acc.totalUSD, decimals),
				new(big.Rat).SetUint64(acc.purchases),
			)
			entry.AvgUSD = token.FormatRat(avg)
		}
		packages = append(packages, entry)
	}
	sort.Slice(packages, func(i, j int) bool {
		if packages[i].Purchases != packages[j].Purchases {
			return packages[i].Purchases > packages[j].Purchases
		}
		return packages[i].PackageID < packages[j].PackageID
	})

	return model.PackageSalesReport{
		Range:    usedRange,
		Decimals: decimals,
		Packages: packages,
	}, nil
}
