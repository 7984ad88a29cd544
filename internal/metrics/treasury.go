package metrics

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/token"
)

// TreasuryInflows sums stable-coin transfers from the package manager
// to the treasury wallet. Both parties are matched server-side via
// indexed topics, so the scan only returns the exact transfer leg.
func (s *Service) TreasuryInflows(ctx context.Context, fromBlock, toBlock uint64) (model.TreasuryInflows, error) {
	usdt, err := s.registry.Bind(registry.NameUSDT)
	if err != nil {
		return model.TreasuryInflows{}, err
	}
	manager, ok := s.registry.Address(registry.NamePackageManager)
	if !ok {
		return model.TreasuryInflows{}, registry.ErrContractUnavailable
	}
	treasury, ok := s.registry.Address(registry.NameTreasury)
	if !ok {
		return model.TreasuryInflows{}, registry.ErrContractUnavailable
	}

	rng, err := s.resolveRange(ctx, fromBlock, toBlock, s.windows.Reports)
	if err != nil {
		return model.TreasuryInflows{}, err
	}

	decimals := s.tokenDecimals(ctx, registry.NameUSDT)

	topics := [][]common.Hash{
		{TopicHash(SigTransfer)},
		{AddressTopic(manager)},
		{AddressTopic(treasury)},
	}

	type inflowResult struct {
		total  *big.Int
		count  uint64
		events []model.InflowEvent
	}

	aggregate := func(ctx context.Context, rng model.BlockRange) (inflowResult, int, error) {
		logs, err := s.scanLogs(ctx, rng, usdt.Address, topics)
		if err != nil {
			return inflowResult{}, 0, err
		}

		res := inflowResult{total: new(big.Int)}
		for _, log := range logs {
			amount, ok := dataWord(log.Data, 0)
			if !ok {
				s.logger.Warn("short transfer event data, skipping",
					zap.Uint64("block", log.BlockNumber),
					zap.String("tx", log.TxHash.Hex()))
				continue
			}
			res.total.Add(res.total, amount)
			res.count++
			res.events = append(res.events, model.InflowEvent{
				Amount:      amount.String(),
				BlockNumber: log.BlockNumber,
			})
		}
		return res, int(res.count), nil
	}

	res, usedRange, err := RunWithBackfill(ctx, rng, s.windows.Reports, s.windows.Backfill, s.logger, aggregate)
	if err != nil {
		return model.TreasuryInflows{}, err
	}

	total := "0"
	if res.total != nil {
		total = token.FormatAmount(res.total, decimals)
	}

	return model.TreasuryInflows{
		Range:    usedRange,
		TotalUSD: total,
		Count:    res.count,
		Decimals: decimals,
		Events:   res.events,
	}, nil
}
