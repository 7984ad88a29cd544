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

// TaxReport sums TaxApplied events over the range. The recipient is
// carried when the log has the full three-topic shape; two-topic logs
// still count toward the total.
func (s *Service) TaxReport(ctx context.Context, fromBlock, toBlock uint64) (model.TaxReport, error) {
	binding, err := s.registry.Bind(registry.NamePackageManager)
	if err != nil {
		return model.TaxReport{}, err
	}

	rng, err := s.resolveRange(ctx, fromBlock, toBlock, s.windows.Reports)
	if err != nil {
		return model.TaxReport{}, err
	}

	decimals := s.tokenDecimals(ctx, registry.NameUSDT)

	type taxResult struct {
		events []model.TaxEvent
		total  *big.Int
	}

	topic := TopicHash(SigTaxApplied)
	aggregate := func(ctx context.Context, rng model.BlockRange) (taxResult, int, error) {
		logs, err := s.scanLogs(ctx, rng, binding.Address, [][]common.Hash{{topic}})
		if err != nil {
			return taxResult{}, 0, err
		}

		res := taxResult{total: new(big.Int)}
		for _, log := range logs {
			amount, ok := dataWord(log.Data, 0)
			if !ok {
				s.logger.Warn("short tax event data, skipping",
					zap.Uint64("block", log.BlockNumber),
					zap.String("tx", log.TxHash.Hex()))
				continue
			}

			event := model.TaxEvent{
				Amount:      amount.String(),
				BlockNumber: log.BlockNumber,
			}
			if len(log.Topics) >= 3 {
				event.Recipient = topicAddress(log.Topics[2]).Hex()
			}

			res.events = append(res.events, event)
			res.total.Add(res.total, amount)
		}
		return res, len(res.events), nil
	}

	res, usedRange, err := RunWithBackfill(ctx, rng, s.windows.Reports, s.windows.Backfill, s.logger, aggregate)
	if err != nil {
		return model.TaxReport{}, err
	}

	total := "0"
	if res.total != nil {
		total = token.FormatAmount(res.total, decimals)
	}

	return model.TaxReport{
		Range:    usedRange,
		TotalUSD: total,
		Decimals: decimals,
		Events:   res.events,
	}, nil
}
