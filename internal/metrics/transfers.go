package metrics

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/token"
)

// TransferReport lists project-token Transfer events over the range.
// A non-zero holder keeps only events where the holder is sender or
// receiver; the filter is applied after the scan so one query serves
// both directions.
func (s *Service) TransferReport(ctx context.Context, fromBlock, toBlock uint64, holder common.Address) (model.TransferReport, error) {
	blocks, err := s.registry.Bind(registry.NameBlocksToken)
	if err != nil {
		return model.TransferReport{}, err
	}

	rng, err := s.resolveRange(ctx, fromBlock, toBlock, s.windows.Reports)
	if err != nil {
		return model.TransferReport{}, err
	}

	decimals := s.tokenDecimals(ctx, registry.NameBlocksToken)

	filterHolder := holder != (common.Address{})
	holderHex := strings.ToLower(holder.Hex())

	topic := TopicHash(SigTransfer)
	aggregate := func(ctx context.Context, rng model.BlockRange) ([]model.TransferEvent, int, error) {
		logs, err := s.scanLogs(ctx, rng, blocks.Address, [][]common.Hash{{topic}})
		if err != nil {
			return nil, 0, err
		}

		events := make([]model.TransferEvent, 0, len(logs))
		for _, log := range logs {
			if len(log.Topics) < 3 {
				continue
			}
			amount, ok := dataWord(log.Data, 0)
			if !ok {
				s.logger.Warn("short transfer event data, skipping",
					zap.Uint64("block", log.BlockNumber),
					zap.String("tx", log.TxHash.Hex()))
				continue
			}

			from := topicAddress(log.Topics[1])
			to := topicAddress(log.Topics[2])
			if filterHolder &&
				strings.ToLower(from.Hex()) != holderHex &&
				strings.ToLower(to.Hex()) != holderHex {
				continue
			}

			events = append(events, model.TransferEvent{
				From:        from.Hex(),
				To:          to.Hex(),
				Amount:      amount.String(),
				AmountNorm:  token.FormatAmount(amount, decimals),
				BlockNumber: log.BlockNumber,
			})
		}
		return events, len(events), nil
	}

	events, usedRange, err := RunWithBackfill(ctx, rng, s.windows.Reports, s.windows.Backfill, s.logger, aggregate)
	if err != nil {
		return model.TransferReport{}, err
	}

	return model.TransferReport{
		Range:    usedRange,
		Decimals: decimals,
		Events:   events,
	}, nil
}
