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

// ReferralReport aggregates ReferralPaid events by referrer over the
// range. Rewards accumulate raw and are normalized once at the end.
func (s *Service) ReferralReport(ctx context.Context, fromBlock, toBlock uint64) (model.ReferralReport, error) {
	binding, err := s.registry.Bind(registry.NamePackageManager)
	if err != nil {
		return model.ReferralReport{}, err
	}

	rng, err := s.resolveRange(ctx, fromBlock, toBlock, s.windows.Reports)
	if err != nil {
		return model.ReferralReport{}, err
	}

	decimals := s.tokenDecimals(ctx, registry.NameBlocksToken)

	type referralAccum struct {
		reward *big.Int
		count  uint64
	}
	type referralResult struct {
		events     []model.ReferralEvent
		byReferrer map[string]*referralAccum
		total      *big.Int
	}

	topic := TopicHash(SigReferralPaid)
	aggregate := func(ctx context.Context, rng model.BlockRange) (referralResult, int, error) {
		logs, err := s.scanLogs(ctx, rng, binding.Address, [][]common.Hash{{topic}})
		if err != nil {
			return referralResult{}, 0, err
		}

		res := referralResult{
			byReferrer: make(map[string]*referralAccum),
			total:      new(big.Int),
		}
		for _, log := range logs {
			if len(log.Topics) < 3 {
				continue
			}
			reward, ok := dataWord(log.Data, 0)
			if !ok {
				s.logger.Warn("short referral event data, skipping",
					zap.Uint64("block", log.BlockNumber),
					zap.String("tx", log.TxHash.Hex()))
				continue
			}

			referrer := topicAddress(log.Topics[1]).Hex()
			buyer := topicAddress(log.Topics[2]).Hex()

			res.events = append(res.events, model.ReferralEvent{
				Referrer:    referrer,
				Buyer:       buyer,
				Reward:      reward.String(),
				BlockNumber: log.BlockNumber,
			})

			acc, ok := res.byReferrer[referrer]
			if !ok {
				acc = &referralAccum{reward: new(big.Int)}
				res.byReferrer[referrer] = acc
			}
			acc.reward.Add(acc.reward, reward)
			acc.count++
			res.total.Add(res.total, reward)
		}
		return res, len(res.events), nil
	}

	res, usedRange, err := RunWithBackfill(ctx, rng, s.windows.Reports, s.windows.Backfill, s.logger, aggregate)
	if err != nil {
		return model.ReferralReport{}, err
	}

	byReferrer := make(map[string]model.ReferralTotal, len(res.byReferrer))
	for referrer, acc := range res.byReferrer {
		byReferrer[referrer] = model.ReferralTotal{
			Reward: token.FormatAmount(acc.reward, decimals),
			Count:  acc.count,
		}
	}

	total := "0"
	if res.total != nil {
		total = token.FormatAmount(res.total, decimals)
	}

	return model.ReferralReport{
		Range:      usedRange,
		Total:      total,
		Decimals:   decimals,
		ByReferrer: byReferrer,
		Events:     res.events,
	}, nil
}
