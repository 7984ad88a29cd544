package metrics

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
)

// SwapVolume sums the stable-side legs of v2 Swap events on a pair.
// Both the in and out amounts of the stable token are counted, which
// intentionally overstates turnover the same way the dashboard always
// has. stableIndex selects token0 or token1 as the stable side. The
// returned amount is raw and never widened: volume is a fixed-window
// figure, not a discovery scan.
func (s *Service) SwapVolume(ctx context.Context, pair common.Address, stableIndex int, fromBlock, toBlock uint64) (*big.Int, model.BlockRange, error) {
	if stableIndex != 0 && stableIndex != 1 {
		return nil, model.BlockRange{}, fmt.Errorf("stable index must be 0 or 1, got %d", stableIndex)
	}

	rng, err := s.resolveRange(ctx, fromBlock, toBlock, s.windows.SwapVolume)
	if err != nil {
		return nil, model.BlockRange{}, err
	}

	logs, err := s.scanLogs(ctx, rng, pair, [][]common.Hash{{TopicHash(SigSwapV2)}})
	if err != nil {
		return nil, model.BlockRange{}, err
	}

	inWord, outWord := 0, 2
	if stableIndex == 1 {
		inWord, outWord = 1, 3
	}

	total := new(big.Int)
	for _, log := range logs {
		in, okIn := dataWord(log.Data, inWord)
		out, okOut := dataWord(log.Data, outWord)
		if !okIn || !okOut {
			s.logger.Warn("short swap event data, skipping",
				zap.Uint64("block", log.BlockNumber),
				zap.String("tx", log.TxHash.Hex()))
			continue
		}
		total.Add(total, in)
		total.Add(total, out)
	}

	return total, rng, nil
}
