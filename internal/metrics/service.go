package metrics

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/chain"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/config"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/token"
)

// logBatchSize bounds a single eth_getLogs query; wider ranges are
// scanned in consecutive batches.
const logBatchSize = 10_000

// LogSource is the slice of the chain client the log-based aggregators
// consume.
type LogSource interface {
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topics [][]common.Hash) ([]types.Log, error)
	LatestBlock(ctx context.Context) (uint64, error)
}

// BlockSource is the slice of the chain client the gas scanner consumes.
type BlockSource interface {
	BlockTransactions(ctx context.Context, number uint64) ([]chain.TxInfo, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*chain.ReceiptInfo, error)
}

// Service computes per-family aggregates over bounded block ranges.
// Every method is a pure function of chain state and range: safe to
// invoke concurrently and idempotent absent reorgs.
type Service struct {
	logs     LogSource
	blocks   BlockSource
	caller   token.ContractCaller
	registry *registry.Registry
	tokens   *token.Reader
	windows  config.Windows
	logger   *zap.Logger
}

func NewService(
	logs LogSource,
	blocks BlockSource,
	caller token.ContractCaller,
	reg *registry.Registry,
	tokens *token.Reader,
	windows config.Windows,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logs:     logs,
		blocks:   blocks,
		caller:   caller,
		registry: reg,
		tokens:   tokens,
		windows:  windows,
		logger:   logger,
	}
}

// resolveRange fills unset bounds: toBlock 0 means latest, fromBlock 0
// means one default window below toBlock.
func (s *Service) resolveRange(ctx context.Context, fromBlock, toBlock, window uint64) (model.BlockRange, error) {
	if toBlock == 0 {
		latest, err := s.logs.LatestBlock(ctx)
		if err != nil {
			return model.BlockRange{}, fmt.Errorf("resolve range: %w", err)
		}
		toBlock = latest
	}
	if fromBlock == 0 && toBlock > window {
		fromBlock = toBlock - window
	}
	if fromBlock > toBlock {
		return model.BlockRange{}, fmt.Errorf("from block %d beyond to block %d", fromBlock, toBlock)
	}
	return model.BlockRange{From: fromBlock, To: toBlock}, nil
}

// scanLogs fetches logs for one contract over the range in batches.
func (s *Service) scanLogs(ctx context.Context, rng model.BlockRange, addr common.Address, topics [][]common.Hash) ([]types.Log, error) {
	ranges, err := SplitRange(rng.From, rng.To, logBatchSize)
	if err != nil {
		return nil, err
	}

	var all []types.Log
	for _, batch := range ranges {
		logs, err := s.logs.FilterLogs(ctx, batch.From, batch.To, []common.Address{addr}, topics)
		if err != nil {
			return nil, err
		}
		all = append(all, logs...)
	}
	return all, nil
}

// tokenDecimals resolves the decimals of a registry-named token,
// defaulting when the contract is unbound or the call fails. Fetched
// once per aggregation, never per log.
func (s *Service) tokenDecimals(ctx context.Context, name string) uint8 {
	addr, ok := s.registry.Address(name)
	if !ok {
		return token.DefaultDecimals
	}
	decimals, err := s.tokens.Decimals(ctx, addr)
	if err != nil {
		s.logger.Warn("decimals fetch failed", zap.String("contract", name), zap.Error(err))
		return token.DefaultDecimals
	}
	return decimals
}
