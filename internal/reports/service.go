package reports

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/config"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/metrics"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/price"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/token"
)

// ChainReader is the slice of the chain client the orchestrator needs
// for headline network and balance reads.
type ChainReader interface {
	IsConnected(ctx context.Context) bool
	ChainID(ctx context.Context) (*big.Int, error)
	LatestBlock(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error)
}

// Service composes the per-family aggregators into the dashboard
// surfaces. Every method degrades partially: a failed leg is zeroed
// and logged, never propagated as a panic or a blank page.
type Service struct {
	chain    ChainReader
	metrics  *metrics.Service
	prices   *price.Source
	registry *registry.Registry
	tokens   *token.Reader
	cfg      config.Config
	logger   *zap.Logger
}

func NewService(
	chain ChainReader,
	agg *metrics.Service,
	prices *price.Source,
	reg *registry.Registry,
	tokens *token.Reader,
	cfg config.Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chain:    chain,
		metrics:  agg,
		prices:   prices,
		registry: reg,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
	}
}

func networkName(chainID uint64) string {
	switch chainID {
	case 56:
		return "BSC Mainnet"
	case 97:
		return "BSC Testnet"
	default:
		return fmt.Sprintf("Chain %d", chainID)
	}
}

// NetworkInfo describes the endpoint. Never errors: an unreachable
// endpoint reports Connected false with zeroed fields.
func (s *Service) NetworkInfo(ctx context.Context) model.NetworkInfo {
	info := model.NetworkInfo{GasPriceWei: "0"}
	if !s.chain.IsConnected(ctx) {
		return info
	}
	info.Connected = true

	if chainID, err := s.chain.ChainID(ctx); err != nil {
		s.logger.Warn("chain id read failed", zap.Error(err))
	} else {
		info.ChainID = chainID.Uint64()
		info.NetworkName = networkName(info.ChainID)
	}
	if latest, err := s.chain.LatestBlock(ctx); err != nil {
		s.logger.Warn("latest block read failed", zap.Error(err))
	} else {
		info.LatestBlock = latest
		if ts, err := s.chain.BlockTimestamp(ctx, latest); err != nil {
			s.logger.Warn("block timestamp read failed", zap.Uint64("block", latest), zap.Error(err))
		} else {
			info.LatestBlockTime = time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
		}
	}
	if gasPrice, err := s.chain.GasPrice(ctx); err != nil {
		s.logger.Warn("gas price read failed", zap.Error(err))
	} else {
		info.GasPriceWei = gasPrice.String()
	}
	return info
}

// TokenStats reads metadata and supply for a registry-named token.
func (s *Service) TokenStats(ctx context.Context, name string) model.TokenStats {
	addr, ok := s.registry.Address(name)
	if !ok {
		return model.TokenStats{
			Symbol:      "?",
			Decimals:    token.DefaultDecimals,
			TotalSupply: "0",
			Err:         registry.ErrContractUnavailable.Error(),
		}
	}

	meta := s.tokens.Meta(ctx, addr)
	stats := model.TokenStats{
		Address:     meta.Address,
		Symbol:      meta.Symbol,
		Decimals:    meta.Decimals,
		TotalSupply: "0",
		Err:         meta.Err,
	}

	supply, err := s.tokens.TotalSupply(ctx, addr)
	if err != nil {
		s.logger.Warn("total supply read failed", zap.String("token", name), zap.Error(err))
		if stats.Err == "" {
			stats.Err = err.Error()
		}
		return stats
	}
	stats.TotalSupply = token.FormatAmount(supply, meta.Decimals)
	return stats
}

// TreasuryBalances reads the treasury wallet's project-token, stable,
// and native balances.
func (s *Service) TreasuryBalances(ctx context.Context) model.TreasuryBalances {
	balances := model.TreasuryBalances{Blocks: "0", USDT: "0", BNB: "0"}

	treasury, ok := s.registry.Address(registry.NameTreasury)
	if !ok {
		balances.Err = registry.ErrContractUnavailable.Error()
		return balances
	}
	balances.Address = treasury.Hex()

	readToken := func(name string, dst *string) {
		addr, ok := s.registry.Address(name)
		if !ok {
			return
		}
		raw, err := s.tokens.BalanceOf(ctx, addr, treasury)
		if err != nil {
			s.logger.Warn("treasury balance read failed", zap.String("token", name), zap.Error(err))
			if balances.Err == "" {
				balances.Err = err.Error()
			}
			return
		}
		decimals, err := s.tokens.Decimals(ctx, addr)
		if err != nil {
			decimals = token.DefaultDecimals
		}
		*dst = token.FormatAmount(raw, decimals)
	}

	readToken(registry.NameBlocksToken, &balances.Blocks)
	readToken(registry.NameUSDT, &balances.USDT)

	if native, err := s.chain.NativeBalance(ctx, treasury); err != nil {
		s.logger.Warn("treasury native balance read failed", zap.Error(err))
		if balances.Err == "" {
			balances.Err = err.Error()
		}
	} else {
		balances.BNB = token.FormatAmount(native, 18)
	}

	return balances
}

// MarketStats estimates the project-token spot price in the stable
// token. Absent whenever the pool cannot be read or holds no base
// reserve.
func (s *Service) MarketStats(ctx context.Context) model.MarketStats {
	stats := model.MarketStats{BlocksPriceUSD: "0"}

	blocks, okBlocks := s.registry.Address(registry.NameBlocksToken)
	usdt, okUSDT := s.registry.Address(registry.NameUSDT)
	if !okBlocks || !okUSDT {
		return stats
	}

	spot, ok := s.prices.SpotPrice(ctx, blocks, usdt)
	if !ok {
		return stats
	}
	stats.BlocksPriceUSD = token.FormatRat(spot)
	stats.Available = true
	return stats
}

// ComprehensiveStats assembles the dashboard headline. The independent
// legs run concurrently; each degrades on its own.
func (s *Service) ComprehensiveStats(ctx context.Context) model.ComprehensiveStats {
	var stats model.ComprehensiveStats

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		stats.Network = s.NetworkInfo(gctx)
		return nil
	})
	group.Go(func() error {
		stats.BlocksToken = s.TokenStats(gctx, registry.NameBlocksToken)
		return nil
	})
	group.Go(func() error {
		stats.USDT = s.TokenStats(gctx, registry.NameUSDT)
		return nil
	})
	group.Go(func() error {
		stats.Treasury = s.TreasuryBalances(gctx)
		return nil
	})
	group.Go(func() error {
		stats.Market = s.MarketStats(gctx)
		return nil
	})
	_ = group.Wait()

	stats.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return stats
}
