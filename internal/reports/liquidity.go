package reports

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/price"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/token"
)

type poolTarget struct {
	label string
	pair  common.Address
}

// liquidityPools resolves the tracked pairs. The stable pool comes
// from config or the factory; the native pool only from config, since
// there is no registered wrapped-native token to resolve it with.
func (s *Service) liquidityPools(ctx context.Context) []poolTarget {
	var targets []poolTarget

	if common.IsHexAddress(s.cfg.PairUSDT) {
		targets = append(targets, poolTarget{label: "BLOCKS/USDT", pair: common.HexToAddress(s.cfg.PairUSDT)})
	} else {
		blocks, okBlocks := s.registry.Address(registry.NameBlocksToken)
		usdt, okUSDT := s.registry.Address(registry.NameUSDT)
		if okBlocks && okUSDT {
			if pair, ok := s.prices.ResolvePair(ctx, blocks, usdt); ok {
				targets = append(targets, poolTarget{label: "BLOCKS/USDT", pair: pair})
			}
		}
	}

	if common.IsHexAddress(s.cfg.PairBNB) {
		targets = append(targets, poolTarget{label: "BLOCKS/WBNB", pair: common.HexToAddress(s.cfg.PairBNB)})
	}

	return targets
}

func poolSide(meta model.TokenMeta, reserve *big.Int) model.PoolSide {
	return model.PoolSide{
		Symbol:   meta.Symbol,
		Address:  meta.Address,
		Decimals: meta.Decimals,
		Reserve:  token.FormatAmount(reserve, meta.Decimals),
	}
}

// stableSide returns which side of the pool is the stable token, or -1.
func (s *Service) stableSide(state price.PoolState) int {
	usdt, ok := s.registry.Address(registry.NameUSDT)
	if !ok {
		return -1
	}
	hex := strings.ToLower(usdt.Hex())
	if strings.ToLower(state.Token0.Address) == hex {
		return 0
	}
	if strings.ToLower(state.Token1.Address) == hex {
		return 1
	}
	return -1
}

// LiquidityStats reads the tracked pools and estimates TVL and daily
// swap volume. TVL per pool is twice the stable reserve; pools without
// a stable side contribute reserves but no dollar figure. Volume only
// covers stable-sided pools for the same reason.
func (s *Service) LiquidityStats(ctx context.Context, fromBlock, toBlock uint64) model.LiquidityStats {
	stats := model.LiquidityStats{
		TotalLiquidityUSD: "0",
		DailyVolumeUSD:    "0",
		Pools:             []model.PoolSnapshot{},
	}

	totalTVL := new(big.Rat)
	totalVolume := new(big.Rat)

	for _, target := range s.liquidityPools(ctx) {
		state, err := s.prices.PoolState(ctx, target.pair)
		if err != nil {
			s.logger.Warn("pool read failed",
				zap.String("pool", target.label),
				zap.String("pair", target.pair.Hex()),
				zap.Error(err))
			continue
		}

		snapshot := model.PoolSnapshot{
			Label:        target.label,
			Address:      target.pair.Hex(),
			Token0:       poolSide(state.Token0, state.Reserve0),
			Token1:       poolSide(state.Token1, state.Reserve1),
			TVLUSD:       "0",
			Volume24hUSD: "0",
		}

		stats.ActivePools++

		if side := s.stableSide(state); side >= 0 {
			reserve, decimals := state.Reserve0, state.Token0.Decimals
			if side == 1 {
				reserve, decimals = state.Reserve1, state.Token1.Decimals
			}
			tvl := new(big.Rat).Mul(token.Normalize(reserve, decimals), big.NewRat(2, 1))
			snapshot.TVLUSD = token.FormatRat(tvl)
			totalTVL.Add(totalTVL, tvl)

			raw, rng, err := s.metrics.SwapVolume(ctx, target.pair, side, fromBlock, toBlock)
			if err != nil {
				s.logger.Warn("swap volume scan failed",
					zap.String("pool", target.label),
					zap.Error(err))
			} else {
				volume := token.Normalize(raw, decimals)
				snapshot.Volume24hUSD = token.FormatRat(volume)
				totalVolume.Add(totalVolume, volume)
				stats.Range = rng
			}
		}

		stats.Pools = append(stats.Pools, snapshot)
	}

	stats.TotalLiquidityUSD = token.FormatRat(totalTVL)
	stats.DailyVolumeUSD = token.FormatRat(totalVolume)
	return stats
}
