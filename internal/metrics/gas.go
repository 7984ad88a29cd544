package metrics

import (
	"context"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/token"
)

// gasWorkers is the fan-out bound for the per-block transaction scan.
const gasWorkers = 8

// bnbDecimals converts wei to BNB for display.
const bnbDecimals = 18

type gasAccum struct {
	wei     *big.Int
	txCount uint64
}

// GasSpendReport scans blocks in the range and sums gas fees paid by
// the allow-listed sender wallets. The fee per transaction is receipt
// gasUsed times the effective gas price, falling back to the quoted
// transaction gas price when the receipt predates the fee market.
// Block scanning is expensive, so the range is hard-capped at the
// configured gas window regardless of what the caller asked for.
// Every allow-listed wallet appears in the result, zeroed when it sent
// nothing.
func (s *Service) GasSpendReport(ctx context.Context, fromBlock, toBlock uint64, wallets []common.Address) (model.GasSpendReport, error) {
	rng, err := s.resolveRange(ctx, fromBlock, toBlock, s.windows.Gas)
	if err != nil {
		return model.GasSpendReport{}, err
	}
	if span := rng.To - rng.From + 1; span > s.windows.Gas {
		s.logger.Warn("gas scan range capped",
			zap.Uint64("requested_blocks", span),
			zap.Uint64("cap", s.windows.Gas))
		rng.From = rng.To - s.windows.Gas + 1
	}

	watch := make(map[common.Address]struct{}, len(wallets))
	for _, wallet := range wallets {
		watch[wallet] = struct{}{}
	}

	blocks := make(chan uint64)
	partials := make([]map[common.Address]*gasAccum, gasWorkers)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(blocks)
		for number := rng.From; number <= rng.To; number++ {
			select {
			case blocks <- number:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < gasWorkers; i++ {
		partial := make(map[common.Address]*gasAccum)
		partials[i] = partial
		group.Go(func() error {
			for number := range blocks {
				if err := s.scanBlockGas(gctx, number, watch, partial); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return model.GasSpendReport{}, err
	}

	merged := make(map[common.Address]*gasAccum, len(watch))
	for wallet := range watch {
		merged[wallet] = &gasAccum{wei: new(big.Int)}
	}
	for _, partial := range partials {
		for wallet, acc := range partial {
			total := merged[wallet]
			total.wei.Add(total.wei, acc.wei)
			total.txCount += acc.txCount
		}
	}

	byAddress := make([]model.AddressGas, 0, len(merged))
	for wallet, acc := range merged {
		byAddress = append(byAddress, model.AddressGas{
			Address: wallet.Hex(),
			GasWei:  acc.wei.String(),
			GasBNB:  token.FormatAmount(acc.wei, bnbDecimals),
			TxCount: acc.txCount,
		})
	}
	sort.Slice(byAddress, func(i, j int) bool {
		return strings.ToLower(byAddress[i].Address) < strings.ToLower(byAddress[j].Address)
	})

	return model.GasSpendReport{
		Range:         rng,
		ScannedBlocks: rng.To - rng.From + 1,
		ByAddress:     byAddress,
	}, nil
}

// scanBlockGas accumulates the gas fees of one block's allow-listed
// transactions into the worker-local partial map.
func (s *Service) scanBlockGas(ctx context.Context, number uint64, watch map[common.Address]struct{}, partial map[common.Address]*gasAccum) error {
	txs, err := s.blocks.BlockTransactions(ctx, number)
	if err != nil {
		return err
	}

	for _, tx := range txs {
		if _, ok := watch[tx.From]; !ok {
			continue
		}

		receipt, err := s.blocks.TransactionReceipt(ctx, tx.Hash)
		if err != nil {
			s.logger.Warn("receipt fetch failed, skipping transaction",
				zap.String("tx", tx.Hash.Hex()),
				zap.Error(err))
			continue
		}

		price := receipt.EffectiveGasPrice
		if price == nil {
			price = tx.GasPrice
		}
		if price == nil {
			continue
		}

		fee := new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), price)

		acc, ok := partial[tx.From]
		if !ok {
			acc = &gasAccum{wei: new(big.Int)}
			partial[tx.From] = acc
		}
		acc.wei.Add(acc.wei, fee)
		acc.txCount++
	}
	return nil
}
