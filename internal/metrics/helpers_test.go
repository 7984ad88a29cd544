package metrics

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/chain"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/config"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/token"
)

type fakeLogSource struct {
	latest  uint64
	logs    []types.Log
	queries []model.BlockRange
}

func (f *fakeLogSource) LatestBlock(_ context.Context) (uint64, error) {
	return f.latest, nil
}

func (f *fakeLogSource) FilterLogs(_ context.Context, from, to uint64, addresses []common.Address, topics [][]common.Hash) ([]types.Log, error) {
	f.queries = append(f.queries, model.BlockRange{From: from, To: to})

	var out []types.Log
	for _, log := range f.logs {
		if log.BlockNumber < from || log.BlockNumber > to {
			continue
		}
		if len(addresses) > 0 && !containsAddress(addresses, log.Address) {
			continue
		}
		if !matchTopics(topics, log.Topics) {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}

func containsAddress(addresses []common.Address, addr common.Address) bool {
	for _, a := range addresses {
		if a == addr {
			return true
		}
	}
	return false
}

func matchTopics(filter [][]common.Hash, topics []common.Hash) bool {
	for i, candidates := range filter {
		if len(candidates) == 0 {
			continue
		}
		if i >= len(topics) {
			return false
		}
		found := false
		for _, candidate := range candidates {
			if candidate == topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type fakeBlockSource struct {
	txs      map[uint64][]chain.TxInfo
	receipts map[common.Hash]*chain.ReceiptInfo
}

func (f *fakeBlockSource) BlockTransactions(_ context.Context, number uint64) ([]chain.TxInfo, error) {
	return f.txs[number], nil
}

func (f *fakeBlockSource) TransactionReceipt(_ context.Context, hash common.Hash) (*chain.ReceiptInfo, error) {
	receipt, ok := f.receipts[hash]
	if !ok {
		return nil, fmt.Errorf("no receipt for %s", hash.Hex())
	}
	return receipt, nil
}

// fakeCaller answers eth_call by method selector.
type fakeCaller struct {
	responses map[string][]byte
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if len(msg.Data) >= 4 {
		if out, ok := f.responses[string(msg.Data[:4])]; ok {
			return out, nil
		}
	}
	return nil, fmt.Errorf("unexpected call")
}

func testWindows() config.Windows {
	return config.Windows{
		Sales:      500_000,
		Reports:    28_800,
		SwapVolume: 28_800,
		Gas:        2_000,
		Backfill:   5,
	}
}

func newTestService(logs *fakeLogSource, blocks *fakeBlockSource, caller token.ContractCaller) *Service {
	if caller == nil {
		caller = &fakeCaller{}
	}
	reg := registry.New("", nil, nil)
	return NewService(logs, blocks, caller, reg, token.NewReader(caller, nil), testWindows(), nil)
}

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func uintWord(v uint64) []byte {
	return word(new(big.Int).SetUint64(v))
}

func concatWords(words ...[]byte) []byte {
	var out []byte
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

// eth: scales a whole-token amount into 18-decimal base units.
func eth(units int64, tenths int64) *big.Int {
	base := new(big.Int).Mul(big.NewInt(units), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	frac := new(big.Int).Mul(big.NewInt(tenths), new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil))
	return base.Add(base, frac)
}

func purchasedLog(manager common.Address, block uint64, buyer common.Address, packageID uint64, usdtAmount *big.Int) types.Log {
	return types.Log{
		Address:     manager,
		BlockNumber: block,
		Topics: []common.Hash{
			TopicHash(SigPurchased),
			AddressTopic(buyer),
			common.BytesToHash(uintWord(packageID)),
		},
		Data: concatWords(
			word(usdtAmount),
			uintWord(0), uintWord(0), uintWord(0), uintWord(0),
			word(new(big.Int)), uintWord(0),
		),
	}
}

func referralLog(manager common.Address, block uint64, referrer, buyer common.Address, reward *big.Int) types.Log {
	return types.Log{
		Address:     manager,
		BlockNumber: block,
		Topics: []common.Hash{
			TopicHash(SigReferralPaid),
			AddressTopic(referrer),
			AddressTopic(buyer),
		},
		Data: word(reward),
	}
}

func transferLog(tokenAddr common.Address, block uint64, from, to common.Address, amount *big.Int) types.Log {
	return types.Log{
		Address:     tokenAddr,
		BlockNumber: block,
		Topics: []common.Hash{
			TopicHash(SigTransfer),
			AddressTopic(from),
			AddressTopic(to),
		},
		Data: word(amount),
	}
}

func taxLog(manager common.Address, block uint64, kind common.Hash, amount *big.Int, recipient common.Address) types.Log {
	return types.Log{
		Address:     manager,
		BlockNumber: block,
		Topics: []common.Hash{
			TopicHash(SigTaxApplied),
			kind,
			AddressTopic(recipient),
		},
		Data: word(amount),
	}
}

func swapLog(pair common.Address, block uint64, amount0In, amount1In, amount0Out, amount1Out *big.Int) types.Log {
	return types.Log{
		Address:     pair,
		BlockNumber: block,
		Topics: []common.Hash{
			TopicHash(SigSwapV2),
			AddressTopic(common.HexToAddress("0x1111111111111111111111111111111111111111")),
			AddressTopic(common.HexToAddress("0x2222222222222222222222222222222222222222")),
		},
		Data: concatWords(word(amount0In), word(amount1In), word(amount0Out), word(amount1Out)),
	}
}
