package token

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
)

// DefaultDecimals is assumed when the decimals call fails. The meta
// carries an error marker so callers can tell defaulted from real.
const DefaultDecimals uint8 = 18

// ContractCaller is the slice of the chain client the reader needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader fetches token metadata and balances and normalizes raw
// integer amounts by the token's own decimals.
type Reader struct {
	caller ContractCaller
	logger *zap.Logger
}

func NewReader(caller ContractCaller, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{caller: caller, logger: logger}
}

func (r *Reader) call(ctx context.Context, parsed abi.ABI, target common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &target, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// Meta fetches symbol and decimals. It never fails past this boundary:
// decode failures yield partial data with the Err marker set and
// decimals defaulted.
func (r *Reader) Meta(ctx context.Context, addr common.Address) model.TokenMeta {
	meta := model.TokenMeta{Address: addr.Hex(), Symbol: "?", Decimals: DefaultDecimals}

	erc20, err := registry.ERC20ABI()
	if err != nil {
		meta.Err = err.Error()
		return meta
	}

	if values, err := r.call(ctx, erc20, addr, "decimals"); err == nil {
		if decimals, err := asUint8(values[0]); err == nil {
			meta.Decimals = decimals
		} else {
			meta.Err = err.Error()
		}
	} else {
		meta.Err = err.Error()
		r.logger.Warn("decimals call failed", zap.String("token", addr.Hex()), zap.Error(err))
	}

	if values, err := r.call(ctx, erc20, addr, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if bytes32ABI, abiErr := registry.ERC20Bytes32ABI(); abiErr == nil {
		if values, err := r.call(ctx, bytes32ABI, addr, "symbol"); err == nil {
			if symbol, ok := bytes32ToString(values[0]); ok {
				meta.Symbol = symbol
			}
		} else {
			r.logger.Debug("symbol call failed", zap.String("token", addr.Hex()), zap.Error(err))
		}
	}

	return meta
}

// Decimals fetches only the token decimals.
func (r *Reader) Decimals(ctx context.Context, addr common.Address) (uint8, error) {
	erc20, err := registry.ERC20ABI()
	if err != nil {
		return 0, err
	}
	values, err := r.call(ctx, erc20, addr, "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(values[0])
}

// TotalSupply returns the raw total supply.
func (r *Reader) TotalSupply(ctx context.Context, addr common.Address) (*big.Int, error) {
	erc20, err := registry.ERC20ABI()
	if err != nil {
		return nil, err
	}
	values, err := r.call(ctx, erc20, addr, "totalSupply")
	if err != nil {
		return nil, err
	}
	return AsBigInt(values[0])
}

// BalanceOf returns the raw token balance of owner.
func (r *Reader) BalanceOf(ctx context.Context, tokenAddr, owner common.Address) (*big.Int, error) {
	erc20, err := registry.ERC20ABI()
	if err != nil {
		return nil, err
	}
	values, err := r.call(ctx, erc20, tokenAddr, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return AsBigInt(values[0])
}
