package price

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/token"
)

// PoolState is the raw pair state at the moment of the read.
type PoolState struct {
	Pair     common.Address
	Token0   model.TokenMeta
	Token1   model.TokenMeta
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// Source locates liquidity pairs and derives spot prices from their
// reserves. Failure paths collapse to absent; SpotPrice never errors
// outward.
type Source struct {
	caller     token.ContractCaller
	tokens     *token.Reader
	factory    common.Address
	hasFactory bool
	overrides  map[string]common.Address
	logger     *zap.Logger
}

// NewSource builds a price source. factory may be nil when no factory
// contract is available; pair resolution then relies on overrides.
func NewSource(caller token.ContractCaller, tokens *token.Reader, factory *common.Address, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Source{
		caller:    caller,
		tokens:    tokens,
		overrides: make(map[string]common.Address),
		logger:    logger,
	}
	if factory != nil {
		s.factory = *factory
		s.hasFactory = true
	}
	return s
}

// AddOverride pins the pair address for a token pair, taking
// precedence over the factory lookup. Order-insensitive.
func (s *Source) AddOverride(tokenA, tokenB, pair common.Address) {
	s.overrides[pairKey(tokenA, tokenB)] = pair
}

func pairKey(a, b common.Address) string {
	first, second := strings.ToLower(a.Hex()), strings.ToLower(b.Hex())
	if second < first {
		first, second = second, first
	}
	return first + ":" + second
}

// ResolvePair finds the pool for a token pair: explicit override, else
// factory getPair. The zero address means "no pool".
func (s *Source) ResolvePair(ctx context.Context, tokenA, tokenB common.Address) (common.Address, bool) {
	if pair, ok := s.overrides[pairKey(tokenA, tokenB)]; ok {
		return pair, true
	}
	if !s.hasFactory {
		return common.Address{}, false
	}

	factoryABI, err := registry.FactoryABI()
	if err != nil {
		return common.Address{}, false
	}
	values, err := s.call(ctx, factoryABI, s.factory, "getPair", tokenA, tokenB)
	if err != nil {
		s.logger.Warn("getPair failed",
			zap.String("token_a", tokenA.Hex()),
			zap.String("token_b", tokenB.Hex()),
			zap.Error(err),
		)
		return common.Address{}, false
	}
	pair, err := token.AsAddress(values[0])
	if err != nil || pair == (common.Address{}) {
		return common.Address{}, false
	}
	return pair, true
}

// PoolState reads the pair's constituent tokens and reserves.
func (s *Source) PoolState(ctx context.Context, pair common.Address) (PoolState, error) {
	pairABI, err := registry.PairABI()
	if err != nil {
		return PoolState{}, fmt.Errorf("parse pair abi: %w", err)
	}

	values, err := s.call(ctx, pairABI, pair, "token0")
	if err != nil {
		return PoolState{}, err
	}
	token0, err := token.AsAddress(values[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("token0: %w", err)
	}

	values, err = s.call(ctx, pairABI, pair, "token1")
	if err != nil {
		return PoolState{}, err
	}
	token1, err := token.AsAddress(values[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("token1: %w", err)
	}

	values, err = s.call(ctx, pairABI, pair, "getReserves")
	if err != nil {
		return PoolState{}, err
	}
	if len(values) < 2 {
		return PoolState{}, fmt.Errorf("getReserves returned %d values", len(values))
	}
	reserve0, err := token.AsBigInt(values[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := token.AsBigInt(values[1])
	if err != nil {
		return PoolState{}, fmt.Errorf("reserve1: %w", err)
	}

	return PoolState{
		Pair:     pair,
		Token0:   s.tokens.Meta(ctx, token0),
		Token1:   s.tokens.Meta(ctx, token1),
		Reserve0: reserve0,
		Reserve1: reserve1,
	}, nil
}

// SpotPrice returns the quote-per-base price from the pair's reserves,
// adjusted for each token's decimals. Absent when no pool exists, when
// neither orientation matches, or when the base reserve normalizes to
// zero.
func (s *Source) SpotPrice(ctx context.Context, base, quote common.Address) (*big.Rat, bool) {
	pair, ok := s.ResolvePair(ctx, base, quote)
	if !ok {
		return nil, false
	}

	state, err := s.PoolState(ctx, pair)
	if err != nil {
		s.logger.Warn("pool state read failed", zap.String("pair", pair.Hex()), zap.Error(err))
		return nil, false
	}

	return PriceFromState(state, base, quote)
}

// PriceFromState computes the orientation-aware reserve ratio. Split
// out so it can be exercised without a chain connection.
func PriceFromState(state PoolState, base, quote common.Address) (*big.Rat, bool) {
	token0 := common.HexToAddress(state.Token0.Address)
	token1 := common.HexToAddress(state.Token1.Address)

	var baseRes, quoteRes *big.Rat
	switch {
	case token0 == base && token1 == quote:
		baseRes = token.Normalize(state.Reserve0, state.Token0.Decimals)
		quoteRes = token.Normalize(state.Reserve1, state.Token1.Decimals)
	case token0 == quote && token1 == base:
		baseRes = token.Normalize(state.Reserve1, state.Token1.Decimals)
		quoteRes = token.Normalize(state.Reserve0, state.Token0.Decimals)
	default:
		return nil, false
	}

	if baseRes.Sign() == 0 {
		return nil, false
	}
	return new(big.Rat).Quo(quoteRes, baseRes), true
}

func (s *Source) call(ctx context.Context, parsed abi.ABI, target common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &target, Data: data}
	resp, err := s.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}
