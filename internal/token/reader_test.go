package token

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
)

var tokenAddr = common.HexToAddress("0x292E1B8CBE91623E71D6532e6BE6B881Cc0a9c31")

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

func erc20Responses(t *testing.T, symbol string, decimals uint8, supply *big.Int) map[string][]byte {
	t.Helper()
	erc20, err := registry.ERC20ABI()
	require.NoError(t, err)

	out := map[string][]byte{}
	symbolOut, err := erc20.Methods["symbol"].Outputs.Pack(symbol)
	require.NoError(t, err)
	out[string(erc20.Methods["symbol"].ID)] = symbolOut

	decimalsOut, err := erc20.Methods["decimals"].Outputs.Pack(decimals)
	require.NoError(t, err)
	out[string(erc20.Methods["decimals"].ID)] = decimalsOut

	if supply != nil {
		supplyOut, err := erc20.Methods["totalSupply"].Outputs.Pack(supply)
		require.NoError(t, err)
		out[string(erc20.Methods["totalSupply"].ID)] = supplyOut
	}
	return out
}

func TestMetaReadsSymbolAndDecimals(t *testing.T) {
	reader := NewReader(&fakeCaller{responses: erc20Responses(t, "BLOCKS", 18, nil)}, nil)

	meta := reader.Meta(context.Background(), tokenAddr)
	require.Equal(t, "BLOCKS", meta.Symbol)
	require.Equal(t, uint8(18), meta.Decimals)
	require.Empty(t, meta.Err)
	require.Equal(t, tokenAddr.Hex(), meta.Address)
}

func TestMetaDefaultsOnFailure(t *testing.T) {
	reader := NewReader(&fakeCaller{}, nil)

	meta := reader.Meta(context.Background(), tokenAddr)
	require.Equal(t, "?", meta.Symbol)
	require.Equal(t, DefaultDecimals, meta.Decimals)
	require.NotEmpty(t, meta.Err)
}

func TestMetaBytes32SymbolFallback(t *testing.T) {
	erc20, err := registry.ERC20ABI()
	require.NoError(t, err)

	var raw [32]byte
	copy(raw[:], "MKR")

	responses := erc20Responses(t, "", 18, nil)
	responses[string(erc20.Methods["symbol"].ID)] = raw[:]

	reader := NewReader(&fakeCaller{responses: responses}, nil)
	meta := reader.Meta(context.Background(), tokenAddr)
	require.Equal(t, "MKR", meta.Symbol)
	require.Equal(t, uint8(18), meta.Decimals)
}

func TestBalanceAndSupply(t *testing.T) {
	erc20, err := registry.ERC20ABI()
	require.NoError(t, err)

	supply := new(big.Int).Mul(big.NewInt(21_000_000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	responses := erc20Responses(t, "BLOCKS", 18, supply)

	balanceOut, err := erc20.Methods["balanceOf"].Outputs.Pack(big.NewInt(12_345))
	require.NoError(t, err)
	responses[string(erc20.Methods["balanceOf"].ID)] = balanceOut

	reader := NewReader(&fakeCaller{responses: responses}, nil)

	gotSupply, err := reader.TotalSupply(context.Background(), tokenAddr)
	require.NoError(t, err)
	require.Equal(t, supply, gotSupply)

	balance, err := reader.BalanceOf(context.Background(), tokenAddr, common.Address{})
	require.NoError(t, err)
	require.Equal(t, big.NewInt(12_345), balance)
}
