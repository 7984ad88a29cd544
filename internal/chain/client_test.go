package chain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestUnavailableWrapsSentinel(t *testing.T) {
	err := unavailable("latest block", errors.New("dial tcp: refused"))
	require.ErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "latest block")
}

func TestRPCBlockDecoding(t *testing.T) {
	payload := []byte(`{
		"number": "0x1b4",
		"transactions": [
			{
				"hash": "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b",
				"from": "0xa7d9ddbe1f17865597fbd27ec712455208b6b76d",
				"gasPrice": "0x4a817c800"
			},
			{
				"hash": "0x57b0b4cb6a34e70c1ff0d4f6132f1448650c38a1c8e0ce8dd968ba05dbff9003",
				"from": "0x6e0d01a76c3cf4288372a29124a26d4353ee51be"
			}
		]
	}`)

	var block rpcBlock
	require.NoError(t, json.Unmarshal(payload, &block))
	require.Len(t, block.Transactions, 2)

	first := block.Transactions[0]
	require.Equal(t, common.HexToAddress("0xa7d9ddbe1f17865597fbd27ec712455208b6b76d"), first.From)
	require.NotNil(t, first.GasPrice)
	require.Equal(t, int64(20_000_000_000), first.GasPrice.ToInt().Int64())

	// Legacy nodes can omit gasPrice; the field stays nil.
	require.Nil(t, block.Transactions[1].GasPrice)
}

func TestRPCReceiptDecoding(t *testing.T) {
	withEffective := []byte(`{"gasUsed": "0x5208", "effectiveGasPrice": "0x3b9aca00"}`)
	var receipt rpcReceipt
	require.NoError(t, json.Unmarshal(withEffective, &receipt))
	require.Equal(t, uint64(21_000), uint64(receipt.GasUsed))
	require.Equal(t, int64(1_000_000_000), receipt.EffectiveGasPrice.ToInt().Int64())

	preFeeMarket := []byte(`{"gasUsed": "0x5208"}`)
	var legacy rpcReceipt
	require.NoError(t, json.Unmarshal(preFeeMarket, &legacy))
	require.Nil(t, legacy.EffectiveGasPrice)
}
