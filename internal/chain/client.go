package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrUnavailable marks transport-level failures (unreachable node,
// timed-out call). Callers degrade the affected metric instead of
// propagating it.
var ErrUnavailable = errors.New("chain unavailable")

const defaultCallTimeout = 15 * time.Second

// Client wraps go-ethereum RPC and provides helper methods. Every
// remote call runs under the configured timeout.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	timeout   time.Duration

	mu      sync.RWMutex
	tsCache map[uint64]uint64
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		timeout:   timeout,
		tsCache:   make(map[uint64]uint64),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// IsConnected is a liveness probe. It never returns an error.
func (c *Client) IsConnected(ctx context.Context) bool {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	_, err := c.ethClient.ChainID(ctx)
	return err == nil
}

// ChainID returns the chain ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	id, err := c.ethClient.ChainID(ctx)
	if err != nil {
		return nil, unavailable("chain id", err)
	}
	return id, nil
}

// LatestBlock returns the latest block number.
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	latest, err := c.ethClient.BlockNumber(ctx)
	if err != nil {
		return 0, unavailable("latest block", err)
	}
	return latest, nil
}

// GasPrice returns the suggested gas price in wei.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	price, err := c.ethClient.SuggestGasPrice(ctx)
	if err != nil {
		return nil, unavailable("gas price", err)
	}
	return price, nil
}

// NativeBalance returns the native-currency balance of an address.
func (c *Client) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	bal, err := c.ethClient.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, unavailable("balance", err)
	}
	return bal, nil
}

// BlockTimestamp returns the block timestamp, using an in-memory cache.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.RLock()
	ts, ok := c.tsCache[number]
	c.mu.RUnlock()
	if ok {
		return ts, nil
	}

	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	header, err := c.ethClient.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, unavailable("block header", err)
	}

	ts = header.Time
	c.mu.Lock()
	c.tsCache[number] = ts
	c.mu.Unlock()

	return ts, nil
}

// FilterLogs returns logs in the given range. Block bounds are
// inclusive; toBlock == 0 means latest. Topics follow the positional
// eth_getLogs layout.
func (c *Client) FilterLogs(
	ctx context.Context,
	fromBlock uint64,
	toBlock uint64,
	addresses []common.Address,
	topics [][]common.Hash,
) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: addresses,
		Topics:    topics,
	}
	if toBlock > 0 {
		query.ToBlock = new(big.Int).SetUint64(toBlock)
	}

	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	logs, err := c.ethClient.FilterLogs(ctx, query)
	if err != nil {
		return nil, unavailable("filter logs", err)
	}
	return logs, nil
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	resp, err := c.ethClient.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return nil, unavailable("call contract", err)
	}
	return resp, nil
}

// TxInfo is the subset of a block transaction the gas scanner needs.
type TxInfo struct {
	Hash     common.Hash
	From     common.Address
	GasPrice *big.Int
}

// ReceiptInfo carries the receipt fields used for gas accounting.
// EffectiveGasPrice is nil when the node does not report one.
type ReceiptInfo struct {
	GasUsed           uint64
	EffectiveGasPrice *big.Int
}

type rpcTransaction struct {
	Hash     common.Hash    `json:"hash"`
	From     common.Address `json:"from"`
	GasPrice *hexutil.Big   `json:"gasPrice"`
}

type rpcBlock struct {
	Transactions []rpcTransaction `json:"transactions"`
}

type rpcReceipt struct {
	GasUsed           hexutil.Uint64 `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big   `json:"effectiveGasPrice"`
}

// BlockTransactions returns the full transactions of a block with their
// senders, via raw RPC so the sender does not have to be recovered from
// the signature.
func (c *Client) BlockTransactions(ctx context.Context, number uint64) ([]TxInfo, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	var block *rpcBlock
	err := c.rpcClient.CallContext(ctx, &block, "eth_getBlockByNumber", hexutil.EncodeUint64(number), true)
	if err != nil {
		return nil, unavailable("block by number", err)
	}
	if block == nil {
		return nil, fmt.Errorf("block %d not found", number)
	}

	txs := make([]TxInfo, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		info := TxInfo{Hash: tx.Hash, From: tx.From}
		if tx.GasPrice != nil {
			info.GasPrice = tx.GasPrice.ToInt()
		}
		txs = append(txs, info)
	}
	return txs, nil
}

// TransactionReceipt returns the gas accounting fields of a receipt.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*ReceiptInfo, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	var receipt *rpcReceipt
	err := c.rpcClient.CallContext(ctx, &receipt, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, unavailable("transaction receipt", err)
	}
	if receipt == nil {
		return nil, fmt.Errorf("receipt %s not found", hash.Hex())
	}

	info := &ReceiptInfo{GasUsed: uint64(receipt.GasUsed)}
	if receipt.EffectiveGasPrice != nil {
		info.EffectiveGasPrice = receipt.EffectiveGasPrice.ToInt()
	}
	return info, nil
}
