package model

// BlockRange is an inclusive block range a result was computed over.
type BlockRange struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// TokenMeta captures ERC20 metadata. Decimals falls back to 18 on a
// failed read, with Err set so callers can tell defaulted from real.
type TokenMeta struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Err      string `json:"error,omitempty"`
}

// TokenStats extends token metadata with the total supply.
type TokenStats struct {
	Address     string `json:"address"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"total_supply"`
	Err         string `json:"error,omitempty"`
}

// TreasuryBalances holds the treasury wallet balances, normalized.
type TreasuryBalances struct {
	Address string `json:"address"`
	Blocks  string `json:"blocks"`
	USDT    string `json:"usdt"`
	BNB     string `json:"bnb"`
	Err     string `json:"error,omitempty"`
}

// NetworkInfo describes the remote chain endpoint state.
type NetworkInfo struct {
	ChainID         uint64 `json:"chain_id"`
	NetworkName     string `json:"network_name"`
	LatestBlock     uint64 `json:"latest_block"`
	LatestBlockTime string `json:"latest_block_time,omitempty"`
	GasPriceWei     string `json:"gas_price_wei"`
	Connected       bool   `json:"is_connected"`
}
