package model

// PoolSide is one constituent token of a pair with its normalized reserve.
type PoolSide struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Reserve  string `json:"reserve"`
}

// PoolSnapshot is a point-in-time view of a pair. TVL and volume are
// documented estimation heuristics, not exact accounting: TVL is twice
// the stable-side reserve, and 24h volume sums both in and out legs of
// each swap.
type PoolSnapshot struct {
	Label        string   `json:"label"`
	Address      string   `json:"address"`
	Token0       PoolSide `json:"token0"`
	Token1       PoolSide `json:"token1"`
	TVLUSD       string   `json:"tvl_usd"`
	Volume24hUSD string   `json:"volume24h_usd"`
}

// LiquidityStats aggregates the configured pools.
type LiquidityStats struct {
	TotalLiquidityUSD string         `json:"total_liquidity_usd"`
	ActivePools       int            `json:"active_pools"`
	DailyVolumeUSD    string         `json:"daily_volume_usd"`
	Pools             []PoolSnapshot `json:"pools"`
	Range             BlockRange     `json:"range"`
}
