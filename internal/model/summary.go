package model

// RevenueSummary holds the two revenue legs, zeroed on partial failure.
type RevenueSummary struct {
	TreasuryUSD string `json:"treasury_usd"`
	TaxesUSD    string `json:"taxes_usd"`
}

// ReportsSummary composes treasury inflows, taxes, and referral
// payments for a range. Every field is present even when a leg failed.
type ReportsSummary struct {
	Range     BlockRange     `json:"range"`
	Revenue   RevenueSummary `json:"revenue"`
	Referrals ReferralReport `json:"referrals"`
}

// MarketStats carries the spot-price estimate. Available is false when
// no pool could be resolved or the base reserve was zero.
type MarketStats struct {
	BlocksPriceUSD string `json:"blocks_price_usd"`
	Available      bool   `json:"available"`
}

// ComprehensiveStats is the dashboard headline structure.
type ComprehensiveStats struct {
	Network     NetworkInfo      `json:"network"`
	BlocksToken TokenStats       `json:"blocks_token"`
	USDT        TokenStats       `json:"usdt"`
	Treasury    TreasuryBalances `json:"treasury"`
	Market      MarketStats      `json:"market"`
	Timestamp   string           `json:"timestamp"`
}

// DashboardSnapshot is the persisted form of a full dashboard refresh.
type DashboardSnapshot struct {
	TakenAt   string         `json:"taken_at"`
	Network   NetworkInfo    `json:"network"`
	Liquidity LiquidityStats `json:"liquidity"`
	Reports   ReportsSummary `json:"reports"`
}
