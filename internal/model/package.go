package model

// Package is a package definition read from the package manager.
// Monetary fields stay raw; the catalog is display metadata.
type Package struct {
	PackageID    uint64 `json:"package_id"`
	Name         string `json:"name"`
	EntryUSDT    string `json:"entry_usdt"`
	ExchangeRate string `json:"exchange_rate"`
	Cliff        uint64 `json:"cliff"`
	Duration     uint64 `json:"duration"`
	VestBps      uint16 `json:"vest_bps"`
	ReferralBps  uint16 `json:"referral_bps"`
	Active       bool   `json:"active"`
	Exists       bool   `json:"exists"`
}

// PackageSales aggregates purchases for one package.
type PackageSales struct {
	PackageID uint64 `json:"package_id"`
	Purchases uint64 `json:"total_purchases"`
	TotalUSD  string `json:"total_usd"`
	AvgUSD    string `json:"avg_amount"`
}

// PackageSalesReport is the per-package purchase aggregation over a
// block range, zero-filled for packages with no matching events.
type PackageSalesReport struct {
	Range    BlockRange     `json:"range"`
	Decimals uint8          `json:"decimals"`
	Packages []PackageSales `json:"packages"`
}

// VestingPosition holds per-wallet vesting schedule and balances as
// read directly from the vault. Amounts stay raw.
type VestingPosition struct {
	Wallet      string `json:"wallet"`
	Cliff       uint64 `json:"cliff"`
	Duration    uint64 `json:"duration"`
	Start       uint64 `json:"start"`
	TotalLocked string `json:"total_locked"`
	Released    string `json:"released"`
	Err         string `json:"error,omitempty"`
}
