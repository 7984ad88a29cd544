package model

// ReferralEvent is one ReferralPaid occurrence. Reward stays raw.
type ReferralEvent struct {
	Referrer    string `json:"referrer"`
	Buyer       string `json:"buyer"`
	Reward      string `json:"reward"`
	BlockNumber uint64 `json:"block_number"`
}

// ReferralTotal is the normalized per-referrer aggregate.
type ReferralTotal struct {
	Reward string `json:"reward"`
	Count  uint64 `json:"count"`
}

// ReferralReport aggregates ReferralPaid events by referrer.
type ReferralReport struct {
	Range      BlockRange               `json:"range"`
	Total      string                   `json:"total"`
	Decimals   uint8                    `json:"decimals"`
	ByReferrer map[string]ReferralTotal `json:"by_referrer"`
	Events     []ReferralEvent          `json:"events"`
}

// TaxEvent is one TaxApplied occurrence. Recipient may be empty when
// the log carried fewer topics than expected.
type TaxEvent struct {
	Recipient   string `json:"recipient,omitempty"`
	Amount      string `json:"amount"`
	BlockNumber uint64 `json:"block_number"`
}

// TaxReport is the global tax total plus per-event detail.
type TaxReport struct {
	Range    BlockRange `json:"range"`
	TotalUSD string     `json:"total_usdt"`
	Decimals uint8      `json:"decimals"`
	Events   []TaxEvent `json:"events"`
}

// InflowEvent is one stable-coin transfer into the treasury. Amount
// stays raw.
type InflowEvent struct {
	Amount      string `json:"amount"`
	BlockNumber uint64 `json:"block_number"`
}

// TreasuryInflows sums stable-coin transfers from the package manager
// to the treasury.
type TreasuryInflows struct {
	Range    BlockRange    `json:"range"`
	TotalUSD string        `json:"total_usdt"`
	Count    uint64        `json:"count"`
	Decimals uint8         `json:"decimals"`
	Events   []InflowEvent `json:"events"`
}

// TransferEvent is one token Transfer with both raw and normalized amounts.
type TransferEvent struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	AmountNorm  string `json:"amount_norm"`
	BlockNumber uint64 `json:"block_number"`
}

// TransferReport lists token transfers over a range, optionally
// filtered by holder.
type TransferReport struct {
	Range    BlockRange      `json:"range"`
	Decimals uint8           `json:"decimals"`
	Events   []TransferEvent `json:"events"`
}

// AddressGas is the gas spend aggregate for one allow-listed sender.
// Present with zeroes even when no transactions matched.
type AddressGas struct {
	Address string `json:"address"`
	GasWei  string `json:"gas_wei"`
	GasBNB  string `json:"gas_bnb"`
	TxCount uint64 `json:"tx_count"`
}

// GasSpendReport is the per-sender gas spend over a scanned range.
type GasSpendReport struct {
	Range         BlockRange   `json:"range"`
	ScannedBlocks uint64       `json:"scanned_blocks"`
	ByAddress     []AddressGas `json:"by_address"`
}
