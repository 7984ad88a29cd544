package metrics

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Canonical event signatures matched against log topic 0.
const (
	SigTransfer     = "Transfer(address,address,uint256)"
	SigPurchased    = "Purchased(address,uint256,uint256,uint256,uint256,uint256,uint256,address,uint256)"
	SigReferralPaid = "ReferralPaid(address,address,uint256)"
	SigTaxApplied   = "TaxApplied(bytes32,uint256,address)"
	SigSwapV2       = "Swap(address,uint256,uint256,uint256,uint256,address)"
)

// TopicHash returns the topic 0 value for an event signature.
func TopicHash(signature string) common.Hash {
	return crypto.Keccak256Hash([]byte(signature))
}

// AddressTopic encodes an address as an indexed-parameter topic.
func AddressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

// topicAddress recovers the address from an indexed-parameter topic.
func topicAddress(topic common.Hash) common.Address {
	return common.BytesToAddress(topic.Bytes()[12:])
}

// dataWord reads the i-th 32-byte word from non-indexed event data.
// Reports false when the data is too short, so malformed logs can be
// skipped instead of misread.
func dataWord(data []byte, i int) (*big.Int, bool) {
	start := i * 32
	end := start + 32
	if len(data) < end {
		return nil, false
	}
	return new(big.Int).SetBytes(data[start:end]), true
}
