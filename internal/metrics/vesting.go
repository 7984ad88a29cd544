package metrics

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
)

// VestingPosition reads one wallet's vesting schedule and balances
// from the vault. A failed read returns a position with Err set rather
// than an error, so batch callers keep their per-wallet shape.
func (s *Service) VestingPosition(ctx context.Context, wallet common.Address) model.VestingPosition {
	pos := model.VestingPosition{Wallet: wallet.Hex()}

	vault, err := s.registry.Bind(registry.NameVestingVault)
	if err != nil {
		pos.Err = err.Error()
		return pos
	}

	values, err := s.call(ctx, vault, "userSchedule", wallet)
	if err != nil {
		pos.Err = err.Error()
		return pos
	}
	if len(values) != 3 {
		pos.Err = fmt.Sprintf("userSchedule: expected 3 values, got %d", len(values))
		return pos
	}
	for i, dst := range []*uint64{&pos.Cliff, &pos.Duration, &pos.Start} {
		v, ok := values[i].(*big.Int)
		if !ok {
			pos.Err = fmt.Sprintf("userSchedule: unexpected value type %T", values[i])
			return pos
		}
		*dst = v.Uint64()
	}

	locked, err := s.vaultAmount(ctx, vault, "totalLocked", wallet)
	if err != nil {
		pos.Err = err.Error()
		return pos
	}
	released, err := s.vaultAmount(ctx, vault, "released", wallet)
	if err != nil {
		pos.Err = err.Error()
		return pos
	}

	pos.TotalLocked = locked.String()
	pos.Released = released.String()
	return pos
}

func (s *Service) vaultAmount(ctx context.Context, vault registry.Binding, method string, wallet common.Address) (*big.Int, error) {
	values, err := s.call(ctx, vault, method, wallet)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s: expected 1 value, got %d", method, len(values))
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected value type %T", method, values[0])
	}
	return amount, nil
}

// VestingPositions reads positions for a batch of wallets in order.
func (s *Service) VestingPositions(ctx context.Context, wallets []common.Address) []model.VestingPosition {
	out := make([]model.VestingPosition, 0, len(wallets))
	for _, wallet := range wallets {
		out = append(out, s.VestingPosition(ctx, wallet))
	}
	return out
}
