package metrics

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
)

// maxScannedPackages bounds the sequential-id fallback scan.
const maxScannedPackages = 256

// rawPackage mirrors the getPackage tuple layout.
type rawPackage struct {
	EntryUSDT    *big.Int `abi:"entryUSDT"`
	ExchangeRate *big.Int `abi:"exchangeRate"`
	Cliff        uint64   `abi:"cliff"`
	Duration     uint64   `abi:"duration"`
	VestBps      uint16   `abi:"vestBps"`
	ReferralBps  uint16   `abi:"referralBps"`
	Active       bool     `abi:"active"`
	Exists       bool     `abi:"exists"`
	Name         string   `abi:"name"`
}

// ActivePackageIDs returns the catalog ids. getActivePackageIds is
// preferred; older manager deployments without it get a bounded
// sequential scan up to nextPackageId instead.
func (s *Service) ActivePackageIDs(ctx context.Context) ([]uint64, error) {
	binding, err := s.registry.Bind(registry.NamePackageManager)
	if err != nil {
		return nil, err
	}

	values, err := s.call(ctx, binding, "getActivePackageIds")
	if err == nil && len(values) == 1 {
		if ids, ok := values[0].([]*big.Int); ok {
			out := make([]uint64, 0, len(ids))
			for _, id := range ids {
				out = append(out, id.Uint64())
			}
			return out, nil
		}
	}
	s.logger.Debug("getActivePackageIds unavailable, scanning sequentially", zap.Error(err))

	values, err = s.call(ctx, binding, "nextPackageId")
	if err != nil {
		return nil, fmt.Errorf("package id discovery: %w", err)
	}
	next, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("package id discovery: unexpected nextPackageId type %T", values[0])
	}

	limit := next.Uint64()
	if limit > maxScannedPackages {
		limit = maxScannedPackages
	}
	out := make([]uint64, 0, limit)
	for id := uint64(0); id < limit; id++ {
		out = append(out, id)
	}
	return out, nil
}

// Package reads one package definition.
func (s *Service) Package(ctx context.Context, id uint64) (model.Package, error) {
	binding, err := s.registry.Bind(registry.NamePackageManager)
	if err != nil {
		return model.Package{}, err
	}

	values, err := s.call(ctx, binding, "getPackage", new(big.Int).SetUint64(id))
	if err != nil {
		return model.Package{}, err
	}
	if len(values) != 1 {
		return model.Package{}, fmt.Errorf("getPackage: expected 1 value, got %d", len(values))
	}

	raw := abi.ConvertType(values[0], new(rawPackage)).(*rawPackage)
	return model.Package{
		PackageID:    id,
		Name:         raw.Name,
		EntryUSDT:    raw.EntryUSDT.String(),
		ExchangeRate: raw.ExchangeRate.String(),
		Cliff:        raw.Cliff,
		Duration:     raw.Duration,
		VestBps:      raw.VestBps,
		ReferralBps:  raw.ReferralBps,
		Active:       raw.Active,
		Exists:       raw.Exists,
	}, nil
}

// Packages reads the full catalog. Unreadable entries are skipped with
// a warning so one corrupt package does not blank the catalog.
func (s *Service) Packages(ctx context.Context) ([]model.Package, error) {
	ids, err := s.ActivePackageIDs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Package, 0, len(ids))
	for _, id := range ids {
		pkg, err := s.Package(ctx, id)
		if err != nil {
			s.logger.Warn("package read failed", zap.Uint64("package_id", id), zap.Error(err))
			continue
		}
		if !pkg.Exists {
			continue
		}
		out = append(out, pkg)
	}
	return out, nil
}
