package registry

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrContractUnavailable marks a contract name that could not be
// resolved to a valid address. The dependent feature degrades to
// "unavailable" rather than failing startup.
var ErrContractUnavailable = errors.New("contract unavailable")

// Well-known contract names.
const (
	NamePackageManager  = "packageManager"
	NameBlocksToken     = "blocksToken"
	NameUSDT            = "usdt"
	NameVestingVault    = "vestingVault"
	NameSecondaryMarket = "secondaryMarket"
	NameTreasury        = "treasury"
	NameFactory         = "factory"
)

// BSC mainnet fallback addresses, lowest resolution priority.
var fallbackAddresses = map[string]string{
	NamePackageManager:  "0x50a837529B045c3f679cd14De2252515dF803F7e",
	NameBlocksToken:     "0x292E1B8CBE91623E71D6532e6BE6B881Cc0a9c31",
	NameUSDT:            "0x55d398326f99059ff775485246999027b3197955",
	NameVestingVault:    "0x662c77598491e91174506a4C1e7990825c3d7abA",
	NameSecondaryMarket: "0x02D855F16695f7937da07aA8E4bAB7298548650E",
	NameTreasury:        "0xD04edC3225cEF6e82e50Dc559d38733180743b94",
	NameFactory:         "0xca143ce32fe78f1f7019d7d551a6402fc5350c73",
}

// Binding attaches a resolved contract address to its interface definition.
type Binding struct {
	Name    string
	Address common.Address
	ABI     abi.ABI
}

// Registry resolves named contracts once at construction and hands out
// bindings. Resolution precedence, lowest to highest: hardcoded
// fallback, deployment manifest, explicit overrides.
type Registry struct {
	addresses map[string]common.Address
	logger    *zap.Logger
}

// New builds a Registry. manifestPath may be empty; overrides are keyed
// by contract name. An invalid candidate address leaves the name at its
// previous value, or unbound if none was valid.
func New(manifestPath string, overrides map[string]string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	resolved := make(map[string]common.Address, len(fallbackAddresses))
	apply := func(source string, candidates map[string]string) {
		for name, addr := range candidates {
			if addr == "" {
				continue
			}
			if _, ok := fallbackAddresses[name]; !ok {
				logger.Warn("unknown contract name", zap.String("source", source), zap.String("name", name))
				continue
			}
			if !common.IsHexAddress(addr) {
				logger.Warn("invalid contract address",
					zap.String("source", source),
					zap.String("name", name),
					zap.String("address", addr),
				)
				continue
			}
			resolved[name] = common.HexToAddress(addr)
		}
	}

	apply("fallback", fallbackAddresses)

	if manifestPath != "" {
		manifest, err := loadManifest(manifestPath)
		if err != nil {
			logger.Warn("deployment manifest unavailable", zap.String("path", manifestPath), zap.Error(err))
		} else {
			apply("manifest", manifest)
		}
	}

	apply("override", overrides)

	return &Registry{addresses: resolved, logger: logger}
}

// Address returns the resolved address for a name.
func (r *Registry) Address(name string) (common.Address, bool) {
	addr, ok := r.addresses[name]
	return addr, ok
}

// Addresses returns a copy of the resolved address table.
func (r *Registry) Addresses() map[string]common.Address {
	out := make(map[string]common.Address, len(r.addresses))
	for name, addr := range r.addresses {
		out[name] = addr
	}
	return out
}

// Bind attaches the matching interface definition to a resolved name.
// Names without a dedicated ABI fall back to the minimal ERC20 one.
func (r *Registry) Bind(name string) (Binding, error) {
	addr, ok := r.addresses[name]
	if !ok {
		return Binding{}, fmt.Errorf("%s: %w", name, ErrContractUnavailable)
	}

	var (
		parsed abi.ABI
		err    error
	)
	switch name {
	case NamePackageManager:
		parsed, err = PackageManagerABI()
	case NameVestingVault:
		parsed, err = VestingVaultABI()
	case NameFactory:
		parsed, err = FactoryABI()
	default:
		parsed, err = ERC20ABI()
	}
	if err != nil {
		return Binding{}, fmt.Errorf("parse abi for %s: %w", name, err)
	}

	return Binding{Name: name, Address: addr, ABI: parsed}, nil
}
