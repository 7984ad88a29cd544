package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const (
	manifestManager = "0x0000000000000000000000000000000000000A01"
	manifestUSDT    = "0x0000000000000000000000000000000000000A02"
	overrideManager = "0x0000000000000000000000000000000000000B01"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployments.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRegistryFallbackAddresses(t *testing.T) {
	reg := New("", nil, nil)

	for _, name := range []string{
		NamePackageManager, NameBlocksToken, NameUSDT,
		NameVestingVault, NameSecondaryMarket, NameTreasury, NameFactory,
	} {
		addr, ok := reg.Address(name)
		require.True(t, ok, name)
		require.NotEqual(t, common.Address{}, addr, name)
	}
}

func TestRegistryManifestBeatsFallback(t *testing.T) {
	path := writeManifest(t, `{"packageManager": "`+manifestManager+`", "usdt": "`+manifestUSDT+`"}`)
	reg := New(path, nil, nil)

	manager, ok := reg.Address(NamePackageManager)
	require.True(t, ok)
	require.Equal(t, common.HexToAddress(manifestManager), manager)

	usdt, ok := reg.Address(NameUSDT)
	require.True(t, ok)
	require.Equal(t, common.HexToAddress(manifestUSDT), usdt)

	// Names the manifest omits keep the fallback.
	treasury, ok := reg.Address(NameTreasury)
	require.True(t, ok)
	require.Equal(t, common.HexToAddress(fallbackAddresses[NameTreasury]), treasury)
}

func TestRegistryOverrideBeatsManifest(t *testing.T) {
	path := writeManifest(t, `{"packageManager": "`+manifestManager+`"}`)
	reg := New(path, map[string]string{NamePackageManager: overrideManager}, nil)

	manager, ok := reg.Address(NamePackageManager)
	require.True(t, ok)
	require.Equal(t, common.HexToAddress(overrideManager), manager)
}

func TestRegistryInvalidCandidateKeepsPrevious(t *testing.T) {
	reg := New("", map[string]string{
		NamePackageManager: "not-an-address",
		"unknownContract":  manifestManager,
	}, nil)

	manager, ok := reg.Address(NamePackageManager)
	require.True(t, ok)
	require.Equal(t, common.HexToAddress(fallbackAddresses[NamePackageManager]), manager)

	_, ok = reg.Address("unknownContract")
	require.False(t, ok)
}

func TestRegistryMissingManifestDegrades(t *testing.T) {
	reg := New(filepath.Join(t.TempDir(), "missing.json"), nil, nil)

	manager, ok := reg.Address(NamePackageManager)
	require.True(t, ok)
	require.Equal(t, common.HexToAddress(fallbackAddresses[NamePackageManager]), manager)
}

func TestBindUnknownName(t *testing.T) {
	reg := New("", nil, nil)
	_, err := reg.Bind("nope")
	require.ErrorIs(t, err, ErrContractUnavailable)
}

func TestBindKnownNamesParseABIs(t *testing.T) {
	reg := New("", nil, nil)

	binding, err := reg.Bind(NamePackageManager)
	require.NoError(t, err)
	require.Contains(t, binding.ABI.Methods, "getPackage")
	require.Contains(t, binding.ABI.Events, "Purchased")

	erc20, err := reg.Bind(NameUSDT)
	require.NoError(t, err)
	require.Contains(t, erc20.ABI.Methods, "balanceOf")
}
