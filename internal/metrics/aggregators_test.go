package metrics

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
)

var (
	referrerOne = common.HexToAddress("0xaaa0000000000000000000000000000000000001")
	referrerTwo = common.HexToAddress("0xaaa0000000000000000000000000000000000002")
	buyerOne    = common.HexToAddress("0xbbb0000000000000000000000000000000000001")
	buyerTwo    = common.HexToAddress("0xbbb0000000000000000000000000000000000002")
)

func mustAddress(t *testing.T, reg *registry.Registry, name string) common.Address {
	t.Helper()
	addr, ok := reg.Address(name)
	require.True(t, ok)
	return addr
}

func TestReferralReportAggregatesByReferrer(t *testing.T) {
	reg := registry.New("", nil, nil)
	manager := mustAddress(t, reg, registry.NamePackageManager)

	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			referralLog(manager, 9_990_000, referrerOne, buyerOne, eth(1, 5)),
			referralLog(manager, 9_990_100, referrerOne, buyerTwo, eth(1, 5)),
			referralLog(manager, 9_990_200, referrerTwo, buyerOne, eth(0, 5)),
		},
	}
	svc := newTestService(logs, nil, nil)

	report, err := svc.ReferralReport(context.Background(), 0, 0)
	require.NoError(t, err)

	require.Equal(t, "3.5", report.Total)
	require.Len(t, report.Events, 3)
	require.Len(t, report.ByReferrer, 2)

	one := report.ByReferrer[referrerOne.Hex()]
	require.Equal(t, "3", one.Reward)
	require.Equal(t, uint64(2), one.Count)

	two := report.ByReferrer[referrerTwo.Hex()]
	require.Equal(t, "0.5", two.Reward)
	require.Equal(t, uint64(1), two.Count)
}

func TestReferralReportSkipsShortData(t *testing.T) {
	reg := registry.New("", nil, nil)
	manager := mustAddress(t, reg, registry.NamePackageManager)

	truncated := referralLog(manager, 9_990_000, referrerOne, buyerOne, eth(1, 0))
	truncated.Data = truncated.Data[:10]

	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			truncated,
			referralLog(manager, 9_990_100, referrerTwo, buyerOne, eth(0, 5)),
		},
	}
	svc := newTestService(logs, nil, nil)

	report, err := svc.ReferralReport(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, report.Events, 1)
	require.Equal(t, "0.5", report.Total)
}

func TestTreasuryInflowsMatchesExactLeg(t *testing.T) {
	reg := registry.New("", nil, nil)
	usdt := mustAddress(t, reg, registry.NameUSDT)
	manager := mustAddress(t, reg, registry.NamePackageManager)
	treasury := mustAddress(t, reg, registry.NameTreasury)

	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			transferLog(usdt, 9_990_000, manager, treasury, eth(400, 0)),
			transferLog(usdt, 9_990_100, manager, treasury, eth(25, 0)),
			// Wrong direction and unrelated parties must not count.
			transferLog(usdt, 9_990_200, treasury, manager, eth(1_000, 0)),
			transferLog(usdt, 9_990_300, buyerOne, treasury, eth(77, 0)),
		},
	}
	svc := newTestService(logs, nil, nil)

	inflows, err := svc.TreasuryInflows(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, "425", inflows.TotalUSD)
	require.Equal(t, uint64(2), inflows.Count)
	require.Len(t, inflows.Events, 2)
	require.Equal(t, eth(400, 0).String(), inflows.Events[0].Amount)
	require.Equal(t, uint64(9_990_000), inflows.Events[0].BlockNumber)
	require.Equal(t, eth(25, 0).String(), inflows.Events[1].Amount)
	require.Equal(t, uint64(9_990_100), inflows.Events[1].BlockNumber)
}

func TestTaxReportTotalsAndRecipients(t *testing.T) {
	reg := registry.New("", nil, nil)
	manager := mustAddress(t, reg, registry.NamePackageManager)

	kind := crypto.Keccak256Hash([]byte("PURCHASE"))
	twoTopic := taxLog(manager, 9_990_200, kind, eth(1, 0), referrerOne)
	twoTopic.Topics = twoTopic.Topics[:2]

	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			taxLog(manager, 9_990_000, kind, eth(1, 0), referrerOne),
			taxLog(manager, 9_990_100, kind, eth(2, 5), referrerTwo),
			twoTopic,
		},
	}
	svc := newTestService(logs, nil, nil)

	report, err := svc.TaxReport(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, "4.5", report.TotalUSD)
	require.Len(t, report.Events, 3)
	require.Equal(t, referrerOne.Hex(), report.Events[0].Recipient)
	require.Empty(t, report.Events[2].Recipient)
}

func TestTransferReportHolderFilter(t *testing.T) {
	reg := registry.New("", nil, nil)
	blocks := mustAddress(t, reg, registry.NameBlocksToken)

	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			transferLog(blocks, 9_990_000, buyerOne, buyerTwo, eth(1, 0)),
			transferLog(blocks, 9_990_100, buyerTwo, referrerOne, eth(2, 0)),
			transferLog(blocks, 9_990_200, referrerOne, referrerTwo, eth(3, 0)),
		},
	}
	svc := newTestService(logs, nil, nil)

	all, err := svc.TransferReport(context.Background(), 0, 0, common.Address{})
	require.NoError(t, err)
	require.Len(t, all.Events, 3)

	filtered, err := svc.TransferReport(context.Background(), 0, 0, buyerTwo)
	require.NoError(t, err)
	require.Len(t, filtered.Events, 2)
	require.Equal(t, "1", filtered.Events[0].AmountNorm)
	require.Equal(t, "2", filtered.Events[1].AmountNorm)
}

func TestSwapVolumeSumsStableLegs(t *testing.T) {
	pair := common.HexToAddress("0xccc0000000000000000000000000000000000001")

	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			swapLog(pair, 9_990_000, eth(100, 0), big.NewInt(0), big.NewInt(0), eth(40, 0)),
			swapLog(pair, 9_990_100, big.NewInt(0), eth(10, 0), eth(50, 0), big.NewInt(0)),
		},
	}
	svc := newTestService(logs, nil, nil)

	total, rng, err := svc.SwapVolume(context.Background(), pair, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, eth(150, 0), total)
	require.Equal(t, uint64(10_000_000), rng.To)

	total1, _, err := svc.SwapVolume(context.Background(), pair, 1, 0, 0)
	require.NoError(t, err)
	require.Equal(t, eth(50, 0), total1)

	_, _, err = svc.SwapVolume(context.Background(), pair, 2, 0, 0)
	require.Error(t, err)
}

func TestPackageSalesReportZeroFillsCatalog(t *testing.T) {
	reg := registry.New("", nil, nil)
	manager := mustAddress(t, reg, registry.NamePackageManager)

	pmABI, err := registry.PackageManagerABI()
	require.NoError(t, err)
	idsMethod := pmABI.Methods["getActivePackageIds"]
	idsOut, err := idsMethod.Outputs.Pack([]*big.Int{big.NewInt(1), big.NewInt(2)})
	require.NoError(t, err)

	caller := &fakeCaller{responses: map[string][]byte{
		string(idsMethod.ID): idsOut,
	}}

	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			purchasedLog(manager, 9_990_000, buyerOne, 1, eth(100, 0)),
			purchasedLog(manager, 9_990_100, buyerTwo, 1, eth(200, 0)),
		},
	}
	svc := newTestService(logs, nil, caller)

	report, err := svc.PackageSalesReport(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, report.Packages, 2)

	require.Equal(t, uint64(1), report.Packages[0].PackageID)
	require.Equal(t, uint64(2), report.Packages[0].Purchases)
	require.Equal(t, "300", report.Packages[0].TotalUSD)
	require.Equal(t, "150", report.Packages[0].AvgUSD)

	require.Equal(t, uint64(2), report.Packages[1].PackageID)
	require.Equal(t, uint64(0), report.Packages[1].Purchases)
	require.Equal(t, "0", report.Packages[1].TotalUSD)
	require.Equal(t, "0", report.Packages[1].AvgUSD)
}

func TestPackageSalesReportOrdersByPurchases(t *testing.T) {
	reg := registry.New("", nil, nil)
	manager := mustAddress(t, reg, registry.NamePackageManager)

	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			purchasedLog(manager, 9_990_000, buyerOne, 7, eth(10, 0)),
			purchasedLog(manager, 9_990_100, buyerOne, 3, eth(20, 0)),
			purchasedLog(manager, 9_990_200, buyerTwo, 3, eth(30, 0)),
		},
	}
	svc := newTestService(logs, nil, nil)

	report, err := svc.PackageSalesReport(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, report.Packages, 2)
	require.Equal(t, uint64(3), report.Packages[0].PackageID)
	require.Equal(t, uint64(2), report.Packages[0].Purchases)
	require.Equal(t, uint64(7), report.Packages[1].PackageID)
	require.Equal(t, uint64(1), report.Packages[1].Purchases)
}

func TestPackageSalesReportIdempotent(t *testing.T) {
	reg := registry.New("", nil, nil)
	manager := mustAddress(t, reg, registry.NamePackageManager)

	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			purchasedLog(manager, 9_990_000, buyerOne, 3, eth(50, 0)),
		},
	}
	svc := newTestService(logs, nil, nil)

	first, err := svc.PackageSalesReport(context.Background(), 9_900_000, 10_000_000)
	require.NoError(t, err)
	second, err := svc.PackageSalesReport(context.Background(), 9_900_000, 10_000_000)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestPackageSalesReportBackfillFindsOlderEvents(t *testing.T) {
	reg := registry.New("", nil, nil)
	manager := mustAddress(t, reg, registry.NamePackageManager)

	// The only purchase sits below the default window but inside the
	// widened lookback.
	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			purchasedLog(manager, 8_000_000, buyerOne, 1, eth(10, 0)),
		},
	}
	svc := newTestService(logs, nil, nil)

	report, err := svc.PackageSalesReport(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(7_500_000), report.Range.From)
	require.Len(t, report.Packages, 1)
	require.Equal(t, "10", report.Packages[0].TotalUSD)
}

func TestPackageSalesReportExplicitRangeStillBackfills(t *testing.T) {
	reg := registry.New("", nil, nil)
	manager := mustAddress(t, reg, registry.NamePackageManager)

	// The caller's range is empty; the one purchase sits below it but
	// inside the widened lookback anchored at the same upper bound.
	logs := &fakeLogSource{
		latest: 10_000_000,
		logs: []types.Log{
			purchasedLog(manager, 8_000_000, buyerOne, 1, eth(10, 0)),
		},
	}
	svc := newTestService(logs, nil, nil)

	report, err := svc.PackageSalesReport(context.Background(), 9_900_000, 10_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(7_500_000), report.Range.From)
	require.Equal(t, uint64(10_000_000), report.Range.To)
	require.Len(t, report.Packages, 1)
	require.Equal(t, uint64(1), report.Packages[0].Purchases)
	require.Equal(t, "10", report.Packages[0].TotalUSD)
}
