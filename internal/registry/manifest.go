package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// deploymentManifest mirrors the deployments JSON produced by the
// contract deployment tooling. Field names are a hard external contract.
type deploymentManifest struct {
	PackageManager  string `json:"packageManager"`
	Blocks          string `json:"blocks"`
	USDT            string `json:"usdt"`
	VestingVault    string `json:"vestingVault"`
	SecondaryMarket string `json:"secondaryMarket"`
	Treasury        string `json:"treasury"`
	Factory         string `json:"factory"`
}

func loadManifest(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m deploymentManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	return map[string]string{
		NamePackageManager:  m.PackageManager,
		NameBlocksToken:     m.Blocks,
		NameUSDT:            m.USDT,
		NameVestingVault:    m.VestingVault,
		NameSecondaryMarket: m.SecondaryMarket,
		NameTreasury:        m.Treasury,
		NameFactory:         m.Factory,
	}, nil
}
