package registry

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const packageManagerABIJSON = `[
  {
    "inputs": [],
    "name": "getActivePackageIds",
    "outputs": [{"internalType": "uint256[]", "name": "", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "nextPackageId",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "packageId", "type": "uint256"}],
    "name": "getPackage",
    "outputs": [{"components": [
      {"internalType": "uint256", "name": "entryUSDT", "type": "uint256"},
      {"internalType": "uint256", "name": "exchangeRate", "type": "uint256"},
      {"internalType": "uint64", "name": "cliff", "type": "uint64"},
      {"internalType": "uint64", "name": "duration", "type": "uint64"},
      {"internalType": "uint16", "name": "vestBps", "type": "uint16"},
      {"internalType": "uint16", "name": "referralBps", "type": "uint16"},
      {"internalType": "bool", "name": "active", "type": "bool"},
      {"internalType": "bool", "name": "exists", "type": "bool"},
      {"internalType": "string", "name": "name", "type": "string"}
    ], "internalType": "struct IPackageManager.Package", "name": "", "type": "tuple"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "buyer", "type": "address"},
      {"indexed": true, "internalType": "uint256", "name": "packageId", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "usdtAmount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "totalTokens", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "vestTokens", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "poolTokens", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "lpTokens", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "referrer", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "referralReward", "type": "uint256"}
    ],
    "name": "Purchased",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "referrer", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "buyer", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "reward", "type": "uint256"}
    ],
    "name": "ReferralPaid",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "bytes32", "name": "taxKind", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "recipient", "type": "address"}
    ],
    "name": "TaxApplied",
    "type": "event"
  }
]`

const erc20ABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "owner", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"internalType": "string", "name": "", "type": "string"}], "stateMutability": "view", "type": "function"},
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "value", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  }
]`

const erc20Bytes32ABIJSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

const vestingVaultABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "userSchedule",
    "outputs": [
      {"internalType": "uint256", "name": "cliff", "type": "uint256"},
      {"internalType": "uint256", "name": "duration", "type": "uint256"},
      {"internalType": "uint256", "name": "start", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "totalLocked",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "released",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const factoryABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "tokenA", "type": "address"},
      {"internalType": "address", "name": "tokenB", "type": "address"}
    ],
    "name": "getPair",
    "outputs": [{"internalType": "address", "name": "pair", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const pairABIJSON = `[
  {
    "inputs": [],
    "name": "getReserves",
    "outputs": [
      {"internalType": "uint112", "name": "reserve0", "type": "uint112"},
      {"internalType": "uint112", "name": "reserve1", "type": "uint112"},
      {"internalType": "uint32", "name": "blockTimestampLast", "type": "uint32"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "token0",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "token1",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount0In", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1In", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount0Out", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1Out", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"}
    ],
    "name": "Swap",
    "type": "event"
  }
]`

var (
	packageManagerABI     abi.ABI
	packageManagerABIOnce sync.Once
	packageManagerABIErr  error

	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
	erc20ABIErr  error

	erc20Bytes32ABI     abi.ABI
	erc20Bytes32ABIOnce sync.Once
	erc20Bytes32ABIErr  error

	vestingVaultABI     abi.ABI
	vestingVaultABIOnce sync.Once
	vestingVaultABIErr  error

	factoryABI     abi.ABI
	factoryABIOnce sync.Once
	factoryABIErr  error

	pairABI     abi.ABI
	pairABIOnce sync.Once
	pairABIErr  error
)

// PackageManagerABI returns the parsed PackageManager ABI.
func PackageManagerABI() (abi.ABI, error) {
	packageManagerABIOnce.Do(func() {
		packageManagerABI, packageManagerABIErr = abi.JSON(strings.NewReader(packageManagerABIJSON))
	})
	return packageManagerABI, packageManagerABIErr
}

// ERC20ABI returns the minimal ERC20 ABI used as a binding fallback.
func ERC20ABI() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(erc20ABIJSON))
	})
	return erc20ABI, erc20ABIErr
}

// ERC20Bytes32ABI returns the bytes32-symbol variant for legacy tokens.
func ERC20Bytes32ABI() (abi.ABI, error) {
	erc20Bytes32ABIOnce.Do(func() {
		erc20Bytes32ABI, erc20Bytes32ABIErr = abi.JSON(strings.NewReader(erc20Bytes32ABIJSON))
	})
	return erc20Bytes32ABI, erc20Bytes32ABIErr
}

// VestingVaultABI returns the parsed VestingVault ABI.
func VestingVaultABI() (abi.ABI, error) {
	vestingVaultABIOnce.Do(func() {
		vestingVaultABI, vestingVaultABIErr = abi.JSON(strings.NewReader(vestingVaultABIJSON))
	})
	return vestingVaultABI, vestingVaultABIErr
}

// FactoryABI returns the parsed AMM factory ABI.
func FactoryABI() (abi.ABI, error) {
	factoryABIOnce.Do(func() {
		factoryABI, factoryABIErr = abi.JSON(strings.NewReader(factoryABIJSON))
	})
	return factoryABI, factoryABIErr
}

// PairABI returns the parsed V2-style pair ABI.
func PairABI() (abi.ABI, error) {
	pairABIOnce.Do(func() {
		pairABI, pairABIErr = abi.JSON(strings.NewReader(pairABIJSON))
	})
	return pairABI, pairABIErr
}
