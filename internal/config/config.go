package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Windows holds per-family default block windows. Log-based families
// scan wide ranges cheaply; the gas scanner pays per block and stays
// tightly bounded.
type Windows struct {
	Sales      uint64
	Reports    uint64
	SwapVolume uint64
	Gas        uint64
	Backfill   uint64 // widen multiplier for the single backfill retry
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL       string
	CallTimeout  time.Duration
	LogLevel     string
	HTTPListen   string
	ManifestPath string
	Contracts    map[string]string
	PairUSDT     string
	PairBNB      string
	GasWallets   []string
	Windows      Windows
	SnapshotOut  string
	PGDSN        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BLOCKCOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", "https://bsc-dataseed.binance.org/")
	v.SetDefault("call-timeout", 15*time.Second)
	v.SetDefault("log-level", "info")
	v.SetDefault("http-listen", ":8080")
	v.SetDefault("window-sales", uint64(500_000))
	v.SetDefault("window-reports", uint64(28_800))
	v.SetDefault("window-swap-volume", uint64(28_800))
	v.SetDefault("window-gas", uint64(2_000))
	v.SetDefault("backfill-multiplier", uint64(5))
	v.SetDefault("snapshot-out", "")
	v.SetDefault("pg-dsn", "")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:       v.GetString("rpc"),
		CallTimeout:  v.GetDuration("call-timeout"),
		LogLevel:     v.GetString("log-level"),
		HTTPListen:   v.GetString("http-listen"),
		ManifestPath: v.GetString("manifest"),
		Contracts:    getStringMap(v, "contracts"),
		PairUSDT:     v.GetString("blocks-usdt-pair"),
		PairBNB:      v.GetString("blocks-bnb-pair"),
		GasWallets:   getStringSlice(v, "gas-wallets"),
		Windows: Windows{
			Sales:      v.GetUint64("window-sales"),
			Reports:    v.GetUint64("window-reports"),
			SwapVolume: v.GetUint64("window-swap-volume"),
			Gas:        v.GetUint64("window-gas"),
			Backfill:   v.GetUint64("backfill-multiplier"),
		},
		SnapshotOut: v.GetString("snapshot-out"),
		PGDSN:       v.GetString("pg-dsn"),
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, item := range typed {
			out[k] = fmt.Sprintf("%v", item)
		}
		return out
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
