package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RPCURL != "https://bsc-dataseed.binance.org/" {
		t.Fatalf("unexpected rpc default: %q", cfg.RPCURL)
	}
	if cfg.Windows.Sales != 500_000 {
		t.Fatalf("unexpected sales window: %d", cfg.Windows.Sales)
	}
	if cfg.Windows.Reports != 28_800 || cfg.Windows.SwapVolume != 28_800 {
		t.Fatalf("unexpected report windows: %+v", cfg.Windows)
	}
	if cfg.Windows.Gas != 2_000 {
		t.Fatalf("unexpected gas window: %d", cfg.Windows.Gas)
	}
	if cfg.Windows.Backfill != 5 {
		t.Fatalf("unexpected backfill multiplier: %d", cfg.Windows.Backfill)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BLOCKCOOP_RPC", "http://localhost:8545")
	t.Setenv("BLOCKCOOP_WINDOW_GAS", "500")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RPCURL != "http://localhost:8545" {
		t.Fatalf("env override not applied: %q", cfg.RPCURL)
	}
	if cfg.Windows.Gas != 500 {
		t.Fatalf("env override not applied: %d", cfg.Windows.Gas)
	}
}

func TestParseStringMap(t *testing.T) {
	got := parseStringMap("packageManager=0xabc, usdt=0xdef,,bad")
	want := map[string]string{
		"packageManager": "0xabc",
		"usdt":           "0xdef",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("map mismatch: %+v != %+v", got, want)
	}
}

func TestSplitAndClean(t *testing.T) {
	got := splitAndClean("a, b,,c ")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slice mismatch: %+v != %+v", got, want)
	}
}
