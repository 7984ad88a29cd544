package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
)

func TestJsonlStorageAppendsSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "snapshots.jsonl")
	sink := NewJsonlStorage(path)

	first := model.DashboardSnapshot{
		TakenAt: "2026-09-01T00:00:00Z",
		Network: model.NetworkInfo{ChainID: 56, Connected: true, LatestBlock: 100},
	}
	second := model.DashboardSnapshot{
		TakenAt: "2026-09-01T01:00:00Z",
		Network: model.NetworkInfo{ChainID: 56, Connected: true, LatestBlock: 200},
	}

	require.NoError(t, sink.PutSnapshot(context.Background(), first))
	require.NoError(t, sink.PutSnapshot(context.Background(), second))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var got []model.DashboardSnapshot
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var snapshot model.DashboardSnapshot
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &snapshot))
		got = append(got, snapshot)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, got, 2)
	require.Equal(t, first.TakenAt, got[0].TakenAt)
	require.Equal(t, uint64(200), got[1].Network.LatestBlock)
}
