package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
)

// Store provides Postgres persistence for dashboard snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutSnapshot writes the snapshot header row and upserts the per-pool
// rows in one batch.
func (s *Store) PutSnapshot(ctx context.Context, snapshot model.DashboardSnapshot) error {
	reportsJSON, err := json.Marshal(snapshot.Reports)
	if err != nil {
		return fmt.Errorf("marshal reports: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO dashboard_snapshots (
			taken_at, chain_id, latest_block, is_connected,
			total_liquidity_usd, daily_volume_usd, active_pools, reports, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (taken_at)
		DO UPDATE SET
			chain_id = EXCLUDED.chain_id,
			latest_block = EXCLUDED.latest_block,
			is_connected = EXCLUDED.is_connected,
			total_liquidity_usd = EXCLUDED.total_liquidity_usd,
			daily_volume_usd = EXCLUDED.daily_volume_usd,
			active_pools = EXCLUDED.active_pools,
			reports = EXCLUDED.reports
	`,
		snapshot.TakenAt,
		int64(snapshot.Network.ChainID),
		int64(snapshot.Network.LatestBlock),
		snapshot.Network.Connected,
		snapshot.Liquidity.TotalLiquidityUSD,
		snapshot.Liquidity.DailyVolumeUSD,
		snapshot.Liquidity.ActivePools,
		reportsJSON,
	)

	for _, pool := range snapshot.Liquidity.Pools {
		batch.Queue(`
			INSERT INTO pool_snapshots (
				taken_at, pair_address, label, token0_symbol, token1_symbol,
				reserve0, reserve1, tvl_usd, volume24h_usd, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
			ON CONFLICT (taken_at, pair_address)
			DO UPDATE SET
				label = EXCLUDED.label,
				token0_symbol = EXCLUDED.token0_symbol,
				token1_symbol = EXCLUDED.token1_symbol,
				reserve0 = EXCLUDED.reserve0,
				reserve1 = EXCLUDED.reserve1,
				tvl_usd = EXCLUDED.tvl_usd,
				volume24h_usd = EXCLUDED.volume24h_usd
		`,
			snapshot.TakenAt,
			pool.Address,
			pool.Label,
			pool.Token0.Symbol,
			pool.Token1.Symbol,
			pool.Token0.Reserve,
			pool.Token1.Reserve,
			pool.TVLUSD,
			pool.Volume24hUSD,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < len(snapshot.Liquidity.Pools)+1; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
