package storage

import (
	"context"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
)

// Storage defines a sink for dashboard snapshots.
type Storage interface {
	PutSnapshot(ctx context.Context, snapshot model.DashboardSnapshot) error
}
