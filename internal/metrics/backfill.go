package metrics

import (
	"context"

	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
)

// AggregateFunc computes a report over a range and reports how many
// matching events it saw.
type AggregateFunc[T any] func(ctx context.Context, rng model.BlockRange) (T, int, error)

// RunWithBackfill runs fn over rng and, when the range produced no
// matches, retries exactly once over a range widened to
// window*multiplier blocks below the same upper bound. The retry fires
// only if the widened range is strictly larger; a failed retry falls
// back to the first result rather than erroring.
func RunWithBackfill[T any](
	ctx context.Context,
	rng model.BlockRange,
	window, multiplier uint64,
	logger *zap.Logger,
	fn AggregateFunc[T],
) (T, model.BlockRange, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	out, matched, err := fn(ctx, rng)
	if err != nil {
		return out, rng, err
	}
	if matched > 0 || multiplier <= 1 {
		return out, rng, nil
	}

	wide, ok := WidenRange(rng, window*multiplier)
	if !ok {
		return out, rng, nil
	}

	logger.Info("no matches in range, widening lookback",
		zap.Uint64("from", wide.From),
		zap.Uint64("to", wide.To))

	wideOut, _, err := fn(ctx, wide)
	if err != nil {
		logger.Warn("widened scan failed, keeping narrow result", zap.Error(err))
		return out, rng, nil
	}
	return wideOut, wide, nil
}
