package metrics

import (
	"fmt"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/model"
)

// SplitRange splits an inclusive block range into batches of size batchSize.
func SplitRange(from, to, batchSize uint64) ([]model.BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]model.BlockRange, 0)
	start := from
	for start <= to {
		remaining := to - start + 1
		var end uint64
		if remaining <= batchSize {
			end = to
		} else {
			end = start + batchSize - 1
		}
		ranges = append(ranges, model.BlockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ranges, nil
}

// WidenRange re-anchors a range at the same upper bound with a wider
// lookback. Returns false when the widened range would not strictly
// grow the original.
func WidenRange(rng model.BlockRange, lookback uint64) (model.BlockRange, bool) {
	var from uint64
	if rng.To > lookback {
		from = rng.To - lookback
	}
	if from >= rng.From {
		return rng, false
	}
	return model.BlockRange{From: from, To: rng.To}, true
}
