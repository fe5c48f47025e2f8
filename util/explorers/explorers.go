package explorers

import (
	"context"
)

// BlockIndex maps a timestamp to the closest block at or before it using a
// pre computed index.
type BlockIndex interface {
	BlockNumberByTimestamp(ctx context.Context, timestamp uint64) (int64, error)
}

var _ BlockIndex = (*EtherscanLikeExplorer)(nil)
