package resolver

import (
	"context"

	"github.com/tranvictor/blockseek/util/explorers"
)

// IndexLookup asks a block explorer index for the block.
type IndexLookup struct {
	index explorers.BlockIndex
}

func NewIndexLookup(index explorers.BlockIndex) *IndexLookup {
	return &IndexLookup{index: index}
}

func (il *IndexLookup) Name() string {
	return STRATEGY_INDEX
}

func (il *IndexLookup) BlockByTimestamp(ctx context.Context, timestamp uint64) (int64, error) {
	return il.index.BlockNumberByTimestamp(ctx, timestamp)
}
