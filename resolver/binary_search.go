package resolver

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	bscommon "github.com/tranvictor/blockseek/common"
	"github.com/tranvictor/blockseek/config"
	"github.com/tranvictor/blockseek/util/reader"
)

// BlockSource is the part of a node the binary search needs.
// *reader.EthReader satisfies it.
type BlockSource interface {
	CurrentBlock(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number int64) (*types.Header, error)
}

var _ BlockSource = (*reader.EthReader)(nil)

// ChainBinarySearch finds the block by bisecting block timestamps on a node.
// Without a source it fails with a missing setting error naming the node
// URL variable.
type ChainBinarySearch struct {
	source  BlockSource
	setting string
	logger  *zap.SugaredLogger
}

func NewChainBinarySearch(source BlockSource, logger *zap.SugaredLogger) *ChainBinarySearch {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ChainBinarySearch{
		source:  source,
		setting: config.NodeURLVariable,
		logger:  logger,
	}
}

func (cbs *ChainBinarySearch) Name() string {
	return STRATEGY_CHAIN
}

func (cbs *ChainBinarySearch) Configured() bool {
	return cbs.source != nil
}

func (cbs *ChainBinarySearch) BlockByTimestamp(ctx context.Context, timestamp uint64) (int64, error) {
	if cbs.source == nil {
		return 0, bscommon.MissingSetting(cbs.setting)
	}
	return cbs.Search(ctx, timestamp)
}

// Search returns the highest block whose timestamp is at or before
// timestamp, or NoBlock if the first block is already later. Block
// timestamps are assumed non-decreasing. Every probe is one sequential
// header read and the first failed read aborts the search.
func (cbs *ChainBinarySearch) Search(ctx context.Context, timestamp uint64) (int64, error) {
	head, err := cbs.source.CurrentBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("couldn't get current block: %w", err)
	}

	lo, hi := int64(0), int64(head)
	probes := 0
	for lo <= hi {
		mid := lo + (hi-lo)/2
		header, err := cbs.source.HeaderByNumber(ctx, mid)
		probes++
		if err != nil {
			return 0, fmt.Errorf("couldn't get block %d: %w", mid, err)
		}
		if header == nil {
			return 0, fmt.Errorf("block %d not found", mid)
		}
		switch {
		case header.Time == timestamp:
			cbs.logger.Debugw("binary search hit exact timestamp",
				"timestamp", timestamp, "block", mid, "probes", probes)
			return mid, nil
		case header.Time > timestamp:
			hi = mid - 1
		default:
			lo = mid + 1
		}
	}
	cbs.logger.Debugw("binary search done",
		"timestamp", timestamp, "block", lo-1, "probes", probes)
	return lo - 1, nil
}

// BinarySearchBlock runs the binary search against the node at nodeURL.
func BinarySearchBlock(ctx context.Context, nodeURL string, timestamp uint64) (int64, error) {
	if nodeURL == "" {
		return 0, bscommon.MissingSetting(config.NodeURLVariable)
	}
	r := reader.NewEthReader(nodeURL)
	defer r.Close()
	return NewChainBinarySearch(r, nil).Search(ctx, timestamp)
}
