package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/tranvictor/blockseek/config"
	"github.com/tranvictor/blockseek/metrics"
	"github.com/tranvictor/blockseek/util/explorers"
	"github.com/tranvictor/blockseek/util/reader"
)

// NewFromConfig builds the index first, chain second resolver described by
// cfg. The chain strategy is registered even when no node URL is set so
// that the missing setting is reported once the fallback is reached. The
// returned function closes the node connection.
func NewFromConfig(cfg *config.Config, logger *zap.SugaredLogger, m *metrics.Metrics) (*Resolver, func()) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	explorer := explorers.NewEtherscanLikeExplorer(
		cfg.IndexAPIURL,
		cfg.IndexAPIKey,
		explorers.WithChainID(cfg.ChainID()),
		explorers.WithAPIKeyVariableName(cfg.IndexAPIKeyVariableName()),
		explorers.WithCooldown(cfg.IndexCooldown),
		explorers.WithLogger(logger.Named("index")),
	)

	var source BlockSource
	closer := func() {}
	if cfg.NodeURL != "" {
		r := reader.NewEthReader(cfg.NodeURL)
		source = r
		closer = r.Close
	}

	return NewResolver(
		[]BlockResolver{
			NewIndexLookup(explorer),
			NewChainBinarySearch(source, logger.Named("chain")),
		},
		WithLogger(logger),
		WithMetrics(m),
	), closer
}

// ResolveBlockByTimestamp resolves timestamp with a resolver built from cfg.
func ResolveBlockByTimestamp(ctx context.Context, cfg *config.Config, timestamp uint64) (int64, error) {
	r, closer := NewFromConfig(cfg, nil, nil)
	defer closer()
	res, err := r.Resolve(ctx, timestamp)
	if err != nil {
		return 0, err
	}
	return res.Block, nil
}
