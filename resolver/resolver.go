package resolver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tranvictor/blockseek/metrics"
)

// NoBlock is returned when the timestamp predates the first block.
const NoBlock int64 = -1

const (
	STRATEGY_INDEX = "index"
	STRATEGY_CHAIN = "chain"
)

// BlockResolver maps a timestamp to the closest block at or before it.
type BlockResolver interface {
	Name() string
	BlockByTimestamp(ctx context.Context, timestamp uint64) (int64, error)
}

// Resolution is a resolved block together with the strategy that produced
// it.
type Resolution struct {
	Block    int64
	Strategy string
}

// Resolver tries its strategies in order and returns the first answer.
// Failures of every strategy but the last are logged and absorbed; the
// error of the last one is returned as is.
type Resolver struct {
	strategies []BlockResolver
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
}

type Option func(*Resolver)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func NewResolver(strategies []BlockResolver, opts ...Option) *Resolver {
	r := &Resolver{
		strategies: strategies,
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strategies returns the strategy names in priority order.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

func (r *Resolver) Resolve(ctx context.Context, timestamp uint64) (Resolution, error) {
	if len(r.strategies) == 0 {
		return Resolution{}, errors.New("no block resolver configured")
	}

	last := len(r.strategies) - 1
	for i, s := range r.strategies {
		start := time.Now()
		block, err := s.BlockByTimestamp(ctx, timestamp)
		r.metrics.ObserveResolution(s.Name(), time.Since(start), err)
		if err == nil {
			r.logger.Debugw("resolved block",
				"timestamp", timestamp,
				"block", block,
				"strategy", s.Name(),
			)
			return Resolution{Block: block, Strategy: s.Name()}, nil
		}
		if i == last {
			return Resolution{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Resolution{}, ctxErr
		}
		r.logger.Warnw("block resolution failed, falling back",
			"timestamp", timestamp,
			"strategy", s.Name(),
			"next", r.strategies[i+1].Name(),
			"err", err,
		)
		r.metrics.IncFallback()
	}
	// unreachable, the last strategy always returns
	return Resolution{}, errors.New("no block resolver succeeded")
}
