package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	bscommon "github.com/tranvictor/blockseek/common"
	"github.com/tranvictor/blockseek/config"
	"github.com/tranvictor/blockseek/metrics"
	"github.com/tranvictor/blockseek/util/reader"
)

// FORMAT_PRECISION is the number of decimal places FormatAmount prints.
const FORMAT_PRECISION int32 = 4

var ErrInvalidAddress = errors.New("invalid token address")

// ContractReader reads the ERC20 metadata of a contract.
// *reader.EthReader satisfies it.
type ContractReader interface {
	ERC20Symbol(ctx context.Context, caddr string) (string, error)
	ERC20Decimal(ctx context.Context, caddr string) (uint64, error)
}

var _ ContractReader = (*reader.EthReader)(nil)

type Info struct {
	Address  common.Address
	Symbol   string
	Decimals uint64
}

// Reader fetches token metadata on every call, nothing is cached.
type Reader struct {
	contracts ContractReader
	logger    *zap.SugaredLogger
	metrics   *metrics.Metrics
}

type Option func(*Reader)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reader) {
		r.metrics = m
	}
}

func NewReader(contracts ContractReader, opts ...Option) *Reader {
	r := &Reader{
		contracts: contracts,
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetTokenInfo reads symbol() and then decimals() of the token at address.
// Any failure is returned without retrying.
func (r *Reader) GetTokenInfo(ctx context.Context, address string) (info Info, err error) {
	defer func() {
		r.metrics.ObserveTokenRead(err)
	}()

	if !bscommon.IsHexAddress(address) {
		return Info{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	addr := bscommon.HexToAddress(address)

	symbol, err := r.contracts.ERC20Symbol(ctx, addr.Hex())
	if err != nil {
		return Info{}, fmt.Errorf("couldn't read symbol of %s: %w", addr.Hex(), err)
	}
	decimals, err := r.contracts.ERC20Decimal(ctx, addr.Hex())
	if err != nil {
		return Info{}, fmt.Errorf("couldn't read decimals of %s: %w", addr.Hex(), err)
	}
	r.logger.Debugw("read token info", "address", addr.Hex(), "symbol", symbol, "decimals", decimals)

	return Info{
		Address:  addr,
		Symbol:   symbol,
		Decimals: decimals,
	}, nil
}

// FormatAmount renders amount, given in the token's smallest unit, with
// four decimal places followed by the token symbol.
func (r *Reader) FormatAmount(ctx context.Context, address string, amount *big.Int) (string, error) {
	if amount == nil {
		return "", errors.New("amount must not be nil")
	}
	info, err := r.GetTokenInfo(ctx, address)
	if err != nil {
		return "", err
	}
	return Format(amount, info), nil
}

// Format renders amount with the metadata in info.
func Format(amount *big.Int, info Info) string {
	value := decimal.NewFromBigInt(amount, -int32(info.Decimals))
	return fmt.Sprintf("%s %s", value.StringFixed(FORMAT_PRECISION), info.Symbol)
}

// FormatUnits renders amount divided by 10^decimals with every significant
// digit and at least one fractional digit, "1.0" rather than "1".
func FormatUnits(amount *big.Int, decimals uint64) string {
	value := decimal.NewFromBigInt(amount, -int32(decimals))
	if value.IsInteger() {
		return value.StringFixed(1)
	}
	return value.String()
}

// NewFromConfig creates a Reader on the token node of cfg. The returned
// function closes the node connection.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Reader, func(), error) {
	if cfg.TokenNodeURL == "" {
		return nil, nil, bscommon.MissingSetting("TOKEN_RPC_URL")
	}
	er := reader.NewEthReader(cfg.TokenNodeURL)
	return NewReader(er, opts...), er.Close, nil
}

func GetTokenInfo(ctx context.Context, cfg *config.Config, address string) (Info, error) {
	r, closer, err := NewFromConfig(cfg)
	if err != nil {
		return Info{}, err
	}
	defer closer()
	return r.GetTokenInfo(ctx, address)
}

func FormatAmount(ctx context.Context, cfg *config.Config, address string, amount *big.Int) (string, error) {
	r, closer, err := NewFromConfig(cfg)
	if err != nil {
		return "", err
	}
	defer closer()
	return r.FormatAmount(ctx, address, amount)
}
