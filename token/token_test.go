package token

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tranvictor/blockseek/config"
	"github.com/tranvictor/blockseek/internal/testutil"
	"github.com/tranvictor/blockseek/metrics"
)

const tokenAddress = "0x55d398326f99059fF775485246999027B3197955"

type fakeContracts struct {
	symbol      string
	decimals    uint64
	symbolErr   error
	decimalsErr error
	calls       []string
}

func (fc *fakeContracts) ERC20Symbol(ctx context.Context, caddr string) (string, error) {
	fc.calls = append(fc.calls, "symbol")
	return fc.symbol, fc.symbolErr
}

func (fc *fakeContracts) ERC20Decimal(ctx context.Context, caddr string) (uint64, error) {
	fc.calls = append(fc.calls, "decimals")
	return fc.decimals, fc.decimalsErr
}

func newTestReader(t *testing.T, contracts ContractReader) *Reader {
	return NewReader(contracts, WithLogger(zaptest.NewLogger(t).Sugar()), WithMetrics(metrics.NewNoop()))
}

func bigInt(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

func TestGetTokenInfo(t *testing.T) {
	contracts := &fakeContracts{symbol: "USDT", decimals: 18}
	info, err := newTestReader(t, contracts).GetTokenInfo(context.Background(), tokenAddress)
	require.NoError(t, err)

	assert.Equal(t, Info{
		Address:  common.HexToAddress(tokenAddress),
		Symbol:   "USDT",
		Decimals: 18,
	}, info)
	assert.Equal(t, []string{"symbol", "decimals"}, contracts.calls)
}

func TestGetTokenInfoIsNotCached(t *testing.T) {
	contracts := &fakeContracts{symbol: "USDT", decimals: 18}
	r := newTestReader(t, contracts)
	for i := 0; i < 2; i++ {
		_, err := r.GetTokenInfo(context.Background(), tokenAddress)
		require.NoError(t, err)
	}
	assert.Len(t, contracts.calls, 4)
}

func TestGetTokenInfoErrors(t *testing.T) {
	boom := errors.New("execution reverted")

	t.Run("invalid address", func(t *testing.T) {
		contracts := &fakeContracts{}
		_, err := newTestReader(t, contracts).GetTokenInfo(context.Background(), "not-an-address")
		assert.ErrorIs(t, err, ErrInvalidAddress)
		assert.Empty(t, contracts.calls)
	})

	t.Run("symbol", func(t *testing.T) {
		contracts := &fakeContracts{symbolErr: boom}
		_, err := newTestReader(t, contracts).GetTokenInfo(context.Background(), tokenAddress)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"symbol"}, contracts.calls)
	})

	t.Run("decimals", func(t *testing.T) {
		contracts := &fakeContracts{symbol: "USDT", decimalsErr: boom}
		_, err := newTestReader(t, contracts).GetTokenInfo(context.Background(), tokenAddress)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "decimals")
	})
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		decimals uint64
		amount   string
		want     string
	}{
		{"eighteen decimals", "TOKEN", 18, "1500000000000000000", "1.5000 TOKEN"},
		{"six decimals rounds", "USDC", 6, "1234567", "1.2346 USDC"},
		{"zero", "TOKEN", 18, "0", "0.0000 TOKEN"},
		{"below precision", "TOKEN", 18, "1", "0.0000 TOKEN"},
		{"half rounds away from zero", "USDC", 6, "1000050", "1.0001 USDC"},
		{"large amount", "TOKEN", 18, "123456789000000000000000000", "123456789.0000 TOKEN"},
		{"no decimals", "NFT", 0, "42", "42.0000 NFT"},
		{"negative", "USDC", 6, "-2500000", "-2.5000 USDC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReader(t, &fakeContracts{symbol: tt.symbol, decimals: tt.decimals})
			got, err := r.FormatAmount(context.Background(), tokenAddress, bigInt(t, tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmountErrors(t *testing.T) {
	r := newTestReader(t, &fakeContracts{symbolErr: errors.New("no contract code")})
	_, err := r.FormatAmount(context.Background(), tokenAddress, big.NewInt(1))
	assert.ErrorContains(t, err, "no contract code")

	_, err = newTestReader(t, &fakeContracts{symbol: "T", decimals: 18}).FormatAmount(context.Background(), tokenAddress, nil)
	assert.Error(t, err)
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.5", FormatUnits(bigInt(t, "1500000000000000000"), 18))
	assert.Equal(t, "1.0", FormatUnits(bigInt(t, "1000000"), 6))
	assert.Equal(t, "1.234567", FormatUnits(bigInt(t, "1234567"), 6))
	assert.Equal(t, "0.0", FormatUnits(big.NewInt(0), 18))
	assert.Equal(t, "42.0", FormatUnits(big.NewInt(42), 0))
	assert.Equal(t, "0.000000000000000001", FormatUnits(big.NewInt(1), 18))
}

func TestTokenReadsAreCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	r := NewReader(&fakeContracts{symbolErr: errors.New("boom")}, WithMetrics(m))

	_, _ = r.GetTokenInfo(context.Background(), tokenAddress)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() != "blockseek_token_reads_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			if metric.GetLabel()[0].GetValue() == metrics.StatusError {
				found = true
				assert.Equal(t, 1.0, metric.GetCounter().GetValue())
			}
		}
	}
	assert.True(t, found)
}

func TestPackageLevelHelpers(t *testing.T) {
	usdc := common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d")
	node := testutil.StartMockEthRPC(t, testutil.MockChain{
		Timestamps: testutil.LinearTimestamps(1_600_000_000, 3, 10),
		Tokens: map[common.Address]testutil.MockToken{
			usdc: {Symbol: "USDC", Decimals: 18},
		},
	})
	cfg := &config.Config{Network: "bsc", TokenNodeURL: node.URL}

	info, err := GetTokenInfo(context.Background(), cfg, usdc.Hex())
	require.NoError(t, err)
	assert.Equal(t, "USDC", info.Symbol)
	assert.Equal(t, uint64(18), info.Decimals)

	formatted, err := FormatAmount(context.Background(), cfg, usdc.Hex(), bigInt(t, "1500000000000000000"))
	require.NoError(t, err)
	assert.Equal(t, "1.5000 USDC", formatted)

	_, err = GetTokenInfo(context.Background(), cfg, "0x000000000000000000000000000000000000dEaD")
	assert.Error(t, err)
}

func TestNewFromConfigWithoutTokenNode(t *testing.T) {
	_, _, err := NewFromConfig(&config.Config{Network: "bsc"})
	assert.ErrorContains(t, err, "TOKEN_RPC_URL")
}
