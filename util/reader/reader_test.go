package reader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/blockseek/internal/testutil"
)

var usdc = common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d")

func startNode(t *testing.T) *testutil.MockEthRPC {
	t.Helper()
	return testutil.StartMockEthRPC(t, testutil.MockChain{
		Timestamps: testutil.LinearTimestamps(1_600_000_000, 3, 100),
		Tokens: map[common.Address]testutil.MockToken{
			usdc: {Symbol: "USDC", Decimals: 18},
		},
	})
}

func deadNodeURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func TestEthReaderBlocks(t *testing.T) {
	node := startNode(t)
	r := NewEthReader(node.URL)
	defer r.Close()
	ctx := context.Background()

	head, err := r.CurrentBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), head)

	header, err := r.HeaderByNumber(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), header.Number.Uint64())
	assert.Equal(t, uint64(1_600_000_030), header.Time)

	_, err = r.HeaderByNumber(ctx, 1000)
	assert.Error(t, err)
}

func TestEthReaderERC20(t *testing.T) {
	node := startNode(t)
	r := NewEthReader(node.URL)
	defer r.Close()
	ctx := context.Background()

	symbol, err := r.ERC20Symbol(ctx, usdc.Hex())
	require.NoError(t, err)
	assert.Equal(t, "USDC", symbol)

	decimals, err := r.ERC20Decimal(ctx, usdc.Hex())
	require.NoError(t, err)
	assert.Equal(t, uint64(18), decimals)
	assert.Equal(t, 2, node.Calls("eth_call"))

	_, err = r.ERC20Symbol(ctx, "0x000000000000000000000000000000000000dEaD")
	assert.Error(t, err)
}

func TestEthReaderFirstSuccessfulNodeWins(t *testing.T) {
	node := startNode(t)
	r := NewEthReaderGeneric(map[string]string{
		"good": node.URL,
		"bad":  deadNodeURL(t),
	})
	defer r.Close()
	assert.Equal(t, []string{"bad", "good"}, r.NodeNames())

	head, err := r.CurrentBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(99), head)
}

func TestEthReaderAllNodesFail(t *testing.T) {
	r := NewEthReaderGeneric(map[string]string{
		"bad1": deadNodeURL(t),
		"bad2": deadNodeURL(t),
	})
	defer r.Close()

	_, err := r.CurrentBlock(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "couldn't read from any nodes")
	assert.Contains(t, err.Error(), "bad1")
	assert.Contains(t, err.Error(), "bad2")
}

func TestEthReaderWithoutNodes(t *testing.T) {
	r := NewEthReaderWithNodes()
	_, err := r.CurrentBlock(context.Background())
	assert.Error(t, err)
}
