package explorers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	bscommon "github.com/tranvictor/blockseek/common"
)

func newTestExplorer(t *testing.T, url string, apiKey string, opts ...Option) *EtherscanLikeExplorer {
	t.Helper()
	opts = append([]Option{
		WithCooldown(0),
		WithLogger(zaptest.NewLogger(t).Sugar()),
	}, opts...)
	return NewEtherscanLikeExplorer(url, apiKey, opts...)
}

func TestBlockNumberByTimestamp(t *testing.T) {
	gotQuery := make(chan map[string]string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery <- map[string]string{
			"module":    q.Get("module"),
			"action":    q.Get("action"),
			"timestamp": q.Get("timestamp"),
			"closest":   q.Get("closest"),
			"apikey":    q.Get("apikey"),
			"chainid":   q.Get("chainid"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"12345"}`))
	}))
	defer server.Close()

	ee := newTestExplorer(t, server.URL, "key", WithChainID(56))
	block, err := ee.BlockNumberByTimestamp(context.Background(), 1700000000)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), block)

	assert.Equal(t, map[string]string{
		"module":    "block",
		"action":    "getblocknobytime",
		"timestamp": "1700000000",
		"closest":   "before",
		"apikey":    "key",
		"chainid":   "56",
	}, <-gotQuery)
}

func TestBlockNumberByTimestampMissingAPIKey(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	ee := newTestExplorer(t, server.URL, "  ")
	_, err := ee.BlockNumberByTimestamp(context.Background(), 1700000000)
	require.Error(t, err)
	assert.ErrorIs(t, err, bscommon.ErrMissingSetting)
	assert.NotErrorIs(t, err, ErrIndexUnavailable)

	setting, ok := bscommon.IsMissingSetting(err)
	require.True(t, ok)
	assert.Equal(t, "BSCSCAN_API_KEY", setting)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestBlockNumberByTimestampFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		closeIt bool
	}{
		{name: "error status", status: http.StatusOK, body: `{"status":"0","message":"NOTOK","result":"Error! Invalid timestamp"}`},
		{name: "malformed body", status: http.StatusOK, body: `not json`},
		{name: "non numeric result", status: http.StatusOK, body: `{"status":"1","message":"OK","result":"abc"}`},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`},
		{name: "network failure", closeIt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			url := server.URL
			if tt.closeIt {
				server.Close()
			} else {
				defer server.Close()
			}

			ee := newTestExplorer(t, url, "key")
			_, err := ee.BlockNumberByTimestamp(context.Background(), 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrIndexUnavailable)
			assert.NotErrorIs(t, err, bscommon.ErrMissingSetting)
		})
	}
}

func TestBlockNumberByTimestampCooldownIsShared(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []time.Time
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"1"}`))
	}))
	defer server.Close()

	cooldown := 150 * time.Millisecond
	ee := newTestExplorer(t, server.URL, "key", WithCooldown(cooldown))

	for i := 0; i < 3; i++ {
		_, err := ee.BlockNumberByTimestamp(context.Background(), 1)
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 3)
	for i := 1; i < len(calls); i++ {
		// small slack for timer granularity
		assert.GreaterOrEqual(t, calls[i].Sub(calls[i-1]), cooldown-10*time.Millisecond)
	}
}

func TestBlockNumberByTimestampCancelledWhileWaiting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"1"}`))
	}))
	defer server.Close()

	ee := newTestExplorer(t, server.URL, "key", WithCooldown(time.Hour))
	_, err := ee.BlockNumberByTimestamp(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = ee.BlockNumberByTimestamp(ctx, 1)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestBlockNumberByTimestampAPIURLOmitsZeroChainID(t *testing.T) {
	ee := NewEtherscanLikeExplorer("https://api.bscscan.com/api/", "k")
	assert.Equal(
		t,
		"https://api.bscscan.com/api?action=getblocknobytime&apikey=k&closest=before&module=block&timestamp=42",
		ee.BlockNumberByTimestampAPIURL(42),
	)
}

func TestExplorersOfTheSameAPIShareTheCooldown(t *testing.T) {
	a := NewEtherscanLikeExplorer("https://index.example.org/api", "k", WithCooldown(time.Minute))
	b := NewEtherscanLikeExplorer("https://index.example.org/api", "k", WithCooldown(time.Minute))
	c := NewEtherscanLikeExplorer("https://other.example.org/api", "k", WithCooldown(time.Minute))

	assert.Same(t, a.limiter, b.limiter)
	assert.NotSame(t, a.limiter, c.limiter)
}
