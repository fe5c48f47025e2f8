package explorers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	bscommon "github.com/tranvictor/blockseek/common"
)

const (
	// etherscan alike free tiers throttle aggressively, one call per cooldown
	DEFAULT_COOLDOWN time.Duration = 2 * time.Second
	TIMEOUT          time.Duration = 10 * time.Second

	DEFAULT_API_KEY_VARIABLE_NAME string = "BSCSCAN_API_KEY"
)

// ErrIndexUnavailable is returned for every failure of the index other than a
// missing API key.
var ErrIndexUnavailable = errors.New("block index unavailable")

type EtherscanLikeExplorer struct {
	ChainID uint64

	APIURL             string
	APIKey             string
	APIKeyVariableName string

	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

type Option func(*EtherscanLikeExplorer)

func WithChainID(chainID uint64) Option {
	return func(ee *EtherscanLikeExplorer) {
		ee.ChainID = chainID
	}
}

func WithAPIKeyVariableName(name string) Option {
	return func(ee *EtherscanLikeExplorer) {
		ee.APIKeyVariableName = name
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(ee *EtherscanLikeExplorer) {
		ee.client = client
	}
}

// WithCooldown sets the minimum spacing between two index calls. The limiter
// is shared by every explorer talking to the same API URL.
func WithCooldown(cooldown time.Duration) Option {
	return func(ee *EtherscanLikeExplorer) {
		ee.limiter = sharedLimiter(ee.APIURL, cooldown)
	}
}

var (
	limitersMu sync.Mutex
	limiters   = map[string]*rate.Limiter{}
)

func sharedLimiter(apiURL string, cooldown time.Duration) *rate.Limiter {
	if cooldown <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	key := fmt.Sprintf("%s|%s", apiURL, cooldown)
	limitersMu.Lock()
	defer limitersMu.Unlock()
	l, found := limiters[key]
	if !found {
		l = rate.NewLimiter(rate.Every(cooldown), 1)
		limiters[key] = l
	}
	return l
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(ee *EtherscanLikeExplorer) {
		if logger != nil {
			ee.logger = logger
		}
	}
}

func NewEtherscanLikeExplorer(apiURL string, apiKey string, opts ...Option) *EtherscanLikeExplorer {
	ee := &EtherscanLikeExplorer{
		APIURL:             strings.TrimRight(apiURL, "/"),
		APIKey:             strings.TrimSpace(apiKey),
		APIKeyVariableName: DEFAULT_API_KEY_VARIABLE_NAME,
		client:             &http.Client{Timeout: TIMEOUT},
		logger:             zap.NewNop().Sugar(),
	}
	ee.limiter = sharedLimiter(ee.APIURL, DEFAULT_COOLDOWN)
	for _, opt := range opts {
		opt(ee)
	}
	return ee
}

func (ee *EtherscanLikeExplorer) BlockNumberByTimestampAPIURL(timestamp uint64) string {
	params := url.Values{
		"module":    {"block"},
		"action":    {"getblocknobytime"},
		"timestamp": {strconv.FormatUint(timestamp, 10)},
		"closest":   {"before"},
		"apikey":    {ee.APIKey},
	}
	if ee.ChainID != 0 {
		params.Set("chainid", strconv.FormatUint(ee.ChainID, 10))
	}
	return fmt.Sprintf("%s?%s", ee.APIURL, params.Encode())
}

type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (er *etherscanResponse) IsOK() bool {
	return er.Status == "1"
}

func (er *etherscanResponse) resultString() string {
	var s string
	if err := json.Unmarshal(er.Result, &s); err == nil {
		return s
	}
	return string(er.Result)
}

// BlockNumberByTimestamp asks the index for the closest block at or before
// timestamp. A missing API key fails before any request is made.
func (ee *EtherscanLikeExplorer) BlockNumberByTimestamp(ctx context.Context, timestamp uint64) (int64, error) {
	if ee.APIKey == "" {
		return 0, bscommon.MissingSetting(ee.APIKeyVariableName)
	}

	if err := ee.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: rate limiter: %w", ErrIndexUnavailable, err)
	}

	ee.logger.Infow("call block index", "url", ee.APIURL, "timestamp", timestamp)
	resp, err := ee.get(ctx, ee.BlockNumberByTimestampAPIURL(timestamp))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIndexUnavailable, err)
	}

	if !resp.IsOK() {
		return 0, fmt.Errorf(
			"%w: error from %s: %s - %s",
			ErrIndexUnavailable, ee.APIURL, resp.Message, resp.resultString(),
		)
	}

	block, err := strconv.ParseInt(strings.TrimSpace(resp.resultString()), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: couldn't parse block number %s: %w", ErrIndexUnavailable, string(resp.Result), err)
	}
	if block < 0 {
		return 0, fmt.Errorf("%w: negative block number %d", ErrIndexUnavailable, block)
	}
	return block, nil
}

func (ee *EtherscanLikeExplorer) get(ctx context.Context, fullURL string) (*etherscanResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ee.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected http status %d: %s", resp.StatusCode, string(body))
	}

	result := etherscanResponse{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf(
			"couldn't unmarshal %s to etherscan response, err: %w",
			string(body),
			err,
		)
	}
	return &result, nil
}
