// Package testutil provides an in-process EVM JSON-RPC node for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	bscommon "github.com/tranvictor/blockseek/common"
)

// JSONRPCRequest represents a JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

type MockToken struct {
	Symbol   string
	Decimals uint8
}

// MockChain is the state served by the mock node. Timestamps[i] is the
// timestamp of block i, so the head is len(Timestamps)-1.
type MockChain struct {
	Timestamps []uint64
	Tokens     map[common.Address]MockToken
}

// MockEthRPC is a running mock node.
type MockEthRPC struct {
	*httptest.Server

	mu    sync.Mutex
	chain MockChain
	calls map[string]int
}

// StartMockEthRPC serves eth_blockNumber, eth_getBlockByNumber and eth_call
// (symbol/decimals only) for chain. The server is closed when t finishes.
func StartMockEthRPC(t *testing.T, chain MockChain) *MockEthRPC {
	t.Helper()

	m := &MockEthRPC{
		chain: chain,
		calls: map[string]int{},
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Server.Close)
	return m
}

// Calls returns how many times method was requested.
func (m *MockEthRPC) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// TotalCalls returns the number of requests of any method.
func (m *MockEthRPC) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, c := range m.calls {
		total += c
	}
	return total
}

func (m *MockEthRPC) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteRPCError(w, json.RawMessage(`1`), -32700, "parse error")
		return
	}

	m.mu.Lock()
	m.calls[req.Method]++
	m.mu.Unlock()

	switch req.Method {
	case "eth_blockNumber":
		WriteRPCResult(w, req.ID, hexutil.Uint64(m.head()))
	case "eth_getBlockByNumber":
		m.handleGetBlockByNumber(w, req)
	case "eth_call":
		m.handleCall(w, req)
	default:
		WriteRPCError(w, req.ID, -32601, fmt.Sprintf("method %s not found", req.Method))
	}
}

func (m *MockEthRPC) head() uint64 {
	if len(m.chain.Timestamps) == 0 {
		return 0
	}
	return uint64(len(m.chain.Timestamps) - 1)
}

func (m *MockEthRPC) handleGetBlockByNumber(w http.ResponseWriter, req JSONRPCRequest) {
	var params []json.RawMessage
	if err := json.Unmarshal(req.Params, &params); err != nil || len(params) == 0 {
		WriteRPCError(w, req.ID, -32602, "invalid params")
		return
	}
	var tag string
	if err := json.Unmarshal(params[0], &tag); err != nil {
		WriteRPCError(w, req.ID, -32602, "invalid block tag")
		return
	}

	var number uint64
	switch tag {
	case "latest", "pending", "safe", "finalized":
		number = m.head()
	case "earliest":
		number = 0
	default:
		n, err := hexutil.DecodeUint64(tag)
		if err != nil {
			WriteRPCError(w, req.ID, -32602, "invalid block number")
			return
		}
		number = n
	}

	if number >= uint64(len(m.chain.Timestamps)) {
		WriteRPCResult(w, req.ID, nil)
		return
	}

	header := &types.Header{
		Number:     new(big.Int).SetUint64(number),
		Time:       m.chain.Timestamps[number],
		Difficulty: big.NewInt(0),
		GasLimit:   30_000_000,
	}
	WriteRPCResult(w, req.ID, header)
}

func (m *MockEthRPC) handleCall(w http.ResponseWriter, req JSONRPCRequest) {
	var params []json.RawMessage
	if err := json.Unmarshal(req.Params, &params); err != nil || len(params) == 0 {
		WriteRPCError(w, req.ID, -32602, "invalid params")
		return
	}
	var msg struct {
		To    *common.Address `json:"to"`
		Input hexutil.Bytes   `json:"input"`
		Data  hexutil.Bytes   `json:"data"`
	}
	if err := json.Unmarshal(params[0], &msg); err != nil || msg.To == nil {
		WriteRPCError(w, req.ID, -32602, "invalid call")
		return
	}
	input := msg.Input
	if len(input) == 0 {
		input = msg.Data
	}

	token, found := m.chain.Tokens[*msg.To]
	if !found {
		// calls to an address without code return empty data
		WriteRPCResult(w, req.ID, hexutil.Bytes{})
		return
	}

	erc20 := bscommon.GetERC20ABI()
	method, err := erc20.MethodById(input)
	if err != nil {
		WriteRPCError(w, req.ID, 3, "execution reverted")
		return
	}

	var out []byte
	switch method.Name {
	case "symbol":
		out, err = method.Outputs.Pack(token.Symbol)
	case "decimals":
		out, err = method.Outputs.Pack(token.Decimals)
	default:
		WriteRPCError(w, req.ID, 3, "execution reverted")
		return
	}
	if err != nil {
		WriteRPCError(w, req.ID, -32603, err.Error())
		return
	}
	WriteRPCResult(w, req.ID, hexutil.Bytes(out))
}

// WriteRPCResult writes a JSON-RPC success response.
func WriteRPCResult(w http.ResponseWriter, id json.RawMessage, result any) {
	resp := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(resp); err != nil {
		WriteRPCError(w, id, -32603, err.Error())
		return
	}
	_, _ = w.Write(buf.Bytes())
}

// WriteRPCError writes a JSON-RPC error response.
func WriteRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	resp := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// LinearTimestamps returns n block timestamps starting at genesis and spaced
// by step seconds.
func LinearTimestamps(genesis uint64, step uint64, n int) []uint64 {
	res := make([]uint64, n)
	for i := range res {
		res[i] = genesis + uint64(i)*step
	}
	return res
}
