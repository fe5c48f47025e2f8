package reader

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"

	bscommon "github.com/tranvictor/blockseek/common"
)

var DEFAULT_ADDRESS string = "0x0000000000000000000000000000000000000000"

// EthReader fans every read out to all of its nodes and returns the first
// successful answer.
type EthReader struct {
	nodes map[string]EthereumNode
}

func NewEthReaderGeneric(nodes map[string]string) *EthReader {
	ns := map[string]EthereumNode{}
	for name, c := range nodes {
		ns[name] = NewOneNodeReader(name, c)
	}
	return &EthReader{
		nodes: ns,
	}
}

// NewEthReader reads from a single node.
func NewEthReader(url string) *EthReader {
	return NewEthReaderGeneric(map[string]string{"node": url})
}

func NewEthReaderWithNodes(nodes ...EthereumNode) *EthReader {
	ns := map[string]EthereumNode{}
	for _, n := range nodes {
		ns[n.NodeName()] = n
	}
	return &EthReader{
		nodes: ns,
	}
}

func (er *EthReader) NodeNames() []string {
	names := make([]string, 0, len(er.nodes))
	for name := range er.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every node connection opened by the reader.
func (er *EthReader) Close() {
	for _, n := range er.nodes {
		if c, ok := n.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type nodeResponse[T any] struct {
	Value T
	Error error
}

func firstSuccess[T any](er *EthReader, call func(n EthereumNode) (T, error)) (T, error) {
	var zero T
	if len(er.nodes) == 0 {
		return zero, fmt.Errorf("no node configured")
	}
	resCh := make(chan nodeResponse[T], len(er.nodes))
	for i := range er.nodes {
		n := er.nodes[i]
		go func() {
			value, err := call(n)
			resCh <- nodeResponse[T]{
				Value: value,
				Error: wrapError(err, n.NodeName()),
			}
		}()
	}
	errs := []error{}
	for i := 0; i < len(er.nodes); i++ {
		result := <-resCh
		if result.Error == nil {
			return result.Value, nil
		}
		errs = append(errs, result.Error)
	}
	return zero, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

func (er *EthReader) ReadContractToBytes(
	ctx context.Context,
	atBlock int64,
	from string,
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) ([]byte, error) {
	return firstSuccess(er, func(n EthereumNode) ([]byte, error) {
		return n.ReadContractToBytes(ctx, atBlock, from, caddr, abi, method, args...)
	})
}

func (er *EthReader) ReadHistoryContractWithABI(
	ctx context.Context,
	atBlock int64,
	result interface{},
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) error {
	responseBytes, err := er.ReadContractToBytes(
		ctx, atBlock, DEFAULT_ADDRESS, caddr, abi, method, args...)
	if err != nil {
		return err
	}
	return abi.UnpackIntoInterface(result, method, responseBytes)
}

func (er *EthReader) ReadContractWithABI(
	ctx context.Context,
	result interface{},
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) error {
	return er.ReadHistoryContractWithABI(ctx, -1, result, caddr, abi, method, args...)
}

func (er *EthReader) ERC20Symbol(ctx context.Context, caddr string) (string, error) {
	abi := bscommon.GetERC20ABI()
	var result string
	err := er.ReadContractWithABI(ctx, &result, caddr, abi, "symbol")
	return result, err
}

func (er *EthReader) ERC20Decimal(ctx context.Context, caddr string) (uint64, error) {
	abi := bscommon.GetERC20ABI()
	var result uint8
	err := er.ReadContractWithABI(ctx, &result, caddr, abi, "decimals")
	return uint64(result), err
}

func (er *EthReader) HeaderByNumber(ctx context.Context, number int64) (*types.Header, error) {
	return firstSuccess(er, func(n EthereumNode) (*types.Header, error) {
		return n.HeaderByNumber(ctx, number)
	})
}

func (er *EthReader) CurrentBlock(ctx context.Context) (uint64, error) {
	return firstSuccess(er, func(n EthereumNode) (uint64, error) {
		return n.CurrentBlock(ctx)
	})
}
