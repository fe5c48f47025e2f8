package reader

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

type EthereumNode interface {
	NodeName() string
	NodeURL() string
	ReadContractToBytes(
		ctx context.Context,
		atBlock int64,
		from string,
		caddr string,
		abi *abi.ABI,
		method string,
		args ...interface{},
	) ([]byte, error)
	// HeaderByNumber returns the latest header when number is negative.
	HeaderByNumber(ctx context.Context, number int64) (*types.Header, error)
	CurrentBlock(ctx context.Context) (uint64, error)
}
