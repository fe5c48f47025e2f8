package networks

import (
	"time"
)

type Network interface {
	GetName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64
	GetBlockTime() time.Duration // in second

	GetNodeVariableName() string
	GetDefaultNodes() map[string]string
	// GetPublicNode is the node used for token reads when no node is configured.
	GetPublicNode() string

	GetBlockExplorerAPIKeyVariableName() string
	GetBlockExplorerAPIURL() string
}
