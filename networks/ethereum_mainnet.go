package networks

var EthereumMainnet Network = NewEthereumMainnet()

type ethereumMainnet struct {
	*GenericEtherscanNetwork
}

func NewEthereumMainnet() *ethereumMainnet {
	return &ethereumMainnet{
		GenericEtherscanNetwork: NewGenericEtherscanNetwork(GenericEtherscanNetworkConfig{
			Name:               "mainnet",
			AlternativeNames:   []string{"ethereum"},
			ChainID:            1,
			NativeTokenSymbol:  "ETH",
			NativeTokenDecimal: 18,
			BlockTime:          12,
			NodeVariableName:   "ETHEREUM_MAINNET_NODE",
			DefaultNodes: map[string]string{
				"publicnode": "https://ethereum-rpc.publicnode.com",
			},
			PublicNode:                      "https://ethereum-rpc.publicnode.com",
			BlockExplorerAPIKeyVariableName: "ETHERSCAN_API_KEY",
			BlockExplorerAPIURL:             "https://api.etherscan.io/v2/api",
		}),
	}
}
