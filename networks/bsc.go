package networks

var BSCMainnet Network = NewBSCMainnet()

type bscMainnet struct {
	*GenericEtherscanNetwork
}

func NewBSCMainnet() *bscMainnet {
	return &bscMainnet{
		GenericEtherscanNetwork: NewGenericEtherscanNetwork(GenericEtherscanNetworkConfig{
			Name:               "bsc",
			AlternativeNames:   []string{"bsc-mainnet"},
			ChainID:            56,
			NativeTokenSymbol:  "BNB",
			NativeTokenDecimal: 18,
			BlockTime:          3,
			NodeVariableName:   "BSC_MAINNET_NODE",
			DefaultNodes: map[string]string{
				"binance":  "https://bsc-dataseed.binance.org",
				"defibit":  "https://bsc-dataseed1.defibit.io",
				"ninicoin": "https://bsc-dataseed1.ninicoin.io",
			},
			PublicNode:                      "https://bscrpc.com",
			BlockExplorerAPIKeyVariableName: "BSCSCAN_API_KEY",
			BlockExplorerAPIURL:             "https://api.bscscan.com/api",
		}),
	}
}
