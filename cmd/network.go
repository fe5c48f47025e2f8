package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/blockseek/networks"
)

var (
	NetworkConfig string
	NetworkForce  bool
)

var addNetworkCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new network to the supported networks list locally",
	Long: `--config flag is supported to pass a new network config json filepath OR pass a json string. The json should be in the following format:
	{
		"name": "network_name",
		"alternative_names": ["alternative_name_1", "alternative_name_2"],
		"chain_id": 1,
		"native_token_symbol": "ETH",
		"native_token_decimal": 18,
		"block_time": 12,
		"node_variable_name": "MY_NETWORK_NODE",
		"default_nodes": {
			"node_name_1": "node_url_1"
		},
		"public_node": "https://rpc.example.org",
		"block_explorer_api_key_variable_name": "MY_EXPLORER_API_KEY",
		"block_explorer_api_url": "https://api.etherscan.io/v2/api"
	}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := strings.TrimSpace(NetworkConfig)
		if config == "" {
			return fmt.Errorf("--config is required")
		}

		var content []byte
		if strings.HasPrefix(config, "{") && strings.HasSuffix(config, "}") {
			content = []byte(config)
		} else {
			// in this case, config is supposed to be a path to a json file
			var err error
			content, err = os.ReadFile(config)
			if err != nil {
				return fmt.Errorf("couldn't read the provided json file: %w", err)
			}
		}

		n, err := networks.AddNetwork(networks.CustomNetworksDir, content, NetworkForce)
		if err != nil {
			return fmt.Errorf("failed to add the new network: %w", err)
		}
		out.Success("Network %s with chain ID %d added and saved to %s.", n.GetName(), n.GetChainID(), networks.CustomNetworksDir)
		return nil
	},
}

var listNetworkCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all of supported networks",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		for i, n := range networks.GetSupportedNetworks() {
			out.Info("%d. Name: %s, Chain ID: %d", i+1, n.GetName(), n.GetChainID())
			rows := [][2]string{}
			if len(n.GetAlternativeNames()) > 0 {
				rows = append(rows, [2]string{"Also known as", strings.Join(n.GetAlternativeNames(), ", ")})
			}
			rows = append(rows,
				[2]string{"Native token", fmt.Sprintf("%s (%d decimals)", n.GetNativeTokenSymbol(), n.GetNativeTokenDecimal())},
				[2]string{"Block time", n.GetBlockTime().String()},
				[2]string{"Block explorer", fmt.Sprintf("%s (key: %s)", n.GetBlockExplorerAPIURL(), n.GetBlockExplorerAPIKeyVariableName())},
				[2]string{"Public node", n.GetPublicNode()},
			)
			if n.GetNodeVariableName() != "" {
				rows = append(rows, [2]string{"Node variable", n.GetNodeVariableName()})
			}
			out.Indent().KeyValue(rows)
		}

		out.Info("")
		out.Info("If you want to add more networks to the list, use following command:\n> blockseek network add --config <json>")
		out.Info("If you want to delete a network, just delete the corresponding json file in %s.", networks.CustomNetworksDir)
	},
}

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage all networks that blockseek supports",
	Long:  ``,
}

func init() {
	addNetworkCmd.PersistentFlags().StringVarP(&NetworkConfig, "config", "c", "", "Path to the network config json file or the json itself")
	addNetworkCmd.PersistentFlags().BoolVarP(&NetworkForce, "force", "f", false, "Force adding the network even if it already exists")

	networkCmd.AddCommand(listNetworkCmd)
	networkCmd.AddCommand(addNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}
