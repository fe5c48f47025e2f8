package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvictor/blockseek/token"
)

var tokenCmd = &cobra.Command{
	Use:   "token <address>",
	Short: "Show the symbol and decimals of an ERC20 token",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closer, err := token.NewFromConfig(appConfig, token.WithLogger(logger), token.WithMetrics(appMetrics))
		if err != nil {
			return err
		}
		defer closer()

		info, err := r.GetTokenInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out.KeyValue([][2]string{
			{"Address", info.Address.Hex()},
			{"Symbol", info.Symbol},
			{"Decimals", fmt.Sprintf("%d", info.Decimals)},
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
