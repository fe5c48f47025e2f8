package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	bscommon "github.com/tranvictor/blockseek/common"
	"github.com/tranvictor/blockseek/token"
)

var FullPrecision bool

var formatCmd = &cobra.Command{
	Use:   "format <address> <amount>",
	Short: "Format a raw token amount with the token's decimals and symbol",
	Long: `The amount is in the token's smallest unit, decimal or 0x prefixed hex.
It is printed with 4 decimal places unless --full is set.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := bscommon.StringToBigInt(args[1])
		if err != nil {
			return fmt.Errorf("couldn't parse amount %q: %w", args[1], err)
		}

		r, closer, err := token.NewFromConfig(appConfig, token.WithLogger(logger), token.WithMetrics(appMetrics))
		if err != nil {
			return err
		}
		defer closer()

		if FullPrecision {
			info, err := r.GetTokenInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out.Info("%s %s", token.FormatUnits(amount, info.Decimals), info.Symbol)
			return nil
		}

		formatted, err := r.FormatAmount(cmd.Context(), args[0], amount)
		if err != nil {
			return err
		}
		out.Info("%s", formatted)
		return nil
	},
}

func init() {
	formatCmd.Flags().BoolVar(&FullPrecision, "full", false, "print every significant digit instead of rounding to 4 decimals")
	rootCmd.AddCommand(formatCmd)
}
